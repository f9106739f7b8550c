// Package logger seeds a zap-backed, context-carried logger, following the
// same logger.Ctx(ctx) / logger.Seed idiom the rest of this repo's teacher
// stack (corso) uses: a single logger is constructed at process start and
// threaded through context.Context rather than passed as a parameter.
package logger

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type ctxKey struct{}

var loggerKey = ctxKey{}

// levelFlag is bound by AddLoggingFlags so cobra accepts --log-level. Seed
// does not read it: its level comes from PreloadLoggingFlags instead.
var levelFlag string

// Seed constructs the root zap logger and attaches it to ctx. It should be
// called exactly once, early in main().
func Seed(ctx context.Context, level string) (context.Context, *zap.SugaredLogger) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}

	sugar := z.Sugar()

	return context.WithValue(ctx, loggerKey, sugar), sugar
}

// AddLoggingFlags registers the --log-level persistent flag on the root
// cobra command.
func AddLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&levelFlag, "log-level", "info", "log level: debug|info|warn|error")
}

// PreloadLoggingFlags reads the log level out of raw argv before cobra has
// parsed flags, mirroring the teacher's PreloadLoggingFlags/Seed ordering
// (the logger must exist before the root command is executed).
func PreloadLoggingFlags(args []string) string {
	for i, a := range args {
		if a == "--log-level" && i+1 < len(args) {
			return args[i+1]
		}
	}

	return "info"
}

// Ctx retrieves the logger seeded on ctx, falling back to a no-op logger so
// call sites never need a nil check.
func Ctx(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok && l != nil {
		return l
	}

	return zap.NewNop().Sugar()
}

// CtxErr returns the context logger with an "error" field already attached.
func CtxErr(ctx context.Context, err error) *zap.SugaredLogger {
	return Ctx(ctx).With("error", err)
}

// With returns a derived context carrying a logger with additional
// structured fields attached -- used by pipeline stages to tag every log
// line for a cycle with e.g. the cycle id or supplier tag.
func With(ctx context.Context, kv ...any) context.Context {
	return context.WithValue(ctx, loggerKey, Ctx(ctx).With(kv...))
}
