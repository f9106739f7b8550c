// Command fridaysyncd runs the catalog/inventory synchronization daemon: it
// wires every pipeline (C1-C11) together and serves the HTTP facade,
// following the teacher's (corso) root-command wiring pattern in miniature.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/floorsync/core/internal/config"
	"github.com/floorsync/core/internal/currency"
	"github.com/floorsync/core/internal/dbx"
	"github.com/floorsync/core/internal/events"
	"github.com/floorsync/core/internal/httpapi"
	"github.com/floorsync/core/internal/iorclient"
	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/reconcile"
	"github.com/floorsync/core/internal/stockmail"
	"github.com/floorsync/core/internal/stockstore"
	"github.com/floorsync/core/internal/stockweb"
	"github.com/floorsync/core/internal/storefront"
	"github.com/floorsync/core/internal/supervisor"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "fridaysyncd",
	Short: "Catalog and inventory synchronization daemon.",
}

func main() {
	config.AddConfigFlags(rootCmd)
	logger.AddLoggingFlags(rootCmd)

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, log := logger.Seed(context.Background(), logger.PreloadLoggingFlags(os.Args[1:]))

	defer func() { _ = log.Sync() }()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.CtxErr(ctx, err).Error("command execution failed")
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations.",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations (also runs automatically on serve).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}

			store, err := dbx.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			return nil
		},
	}

	cmd.AddCommand(up)

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run every pipeline stage and the HTTP facade until signalled to stop.",
		RunE:  runServe,
	}

	config.AddConfigFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Ctx(ctx)

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	store, err := dbx.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	ior := iorclient.New(cfg.IoRBaseURL, cfg.IoRToken)
	storefrontA := storefront.New("A", cfg.StorefrontAHost, cfg.StorefrontAKey, cfg.StorefrontASecret)
	storefrontB := storefront.New("B", cfg.StorefrontBHost, cfg.StorefrontBKey, cfg.StorefrontBSecret)

	eventIntake := events.NewIntake(store)
	eventPoller := events.NewPoller(store)

	deps := supervisor.Deps{
		Store:    store,
		Currency: currency.New(store, cfg.FXEndpoint),
		StockMail: stockmail.New(stockmail.Config{
			Host: cfg.IMAPHost,
			User: cfg.IMAPUser,
			Pass: cfg.IMAPPass,
		}),
		StockWeb: stockweb.New(stockweb.Config{
			VendorAHost:      cfg.VendorAHost,
			VendorAUser:      cfg.VendorAUser,
			VendorAPass:      cfg.VendorAPass,
			VendorBPublicKey: cfg.VendorBPublicKey,
			VendorCShareURL:  cfg.VendorCShareURL,
		}),
		StockStore:  stockstore.New(store),
		EventIntake: eventIntake,
		EventPoller: eventPoller,
		Reconciler:  reconcile.New(store, ior, storefrontA, storefrontB),
	}

	sup := supervisor.New(deps)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.New(httpapi.Deps{
			Currencies: store,
			Stock:      store,
			Prices:     store,
			Intake:     eventIntake,
		}),
	}

	go func() {
		log.Infow("http facade listening", "addr", cfg.HTTPAddr)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("http facade stopped unexpectedly", "error", err)
		}
	}()

	sup.Run(ctx)

	return srv.Close()
}
