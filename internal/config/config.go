// Package config loads process configuration from environment variables
// (with an optional config file overlay), following the teacher's
// spf13/viper + spf13/cobra wiring in cli/cli.go and cli/config.
package config

import (
	"strings"
	"time"

	"github.com/alcionai/clues"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the fully-resolved process configuration. Fatal startup errors
// (§7) originate from failures to populate this struct.
type Config struct {
	DatabaseURL string

	IMAPHost string
	IMAPUser string
	IMAPPass string

	VendorAUser string
	VendorAPass string
	VendorAHost string

	VendorBPublicKey string

	VendorCShareURL string

	IoRBaseURL string
	IoRToken   string

	StorefrontAHost   string
	StorefrontAKey    string
	StorefrontASecret string

	StorefrontBHost   string
	StorefrontBKey    string
	StorefrontBSecret string

	FXEndpoint string

	HTTPAddr string

	EventRetention time.Duration
}

// AddConfigFlags registers the --config-file persistent flag, mirroring the
// teacher's config.AddConfigFlags.
func AddConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config-file", "", "optional path to a config file (env vars always win)")
}

// Seed prepares the viper instance used across the process lifetime. It
// must run before any flag values are read.
func Seed() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FLOORSYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("fx_endpoint", "https://www.cbr-xml-daily.ru/daily_json.js")
	v.SetDefault("event_retention", "168h")

	return v
}

// Load reads the config file (if --config-file was supplied) and populates
// a Config, validating that every required secret is present. A missing
// required value is a Fatal-class error per §7: the daemon must not start.
func Load(cmd *cobra.Command) (Config, error) {
	v := Seed()

	if cfgFile, _ := cmd.Flags().GetString("config-file"); cfgFile != "" {
		v.SetConfigFile(cfgFile)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, clues.Wrap(err, "reading config file").With("path", cfgFile)
		}
	}

	retention, err := time.ParseDuration(v.GetString("event_retention"))
	if err != nil {
		return Config{}, clues.Wrap(err, "parsing event_retention")
	}

	cfg := Config{
		DatabaseURL: v.GetString("database_url"),

		IMAPHost: v.GetString("imap_host"),
		IMAPUser: v.GetString("imap_user"),
		IMAPPass: v.GetString("imap_pass"),

		VendorAUser: v.GetString("vendor_a_user"),
		VendorAPass: v.GetString("vendor_a_pass"),
		VendorAHost: v.GetString("vendor_a_host"),

		VendorBPublicKey: v.GetString("vendor_b_public_key"),

		VendorCShareURL: v.GetString("vendor_c_share_url"),

		IoRBaseURL: v.GetString("ior_base_url"),
		IoRToken:   v.GetString("ior_token"),

		StorefrontAHost:   v.GetString("storefront_a_host"),
		StorefrontAKey:    v.GetString("storefront_a_key"),
		StorefrontASecret: v.GetString("storefront_a_secret"),

		StorefrontBHost:   v.GetString("storefront_b_host"),
		StorefrontBKey:    v.GetString("storefront_b_key"),
		StorefrontBSecret: v.GetString("storefront_b_secret"),

		FXEndpoint: v.GetString("fx_endpoint"),
		HTTPAddr:   v.GetString("http_addr"),

		EventRetention: retention,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	required := map[string]string{
		"database_url": c.DatabaseURL,
		"ior_base_url": c.IoRBaseURL,
		"ior_token":    c.IoRToken,
	}

	for name, val := range required {
		if val == "" {
			return clues.New("missing required configuration value").With("key", name)
		}
	}

	return nil
}
