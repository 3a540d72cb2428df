// Package commands implements ghnctl, an operator CLI for checking GHN
// credentials, browsing the address hierarchy and pricing a cart offline
// from the storefront.
package commands

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/config"
	"github.com/GTDGit/bookstore_api/internal/service"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// app holds what every subcommand needs, built once in PersistentPreRunE.
type app struct {
	cfg       *config.Config
	carrier   *ghn.Client
	catalog   *catalog.Client
	locations *service.LocationService
	shipping  *service.ShippingService
}

var (
	appCtx  *app
	verbose bool
	timeout time.Duration
)

func Execute() error {
	root := &cobra.Command{
		Use:           "ghnctl",
		Short:         "GHN shipping operator tool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

			cfg, err := config.LoadShipping()
			if err != nil {
				return err
			}
			appCtx = newApp(cfg)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	root.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall command timeout")

	root.AddCommand(checkCmd(), provincesCmd(), districtsCmd(), wardsCmd(), searchCmd(), quoteCmd(), adminCmd())
	return root.Execute()
}

func newApp(cfg *config.Config) *app {
	carrier := ghn.NewClient(cfg.GHN.ClientConfig())

	var catalogClient *catalog.Client
	if cfg.Catalog.BaseURL != "" {
		catalogClient = catalog.NewClient(catalog.Config{BaseURL: cfg.Catalog.BaseURL, Timeout: cfg.Catalog.Timeout})
	}

	return &app{
		cfg:       cfg,
		carrier:   carrier,
		catalog:   catalogClient,
		locations: service.NewLocationService(carrier),
		shipping:  service.NewShippingService(carrier, service.NewDimensionResolver(nil)),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
