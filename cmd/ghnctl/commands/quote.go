package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/service"
)

func quoteCmd() *cobra.Command {
	var (
		cartPath    string
		districtID  int
		wardCode    string
		token       string
		estimateOut bool
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a cart file for a destination",
		Long: "Reads a JSON cart (an array of lines, or an object with an \"items\" array) " +
			"from --cart or stdin and prints the GHN quote.",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readCartFile(cmd.InOrStdin(), cartPath)
			if err != nil {
				return err
			}

			var lookup service.ProductLookup
			if appCtx.catalog != nil {
				lookup = appCtx.catalog.WithCredentials(catalog.Credentials{AccessToken: token})
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if estimateOut {
				estimate, err := appCtx.shipping.BuildEstimate(ctx, lines, lookup)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), estimate)
			}

			res, err := appCtx.shipping.QuoteCart(ctx, service.QuoteInput{
				Lines:       lines,
				Destination: models.Destination{DistrictID: districtID, WardCode: wardCode},
				Catalog:     lookup,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&cartPath, "cart", "-", "cart JSON file, - for stdin")
	cmd.Flags().IntVar(&districtID, "district", 0, "destination GHN district id")
	cmd.Flags().StringVar(&wardCode, "ward", "", "destination GHN ward code")
	cmd.Flags().StringVar(&token, "token", os.Getenv("CATALOG_TOKEN"), "catalog bearer token")
	cmd.Flags().BoolVar(&estimateOut, "estimate-only", false, "print the aggregated parcel without calling GHN")
	return cmd
}

// readCartFile accepts either a bare array of cart lines or {"items": [...]}.
func readCartFile(stdin io.Reader, path string) ([]models.CartLine, error) {
	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err == nil {
		return lines, nil
	}
	var wrapped struct {
		Items []models.CartLine `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse cart: %w", err)
	}
	return wrapped.Items, nil
}
