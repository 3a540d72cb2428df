package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate GHN credentials without calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.carrier.ValidateConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "GHN configured for shop %s at %s\n", appCtx.cfg.GHN.ShopID, appCtx.cfg.GHN.BaseURL)
			return nil
		},
	}
}

func provincesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provinces",
		Short: "List GHN provinces",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			provinces, err := appCtx.locations.Provinces(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), provinces)
		},
	}
}

func districtsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "districts [provinceID]",
		Short: "List the districts of a province",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provinceID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid province id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			districts, err := appCtx.locations.Districts(ctx, provinceID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), districts)
		},
	}
}

func wardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wards [districtID]",
		Short: "List the wards of a district",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			districtID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid district id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			wards, err := appCtx.locations.Wards(ctx, districtID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), wards)
		},
	}
}

func searchCmd() *cobra.Command {
	var district, ward string
	cmd := &cobra.Command{
		Use:   "search [province]",
		Short: "Resolve province/district/ward names to GHN ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			match, err := appCtx.locations.Search(ctx, args[0], district, ward)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), match)
		},
	}
	cmd.Flags().StringVar(&district, "district", "", "district name")
	cmd.Flags().StringVar(&ward, "ward", "", "ward name")
	return cmd
}
