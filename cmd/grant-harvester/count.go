package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-harvester/internal/harvest"
	"github.com/pdiddy/grant-harvester/internal/httputil"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many grants an organization has",
	Long: `Count fetches the first result page for one research organization and
prints the total the service reports, without harvesting anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		orgID, _ := cmd.Flags().GetString("org")

		client := httputil.NewClient(cfg.HTTP, cfg.Origin, nil)
		n, err := harvest.New(client, 0).Count(cmd.Context(), orgID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	countCmd.Flags().String("org", "", "research organization ID")
	countCmd.MarkFlagRequired("org")

	rootCmd.AddCommand(countCmd)
}
