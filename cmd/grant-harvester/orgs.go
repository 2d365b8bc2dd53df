package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/internal/orgs"
)

var orgsCmd = &cobra.Command{
	Use:   "orgs <name>",
	Short: "List research organizations matching a name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := httputil.NewClient(cfg.HTTP, cfg.Origin, nil)
		found, err := orgs.Suggest(cmd.Context(), client, strings.Join(args, " "))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-24s  %s\n", "ID", "Name")
		for _, o := range found {
			fmt.Fprintf(w, "%-24s  %s\n", o.ID, o.Name)
		}
		fmt.Fprintf(w, "\n%d organizations\n", len(found))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orgsCmd)
}
