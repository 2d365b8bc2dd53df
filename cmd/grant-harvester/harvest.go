package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grant-harvester/internal/httputil"
	"github.com/pdiddy/grant-harvester/internal/orgs"
	"github.com/pdiddy/grant-harvester/internal/pipeline"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest, enrich and export every grant of one organization",
	Long: `Harvest pages through the grant search for one research organization,
looks up the fields of research of every grant, and writes one flat table.

Select the organization by ID with --org, or by name with --query, which
lists matching organizations and prompts for a choice.`,
	RunE: runHarvest,
}

func init() {
	f := harvestCmd.Flags()
	f.String("org", "", "research organization ID (e.g. grid.214458.e)")
	f.String("query", "", "organization name to search for and choose from")
	f.String("output", "", "artifact path (default results/grants.<format>)")
	f.String("format", "", "artifact format: csv, json, yaml or sqlite (default csv)")
	f.Bool("researchers", false, "also write the researcher table")
	f.Int("concurrency", 0, "fields lookups in flight (default 15)")
	f.Duration("lookup-timeout", 0, "timeout for a single fields lookup (default none)")
	f.Int("max-pages", 0, "stop after this many result pages (default unbounded)")
	f.String("metrics-file", "", "write Prometheus metrics to this file at the end of the run")

	mustBind("output.path", f.Lookup("output"))
	mustBind("output.format", f.Lookup("format"))
	mustBind("output.researchers", f.Lookup("researchers"))
	mustBind("enrich.concurrency", f.Lookup("concurrency"))
	mustBind("enrich.timeout", f.Lookup("lookup-timeout"))
	mustBind("harvest.max_pages", f.Lookup("max-pages"))
	mustBind("metrics_file", f.Lookup("metrics-file"))

	harvestCmd.MarkFlagsMutuallyExclusive("org", "query")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orgID, _ := cmd.Flags().GetString("org")
	query, _ := cmd.Flags().GetString("query")
	if orgID == "" {
		if query == "" {
			return fmt.Errorf("provide --org <id> or --query <organization name>")
		}
		org, err := chooseOrg(cmd.Context(), cfg, query)
		if err != nil {
			return err
		}
		orgID = org.ID
		fmt.Fprintf(os.Stderr, "Harvesting %s (%s)\n", org.Name, org.ID)
	}

	_, err = pipeline.Run(cmd.Context(), pipeline.Options{
		Config:   cfg,
		OrgID:    orgID,
		Progress: os.Stderr,
	})
	return err
}

// chooseOrg lists the organizations matching query and prompts for one.
func chooseOrg(ctx context.Context, cfg types.PipelineConfig, query string) (types.Organization, error) {
	client := httputil.NewClient(cfg.HTTP, cfg.Origin, nil)
	candidates, err := orgs.Suggest(ctx, client, query)
	if err != nil {
		return types.Organization{}, err
	}
	return orgs.Select(os.Stdin, os.Stderr, candidates, orgs.DefaultMaxAttempts)
}
