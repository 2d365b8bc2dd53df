package types

import "time"

// DefaultOrigin is the Dimensions discovery service the harvester talks to.
const DefaultOrigin = "https://dtic.dimensions.ai"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "grant-harvester/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retrying.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// HarvestConfig holds settings for the pagination stage.
type HarvestConfig struct {
	// MaxPages stops a harvest that has not completed after this many pages.
	// Zero means no bound.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
}

// EnrichConfig holds settings for the per-grant fields lookup stage.
type EnrichConfig struct {
	// Concurrency caps the number of lookups in flight (default 15).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Timeout bounds a single lookup in addition to the HTTP timeout.
	// Zero leaves only the HTTP timeout in effect.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// OutputFormat selects the artifact written at the end of a run.
type OutputFormat string

const (
	FormatCSV    OutputFormat = "csv"
	FormatJSON   OutputFormat = "json"
	FormatYAML   OutputFormat = "yaml"
	FormatSQLite OutputFormat = "sqlite"
)

// OutputConfig holds settings for the export stage.
type OutputConfig struct {
	// Path is the artifact path (e.g. "results/grants.csv").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Format is csv, json, yaml or sqlite.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Researchers also writes the researcher table. For CSV this is a sibling
	// "<name>-researchers.csv" file; the other formats embed it.
	Researchers bool `json:"researchers" yaml:"researchers" mapstructure:"researchers"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	// Origin is the service base URL, without a trailing slash.
	Origin string `json:"origin" yaml:"origin" mapstructure:"origin"`

	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Harvest HarvestConfig `json:"harvest" yaml:"harvest" mapstructure:"harvest"`
	Enrich  EnrichConfig  `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`

	// MetricsFile, when set, receives the run's Prometheus metrics in
	// textfile-collector format.
	MetricsFile string `json:"metrics_file" yaml:"metrics_file" mapstructure:"metrics_file"`
}
