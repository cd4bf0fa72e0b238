// Package cli provides the docuchat command line interface.
// It is a driving adapter: commands call core services through driving ports.
package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired by main.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	indexService    driving.IndexService
	settingsService driving.SettingsService

	// metricsHandler is served at /metrics by 'mcp serve --port'.
	metricsHandler http.Handler
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "Ask questions about your documents, recordings and videos",
	Long: `docuchat ingests PDF documents and MP3, WAV or MP4 recordings, splits them
into chunks and answers questions about a single document using the chunks
most relevant to the question.

Answers about recordings cite the time spans they were drawn from.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.InitFromEnv()
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
}

// Services holds the driving ports the commands call.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Document driving.DocumentService
	Index    driving.IndexService
	Settings driving.SettingsService

	// Metrics is optional.
	Metrics http.Handler
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Document
	indexService = s.Index
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// SetVersion sets the version printed by 'docuchat version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
