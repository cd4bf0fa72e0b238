package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage document vector indices",
}

var indexWarmCmd = &cobra.Command{
	Use:   "warm [doc-id...]",
	Short: "Build document indices ahead of the first question",
	Long: `Embeds any chunks that have no vector yet and builds the in-memory index.
Vectors are persisted, so later runs only rebuild the index from storage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexWarm,
}

func init() {
	indexCmd.AddCommand(indexWarmCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexWarm(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errIndexNotConfigured
	}

	for _, id := range args {
		info, err := indexService.Warm(cmd.Context(), id)
		if err != nil {
			return friendly(err)
		}
		if info.State != domain.IndexStateReady {
			cmd.Printf("%s: %s\n", id, friendly(domain.ErrNotReady))
			continue
		}
		cmd.Printf("%s: ready, %d vectors of dimension %d\n", id, info.Vectors, info.Dimension)
	}
	return nil
}
