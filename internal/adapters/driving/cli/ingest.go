package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	ingestUserID    string
	ingestNoProcess bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents and prepare them for questions",
	Long: `Stores each file and splits it into chunks.

PDF files are extracted to text. MP3, WAV and MP4 files are transcribed,
one chunk per transcript segment, so answers can cite time spans.

Use --no-process to only register the files; run 'docuchat ingest' again
or 'docuchat watch' to process them later.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestUserID, "user", "u", "local", "owner of the ingested documents")
	ingestCmd.Flags().BoolVar(&ingestNoProcess, "no-process", false, "register files without chunking them")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	ctx := cmd.Context()
	for _, path := range args {
		doc, err := ingestService.Register(ctx, ingestUserID, path)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), friendly(err))
		}
		cmd.Printf("Registered %s as %s\n", doc.Filename, doc.ID)

		if ingestNoProcess {
			continue
		}

		result, err := ingestService.Process(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", doc.Filename, friendly(err))
		}
		cmd.Printf("Processed %s (%s): %d chunks\n", doc.ID, result.MediaType, result.Chunks)
	}
	return nil
}
