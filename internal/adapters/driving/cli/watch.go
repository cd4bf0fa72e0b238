package cli

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docuchat/internal/adapters/driving/watcher"
)

var (
	watchUserID string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory and ingests every supported file (pdf, mp3, wav, mp4)
that appears in it or changes. Files already present are ingested on start.

A file is processed once it has stopped changing for --settle.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchUserID, "user", "u", "local", "owner of the ingested documents")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watcher.DefaultSettle, "quiet period before a file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	w, err := watcher.New(ingestService, watcher.Config{
		Dir:    args[0],
		UserID: watchUserID,
		Settle: watchSettle,
		OnResult: func(r watcher.Result) {
			name := filepath.Base(r.Path)
			if r.Err != nil {
				cmd.PrintErrf("%s: %v\n", name, friendly(r.Err))
				return
			}
			cmd.Printf("%s: ingested as %s, %d chunks\n", name, r.Document.ID, r.Chunks)
		},
	})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (ctrl+c to stop)\n", args[0])
	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
