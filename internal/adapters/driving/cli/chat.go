package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui"
)

var chatUserID string

// runApp runs the TUI. Tests replace it to avoid taking over the terminal.
var runApp = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Chat with a document in the terminal",
	Long: `Launch the interactive terminal UI.

Without an argument it opens the document list; pick a document to start
asking questions. With a document ID it opens the chat for that document.

Controls:
  ↑/k, ↓/j - Navigate documents
  Enter    - Open chat / Ask
  d        - Delete document
  r        - Reload list
  Esc      - Back to documents
  q        - Quit (from the list)
  ctrl+c   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatUserID, "user", "u", "", "only list documents of this user")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) (err error) {
	// Restore a readable stack trace if a view panics
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(documentService, queryService, indexService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithUserID(chatUserID)

	if len(args) == 1 {
		doc, err := documentService.Get(cmd.Context(), args[0])
		if err != nil {
			return friendly(err)
		}
		app.WithDocument(*doc)
	}

	if err := runApp(app); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
