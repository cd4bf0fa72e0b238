package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [document-id] [question...]",
	Short: "Ask a question about a document",
	Long: `Retrieves the chunks of the document most relevant to the question and
asks the language model to answer from them.

For recordings the answer lists the time spans it was drawn from.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errQueryNotConfigured
	}

	documentID := args[0]
	question := strings.Join(args[1:], " ")

	answer, err := queryService.Answer(cmd.Context(), documentID, question)
	if err != nil {
		return friendly(err)
	}
	if answer.Sources == nil {
		answer.Sources = []domain.TimeSpan{}
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd.OutOrStdout(), answer)
	return nil
}

// printAnswer writes the answer and its sources, styled when out is a terminal.
func printAnswer(out io.Writer, answer *domain.Answer) {
	heading := fmt.Sprint
	if isTerminal(out) {
		style := lipgloss.NewStyle().Bold(true)
		heading = func(a ...any) string { return style.Render(fmt.Sprint(a...)) }
	}

	fmt.Fprintln(out, answer.Text)
	if len(answer.Sources) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Sources:"))
	for _, span := range answer.Sources {
		fmt.Fprintf(out, "  %s\n", formatSpan(span))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatSpan renders a time span as mm:ss-mm:ss.
func formatSpan(span domain.TimeSpan) string {
	return formatTimestamp(span.Start) + "-" + formatTimestamp(span.End)
}

func formatTimestamp(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
