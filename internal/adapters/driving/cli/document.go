package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, inspect or delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print document chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes the document, its chunks, its stored file and any cached index.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

// documentUserID filters the list command.
var documentUserID string

func init() {
	documentListCmd.Flags().StringVarP(&documentUserID, "user", "u", "", "only list documents of this user")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	docs, err := documentService.List(cmd.Context(), documentUserID)
	if err != nil {
		return friendly(err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File: %s (%s)\n", docs[i].Filename, docs[i].MediaType)
		cmd.Printf("    User: %s\n", docs[i].UserID)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	ctx := cmd.Context()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return friendly(err)
	}

	chunks, err := documentService.Chunks(ctx, doc.ID)
	if err != nil {
		return friendly(err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:     %s\n", doc.Filename)
	cmd.Printf("  Type:     %s\n", doc.MediaType)
	cmd.Printf("  User:     %s\n", doc.UserID)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Chunks:   %d\n", len(chunks))
	cmd.Printf("  Embedded: %d\n", countEmbedded(chunks))

	if len(chunks) == 0 {
		cmd.Println("\nNot processed yet. Run 'docuchat ingest' to process it.")
	}
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	chunks, err := documentService.Chunks(cmd.Context(), args[0])
	if err != nil {
		return friendly(err)
	}
	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}

	for i := range chunks {
		c := &chunks[i]
		if c.Span != nil {
			cmd.Printf("[%d] %s\n", c.Position, formatSpan(*c.Span))
		} else {
			cmd.Printf("[%d]\n", c.Position)
		}
		cmd.Println(c.Content)
		cmd.Println()
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	docID := args[0]
	if err := documentService.Delete(cmd.Context(), docID); err != nil {
		return friendly(err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func countEmbedded(chunks []domain.Chunk) int {
	n := 0
	for i := range chunks {
		if chunks[i].HasEmbedding() {
			n++
		}
	}
	return n
}
