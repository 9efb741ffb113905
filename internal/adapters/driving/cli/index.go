package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and rebuild the vector index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from stored posts",
	Args:  cobra.NoArgs,
	RunE:  runIndexRebuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the vector index with stored posts",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	if err := indexService.RebuildFrom(cmd.Context()); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	cmd.Println("Index rebuilt.")
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	report, err := indexService.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("index check failed: %w", err)
	}

	st := newStyler(cmd.OutOrStdout())
	cmd.Printf("Posts:   %d\n", report.Records)
	cmd.Printf("Entries: %d\n", report.Entries)
	if len(report.Unembedded) > 0 {
		cmd.Printf("Without embedding: %v\n", report.Unembedded)
	}
	if report.Consistent() {
		cmd.Println(st.render(okStyle, "Index is consistent."))
		return nil
	}

	if len(report.Missing) > 0 {
		cmd.Printf("Missing from index: %v\n", report.Missing)
	}
	if len(report.Orphaned) > 0 {
		cmd.Printf("Orphaned entries:   %v\n", report.Orphaned)
	}
	if len(report.Stale) > 0 {
		cmd.Printf("Stale embeddings:   %v\n", report.Stale)
	}
	cmd.Println(st.render(warnStyle, "Run 'related index rebuild' to repair."))
	return nil
}
