package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

var recommendJSON bool

var recommendCmd = &cobra.Command{
	Use:   "recommend [blogPath]",
	Short: "Show posts related to a stored post",
	Long: `Finds the posts whose descriptions are closest to the given post's
description. Results come from the cache when it is less than five minutes old.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	recs, err := recommendationService.Recommend(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recommendJSON {
		return outputRecommendJSON(cmd, recs)
	}

	outputRecommendList(cmd, args[0], recs)
	return nil
}

func outputRecommendJSON(cmd *cobra.Command, recs []domain.Recommendation) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRecommendList(cmd *cobra.Command, key string, recs []domain.Recommendation) {
	st := newStyler(cmd.OutOrStdout())

	if len(recs) == 0 {
		cmd.Println(st.render(mutedStyle, "No related posts found."))
		return
	}

	cmd.Println(st.render(titleStyle, "Related to "+key))
	cmd.Println()
	for i, rec := range recs {
		title := rec.Title
		if title == "" {
			title = rec.Key
		}
		cmd.Printf("  [%d] %s\n", i+1, title)
		cmd.Printf("      %s\n", st.render(keyStyle, rec.Key))
	}
}
