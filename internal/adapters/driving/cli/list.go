package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored posts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output keys as a JSON array")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	keys, err := ingestService.ListKeys(cmd.Context())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		data, err := json.Marshal(keys)
		if err != nil {
			return fmt.Errorf("failed to marshal keys: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(keys) == 0 {
		cmd.Println("No posts stored.")
		return nil
	}
	for _, k := range keys {
		cmd.Println(k)
	}
	return nil
}
