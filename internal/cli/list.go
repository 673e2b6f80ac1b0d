package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kitforge-dev/kitforge/internal/component"
)

var (
	listKindFilter     string
	listCategoryFilter string
	listJSON           bool
	listRefresh        bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discoverable components",
	Long:  `List all components found in the configured source root.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listKindFilter, "kind", "", "Filter by kind (command, hook, agent)")
	listCmd.Flags().StringVar(&listCategoryFilter, "category", "", "Filter by category")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listRefresh, "refresh", false, "Rescan sources instead of using the cached registry")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a discovered component for display.
type listEntry struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Category     string   `json:"category"`
	Version      string   `json:"version,omitempty"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := scanSources(listRefresh)
	if err != nil {
		return err
	}

	var entries []listEntry
	for _, id := range reg.IDs() {
		def := reg.Components[id]
		if listKindFilter != "" && def.Kind != component.Kind(listKindFilter) {
			continue
		}
		if listCategoryFilter != "" && def.Category != listCategoryFilter {
			continue
		}
		entries = append(entries, listEntry{
			ID:           def.ID,
			Kind:         string(def.Kind),
			Category:     def.Category,
			Version:      def.Version,
			Description:  def.Description,
			Dependencies: def.Dependencies,
		})
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No components found.")
		return nil
	}

	if listJSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling list output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCATEGORY\tVERSION\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Kind, e.Category, e.Version, truncate(e.Description, 60))
	}
	return w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
