package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kitforge-dev/kitforge/internal/component"
)

var (
	searchKindFilter     string
	searchCategoryFilter string
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for components by name or description",
	Long: `Search the configured source root for components. The query matches
against component ids, names, and descriptions (case-insensitive substring).
Use --kind and --category to narrow the results.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchKindFilter, "kind", "", "Filter by kind (command, hook, agent)")
	searchCmd.Flags().StringVar(&searchCategoryFilter, "category", "", "Filter by category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	reg, err := scanSources(false)
	if err != nil {
		return err
	}

	var entries []listEntry
	for _, def := range reg.Search(query) {
		if searchKindFilter != "" && def.Kind != component.Kind(searchKindFilter) {
			continue
		}
		if searchCategoryFilter != "" && def.Category != searchCategoryFilter {
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
		fmt.Fprintln(cmd.OutOrStdout(), "No components matched.")
		return nil
	}

	if searchJSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling search output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCATEGORY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Kind, e.Category, truncate(e.Description, 60))
	}
	return w.Flush()
}
