package component

import "strings"

// categoryKeywords is the fixed keyword table for the fallback classifier.
// Rows are checked in order and the first match wins, so the table order is
// part of the contract. The classifier is advisory: an explicit category in
// the source file always takes precedence, and misclassification of edge
// cases is tolerated.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryGit, []string{"git", "commit", "branch", "merge", "rebase", "push"}},
	{CategoryValidation, []string{"lint", "typecheck", "type-check", "format", "style", "validate"}},
	{CategoryTesting, []string{"test", "spec", "coverage"}},
	{CategoryWorkflow, []string{"agent", "plan", "release", "deploy", "workflow", "checkpoint"}},
}

// Classify assigns a category from the component id and description.
// Components matching no keyword fall back to the utility category.
func Classify(id, description string) string {
	text := strings.ToLower(id + " " + description)
	for _, row := range categoryKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(text, kw) {
				return row.category
			}
		}
	}
	return CategoryUtility
}
