package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitforge-dev/kitforge/internal/component"
	"github.com/kitforge-dev/kitforge/internal/platform"
)

var infoCmd = &cobra.Command{
	Use:   "info <component>",
	Short: "Show details about a component",
	Long:  `Show metadata, dependencies, and dependents of a single component.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	reg, err := scanSources(false)
	if err != nil {
		return err
	}

	def, ok := reg.Get(args[0])
	if !ok {
		return fmt.Errorf("component %q not found", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", def.ID, def.Kind)
	fmt.Fprintf(out, "  Description: %s\n", def.Description)
	fmt.Fprintf(out, "  Category:    %s\n", def.Category)
	if def.Version != "" {
		fmt.Fprintf(out, "  Version:     %s\n", def.Version)
	}
	if def.Author != "" {
		fmt.Fprintf(out, "  Author:      %s\n", def.Author)
	}
	if len(def.Platforms) > 0 {
		fmt.Fprintf(out, "  Platforms:   %s\n", strings.Join(def.Platforms, ", "))
	}
	fmt.Fprintf(out, "  Source:      %s\n", def.SourcePath)

	if deps := reg.Dependencies(def.ID); len(deps) > 0 {
		fmt.Fprintf(out, "  Depends on:  %s\n", strings.Join(deps, ", "))
	}
	if dependents := reg.Dependents(def.ID); len(dependents) > 0 {
		fmt.Fprintf(out, "  Needed by:   %s\n", strings.Join(dependents, ", "))
	}
	if def.Kind == component.KindHook {
		fmt.Fprintf(out, "  Executable:  %t\n", platform.IsExecutable(def.SourcePath))
	}
	if def.Hook != nil && len(def.Hook.ShellOptions) > 0 {
		fmt.Fprintf(out, "  Shell opts:  %s\n", strings.Join(def.Hook.ShellOptions, " "))
	}
	if def.Agent != nil && len(def.Agent.Bundle) > 0 {
		fmt.Fprintf(out, "  Bundles:     %s\n", strings.Join(def.Agent.Bundle, ", "))
	}
	for _, w := range def.Warnings {
		logger.Warn(fmt.Sprintf("%s: %s", def.ID, w))
	}
	return nil
}
