package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kitforge-dev/kitforge/internal/config"
	"github.com/kitforge-dev/kitforge/internal/install"
	"github.com/kitforge-dev/kitforge/internal/paths"
	"github.com/kitforge-dev/kitforge/internal/plan"
	"github.com/kitforge-dev/kitforge/internal/project"
)

var (
	installTarget  string
	installDryRun  bool
	installForce   bool
	installNoDeps  bool
	installBackup  bool
	installYes     bool
	installRefresh bool
)

var installCmd = &cobra.Command{
	Use:   "install <component>...",
	Short: "Install components and their dependencies",
	Long: `Install components (commands, hooks, agents) into the user-level or
project-level component directory. Components may be given as individual ids
or comma-separated lists. Dependencies are resolved and installed by
default; use --no-deps to skip them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installTarget, "target", "t", "", "Install target: user, project, or both")
	installCmd.Flags().BoolVarP(&installDryRun, "dry-run", "n", false, "Simulate the install without touching disk")
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "Skip plan validation")
	installCmd.Flags().BoolVar(&installNoDeps, "no-deps", false, "Install only the named components, skip dependencies")
	installCmd.Flags().BoolVarP(&installBackup, "backup", "b", false, "Back up files before overwriting")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip confirmation prompt")
	installCmd.Flags().BoolVar(&installRefresh, "refresh", false, "Rescan sources instead of using the cached registry")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	reg, err := scanSources(installRefresh)
	if err != nil {
		return err
	}

	roots, err := installRoots()
	if err != nil {
		return err
	}

	target := plan.Target(installTarget)
	if installTarget == "" {
		if v := config.Get(config.KeyTarget); v != "" {
			target = plan.Target(v)
		} else {
			target = plan.TargetUser
		}
	}

	wd, _ := os.Getwd()
	ctx := project.Detect(wd)

	inst := plan.Installation{
		Components:          splitSelection(args),
		Target:              target,
		Backup:              installBackup || config.GetBool(config.KeyBackup),
		DryRun:              installDryRun,
		Force:               installForce,
		InstallDependencies: !installNoDeps,
		Project:             &ctx,
	}

	// Show the plan before mutating anything.
	p, err := plan.Build(reg, inst, roots)
	if err != nil {
		return err
	}
	printPlan(cmd, p)

	if len(p.Components) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to install.")
		return nil
	}

	if !installYes && !installDryRun {
		fmt.Fprint(cmd.OutOrStdout(), "? Proceed with installation? (Y/n) ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if answer != "" && answer != "y" && answer != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Installation cancelled.")
				return nil
			}
		}
	}

	res, err := install.New().Install(reg, inst, roots)
	if err != nil {
		return err
	}

	printResult(cmd, res, installDryRun)

	if !res.Success {
		return fmt.Errorf("installation failed with %d error(s)", len(res.Errors))
	}
	return nil
}

// installRoots resolves the two destination roots for the current run.
func installRoots() (plan.Roots, error) {
	userRoot, err := paths.UserRoot()
	if err != nil {
		return plan.Roots{}, err
	}
	projectRoot, err := paths.ProjectRoot("")
	if err != nil {
		return plan.Roots{}, err
	}
	return plan.Roots{UserDir: userRoot, ProjectDir: projectRoot}, nil
}

// splitSelection flattens id arguments, allowing comma-separated lists.
func splitSelection(args []string) []string {
	var ids []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if p := strings.TrimSpace(part); p != "" {
				ids = append(ids, p)
			}
		}
	}
	return ids
}

func printPlan(cmd *cobra.Command, p *plan.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Installing %d component(s) to target %q:\n", len(p.Components), p.Target)
	for _, def := range p.Components {
		fmt.Fprintf(out, "  %s: %s\n", def.Kind, def.ID)
	}
	for _, w := range p.Warnings {
		logger.Warn(w)
	}
}

func printResult(cmd *cobra.Command, res *install.Result, dryRun bool) {
	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	for _, e := range res.Errors {
		logger.Error(e)
	}

	if !res.Success {
		fmt.Fprintln(out, "\u2717 Installation failed; completed steps were rolled back.")
		return
	}

	verb := "Installed"
	if dryRun {
		verb = "Would install"
	}
	fmt.Fprintf(out, "\u2713 %s %d component(s) (%d files, %d directories) in %s.\n",
		verb, len(res.InstalledComponents), len(res.ModifiedFiles), len(res.CreatedDirs),
		res.Duration.Round(time.Millisecond))
	if len(res.BackupFiles) > 0 {
		fmt.Fprintf(out, "  %d backup(s) written.\n", len(res.BackupFiles))
	}
}
