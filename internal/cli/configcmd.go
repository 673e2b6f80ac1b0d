package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitforge-dev/kitforge/internal/config"
)

// settableKeys are the config keys the CLI accepts for `config set`.
var settableKeys = []string{
	config.KeySourceDir,
	config.KeyUserDir,
	config.KeyProjectDir,
	config.KeyTarget,
	config.KeyBackup,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration values",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		known := false
		for _, k := range settableKeys {
			if k == key {
				known = true
			}
		}
		if !known {
			return fmt.Errorf("unknown config key %q (valid keys: %s)",
				key, strings.Join(settableKeys, ", "))
		}
		if err := config.Set(key, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
