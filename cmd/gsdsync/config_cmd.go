package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/gsdsync/internal/config"
	"github.com/steveyegge/gsdsync/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage configuration settings",
	Long: `Read and write gsdsync settings.

Values are resolved from flags, then GSDSYNC_* environment variables, then
gsdsync.yaml (searched upward from the working directory, in .planning/, and
in the user config directory). 'config set' edits that file in place.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		if !config.IsKnownKey(key) {
			FatalErrorWithHint(fmt.Sprintf("unknown key %q", key), "run 'gsdsync config list' to see all keys")
		}
		value := displayValue(key, config.GetString(key))
		if jsonOutput {
			outputJSON(map[string]string{"key": key, "value": value})
			return
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]
		if !config.IsKnownKey(key) {
			FatalErrorWithHint(fmt.Sprintf("unknown key %q", key), "run 'gsdsync config list' to see all keys")
		}
		path, err := config.WritablePath()
		if err != nil {
			FatalError("%v", err)
		}
		if err := config.SetFileValue(path, key, value); err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"key": key, "value": displayValue(key, value), "file": path})
			return
		}
		fmt.Printf("%s Set %s = %s (%s)\n", ui.RenderPass(ui.IconPass), key, displayValue(key, value), path)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		keys := config.SortedKeys()
		if jsonOutput {
			out := make(map[string]string, len(keys))
			for _, k := range keys {
				out[k] = displayValue(k, config.GetString(k))
			}
			outputJSON(out)
			return
		}

		if used := config.ConfigFileUsed(); used != "" {
			fmt.Printf("%s\n\n", ui.RenderMuted("# "+used))
		}
		width := 0
		for _, k := range keys {
			width = max(width, len(k))
		}
		for _, k := range keys {
			v := displayValue(k, config.GetString(k))
			if v == "" {
				v = ui.RenderMuted("(not set)")
			}
			fmt.Printf("%-*s  %s\n", width, k, v)
		}
	},
}

// displayValue masks secrets.
func displayValue(key, value string) string {
	if strings.HasSuffix(key, ".token") {
		return maskToken(value)
	}
	return value
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}
