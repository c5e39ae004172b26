package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change backend settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <category>",
	Short: "Show all settings of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		settings, err := client.SettingsByCategory(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <category> <key> <value>",
	Short: "Update one setting",
	Long: `Update one setting. The value is decoded as JSON when possible, so
"true", "42" and '{"a": 1}' become typed values; anything else is used as a
plain string.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
			value = args[2]
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		setting, err := client.UpdateSetting(ctx, args[0], args[1], value)
		if err != nil {
			return err
		}
		return printJSON(setting)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
