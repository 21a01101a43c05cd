package main

import (
	"github.com/aretw0/act/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or reset the editor settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings, environment overrides included",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(settingsPath(cmd))
		if err != nil {
			return err
		}
		if settings.Store.RedisPassword != "" {
			settings.Store.RedisPassword = redacted
		}
		if settings.Store.EncryptionKey != "" {
			settings.Store.EncryptionKey = redacted
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		printf(cmd, "%s", data)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the settings file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsPath(cmd)
		settings := config.Defaults()
		if err := settings.Save(path); err != nil {
			return err
		}
		printf(cmd, "Settings reset in %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "%s\n", settingsPath(cmd))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configResetCmd, configPathCmd)
}

func settingsPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}
