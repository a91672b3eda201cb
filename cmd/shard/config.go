package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/logging"
	"go.klb.dev/shard/internal/store"
)

const (
	configName = "shard"
	envPrefix  = "SHARD"
)

// configDirs returns the directories searched for shard.toml, in order.
// Lowest precedence first would be misleading: the first file found wins.
func configDirs() []string {
	dirs := []string{"/etc/shard/"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "shard"))
	}
	return dirs
}

// bindViper resolves a command's effective settings. Precedence, lowest to
// highest: flag defaults, config file, SHARD_* env vars, explicit flags.
// A missing config file is not an error; a broken one is.
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		for _, dir := range configDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("no-background", false, "run interactively: tinted logs + debug level")
	f.String("log-format", "auto", "log format: auto|text|json")
	f.String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addDBFlag adds the --db flag to a command.
func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db", store.DefaultPath(), "path to the snippet database")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	logging.Init(logging.Options{
		Format:      v.GetString("log-format"),
		Level:       v.GetString("log-level"),
		Interactive: v.GetBool("no-background") || logging.IsTTY(os.Stderr),
	})
}
