package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidsqueeze/internal/dirs"
)

// Init wires Viper with config paths, env, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	// Ensure base directories exist
	_ = dirs.EnsureAll()

	// Setup config search path
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		_ = dirs.Ensure(cfgDir)
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: VIDSQUEEZE_*
	viper.SetEnvPrefix("VIDSQUEEZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Bind root persistent flags to Viper keys
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("ffmpeg", root.PersistentFlags().Lookup("ffmpeg"))
	_ = viper.BindPFlag("ffprobe", root.PersistentFlags().Lookup("ffprobe"))
	_ = viper.BindPFlag("no_ui", root.PersistentFlags().Lookup("no-ui"))

	// Read config file if present (ignore not found)
	_ = viper.ReadInConfig()

	return nil
}

// FFmpegPath returns the configured ffmpeg path, empty for PATH lookup.
func FFmpegPath() string {
	return viper.GetString("ffmpeg")
}

// FFprobePath returns the configured ffprobe path, empty for PATH lookup.
func FFprobePath() string {
	return viper.GetString("ffprobe")
}

// Verbose reports whether verbose diagnostics are enabled via env or config file.
func Verbose() bool {
	return viper.GetBool("verbose")
}

// NoUI reports whether the TUI is disabled via env or config file.
func NoUI() bool {
	return viper.GetBool("no_ui")
}
