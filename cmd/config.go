package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// initConfig layers defaults, an optional YAML file and SPLOTTY_* environment
// variables onto v. Flags bound to v take precedence over all of them.
func initConfig(v *viper.Viper, cfgFile string) error {
	home, _ := os.UserHomeDir()

	v.SetDefault("preset_dir", filepath.Join(home, ".local", "share", "splotty", "presets"))
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix("SPLOTTY")
	v.AutomaticEnv()
	// Unprefixed names kept for container deployments.
	_ = v.BindEnv("port", "SPLOTTY_PORT", "PORT")
	_ = v.BindEnv("preset_dir", "SPLOTTY_PRESET_DIR", "PRESET_DIR")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "splotty"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
