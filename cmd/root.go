package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"splotty-labels/preset"
)

// app carries what subcommands share once the root has been initialized.
type app struct {
	cfg   *viper.Viper
	log   *logrus.Logger
	store *preset.Storage
}

func NewRootCmd() *cobra.Command {
	a := &app{cfg: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:           "splotty",
		Short:         "Manage label presets for serial devices",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(a.cfg, cfgFile); err != nil {
				return err
			}

			a.log = logrus.New()
			a.log.SetOutput(cmd.ErrOrStderr())
			level, err := logrus.ParseLevel(a.cfg.GetString("log_level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			a.log.SetLevel(level)

			a.store, err = preset.NewStorage(a.cfg.GetString("preset_dir"), preset.WithLogger(a.log))
			if err != nil {
				return fmt.Errorf("failed to open preset directory: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/splotty/config.yaml)")
	root.PersistentFlags().String("dir", "", "preset directory")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cobra.CheckErr(a.cfg.BindPFlag("preset_dir", root.PersistentFlags().Lookup("dir")))
	cobra.CheckErr(a.cfg.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level")))

	root.AddCommand(NewListCmd(a))
	root.AddCommand(NewShowCmd(a))
	root.AddCommand(NewInitCmd(a))
	root.AddCommand(NewCheckCmd(a))
	root.AddCommand(NewNodeCmd(a))
	root.AddCommand(NewFieldCmd(a))
	root.AddCommand(NewPreviewCmd(a))
	root.AddCommand(NewServeCmd(a))
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadPreset wraps Storage.Load with the preset name for CLI errors.
func (a *app) loadPreset(name string) (*preset.Preset, error) {
	p, err := a.store.Load(name)
	if err != nil {
		return nil, fmt.Errorf("load preset %q: %w", name, err)
	}
	return p, nil
}
