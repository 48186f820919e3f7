package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"splotty-labels/preset"
)

func NewInitCmd(a *app) *cobra.Command {
	var device string
	var baud int

	cmd := &cobra.Command{
		Use:   "init <preset>",
		Short: "Create a preset, or rewrite an existing one in the current format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPreset(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("device") {
				p.Device = device
			}
			if cmd.Flags().Changed("baud") {
				p.Baud = baud
			}
			if err := a.store.Save(p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.store.Path(p.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Serial device path")
	cmd.Flags().IntVar(&baud, "baud", preset.DefaultBaud, "Baud rate")
	return cmd
}
