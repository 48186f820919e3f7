package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"splotty-labels/monitor"
)

func NewPreviewCmd(a *app) *cobra.Command {
	var device string
	var secs int

	cmd := &cobra.Command{
		Use:   "preview <preset>",
		Short: "Capture a line from the device and store the rendered preview",
		Long: `Listen on the preset's device for monitor_secs, render the last line
through the display tree and store it as the preset's last preview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPreset(args[0])
			if err != nil {
				return err
			}
			if device == "" {
				device = p.Device
			}
			if device == "" {
				return fmt.Errorf("preset %q has no device; pass --device", p.Name)
			}
			window := monitor.Window(p)
			if secs > 0 {
				window = time.Duration(secs) * time.Second
			}

			dev, err := monitor.OpenDevice(device)
			if err != nil {
				return err
			}
			a.log.WithField("device", device).Debugf("capturing for %s", window)
			line, err := monitor.Capture(cmd.Context(), dev, window)
			dev.Close()
			if err != nil {
				return fmt.Errorf("capture from %s: %w", device, err)
			}

			pv := monitor.Render(p, line)
			p.LastPreview = &pv
			if err := a.store.Save(p); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, pv.LabelLine)
			fmt.Fprintln(out, pv.DataLine)
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Device to read instead of the preset's")
	cmd.Flags().IntVar(&secs, "secs", 0, "Capture window in seconds (default is the preset's monitor_secs)")
	return cmd
}
