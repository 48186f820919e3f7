package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"splotty-labels/tree"
)

func NewCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <preset>",
		Short: "Report inconsistencies in a preset's display tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPreset(args[0])
			if err != nil {
				return err
			}
			issues := tree.Validate(p)
			out := cmd.OutOrStdout()
			for _, is := range issues {
				fmt.Fprintln(out, is)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issue(s) found in preset %q", len(issues), p.Name)
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
