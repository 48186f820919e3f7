package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"splotty-labels/preset"
)

func NewFieldCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Manage field definitions of a preset",
	}
	cmd.AddCommand(newFieldSetCmd(a))
	cmd.AddCommand(newFieldListCmd(a))
	return cmd
}

func newFieldSetCmd(a *app) *cobra.Command {
	var (
		label     string
		tags      []string
		origin    int
		clearTags bool
	)

	cmd := &cobra.Command{
		Use:   "set <preset> <field-id>",
		Short: "Create or update a field definition",
		Long: `Create or update a field definition.

Examples:
  splotty field set bench S1.raw --label Temperature --origin 0
  splotty field set bench S1.raw --tag env --tag fast`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[1]
			return a.edit(args[0], func(p *preset.Preset) error {
				f, ok := p.Fields[id]
				if !ok {
					f = &preset.FieldDef{ID: id, Label: id, Tags: preset.NewTags()}
					p.Fields[id] = f
				}
				if cmd.Flags().Changed("label") {
					f.Label = label
				}
				if clearTags || f.Tags == nil {
					f.Tags = preset.NewTags()
				}
				for _, t := range tags {
					f.Tags.Add(t)
				}
				if cmd.Flags().Changed("origin") {
					if origin < 0 {
						f.OriginIndex = nil
					} else {
						idx := origin
						f.OriginIndex = &idx
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Display label")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag to add (repeatable)")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "Remove existing tags first")
	cmd.Flags().IntVar(&origin, "origin", -1, "Raw column index; negative unmaps the field")
	return cmd
}

func newFieldListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <preset>",
		Aliases: []string{"ls"},
		Short:   "List field definitions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPreset(args[0])
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(p.Fields))
			for id := range p.Fields {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tORIGIN\tTAGS")
			for _, id := range ids {
				f := p.Fields[id]
				origin := "-"
				if f.OriginIndex != nil {
					origin = strconv.Itoa(*f.OriginIndex)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, f.Label, origin, strings.Join(f.Tags.Sorted(), ","))
			}
			return w.Flush()
		},
	}
}
