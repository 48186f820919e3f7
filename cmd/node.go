package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"splotty-labels/preset"
	"splotty-labels/tree"
)

func NewNodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Edit the display tree of a preset",
	}
	cmd.AddCommand(newNodeAddCmd(a))
	cmd.AddCommand(newNodeMoveCmd(a))
	cmd.AddCommand(newNodeRemoveCmd(a))
	cmd.AddCommand(newNodeRenameCmd(a))
	cmd.AddCommand(newNodeTreeCmd(a))
	return cmd
}

// edit loads name, applies fn and saves the result.
func (a *app) edit(name string, fn func(p *preset.Preset) error) error {
	p, err := a.loadPreset(name)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return a.store.Save(p)
}

func newNodeAddCmd(a *app) *cobra.Command {
	var parent, fieldID string

	cmd := &cobra.Command{
		Use:   "add <preset> [name]",
		Short: "Add a branch, or a field leaf with --field",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return a.edit(args[0], func(p *preset.Preset) error {
				if parent == "" {
					parent = p.RootID
				}
				var n *preset.TreeNode
				var err error
				if fieldID != "" {
					n, err = tree.AddField(p, parent, fieldID, name)
				} else {
					if name == "" {
						return fmt.Errorf("a branch needs a name")
					}
					n, err = tree.AddBranch(p, parent, name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent branch id (default is the root)")
	cmd.Flags().StringVar(&fieldID, "field", "", "Field id; adds a field leaf instead of a branch")
	return cmd
}

func newNodeMoveCmd(a *app) *cobra.Command {
	var parent string
	var index int

	cmd := &cobra.Command{
		Use:     "move <preset> <node-id>",
		Aliases: []string{"mv"},
		Short:   "Move a node under another branch",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(args[0], func(p *preset.Preset) error {
				if parent == "" {
					parent = p.RootID
				}
				return tree.Move(p, args[1], parent, index)
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "New parent branch id (default is the root)")
	cmd.Flags().IntVar(&index, "index", -1, "Position among the new siblings (default appends)")
	return cmd
}

func newNodeRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <preset> <node-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a node and its subtree",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(args[0], func(p *preset.Preset) error {
				return tree.Remove(p, args[1])
			})
		},
	}
}

func newNodeRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <preset> <node-id> <name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(args[0], func(p *preset.Preset) error {
				return tree.Rename(p, args[1], args[2])
			})
		},
	}
}

func newNodeTreeCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tree <preset>",
		Short: "Print the display tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadPreset(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tree.Walk(p, func(n *preset.TreeNode, depth int) bool {
				marker := "-"
				if n.Type == preset.NodeBranch {
					marker = "+"
					if n.Expanded || all {
						marker = "v"
					}
				}
				line := fmt.Sprintf("%s%s %s [%s]", strings.Repeat("  ", depth), marker, n.Name, n.ID)
				if n.FieldID != "" {
					line += " -> " + n.FieldID
				}
				fmt.Fprintln(out, line)
				return n.Expanded || all
			})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show collapsed branches too")
	return cmd
}
