// Package tree edits and inspects the display tree of a preset in place.
package tree

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"splotty-labels/preset"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrNotBranch     = errors.New("node is not a branch")
	ErrCycle         = errors.New("node cannot be moved into its own subtree")
	ErrRootImmutable = errors.New("root node cannot be moved or removed")
)

func lookup(p *preset.Preset, id string) (*preset.TreeNode, error) {
	n, ok := p.TreeNodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return n, nil
}

func branch(p *preset.Preset, id string) (*preset.TreeNode, error) {
	n, err := lookup(p, id)
	if err != nil {
		return nil, err
	}
	if n.Type != preset.NodeBranch {
		return nil, fmt.Errorf("%w: %q", ErrNotBranch, id)
	}
	return n, nil
}

// AddBranch appends a new branch under parentID.
func AddBranch(p *preset.Preset, parentID, name string) (*preset.TreeNode, error) {
	parent, err := branch(p, parentID)
	if err != nil {
		return nil, err
	}
	n := &preset.TreeNode{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     preset.NodeBranch,
		ParentID: parent.ID,
		Children: []string{},
		Expanded: true,
	}
	attach(p, parent, n)
	return n, nil
}

// AddField appends a leaf displaying fieldID under parentID. An empty name
// falls back to the field's label, then to fieldID. The field definition is
// not required to exist.
func AddField(p *preset.Preset, parentID, fieldID, name string) (*preset.TreeNode, error) {
	parent, err := branch(p, parentID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = fieldID
		if f, ok := p.Fields[fieldID]; ok && f.Label != "" {
			name = f.Label
		}
	}
	n := &preset.TreeNode{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     preset.NodeField,
		ParentID: parent.ID,
		Children: []string{},
		Expanded: true,
		FieldID:  fieldID,
	}
	attach(p, parent, n)
	return n, nil
}

func attach(p *preset.Preset, parent, n *preset.TreeNode) {
	p.TreeNodes[n.ID] = n
	parent.Children = append(parent.Children, n.ID)
}

// Move detaches id from its parent and inserts it into newParentID's children
// at index. Out-of-range indexes are clamped; a negative index appends.
func Move(p *preset.Preset, id, newParentID string, index int) error {
	if id == p.RootID {
		return ErrRootImmutable
	}
	n, err := lookup(p, id)
	if err != nil {
		return err
	}
	parent, err := branch(p, newParentID)
	if err != nil {
		return err
	}
	if isAncestor(p, id, newParentID) {
		return fmt.Errorf("%w: %q under %q", ErrCycle, id, newParentID)
	}

	if old, ok := p.TreeNodes[n.ParentID]; ok {
		old.Children = without(old.Children, id)
	}
	children := without(parent.Children, id)
	if index < 0 || index > len(children) {
		index = len(children)
	}
	children = append(children, "")
	copy(children[index+1:], children[index:])
	children[index] = id
	parent.Children = children
	n.ParentID = parent.ID
	return nil
}

// isAncestor reports whether ancestor is id itself or lies on id's parent chain.
func isAncestor(p *preset.Preset, ancestor, id string) bool {
	seen := make(map[string]bool)
	for cur := id; cur != "" && !seen[cur]; {
		if cur == ancestor {
			return true
		}
		seen[cur] = true
		n, ok := p.TreeNodes[cur]
		if !ok {
			return false
		}
		cur = n.ParentID
	}
	return false
}

// Remove deletes id and its whole subtree. Field definitions are kept.
func Remove(p *preset.Preset, id string) error {
	if id == p.RootID {
		return ErrRootImmutable
	}
	n, err := lookup(p, id)
	if err != nil {
		return err
	}
	if parent, ok := p.TreeNodes[n.ParentID]; ok {
		parent.Children = without(parent.Children, id)
	}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := p.TreeNodes[cur]
		if !ok {
			continue
		}
		delete(p.TreeNodes, cur)
		stack = append(stack, node.Children...)
	}
	return nil
}

func Rename(p *preset.Preset, id, name string) error {
	n, err := lookup(p, id)
	if err != nil {
		return err
	}
	n.Name = name
	return nil
}

func SetExpanded(p *preset.Preset, id string, expanded bool) error {
	n, err := lookup(p, id)
	if err != nil {
		return err
	}
	n.Expanded = expanded
	return nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, c := range ids {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}
