package tree

import (
	"fmt"
	"sort"

	"splotty-labels/preset"
)

// Walk visits nodes depth-first in display order starting at the root.
// Dangling children are skipped and each node is visited at most once.
// Returning false from fn prunes that node's subtree.
func Walk(p *preset.Preset, fn func(n *preset.TreeNode, depth int) bool) {
	seen := make(map[string]bool)
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		n, ok := p.TreeNodes[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(p.RootID, 0)
}

// FieldNodes returns the field leaves reachable from the root in display order.
func FieldNodes(p *preset.Preset) []*preset.TreeNode {
	var out []*preset.TreeNode
	Walk(p, func(n *preset.TreeNode, _ int) bool {
		if n.Type == preset.NodeField {
			out = append(out, n)
		}
		return true
	})
	return out
}

type IssueKind string

const (
	IssueMissingRoot    IssueKind = "missing_root"
	IssueDanglingChild  IssueKind = "dangling_child"
	IssueParentMismatch IssueKind = "parent_mismatch"
	IssueUnreachable    IssueKind = "unreachable"
	IssueMissingField   IssueKind = "missing_field"
	IssueNoFieldID      IssueKind = "no_field_id"
)

type Issue struct {
	Kind   IssueKind `json:"kind" yaml:"kind"`
	NodeID string    `json:"node_id" yaml:"node_id"`
	Detail string    `json:"detail" yaml:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.NodeID, i.Detail)
}

// Validate reports tree inconsistencies without modifying p. Stored documents
// with dangling references still load; this is a report for editors.
func Validate(p *preset.Preset) []Issue {
	var issues []Issue
	if p.Root() == nil {
		issues = append(issues, Issue{Kind: IssueMissingRoot, NodeID: p.RootID, Detail: "root node is not in the tree"})
	}

	ids := make([]string, 0, len(p.TreeNodes))
	for id := range p.TreeNodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := p.TreeNodes[id]
		for _, c := range n.Children {
			child, ok := p.TreeNodes[c]
			if !ok {
				issues = append(issues, Issue{Kind: IssueDanglingChild, NodeID: id, Detail: fmt.Sprintf("child %q does not exist", c)})
				continue
			}
			if child.ParentID != id {
				issues = append(issues, Issue{Kind: IssueParentMismatch, NodeID: c, Detail: fmt.Sprintf("listed under %q but parent is %q", id, child.ParentID)})
			}
		}
		if n.Type == preset.NodeField {
			if n.FieldID == "" {
				issues = append(issues, Issue{Kind: IssueNoFieldID, NodeID: id, Detail: "field node has no field id"})
			} else if _, ok := p.Fields[n.FieldID]; !ok {
				issues = append(issues, Issue{Kind: IssueMissingField, NodeID: id, Detail: fmt.Sprintf("field %q is not defined", n.FieldID)})
			}
		}
	}

	reachable := make(map[string]bool, len(p.TreeNodes))
	Walk(p, func(n *preset.TreeNode, _ int) bool {
		reachable[n.ID] = true
		return true
	})
	for _, id := range ids {
		if !reachable[id] {
			issues = append(issues, Issue{Kind: IssueUnreachable, NodeID: id, Detail: "not reachable from root"})
		}
	}
	return issues
}
