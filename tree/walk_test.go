package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splotty-labels/preset"
	"splotty-labels/tree"
)

func loadDoc(t *testing.T, doc string) *preset.Preset {
	t.Helper()
	p, err := preset.Unmarshal("t", []byte(doc))
	require.NoError(t, err)
	return p
}

func TestWalkDisplayOrder(t *testing.T) {
	p := loadDoc(t, `{"tree_nodes": {
		"root": {"name": "Root", "type": "branch", "children": ["b", "ghost", "a"]},
		"a":    {"name": "A", "type": "field", "parent_id": "root", "field_id": "S1"},
		"b":    {"name": "B", "type": "branch", "parent_id": "root", "children": ["c"]},
		"c":    {"name": "C", "type": "field", "parent_id": "b", "field_id": "S2"}
	}}`)

	var order []string
	var depths []int
	tree.Walk(p, func(n *preset.TreeNode, depth int) bool {
		order = append(order, n.ID)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "b", "c", "a"}, order)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	fields := tree.FieldNodes(p)
	require.Len(t, fields, 2)
	assert.Equal(t, "c", fields[0].ID)
	assert.Equal(t, "a", fields[1].ID)
}

func TestWalkSurvivesCycles(t *testing.T) {
	p := loadDoc(t, `{"tree_nodes": {
		"root": {"name": "Root", "type": "branch", "children": ["a"]},
		"a":    {"name": "A", "type": "branch", "parent_id": "root", "children": ["root", "a"]}
	}}`)
	count := 0
	tree.Walk(p, func(*preset.TreeNode, int) bool {
		count++
		return true
	})
	assert.Equal(t, 2, count)
}

func TestValidateReportsWithoutModifying(t *testing.T) {
	p := loadDoc(t, `{"fields": {"S1": {"label": "ok"}}, "tree_nodes": {
		"root":   {"name": "Root", "type": "branch", "children": ["ghost", "f", "moved"]},
		"f":      {"name": "F", "type": "field", "parent_id": "root", "field_id": "missing"},
		"moved":  {"name": "M", "type": "field", "parent_id": "elsewhere", "field_id": "S1"},
		"orphan": {"name": "O", "type": "field", "parent_id": "root"}
	}}`)
	before := preset.ToDocument(p)

	issues := tree.Validate(p)
	kinds := map[tree.IssueKind][]string{}
	for _, is := range issues {
		kinds[is.Kind] = append(kinds[is.Kind], is.NodeID)
	}
	assert.Equal(t, []string{"root"}, kinds[tree.IssueDanglingChild])
	assert.Equal(t, []string{"f"}, kinds[tree.IssueMissingField])
	assert.Equal(t, []string{"moved"}, kinds[tree.IssueParentMismatch])
	assert.Equal(t, []string{"orphan"}, kinds[tree.IssueUnreachable])
	assert.Equal(t, []string{"orphan"}, kinds[tree.IssueNoFieldID])
	assert.Empty(t, kinds[tree.IssueMissingRoot])

	assert.Equal(t, before, preset.ToDocument(p))
}

func TestValidateCleanTree(t *testing.T) {
	p := newPreset()
	p.Fields["S1"] = &preset.FieldDef{ID: "S1", Label: "S1", Tags: preset.NewTags()}
	b, err := tree.AddBranch(p, "root", "B")
	require.NoError(t, err)
	_, err = tree.AddField(p, b.ID, "S1", "")
	require.NoError(t, err)
	assert.Empty(t, tree.Validate(p))
}

func TestValidateMissingRoot(t *testing.T) {
	p := preset.New("bare")
	issues := tree.Validate(p)
	require.Len(t, issues, 1)
	assert.Equal(t, tree.IssueMissingRoot, issues[0].Kind)
}
