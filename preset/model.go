package preset

import "sort"

// SchemaVersion is recorded in every saved document. It is informational only.
const SchemaVersion = 1

const (
	DefaultRootID       = "root"
	DefaultBaud         = 115200
	DefaultParity       = "N"
	DefaultStopBits     = 1
	DefaultMonitorSecs  = 3
	DefaultUIMaxPreview = 8
	DefaultUIMaxDynamic = 3
	DefaultUIMaxHelp    = 2
)

type NodeType string

const (
	NodeBranch NodeType = "branch"
	NodeField  NodeType = "field"
)

// TreeNode is one node in the display hierarchy. An empty ParentID marks the
// root; an empty FieldID means the node does not reference a field.
type TreeNode struct {
	ID       string
	Name     string
	Type     NodeType
	ParentID string
	Children []string
	Expanded bool
	FieldID  string
}

// Tags is an unordered set of free-form strings.
type Tags map[string]struct{}

func NewTags(tags ...string) Tags {
	t := make(Tags, len(tags))
	for _, tag := range tags {
		t[tag] = struct{}{}
	}
	return t
}

func (t Tags) Add(tag string) { t[tag] = struct{}{} }

func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Sorted returns the tags in ordinal order. Never nil.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// FieldDef is a labeled data channel extracted from the serial stream.
type FieldDef struct {
	ID          string
	Label       string
	Tags        Tags
	OriginIndex *int // raw column this field derives from, nil if unmapped
}

// Preview is the cached output of the most recent render. Advisory only.
type Preview struct {
	LabelLine string `json:"label_line" yaml:"label_line"`
	DataLine  string `json:"data_line" yaml:"data_line"`
}

// Preset is the aggregate root persisted as one document per name.
type Preset struct {
	Name string

	// Passed through to the serial monitor unvalidated.
	Device      string
	Baud        int
	Parity      string
	StopBits    int
	MonitorSecs int

	UIMaxPreview int
	UIMaxDynamic int
	UIMaxHelp    int

	TreeNodes   map[string]*TreeNode
	Fields      map[string]*FieldDef
	RootID      string
	LastPreview *Preview
}

// New returns a preset with default settings and an empty tree. It does not
// synthesize a root node; Storage does that.
func New(name string) *Preset {
	return &Preset{
		Name:         name,
		Baud:         DefaultBaud,
		Parity:       DefaultParity,
		StopBits:     DefaultStopBits,
		MonitorSecs:  DefaultMonitorSecs,
		UIMaxPreview: DefaultUIMaxPreview,
		UIMaxDynamic: DefaultUIMaxDynamic,
		UIMaxHelp:    DefaultUIMaxHelp,
		TreeNodes:    make(map[string]*TreeNode),
		Fields:       make(map[string]*FieldDef),
		RootID:       DefaultRootID,
	}
}

// NewRoot returns the canonical root branch for id.
func NewRoot(id string) *TreeNode {
	return &TreeNode{
		ID:       id,
		Name:     "Root",
		Type:     NodeBranch,
		Children: []string{},
		Expanded: true,
	}
}

// Root returns the root node, or nil if the tree does not contain it.
func (p *Preset) Root() *TreeNode {
	return p.TreeNodes[p.RootID]
}
