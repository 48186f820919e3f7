package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedDocument is returned when a stored preset cannot be parsed, or a
// node lacks a field that has no sensible default.
var ErrMalformedDocument = errors.New("malformed preset document")

// Document is the on-disk shape of a preset. Optional values are pointers so
// that absent ones serialize as null.
type Document struct {
	Schema       int                      `json:"schema" yaml:"schema"`
	Name         string                   `json:"name" yaml:"name"`
	Device       string                   `json:"device" yaml:"device"`
	Baud         int                      `json:"baud" yaml:"baud"`
	Parity       string                   `json:"parity" yaml:"parity"`
	StopBits     int                      `json:"stopbits" yaml:"stopbits"`
	MonitorSecs  int                      `json:"monitor_secs" yaml:"monitor_secs"`
	UIMaxPreview int                      `json:"ui_max_preview" yaml:"ui_max_preview"`
	UIMaxDynamic int                      `json:"ui_max_dynamic" yaml:"ui_max_dynamic"`
	UIMaxHelp    int                      `json:"ui_max_help" yaml:"ui_max_help"`
	RootID       string                   `json:"root_id" yaml:"root_id"`
	LastPreview  *Preview                 `json:"last_preview" yaml:"last_preview"`
	TreeNodes    map[string]NodeDocument  `json:"tree_nodes" yaml:"tree_nodes"`
	Fields       map[string]FieldDocument `json:"fields" yaml:"fields"`
}

type NodeDocument struct {
	Name     string   `json:"name" yaml:"name"`
	Type     NodeType `json:"type" yaml:"type"`
	ParentID *string  `json:"parent_id" yaml:"parent_id"`
	Children []string `json:"children" yaml:"children"`
	Expanded bool     `json:"expanded" yaml:"expanded"`
	FieldID  *string  `json:"field_id" yaml:"field_id"`
}

type FieldDocument struct {
	Label       string   `json:"label" yaml:"label"`
	Tags        []string `json:"tags" yaml:"tags"`
	OriginIndex *int     `json:"origin_index" yaml:"origin_index"`
}

// ToDocument converts p to its serialized form. Tags are emitted sorted.
func ToDocument(p *Preset) *Document {
	doc := &Document{
		Schema:       SchemaVersion,
		Name:         p.Name,
		Device:       p.Device,
		Baud:         p.Baud,
		Parity:       p.Parity,
		StopBits:     p.StopBits,
		MonitorSecs:  p.MonitorSecs,
		UIMaxPreview: p.UIMaxPreview,
		UIMaxDynamic: p.UIMaxDynamic,
		UIMaxHelp:    p.UIMaxHelp,
		RootID:       p.RootID,
		TreeNodes:    make(map[string]NodeDocument, len(p.TreeNodes)),
		Fields:       make(map[string]FieldDocument, len(p.Fields)),
	}
	if p.LastPreview != nil {
		lp := *p.LastPreview
		doc.LastPreview = &lp
	}
	for id, n := range p.TreeNodes {
		children := make([]string, len(n.Children))
		copy(children, n.Children)
		doc.TreeNodes[id] = NodeDocument{
			Name:     n.Name,
			Type:     n.Type,
			ParentID: optional(n.ParentID),
			Children: children,
			Expanded: n.Expanded,
			FieldID:  optional(n.FieldID),
		}
	}
	for id, f := range p.Fields {
		fd := FieldDocument{Label: f.Label, Tags: f.Tags.Sorted()}
		if f.OriginIndex != nil {
			idx := *f.OriginIndex
			fd.OriginIndex = &idx
		}
		doc.Fields[id] = fd
	}
	return doc
}

// Marshal encodes p as indented JSON.
func Marshal(p *Preset) ([]byte, error) {
	return json.MarshalIndent(ToDocument(p), "", "  ")
}

// Unmarshal decodes a stored document tolerantly: absent keys and keys holding
// a value of the wrong type take their defaults, unknown keys are ignored.
// name is used when the document does not carry one.
func Unmarshal(name string, data []byte) (*Preset, error) {
	p, _, err := decode(name, data)
	return p, err
}

// rawDocument mirrors Document with every value left undecoded.
type rawDocument struct {
	Name         json.RawMessage `json:"name"`
	Device       json.RawMessage `json:"device"`
	Baud         json.RawMessage `json:"baud"`
	Parity       json.RawMessage `json:"parity"`
	StopBits     json.RawMessage `json:"stopbits"`
	MonitorSecs  json.RawMessage `json:"monitor_secs"`
	UIMaxPreview json.RawMessage `json:"ui_max_preview"`
	UIMaxDynamic json.RawMessage `json:"ui_max_dynamic"`
	UIMaxHelp    json.RawMessage `json:"ui_max_help"`
	RootID       json.RawMessage `json:"root_id"`
	LastPreview  json.RawMessage `json:"last_preview"`
	TreeNodes    json.RawMessage `json:"tree_nodes"`
	Fields       json.RawMessage `json:"fields"`
}

type rawNode struct {
	Name     json.RawMessage `json:"name"`
	Type     json.RawMessage `json:"type"`
	ParentID json.RawMessage `json:"parent_id"`
	Children json.RawMessage `json:"children"`
	Expanded json.RawMessage `json:"expanded"`
	FieldID  json.RawMessage `json:"field_id"`
}

type rawFieldDef struct {
	Label       json.RawMessage `json:"label"`
	Tags        json.RawMessage `json:"tags"`
	OriginIndex json.RawMessage `json:"origin_index"`
}

// decode reports whether the root node had to be synthesized.
func decode(name string, data []byte) (*Preset, bool, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	p := New(stringOr(raw.Name, name))
	p.Device = stringOr(raw.Device, p.Device)
	p.Baud = intOr(raw.Baud, p.Baud)
	p.Parity = stringOr(raw.Parity, p.Parity)
	p.StopBits = intOr(raw.StopBits, p.StopBits)
	p.MonitorSecs = intOr(raw.MonitorSecs, p.MonitorSecs)
	p.UIMaxPreview = intOr(raw.UIMaxPreview, p.UIMaxPreview)
	p.UIMaxDynamic = intOr(raw.UIMaxDynamic, p.UIMaxDynamic)
	p.UIMaxHelp = intOr(raw.UIMaxHelp, p.UIMaxHelp)
	p.RootID = stringOr(raw.RootID, p.RootID)
	p.LastPreview = decodePreview(raw.LastPreview)

	for id, msg := range objectOf(raw.TreeNodes) {
		var rn rawNode
		_ = json.Unmarshal(msg, &rn)
		nodeName, okName := stringOf(rn.Name)
		nodeType, okType := stringOf(rn.Type)
		if !okName || !okType {
			return nil, false, fmt.Errorf("%w: node %q: name and type are required", ErrMalformedDocument, id)
		}
		expanded := true
		if b, ok := boolOf(rn.Expanded); ok {
			expanded = b
		}
		p.TreeNodes[id] = &TreeNode{
			ID:       id,
			Name:     nodeName,
			Type:     NodeType(nodeType),
			ParentID: stringOr(rn.ParentID, ""),
			Children: stringsOf(rn.Children),
			Expanded: expanded,
			FieldID:  stringOr(rn.FieldID, ""),
		}
	}

	for id, msg := range objectOf(raw.Fields) {
		var rf rawFieldDef
		_ = json.Unmarshal(msg, &rf)
		f := &FieldDef{ID: id, Label: stringOr(rf.Label, id), Tags: decodeTags(rf.Tags)}
		if idx, ok := intOf(rf.OriginIndex); ok {
			f.OriginIndex = &idx
		}
		p.Fields[id] = f
	}

	synthesized := false
	if _, ok := p.TreeNodes[p.RootID]; !ok {
		p.TreeNodes[p.RootID] = NewRoot(p.RootID)
		synthesized = true
	}
	return p, synthesized, nil
}

// decodeTags accepts a list (non-string members dropped) or a single string.
// Any other shape yields an empty set.
func decodeTags(raw json.RawMessage) Tags {
	tags := NewTags()
	if s, ok := stringOf(raw); ok {
		tags.Add(s)
		return tags
	}
	for _, s := range stringsOf(raw) {
		tags.Add(s)
	}
	return tags
}

// decodePreview returns nil unless raw is an object whose lines are strings.
func decodePreview(raw json.RawMessage) *Preview {
	var lines struct {
		LabelLine json.RawMessage `json:"label_line"`
		DataLine  json.RawMessage `json:"data_line"`
	}
	if !isObject(raw) || json.Unmarshal(raw, &lines) != nil {
		return nil
	}
	label, okLabel := stringOf(lines.LabelLine)
	data, okData := stringOf(lines.DataLine)
	if !okLabel || !okData {
		return nil
	}
	return &Preview{LabelLine: label, DataLine: data}
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// objectOf returns the members of a JSON object. Any other value is empty.
func objectOf(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &m) != nil {
		return nil
	}
	return m
}

func stringOf(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	return s, true
}

func boolOf(raw json.RawMessage) (bool, bool) {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, false
	}
	return b, true
}

// intOf accepts any JSON number with an integral value, so 2.0 reads as 2.
func intOf(raw json.RawMessage) (int, bool) {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// stringsOf keeps the string members of a JSON list. Never returns nil.
func stringsOf(raw json.RawMessage) []string {
	out := []string{}
	var list []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &list) != nil {
		return out
	}
	for _, item := range list {
		if s, ok := stringOf(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringOr(raw json.RawMessage, def string) string {
	if s, ok := stringOf(raw); ok {
		return s
	}
	return def
}

func intOr(raw json.RawMessage, def int) int {
	if i, ok := intOf(raw); ok {
		return i
	}
	return def
}
