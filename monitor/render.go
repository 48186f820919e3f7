package monitor

import (
	"strings"
	"unicode/utf8"

	"splotty-labels/preset"
	"splotty-labels/tree"
)

const (
	missingValue = "-"
	columnGap    = "  "
)

// Split breaks a raw data line into columns. Lines containing a comma,
// semicolon or tab are split on the first of those found, keeping empty
// columns; anything else splits on runs of whitespace.
func Split(line string) []string {
	for _, sep := range []string{",", ";", "\t"} {
		if strings.Contains(line, sep) {
			cols := strings.Split(line, sep)
			for i, c := range cols {
				cols[i] = strings.TrimSpace(c)
			}
			return cols
		}
	}
	return strings.Fields(line)
}

// Render lays out the field nodes of p in display order above the matching
// values from line. At most p.UIMaxPreview fields are shown when it is
// positive.
func Render(p *preset.Preset, line string) preset.Preview {
	cols := Split(line)
	nodes := tree.FieldNodes(p)
	if p.UIMaxPreview > 0 && len(nodes) > p.UIMaxPreview {
		nodes = nodes[:p.UIMaxPreview]
	}

	labels := make([]string, 0, len(nodes))
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		label, value := n.Name, missingValue
		if f, ok := p.Fields[n.FieldID]; ok {
			if f.Label != "" {
				label = f.Label
			}
			if idx := f.OriginIndex; idx != nil && *idx >= 0 && *idx < len(cols) && cols[*idx] != "" {
				value = cols[*idx]
			}
		}
		w := max(utf8.RuneCountInString(label), utf8.RuneCountInString(value))
		labels = append(labels, pad(label, w))
		values = append(values, pad(value, w))
	}

	return preset.Preview{
		LabelLine: strings.TrimRight(strings.Join(labels, columnGap), " "),
		DataLine:  strings.TrimRight(strings.Join(values, columnGap), " "),
	}
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
