package iso8211

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// FieldDescription is one data descriptive field of the DDR.
//
// Reference: ISO/IEC 8211 §6.4, S-57 Part 3 §7.2.2.1 (31Main.pdf p3.32)
type FieldDescription struct {
	Tag            string
	Controls       string   // Field controls, e.g. "1600;&   "
	Name           string   // Field name, e.g. "Feature record identifier field"
	Labels         []string // Subfield labels in order
	Repeating      bool     // Labels were prefixed with '*'
	FormatControls string   // Raw format controls, e.g. "(b11,b14,2b11)"
	Formats        []Format // Expanded format controls; nil when unparsable
}

// Format is one expanded format control.
type Format struct {
	Type   byte // 'A', 'I', 'R', 'B' or 'b'
	Binary byte // For 'b': '1' unsigned, '2' signed integer
	Width  int  // Bytes (b, B) or characters (A, I, R); 0 means unit-terminated
}

func (f Format) String() string {
	switch {
	case f.Type == 'b':
		return fmt.Sprintf("b%c%d", f.Binary, f.Width)
	case f.Width == 0:
		return string(f.Type)
	case f.Type == 'B':
		return fmt.Sprintf("B(%d)", f.Width*8)
	default:
		return fmt.Sprintf("%c(%d)", f.Type, f.Width)
	}
}

// DDR is the Data Descriptive Record of an exchange file.
type DDR struct {
	Leader Leader
	Fields map[string]*FieldDescription
	Order  []string // Tags in directory order
}

// Field returns the description of a tag.
func (d *DDR) Field(tag string) (*FieldDescription, bool) {
	f, ok := d.Fields[tag]
	return f, ok
}

// ParseDDR decodes the field descriptions of a DDR record.
//
// Each description is read from its own directory entry: field controls,
// then name, labels and format controls separated by unit terminators.
func ParseDDR(rec *Record) (*DDR, error) {
	if !rec.IsDDR() {
		return nil, &FormatError{Offset: rec.Offset + 6, Reason: fmt.Sprintf("first record has leader identifier %q, want DDR", rec.Leader.LeaderIdentifier)}
	}

	ddr := &DDR{
		Leader: *rec.Leader,
		Fields: make(map[string]*FieldDescription, len(rec.Entries)),
	}
	ctrlLen := rec.Leader.FieldControlLength

	for _, e := range rec.Entries {
		data := rec.Field(e)
		if len(data) < ctrlLen {
			return nil, &FormatError{Offset: rec.FieldOffset(e), Reason: fmt.Sprintf("field description %s shorter than field controls", e.Tag)}
		}

		desc := &FieldDescription{
			Tag:      e.Tag,
			Controls: string(data[:ctrlLen]),
		}
		parts := bytes.SplitN(data[ctrlLen:], []byte{UnitTerminator}, 3)
		desc.Name = string(parts[0])
		if len(parts) > 1 && len(parts[1]) > 0 {
			labels := string(parts[1])
			if strings.HasPrefix(labels, "*") {
				desc.Repeating = true
				labels = labels[1:]
			}
			desc.Labels = strings.Split(labels, "!")
		}
		if len(parts) > 2 {
			desc.FormatControls = string(parts[2])
			if formats, err := ParseFormatControls(desc.FormatControls); err == nil {
				desc.Formats = formats
			}
		}

		ddr.Fields[e.Tag] = desc
		ddr.Order = append(ddr.Order, e.Tag)
	}

	return ddr, nil
}

// ParseFormatControls expands a parenthesized format control string such as
// "(b11,b14,2b11,A(8),3A)" into one Format per subfield. Repeat counts and
// nested groups are expanded in place.
func ParseFormatControls(s string) ([]Format, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("format controls %q not parenthesized", s)
	}
	return parseFormatList(s[1 : len(s)-1])
}

func parseFormatList(s string) ([]Format, error) {
	var out []Format
	for _, item := range splitTopLevel(s) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		i := 0
		for i < len(item) && item[i] >= '0' && item[i] <= '9' {
			i++
		}
		repeat := 1
		if i > 0 {
			repeat, _ = strconv.Atoi(item[:i])
		}
		body := item[i:]

		var group []Format
		if strings.HasPrefix(body, "(") {
			if !strings.HasSuffix(body, ")") {
				return nil, fmt.Errorf("unbalanced group %q", item)
			}
			inner, err := parseFormatList(body[1 : len(body)-1])
			if err != nil {
				return nil, err
			}
			group = inner
		} else {
			f, err := parseFormat(body)
			if err != nil {
				return nil, err
			}
			group = []Format{f}
		}

		for ; repeat > 0; repeat-- {
			out = append(out, group...)
		}
	}
	return out, nil
}

func parseFormat(s string) (Format, error) {
	if s == "" {
		return Format{}, fmt.Errorf("empty format control")
	}
	f := Format{Type: s[0]}
	rest := s[1:]

	switch f.Type {
	case 'b':
		if len(rest) != 2 || rest[0] < '1' || rest[0] > '5' || rest[1] < '1' || rest[1] > '8' {
			return f, fmt.Errorf("binary format %q", s)
		}
		f.Binary = rest[0]
		f.Width = int(rest[1] - '0')
	case 'A', 'I', 'R', 'B':
		if rest == "" {
			return f, nil
		}
		if len(rest) < 3 || rest[0] != '(' || rest[len(rest)-1] != ')' {
			return f, fmt.Errorf("format width %q", s)
		}
		n, err := strconv.Atoi(rest[1 : len(rest)-1])
		if err != nil {
			return f, fmt.Errorf("format width %q: %w", s, err)
		}
		if f.Type == 'B' {
			n /= 8
		}
		f.Width = n
	default:
		return f, fmt.Errorf("unknown format type %q", s)
	}
	return f, nil
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
