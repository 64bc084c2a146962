package compound

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseList decodes a serialized list literal such as ['C00022', 'C00024'].
//
// It never fails: anything that is not a flat list of scalars (empty cell,
// nan, a mapping, nested lists, broken quoting) yields an empty set.
func ParseList(text string) Set {
	s := strings.TrimSpace(text)
	if len(s) < 2 {
		return Set{}
	}
	// tuples decode the same way as lists
	if s[0] == '(' && s[len(s)-1] == ')' {
		s = "[" + s[1:len(s)-1] + "]"
	}
	if s[0] != '[' || s[len(s)-1] != ']' {
		return Set{}
	}
	s, ok := requote(s)
	if !ok {
		return Set{}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return Set{}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return Set{}
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return Set{}
	}
	out := make(Set, len(seq.Content))
	for _, item := range seq.Content {
		// bare words are not string literals
		if item.Kind != yaml.ScalarNode || item.Style != yaml.DoubleQuotedStyle {
			return Set{}
		}
		out.Add(item.Value)
	}
	return out
}

// requote rewrites every quoted string in s, with its backslash escapes
// resolved, as a double-quoted flow scalar. Text outside strings is copied
// unchanged. An unterminated string reports false.
func requote(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		q := s[i]
		if q != '\'' && q != '"' {
			b.WriteByte(q)
			continue
		}
		var val strings.Builder
		closed := false
		for i++; i < len(s); i++ {
			c := s[i]
			if c == q {
				closed = true
				break
			}
			if c != '\\' || i+1 == len(s) {
				val.WriteByte(c)
				continue
			}
			i++
			switch s[i] {
			case '\\', '\'', '"':
				val.WriteByte(s[i])
			case 'n':
				val.WriteByte('\n')
			case 't':
				val.WriteByte('\t')
			case 'r':
				val.WriteByte('\r')
			default:
				// unknown escapes keep their backslash
				val.WriteByte('\\')
				val.WriteByte(s[i])
			}
		}
		if !closed {
			return "", false
		}
		b.WriteString(strconv.Quote(val.String()))
	}
	return b.String(), true
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// FormatList renders ids in the same literal form ParseList accepts.
func FormatList(ids []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(quoteEscaper.Replace(id))
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}
