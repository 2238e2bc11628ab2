package tape

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fields maps directive characters to their rendered values. The engine
// fills b, s, t, h, and a literal % entry.
type Fields map[rune]string

// Template is an output format split around the hint directive. The
// right segment starts at the whitespace run before the first %h so the
// hint and its padding can be withheld together.
type Template struct {
	left  string
	right string
}

// ParseTemplate splits a format string at the first %h. Without a %h
// the whole format is the left segment and hints are never rendered.
func ParseTemplate(format string) Template {
	i := strings.Index(format, "%h")
	if i < 0 {
		return Template{left: format}
	}
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(format[:i])
		if !unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	return Template{left: format[:i], right: format[i:]}
}

// ExpandLeft renders the left segment.
func (t Template) ExpandLeft(fields Fields) string {
	return expand(t.left, fields)
}

// ExpandRight renders the right segment with trailing whitespace
// removed.
func (t Template) ExpandRight(fields Fields) string {
	return strings.TrimRightFunc(expand(t.right, fields), unicode.IsSpace)
}

// expand substitutes %x directives from fields. Unknown directives
// render as nothing, a trailing lone % stays literal, and a directive
// never spans a line break.
func expand(format string, fields Fields) string {
	var b strings.Builder
	b.Grow(len(format))
	for i := 0; i < len(format); {
		r, size := utf8.DecodeRuneInString(format[i:])
		i += size
		if r != '%' || i >= len(format) {
			b.WriteRune(r)
			continue
		}
		d, dsize := utf8.DecodeRuneInString(format[i:])
		if d == '\n' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(fields[d])
		i += dsize
	}
	return b.String()
}
