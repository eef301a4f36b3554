package resolver

import (
	"strings"

	"github.com/aymerick/douceur/parser"
)

// Declaration is one `property: value` pair of an inline style attribute.
type Declaration struct {
	// Property is lower-cased.
	Property string
	// Value is the parsed value without any !important flag.
	Value string
	// start and end bound the raw value text inside the style string.
	start, end int
}

// ParseStyle splits an inline style attribute into its declarations. The
// last declaration does not need a trailing ';'. Declarations that do not
// parse are skipped.
func ParseStyle(style string) []Declaration {
	var out []Declaration
	for _, seg := range splitDeclarations(style) {
		text := style[seg[0]:seg[1]]
		colon := strings.IndexByte(text, ':')
		if colon < 0 || strings.TrimSpace(text) == "" {
			continue
		}
		decls, err := parser.ParseDeclarations(text + ";")
		if err != nil || len(decls) == 0 {
			continue
		}
		out = append(out, Declaration{
			Property: strings.ToLower(strings.TrimSpace(decls[0].Property)),
			Value:    strings.TrimSpace(decls[0].Value),
			start:    seg[0] + colon + 1,
			end:      seg[1],
		})
	}
	return out
}

// Raw returns the value exactly as written in style.
func (d Declaration) Raw(style string) string { return style[d.start:d.end] }

// Replace returns style with this declaration's value swapped for value.
// Every other byte of style is kept.
func (d Declaration) Replace(style, value string) string {
	return style[:d.start] + value + style[d.end:]
}

// splitDeclarations returns [start, end) offsets of the ';'-separated parts
// of style, ignoring separators inside quotes or parentheses so data URIs
// such as url('data:image/png;base64,...') stay whole.
func splitDeclarations(style string) [][2]int {
	var (
		parts [][2]int
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(style); i++ {
		c := style[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ';' && depth == 0:
			parts = append(parts, [2]int{start, i})
			start = i + 1
		}
	}
	if start < len(style) {
		parts = append(parts, [2]int{start, len(style)})
	}
	return parts
}
