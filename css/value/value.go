// Package value turns raw CSS property value text into component values that the
// shorthand machinery can classify, and renders them back in canonical and
// minified form.
package value

import (
	"strings"
)

// Kind is the type of a single component value.
type Kind int

const (
	Ident Kind = iota
	Number
	Percentage
	Dimension
	Hash
	String
	URL
	Function
	Block
	Comma
	Slash
	Delim
	Other
)

var kindNames = [...]string{
	Ident:      "ident",
	Number:     "number",
	Percentage: "percentage",
	Dimension:  "dimension",
	Hash:       "hash",
	String:     "string",
	URL:        "url",
	Function:   "function",
	Block:      "block",
	Comma:      "comma",
	Slash:      "slash",
	Delim:      "delim",
	Other:      "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Component is one component value. For functions Text is the function name
// (without the parenthesis) and Args holds the arguments, for blocks Text is the
// opening bracket.
type Component struct {
	Kind Kind
	Text string
	Args []Component
}

// CSS-wide keywords, applicable to every property.
const (
	KeywordInherit = "inherit"
	KeywordInitial = "initial"
	KeywordUnset   = "unset"
	KeywordRevert  = "revert"
)

// Value is a parsed property value.
type Value struct {
	Components []Component
	// Keyword is set (lower case) when the whole value is a CSS-wide keyword.
	Keyword string
	// Pending marks values containing var() or similar references which cannot
	// be resolved at declaration time.
	Pending bool
	// Hack is set when a legacy hack suffix was dropped in lenient mode.
	Hack bool
}

// IsZero reports whether value is empty.
func (v Value) IsZero() bool {
	return len(v.Components) == 0 && v.Keyword == ""
}

// String returns canonical text of the value.
func (v Value) String() string {
	if v.Keyword != "" {
		return v.Keyword
	}
	return Render(v.Components, false)
}

// Minified returns minified text of the value.
func (v Value) Minified() string {
	if v.Keyword != "" {
		return v.Keyword
	}
	return Render(v.Components, true)
}

// Equal reports whether both values serialize identically and carry the same markers.
func (v Value) Equal(o Value) bool {
	return v.Pending == o.Pending && v.Keyword == o.Keyword && v.String() == o.String()
}

// FromComponents makes a value out of already parsed components.
func FromComponents(cs []Component) Value {
	return Value{Components: cs}
}

// KeywordValue makes a CSS-wide keyword value.
func KeywordValue(kw string) Value {
	kw = strings.ToLower(kw)
	return Value{Keyword: kw, Components: []Component{{Kind: Ident, Text: kw}}}
}

// Render writes components back to text.
func Render(cs []Component, minify bool) string {
	var sb strings.Builder
	render(&sb, cs, minify)
	return sb.String()
}

func render(sb *strings.Builder, cs []Component, minify bool) {
	for i, c := range cs {
		if i > 0 {
			prev := cs[i-1]
			switch {
			case c.Kind == Comma:
			case prev.Kind == Comma, c.Kind == Slash, prev.Kind == Slash:
				if !minify {
					sb.WriteByte(' ')
				}
			default:
				sb.WriteByte(' ')
			}
		}
		renderOne(sb, c, minify)
	}
}

func renderOne(sb *strings.Builder, c Component, minify bool) {
	switch c.Kind {
	case Function:
		sb.WriteString(c.Text)
		sb.WriteByte('(')
		render(sb, c.Args, minify)
		sb.WriteByte(')')
	case Block:
		sb.WriteString(c.Text)
		render(sb, c.Args, minify)
		sb.WriteString(closing(c.Text))
	case Comma:
		sb.WriteByte(',')
	case Slash:
		sb.WriteByte('/')
	case Number, Percentage, Dimension:
		if minify {
			sb.WriteString(trimLeadingZero(c.Text))
		} else {
			sb.WriteString(c.Text)
		}
	default:
		sb.WriteString(c.Text)
	}
}

func closing(open string) string {
	if open == "[" {
		return "]"
	}
	return ")"
}

// trimLeadingZero elides the integer zero of fractional numbers: 0.5 -> .5,
// -0.25em -> -.25em.
func trimLeadingZero(s string) string {
	sign := ""
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	if len(s) > 2 && s[0] == '0' && s[1] == '.' {
		s = s[1:]
	}
	return sign + s
}

// SplitLayers splits components on top level commas. Commas nested in
// functions or blocks never split since they are not top level components.
func SplitLayers(cs []Component) [][]Component {
	layers := [][]Component{nil}
	for _, c := range cs {
		if c.Kind == Comma {
			layers = append(layers, nil)
			continue
		}
		layers[len(layers)-1] = append(layers[len(layers)-1], c)
	}
	return layers
}

// JoinLayers is the reverse of SplitLayers.
func JoinLayers(layers [][]Component) []Component {
	var out []Component
	for i, l := range layers {
		if i > 0 {
			out = append(out, Component{Kind: Comma, Text: ","})
		}
		out = append(out, l...)
	}
	return out
}

// ContainsKind reports whether any top level component has kind k.
func ContainsKind(cs []Component, k Kind) bool {
	for _, c := range cs {
		if c.Kind == k {
			return true
		}
	}
	return false
}
