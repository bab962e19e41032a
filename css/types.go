package css

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"cssdecl/css/decl"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MediaQuery represents a parsed @media query condition.
type MediaQuery struct {
	Raw      string         // Original media query string
	Type     string         // Media type (e.g., "screen", "print")
	Negated  bool           // true if "not" modifier was used on main type
	Features []MediaFeature // Additional conditions (e.g., "and (min-width: 600px)")
}

// MediaFeature represents a single media feature condition in a media query.
type MediaFeature struct {
	Name    string // Feature name or parenthesized condition
	Negated bool   // true if "not" modifier was used
}

// Rule is a style rule: selector group and the declaration block it owns.
type Rule struct {
	Selectors []string
	Style     *decl.Declaration
}

// Selector returns selector group as written in output.
func (r *Rule) Selector() string {
	return strings.Join(r.Selectors, ", ")
}

// FontFace is an @font-face rule.
type FontFace struct {
	Style *decl.Declaration
}

// Family returns unquoted font-family descriptor.
func (ff *FontFace) Family() string {
	return unquote(ff.Style.GetPropertyValue("font-family"))
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule, MediaBlock, FontFace, Import or AtRule is non-nil.
type StylesheetItem struct {
	Rule       *Rule       // A plain rule (selector + declarations)
	MediaBlock *MediaBlock // A @media block containing nested rules
	FontFace   *FontFace   // A @font-face declaration
	Import     *string     // An @import URL
	AtRule     *AtRule     // Any other @-rule, kept as written
}

// MediaBlock represents a @media block with its query and nested rules.
type MediaBlock struct {
	Query MediaQuery
	Rules []*Rule
}

// AtRule is an @-rule with no dedicated type (@keyframes, @supports, @page,
// @namespace...). At most one of Items, Style and Raw is set.
type AtRule struct {
	Name    string // lower case, with '@'
	Prelude string

	// Block is false for statements ending with ';'.
	Block bool

	Items []StylesheetItem  // nested rules of rule list blocks
	Style *decl.Declaration // declarations of declaration list blocks
	Raw   string            // content of blocks nothing is known about
}

func (ar *AtRule) header() string {
	if ar.Prelude == "" {
		return ar.Name
	}
	return ar.Name + " " + ar.Prelude
}

// Stylesheet represents a parsed CSS stylesheet. It owns its rules which in
// turn own their declaration blocks.
type Stylesheet struct {
	ID       uuid.UUID
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Warnings for unsupported features
}

// Imports returns all @import URLs from the stylesheet in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.Import != nil {
			urls = append(urls, *item.Import)
		}
	}
	return urls
}

// FontFaces returns all @font-face rules from the stylesheet in source order.
func (s *Stylesheet) FontFaces() []*FontFace {
	var faces []*FontFace
	for _, item := range s.Items {
		if item.FontFace != nil {
			faces = append(faces, item.FontFace)
		}
	}
	return faces
}

// Rules returns all style rules including the ones nested in @media blocks
// and other @-rules, index in the result is the rule index known to its
// declaration block.
func (s *Stylesheet) Rules() []*Rule {
	return collectRules(nil, s.Items)
}

func collectRules(rules []*Rule, items []StylesheetItem) []*Rule {
	for _, item := range items {
		switch {
		case item.Rule != nil:
			rules = append(rules, item.Rule)
		case item.MediaBlock != nil:
			rules = append(rules, item.MediaBlock.Rules...)
		case item.AtRule != nil:
			rules = collectRules(rules, item.AtRule.Items)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules having selector in their group.
func (s *Stylesheet) RulesBySelector(selector string) []*Rule {
	var matches []*Rule
	for _, item := range s.Items {
		if item.Rule == nil {
			continue
		}
		for _, sel := range item.Rule.Selectors {
			if sel == selector {
				matches = append(matches, item.Rule)
				break
			}
		}
	}
	return matches
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Declarations are collapsed into shortest canonical form.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	n, err := writeItems(w, "", s.Items)
	return int64(n), err
}

// writeItems writes items separated by blank lines.
func writeItems(w io.Writer, indent string, items []StylesheetItem) (int, error) {
	var total int
	for i, item := range items {
		var n int
		var err error

		switch {
		case item.Import != nil:
			n, err = fmt.Fprintf(w, "%s@import url(\"%s\");\n", indent, cssEscapeDoubleQuoted(*item.Import))
		case item.FontFace != nil:
			n, err = writeBlock(w, indent, "@font-face", item.FontFace.Style)
		case item.MediaBlock != nil:
			n, err = writeMediaBlock(w, indent, item.MediaBlock)
		case item.AtRule != nil:
			n, err = writeAtRule(w, indent, item.AtRule)
		case item.Rule != nil:
			n, err = writeBlock(w, indent, item.Rule.Selector(), item.Rule.Style)
		}

		total += n
		if err != nil {
			return total, err
		}

		// Add blank line between items (except after last)
		if i < len(items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// Minified returns the stylesheet without insignificant whitespace.
func (s *Stylesheet) Minified() string {
	var sb strings.Builder
	minifyItems(&sb, s.Items)
	return sb.String()
}

func minifyItems(sb *strings.Builder, items []StylesheetItem) {
	for _, item := range items {
		switch {
		case item.Import != nil:
			fmt.Fprintf(sb, "@import url(\"%s\");", cssEscapeDoubleQuoted(*item.Import))
		case item.FontFace != nil:
			sb.WriteString("@font-face{" + item.FontFace.Style.MinifiedCSSText() + "}")
		case item.MediaBlock != nil:
			sb.WriteString("@media " + item.MediaBlock.Query.Raw + "{")
			for _, rule := range item.MediaBlock.Rules {
				sb.WriteString(minifiedSelector(rule) + "{" + rule.Style.MinifiedCSSText() + "}")
			}
			sb.WriteString("}")
		case item.AtRule != nil:
			ar := item.AtRule
			sb.WriteString(ar.header())
			switch {
			case !ar.Block:
				sb.WriteString(";")
			case ar.Style != nil:
				sb.WriteString("{" + ar.Style.MinifiedCSSText() + "}")
			case ar.Items != nil:
				sb.WriteString("{")
				minifyItems(sb, ar.Items)
				sb.WriteString("}")
			default:
				sb.WriteString("{" + ar.Raw + "}")
			}
		case item.Rule != nil:
			sb.WriteString(minifiedSelector(item.Rule) + "{" + item.Rule.Style.MinifiedCSSText() + "}")
		}
	}
}

func minifiedSelector(r *Rule) string {
	return strings.Join(r.Selectors, ",")
}

// writeBlock writes a single rule to w, one declaration per line.
func writeBlock(w io.Writer, indent, prelude string, style *decl.Declaration) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, prelude)
	total += n
	if err != nil {
		return total, err
	}
	for _, p := range style.Properties(false) {
		important := ""
		if p.Important {
			important = " ! important"
		}
		n, err = fmt.Fprintf(w, "%s  %s: %s%s;\n", indent, p.Name, p.Value, important)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// writeMediaBlock writes an @media block to w.
func writeMediaBlock(w io.Writer, indent string, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s@media %s {\n", indent, mb.Query.Raw)
	total += n
	if err != nil {
		return total, err
	}

	for i, rule := range mb.Rules {
		n, err = writeBlock(w, indent+"  ", rule.Selector(), rule.Style)
		total += n
		if err != nil {
			return total, err
		}

		// Blank line between rules in a media block (except after last)
		if i < len(mb.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// writeAtRule writes any other @-rule, raw block content goes out untouched.
func writeAtRule(w io.Writer, indent string, ar *AtRule) (int, error) {
	switch {
	case !ar.Block:
		return fmt.Fprintf(w, "%s%s;\n", indent, ar.header())
	case ar.Style != nil:
		return writeBlock(w, indent, ar.header(), ar.Style)
	case ar.Items == nil:
		if ar.Raw == "" {
			return fmt.Fprintf(w, "%s%s {}\n", indent, ar.header())
		}
		return fmt.Fprintf(w, "%s%s { %s }\n", indent, ar.header(), ar.Raw)
	}

	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, ar.header())
	total += n
	if err != nil {
		return total, err
	}
	n, err = writeItems(w, indent+"  ", ar.Items)
	total += n
	if err != nil {
		return total, err
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}
