// Package decl implements CSS style declaration block: the ordered list of
// longhand assignments behind a style rule or style attribute. Shorthands are
// expanded on the way in and collapsed back into the shortest equivalent text
// on the way out.
package decl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"cssdecl/css/diag"
	"cssdecl/css/props"
	"cssdecl/css/value"
)

// Style is the declaration block API shared by mutable and read-only views.
// Malformed CSS never surfaces as error here, it is reported to diagnostics
// handler instead. Returned errors signal API misuse.
type Style interface {
	CSSText() string
	MinifiedCSSText() string
	SetCSSText(text string) error
	GetPropertyValue(name string) string
	GetPropertyPriority(name string) string
	SetProperty(name, text, priority string) error
	RemoveProperty(name string) (string, error)
	Length() int
	Item(i int) string
}

// ValueParser turns property value text into components.
type ValueParser interface {
	Parse(text string) (value.Value, error)
	Lenient() bool
}

// PriorityImportant is the only non-empty priority.
const PriorityImportant = "important"

// Declaration is a mutable declaration block. It is not safe for concurrent use.
type Declaration struct {
	parser ValueParser
	eh     diag.Handler
	log    *zap.Logger
	store  store
	owner  int
}

// New creates empty declaration block. Parser and diagnostics handler are
// required, when eh is nil problems are discarded.
func New(parser ValueParser, eh diag.Handler, log *zap.Logger) *Declaration {
	if log == nil {
		log = zap.NewNop()
	}
	if eh == nil {
		eh = diag.Discard
	}
	return &Declaration{
		parser: parser,
		eh:     eh,
		log:    log.Named("decl"),
		owner:  -1,
	}
}

// Owner returns index of the rule owning this block in its stylesheet, -1
// for standalone blocks (style attributes).
func (d *Declaration) Owner() int {
	return d.owner
}

// SetOwner records index of the owning rule.
func (d *Declaration) SetOwner(index int) {
	d.owner = index
}

// Parse is a shortcut creating declaration block from text.
func Parse(text string, parser ValueParser, eh diag.Handler, log *zap.Logger) *Declaration {
	d := New(parser, eh, log)
	_ = d.SetCSSText(text)
	return d
}

// CSSText returns canonical text of the block: "name: value; " per declaration.
func (d *Declaration) CSSText() string {
	return serialize(d.store.collapse(false), false)
}

// MinifiedCSSText returns the block without insignificant whitespace:
// "name:value;" per declaration.
func (d *Declaration) MinifiedCSSText() string {
	return serialize(d.store.collapse(true), true)
}

// Property is a single declaration of collapsed block.
type Property struct {
	Name      string
	Value     string
	Important bool
}

// Properties returns collapsed declarations in order, values rendered
// canonically or minified.
func (d *Declaration) Properties(minify bool) []Property {
	ds := d.store.collapse(minify)
	out := make([]Property, 0, len(ds))
	for _, x := range ds {
		v := x.val.String()
		if minify {
			v = x.val.Minified()
		}
		out = append(out, Property{Name: x.name, Value: v, Important: x.important})
	}
	return out
}

// SetCSSText replaces content of the block with declarations parsed from text.
func (d *Declaration) SetCSSText(text string) error {
	d.store.reset()
	d.Read(css.NewParser(parse.NewInputString(text), true))
	return nil
}

// Read consumes declarations from grammar parser appending them to the block
// until end of the enclosing block or input.
func (d *Declaration) Read(p *css.Parser) {
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return
			}
			d.eh.ReportError("", err.Error())

		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			return

		case css.DeclarationGrammar:
			text, important := splitImportant(joinTokens(p.Values()))
			d.set(strings.ToLower(string(data)), text, important)

		case css.CustomPropertyGrammar:
			text, important := splitImportant(joinTokens(p.Values()))
			d.set(string(data), text, important)

		default:
			d.eh.ReportError("", fmt.Sprintf("unexpected %s in declaration list", gt))
		}
	}
}

// joinTokens rebuilds value text from grammar tokens keeping components apart.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	prevWS := true
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken || t.TokenType == css.CommentToken {
			if !prevWS {
				sb.WriteByte(' ')
			}
			prevWS = true
			continue
		}
		if !prevWS {
			sb.WriteByte(' ')
		}
		sb.Write(t.Data)
		prevWS = t.TokenType == css.FunctionToken || t.TokenType == css.LeftParenthesisToken ||
			t.TokenType == css.LeftBracketToken
	}
	return strings.TrimSpace(sb.String())
}

// splitImportant strips trailing "!important" (any case, whitespace allowed
// after the bang).
func splitImportant(text string) (string, bool) {
	text = strings.TrimSpace(text)
	const kw = "important"
	if len(text) < len(kw) || !strings.EqualFold(text[len(text)-len(kw):], kw) {
		return text, false
	}
	rest := strings.TrimRight(text[:len(text)-len(kw)], " \t\r\n\f")
	if !strings.HasSuffix(rest, "!") {
		return text, false
	}
	return strings.TrimSpace(rest[:len(rest)-1]), true
}

// GetPropertyValue returns value of longhand or reconstructed value of
// shorthand. Empty string means property is not set, cannot be represented
// or waits for substitution.
func (d *Declaration) GetPropertyValue(name string) string {
	name = normalizeName(name)
	if sd, ok := props.Lookup(name); ok {
		v, ok := d.shorthandValue(sd)
		if !ok {
			return ""
		}
		return v.String()
	}
	i := d.store.live(name)
	if i < 0 {
		return ""
	}
	e := &d.store.entries[i]
	if e.val.Pending && !e.explicit() {
		return ""
	}
	return e.val.String()
}

func (d *Declaration) shorthandValue(sd *props.Descriptor) (value.Value, bool) {
	vals := make(map[string]value.Value, len(sd.Longhands))
	important, pending := false, false
	for k, name := range sd.Longhands {
		i := d.store.live(name)
		if i < 0 {
			return value.Value{}, false
		}
		e := &d.store.entries[i]
		switch {
		case k == 0:
			important = e.important
		case e.important != important:
			return value.Value{}, false
		}
		if e.val.Pending {
			if e.source != sd.Name {
				return value.Value{}, false
			}
			pending = true
		}
		vals[name] = e.val
	}
	if pending {
		// pending text is only meaningful when it came from this very shorthand
		for _, name := range sd.Longhands[1:] {
			if !vals[name].Equal(vals[sd.Longhands[0]]) {
				return value.Value{}, false
			}
		}
		return vals[sd.Longhands[0]], true
	}
	return sd.Recombine(vals)
}

// GetPropertyPriority returns "important" or empty string. Shorthand is
// important when all its longhands are.
func (d *Declaration) GetPropertyPriority(name string) string {
	name = normalizeName(name)
	names := []string{name}
	if sd, ok := props.Lookup(name); ok {
		names = sd.Longhands
	}
	for _, n := range names {
		i := d.store.live(n)
		if i < 0 || !d.store.entries[i].important {
			return ""
		}
	}
	return PriorityImportant
}

// SetProperty assigns value to property. Empty value removes the property.
func (d *Declaration) SetProperty(name, text, priority string) error {
	name = normalizeName(name)
	var important bool
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "":
	case PriorityImportant:
		important = true
	default:
		d.eh.ReportError(name, fmt.Sprintf("invalid priority %q", priority))
		return nil
	}
	if strings.TrimSpace(text) == "" {
		_, err := d.RemoveProperty(name)
		return err
	}
	d.set(name, strings.TrimSpace(text), important)
	return nil
}

// RemoveProperty removes property and returns its former value. Longhand
// which only came from a shorthand cannot be removed on its own, removing
// explicit longhand brings back value the shorthand gave it.
func (d *Declaration) RemoveProperty(name string) (string, error) {
	name = normalizeName(name)
	if sd, ok := props.Lookup(name); ok {
		removed := d.store.removeSource(sd)
		v, ok := sd.Recombine(removed)
		if !ok {
			return "", nil
		}
		return v.String(), nil
	}
	v, ok := d.store.removeExplicit(name)
	if !ok {
		return "", nil
	}
	return v.String(), nil
}

// Length returns number of longhands set.
func (d *Declaration) Length() int {
	n := 0
	for _, e := range d.store.entries {
		if e.live {
			n++
		}
	}
	return n
}

// Item returns name of i-th longhand in declaration order, empty string when
// out of range.
func (d *Declaration) Item(i int) string {
	if i < 0 {
		return ""
	}
	for _, e := range d.store.entries {
		if !e.live {
			continue
		}
		if i == 0 {
			return e.name
		}
		i--
	}
	return ""
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	return strings.ToLower(name)
}

// set routes single declaration to shorthand expansion or longhand assignment.
func (d *Declaration) set(name, text string, important bool) {
	switch {
	case name == "":
		d.eh.ReportError("", "missing property name")
		return
	case strings.HasPrefix(name, "--"):
		if text == "" {
			d.eh.ReportError(name, "empty custom property value")
			return
		}
		// custom property values are kept verbatim
		d.store.setExplicit(name, value.Value{Components: []value.Component{{Kind: value.Other, Text: text}}}, important)
		return
	case strings.HasPrefix(name, "_"):
		if !d.parser.Lenient() {
			d.eh.ReportError(name, "underscore hack property is not allowed")
			return
		}
		d.eh.ReportWarning(name, "underscore hack property")
	}

	v, err := d.parser.Parse(text)
	if err != nil {
		diag.ReportErr(d.eh, name, err)
		return
	}
	if v.Hack {
		d.eh.ReportWarning(name, "legacy hack suffix dropped")
	}

	if sd, ok := props.Lookup(name); ok {
		d.expand(sd, v, important)
		return
	}
	if err := props.ValidateLonghand(name, v); err != nil {
		diag.ReportErr(d.eh, name, err)
		return
	}
	if !d.store.setExplicit(name, v, important) {
		d.log.Debug("Ignoring normal priority assignment over important one", zap.String("property", name))
	}
}
