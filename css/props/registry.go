// Package props is the shorthand descriptor registry. Every shorthand is data
// (ordered longhands, per longhand defaults, layering) plus a small family
// strategy which parses one layer, supplies shorthand specific defaults and
// proposes recombined text.
package props

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"cssdecl/css/value"
)

// Layer holds components assigned to longhands by a single layer of a shorthand.
type Layer map[string][]value.Component

// family is a strategy shared by structurally similar shorthands.
type family struct {
	// parse assigns components of one layer to a subset of longhands.
	parse func(d *Descriptor, cs []value.Component, last bool) (Layer, error)
	// def returns shorthand's own default for longhand missing from layer.
	def func(d *Descriptor, name string, l Layer) []value.Component
	// recombine proposes shorthand texts for a complete layer, shortest first.
	recombine func(d *Descriptor, l Layer, last bool) [][]value.Component
}

// Descriptor describes a single shorthand property.
type Descriptor struct {
	Name      string
	Longhands []string
	Layered   bool

	// finalOnly longhands of a layered shorthand appear in the last layer only.
	finalOnly map[string]bool
	defaults  map[string][]value.Component
	fam       family
	subs      []*Descriptor
	// system keywords stand alone for values of every longhand.
	system []string
}

var (
	registry = map[string]*Descriptor{}
	ordered  []*Descriptor
)

// Lookup returns shorthand descriptor. Missing entry means name is a longhand
// (or unknown property).
func Lookup(name string) (*Descriptor, bool) {
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// IsShorthand reports whether name is a registered shorthand.
func IsShorthand(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Shorthands returns names of all registered shorthands in natural order.
func Shorthands() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// IsSystemValue reports whether v is a keyword standing for platform defined
// values of every longhand ("font: menu"). Such value cannot be split and is
// kept whole, the same way pending substitutions are.
func (d *Descriptor) IsSystemValue(v value.Value) bool {
	return len(d.system) > 0 && v.Keyword == "" && len(v.Components) == 1 && v.Components[0].IsIdent(d.system...)
}

// Has reports whether longhand belongs to the shorthand.
func (d *Descriptor) Has(longhand string) bool {
	return slices.Contains(d.Longhands, longhand)
}

// SubShorthands returns shorthands whose longhands are a strict subset of d's,
// in registration order.
func (d *Descriptor) SubShorthands() []*Descriptor {
	return d.subs
}

// Default returns shorthand's own default of longhand for a layer where
// nothing else is known.
func (d *Descriptor) Default(longhand string) value.Value {
	return value.FromComponents(d.defaults[longhand])
}

// ErrEmptyLayer is returned for layered shorthands with empty comma separated item.
var ErrEmptyLayer = errors.New("empty layer")

// Expand parses shorthand components into values of every longhand. CSS-wide
// keywords, system values and pending substitutions must be handled by the caller. Either all
// longhands are produced or an error is returned.
func (d *Descriptor) Expand(cs []value.Component) (map[string]value.Value, error) {
	layers := [][]value.Component{cs}
	if d.Layered {
		layers = value.SplitLayers(cs)
	} else if value.ContainsKind(cs, value.Comma) && d.Name != "font" {
		return nil, fmt.Errorf("unexpected ',' in %s", d.Name)
	}

	parsed := make([]Layer, 0, len(layers))
	for i, lcs := range layers {
		if len(lcs) == 0 {
			return nil, fmt.Errorf("%s: %w", d.Name, ErrEmptyLayer)
		}
		l, err := d.parseLayer(lcs, i == len(layers)-1)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, l)
	}

	out := make(map[string]value.Value, len(d.Longhands))
	for _, name := range d.Longhands {
		if d.finalOnly[name] {
			out[name] = value.FromComponents(parsed[len(parsed)-1][name])
			continue
		}
		per := make([][]value.Component, len(parsed))
		for i, l := range parsed {
			per[i] = l[name]
		}
		if err := checkSoleKeywords(name, per); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		out[name] = value.FromComponents(value.JoinLayers(per))
	}
	return out, nil
}

func (d *Descriptor) parseLayer(cs []value.Component, last bool) (Layer, error) {
	l, err := d.fam.parse(d, cs, last)
	if err != nil {
		return nil, err
	}
	for _, name := range d.Longhands {
		if d.finalOnly[name] && !last {
			continue
		}
		if _, ok := l[name]; !ok {
			l[name] = d.fam.def(d, name, l)
		}
	}
	return l, nil
}

// Recombine produces the shortest shorthand value which expands back into
// exactly the given longhand values. It reports false when vals do not hold
// every longhand or no shorthand text can represent them.
func (d *Descriptor) Recombine(vals map[string]value.Value) (value.Value, bool) {
	first, ok := vals[d.Longhands[0]]
	if !ok {
		return value.Value{}, false
	}
	for _, name := range d.Longhands {
		v, ok := vals[name]
		if !ok {
			return value.Value{}, false
		}
		// pending and keyword values only recombine when uniform
		if v.Pending || first.Pending || v.Keyword != "" || first.Keyword != "" {
			if !v.Equal(first) {
				return value.Value{}, false
			}
		}
	}
	if first.Pending || first.Keyword != "" {
		return first, true
	}

	if !d.Layered {
		l := make(Layer, len(d.Longhands))
		for _, name := range d.Longhands {
			l[name] = vals[name].Components
		}
		cs, ok := d.recombineLayer(l, true)
		return value.FromComponents(cs), ok
	}

	count := -1
	split := make(map[string][][]value.Component, len(d.Longhands))
	for _, name := range d.Longhands {
		if d.finalOnly[name] {
			continue
		}
		split[name] = value.SplitLayers(vals[name].Components)
		if count >= 0 && len(split[name]) != count {
			return value.Value{}, false
		}
		count = len(split[name])
	}

	layers := make([][]value.Component, count)
	for i := range count {
		last := i == count-1
		l := make(Layer, len(d.Longhands))
		for _, name := range d.Longhands {
			switch {
			case !d.finalOnly[name]:
				l[name] = split[name][i]
			case last:
				l[name] = vals[name].Components
			}
		}
		cs, ok := d.recombineLayer(l, last)
		if !ok {
			return value.Value{}, false
		}
		layers[i] = cs
	}
	return value.FromComponents(value.JoinLayers(layers)), true
}

// recombineLayer picks the shortest candidate which survives verification,
// earlier candidate wins a tie.
func (d *Descriptor) recombineLayer(l Layer, last bool) ([]value.Component, bool) {
	var (
		best    []value.Component
		bestLen int
	)
	for _, cand := range d.fam.recombine(d, l, last) {
		if len(cand) == 0 {
			continue
		}
		n := len(value.Render(cand, false))
		if best != nil && n >= bestLen {
			continue
		}
		if d.verify(cand, l, last) {
			best, bestLen = cand, n
		}
	}
	return best, best != nil
}

// verify checks that candidate expands back into layer values.
func (d *Descriptor) verify(cand []value.Component, l Layer, last bool) bool {
	got, err := d.parseLayer(cand, last)
	if err != nil {
		return false
	}
	for name, want := range l {
		if !same(got[name], want) {
			return false
		}
	}
	return true
}

func same(a, b []value.Component) bool {
	return value.Render(a, false) == value.Render(b, false)
}

// staticDefault is family default function reading descriptor defaults.
func staticDefault(d *Descriptor, name string, _ Layer) []value.Component {
	return d.defaults[name]
}

func mustTokens(text string) []value.Component {
	cs, err := value.Tokenize(text)
	if err != nil {
		panic(fmt.Sprintf("bad default value %q: %v", text, err))
	}
	return cs
}

// register adds descriptor to the registry. defaults alternate longhand name and default text.
func register(name string, longhands []string, fam family, defaults ...string) *Descriptor {
	d := &Descriptor{
		Name:      name,
		Longhands: longhands,
		fam:       fam,
		defaults:  make(map[string][]value.Component, len(defaults)/2),
		finalOnly: map[string]bool{},
	}
	for i := 0; i+1 < len(defaults); i += 2 {
		d.defaults[defaults[i]] = mustTokens(defaults[i+1])
	}
	registry[name] = d
	ordered = append(ordered, d)
	return d
}

func layered(d *Descriptor, finalOnly ...string) *Descriptor {
	d.Layered = true
	for _, name := range finalOnly {
		d.finalOnly[name] = true
	}
	for _, name := range d.Longhands {
		if !d.finalOnly[name] {
			layeredLonghands[name] = true
		}
	}
	return d
}

// linkSubShorthands is called once all descriptors are registered.
func linkSubShorthands() {
	for _, d := range ordered {
		for _, o := range ordered {
			if o == d || len(o.Longhands) >= len(d.Longhands) {
				continue
			}
			contained := true
			for _, name := range o.Longhands {
				if !d.Has(name) {
					contained = false
					break
				}
			}
			if contained {
				d.subs = append(d.subs, o)
			}
		}
	}
}

func sides(prefix, suffix string) []string {
	out := make([]string, 0, 4)
	for _, side := range [...]string{"top", "right", "bottom", "left"} {
		out = append(out, prefix+side+suffix)
	}
	return out
}

func init() {
	register("margin", sides("margin-", ""), boxFamily)
	register("padding", sides("padding-", ""), boxFamily)
	register("inset", sides("", ""), boxFamily)
	register("border-width", sides("border-", "-width"), boxFamily)
	register("border-style", sides("border-", "-style"), boxFamily)
	register("border-color", sides("border-", "-color"), boxFamily)

	for _, side := range [...]string{"top", "right", "bottom", "left"} {
		names := []string{"border-" + side + "-width", "border-" + side + "-style", "border-" + side + "-color"}
		register("border-"+side, names, unordered(names, names, names[1], nil),
			names[0], "medium", names[1], "none", names[2], "currentcolor")
	}

	borderLonghands := slices.Concat(sides("border-", "-width"), sides("border-", "-style"), sides("border-", "-color"))
	borderDefaults := make([]string, 0, 2*len(borderLonghands))
	for _, name := range borderLonghands {
		def := "medium"
		switch {
		case strings.HasSuffix(name, "-style"):
			def = "none"
		case strings.HasSuffix(name, "-color"):
			def = "currentcolor"
		}
		borderDefaults = append(borderDefaults, name, def)
	}
	register("border", borderLonghands, borderFamily, borderDefaults...)

	register("border-radius", []string{
		"border-top-left-radius", "border-top-right-radius",
		"border-bottom-right-radius", "border-bottom-left-radius",
	}, radiusFamily)

	outline := []string{"outline-width", "outline-style", "outline-color"}
	register("outline", outline, unordered(outline, outline, "outline-style", nil),
		"outline-width", "medium", "outline-style", "none", "outline-color", "currentcolor")

	rule := []string{"column-rule-width", "column-rule-style", "column-rule-color"}
	register("column-rule", rule, unordered(rule, rule, "column-rule-style", nil),
		"column-rule-width", "medium", "column-rule-style", "none", "column-rule-color", "currentcolor")

	columns := []string{"column-width", "column-count"}
	register("columns", columns, unordered(columns, columns, "column-width", nil),
		"column-width", "auto", "column-count", "auto")

	flow := []string{"flex-direction", "flex-wrap"}
	register("flex-flow", flow, unordered(flow, flow, "flex-direction", nil),
		"flex-direction", "row", "flex-wrap", "nowrap")

	register("flex", []string{"flex-grow", "flex-shrink", "flex-basis"}, flexFamily,
		"flex-grow", "1", "flex-shrink", "1", "flex-basis", "0%")

	register("list-style", []string{"list-style-type", "list-style-position", "list-style-image"}, listStyleFamily,
		"list-style-type", "disc", "list-style-position", "outside", "list-style-image", "none")

	decoration := []string{"text-decoration-line", "text-decoration-style", "text-decoration-color"}
	register("text-decoration", decoration, unordered(decoration, decoration, "text-decoration-line", nil),
		"text-decoration-line", "none", "text-decoration-style", "solid", "text-decoration-color", "currentcolor")

	font := register("font", []string{"font-style", "font-variant", "font-weight", "font-stretch",
		"font-size", "line-height", "font-family"}, fontFamilyStrategy,
		"font-style", "normal", "font-variant", "normal", "font-weight", "normal",
		"font-stretch", "normal", "line-height", "normal")
	font.system = systemFonts

	register("gap", []string{"row-gap", "column-gap"}, pairFamily)
	register("overflow", []string{"overflow-x", "overflow-y"}, pairFamily)
	register("place-items", []string{"align-items", "justify-items"}, pairFamily)
	register("place-content", []string{"align-content", "justify-content"}, pairFamily)
	register("place-self", []string{"align-self", "justify-self"}, pairFamily)

	layered(register("background", []string{
		"background-image", "background-position", "background-size", "background-repeat",
		"background-attachment", "background-origin", "background-clip", "background-color",
	}, backgroundFamily,
		"background-image", "none", "background-position", "0% 0%", "background-size", "auto",
		"background-repeat", "repeat", "background-attachment", "scroll", "background-origin", "padding-box",
		"background-clip", "border-box", "background-color", "transparent"), "background-color")

	animation := []string{
		"animation-name", "animation-duration", "animation-timing-function", "animation-delay",
		"animation-iteration-count", "animation-direction", "animation-fill-mode", "animation-play-state",
	}
	animationOrder := []string{
		"animation-duration", "animation-timing-function", "animation-delay", "animation-iteration-count",
		"animation-direction", "animation-fill-mode", "animation-play-state", "animation-name",
	}
	layered(register("animation", animation,
		unordered(animationOrder, animationOrder, "animation-name", map[string]string{"animation-delay": "animation-duration"}),
		"animation-name", "none", "animation-duration", "0s", "animation-timing-function", "ease",
		"animation-delay", "0s", "animation-iteration-count", "1", "animation-direction", "normal",
		"animation-fill-mode", "none", "animation-play-state", "running"))

	transition := []string{"transition-property", "transition-duration", "transition-timing-function", "transition-delay"}
	transitionParse := []string{"transition-duration", "transition-timing-function", "transition-delay", "transition-property"}
	layered(register("transition", transition,
		unordered(transitionParse, transition, "transition-property", map[string]string{"transition-delay": "transition-duration"}),
		"transition-property", "all", "transition-duration", "0s", "transition-timing-function", "ease",
		"transition-delay", "0s"))

	linkSubShorthands()
}
