package props

import (
	"fmt"
	"slices"

	"cssdecl/css/value"
)

// unordered builds family for shorthands whose components may come in any
// order. Components are offered to free slots in parseOrder, output goes in
// emitOrder. When everything is default the fallback slot alone is written.
// requires maps slot to another slot which has to be written before it so the
// value is not mistaken for the other one (second time is a delay only after
// a duration).
func unordered(parseOrder, emitOrder []string, fallback string, requires map[string]string) family {
	return family{
		parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
			l := make(Layer, len(parseOrder))
			for i := 0; i < len(cs); {
				n := 0
				for _, slot := range parseOrder {
					if _, taken := l[slot]; taken {
						continue
					}
					if dep, ok := requires[slot]; ok {
						if _, done := l[dep]; !done {
							continue
						}
					}
					if n = match(slot, cs[i:]); n > 0 {
						l[slot] = cs[i : i+n]
						break
					}
				}
				if n == 0 {
					return nil, errUnexpected(d, cs[i])
				}
				i += n
			}
			return l, nil
		},
		def: staticDefault,
		recombine: func(d *Descriptor, l Layer, _ bool) [][]value.Component {
			return slotCandidates(d, l, emitOrder, fallback, requires)
		},
	}
}

// slotCandidates proposes texts for unordered shorthands: non default slots
// only, fallback alone and every slot written out.
func slotCandidates(d *Descriptor, l Layer, emitOrder []string, fallback string, requires map[string]string) [][]value.Component {
	write := make(map[string]bool, len(emitOrder))
	for _, slot := range emitOrder {
		if !same(l[slot], d.defaults[slot]) {
			write[slot] = true
		}
	}
	for slot := range write {
		for dep := requires[slot]; dep != ""; dep = requires[dep] {
			write[dep] = true
		}
	}

	var minimal, full []value.Component
	for _, slot := range emitOrder {
		if write[slot] {
			minimal = append(minimal, l[slot]...)
		}
		full = append(full, l[slot]...)
	}
	return [][]value.Component{minimal, slices.Clone(l[fallback]), full}
}

// borderFamily sets the same width, style and color on all four sides.
var borderFamily = family{
	parse: func(d *Descriptor, cs []value.Component, last bool) (Layer, error) {
		top := registry["border-top"]
		tl, err := top.parseLayer(cs, last)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		l := make(Layer, len(d.Longhands))
		for i, part := range [...]string{"width", "style", "color"} {
			for _, name := range sides("border-", "-"+part) {
				l[name] = tl[top.Longhands[i]]
			}
		}
		return l, nil
	},
	def: staticDefault,
	recombine: func(_ *Descriptor, l Layer, last bool) [][]value.Component {
		top := registry["border-top"]
		tl := make(Layer, 3)
		for i, part := range [...]string{"width", "style", "color"} {
			names := sides("border-", "-"+part)
			for _, name := range names[1:] {
				if !same(l[name], l[names[0]]) {
					return nil
				}
			}
			tl[top.Longhands[i]] = l[names[0]]
		}
		return top.fam.recombine(top, tl, last)
	},
}

// listStyleFamily is unordered family with special handling of "none" which
// may stand for either type or image.
var listStyleFamily = family{
	parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
		const (
			typ   = "list-style-type"
			pos   = "list-style-position"
			image = "list-style-image"
		)
		if len(cs) > 3 {
			return nil, fmt.Errorf("%s takes at most 3 values, got %d", d.Name, len(cs))
		}
		l := make(Layer, 3)
		nones := 0
		for _, c := range cs {
			one := []value.Component{c}
			switch {
			case c.IsIdent("none"):
				nones++
				continue
			case l[pos] == nil && matchesAll(pos, one):
				l[pos] = one
			case l[image] == nil && c.IsImage():
				l[image] = one
			case l[typ] == nil && matchesAll(typ, one):
				l[typ] = one
			default:
				return nil, errUnexpected(d, c)
			}
		}

		none := []value.Component{{Kind: value.Ident, Text: "none"}}
		switch nones {
		case 0:
		case 1:
			switch {
			case l[typ] == nil && l[image] == nil:
				l[typ], l[image] = none, none
			case l[image] == nil:
				l[image] = none
			case l[typ] == nil:
				l[typ] = none
			default:
				return nil, fmt.Errorf("too many values in %s", d.Name)
			}
		case 2:
			if l[typ] != nil || l[image] != nil {
				return nil, fmt.Errorf("too many values in %s", d.Name)
			}
			l[typ], l[image] = none, none
		default:
			return nil, fmt.Errorf("too many 'none' values in %s", d.Name)
		}
		return l, nil
	},
	def: staticDefault,
	recombine: func(d *Descriptor, l Layer, _ bool) [][]value.Component {
		return slotCandidates(d, l, []string{"list-style-position", "list-style-image", "list-style-type"}, "list-style-type", nil)
	},
}
