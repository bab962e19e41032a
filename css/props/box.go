package props

import (
	"fmt"

	"cssdecl/css/value"
)

// boxFamily handles four sided shorthands taking 1 to 4 values in
// top, right, bottom, left order.
var boxFamily = family{
	parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
		if len(cs) > 4 {
			return nil, fmt.Errorf("%s takes at most 4 values, got %d", d.Name, len(cs))
		}
		for _, c := range cs {
			if match(d.Longhands[0], []value.Component{c}) != 1 {
				return nil, errUnexpected(d, c)
			}
		}
		vals := expandBox(cs)
		l := make(Layer, 4)
		for i, name := range d.Longhands {
			l[name] = []value.Component{vals[i]}
		}
		return l, nil
	},
	def: staticDefault,
	recombine: func(d *Descriptor, l Layer, _ bool) [][]value.Component {
		var sides [4][]value.Component
		for i, name := range d.Longhands {
			if len(l[name]) != 1 {
				return nil
			}
			sides[i] = l[name]
		}
		return [][]value.Component{compressBox(sides)}
	},
}

// expandBox distributes 1 to 4 values over the sides.
func expandBox[T any](vs []T) [4]T {
	switch len(vs) {
	case 1:
		return [4]T{vs[0], vs[0], vs[0], vs[0]}
	case 2:
		return [4]T{vs[0], vs[1], vs[0], vs[1]}
	case 3:
		return [4]T{vs[0], vs[1], vs[2], vs[1]}
	default:
		return [4]T{vs[0], vs[1], vs[2], vs[3]}
	}
}

// compressBox is the reverse of expandBox, it produces the shortest form.
func compressBox(sides [4][]value.Component) []value.Component {
	n := 4
	if same(sides[3], sides[1]) {
		n = 3
		if same(sides[2], sides[0]) {
			n = 2
			if same(sides[1], sides[0]) {
				n = 1
			}
		}
	}
	var out []value.Component
	for _, s := range sides[:n] {
		out = append(out, s...)
	}
	return out
}

// radiusFamily handles border-radius: horizontal radii optionally followed by
// '/' and vertical radii, each in box notation.
var radiusFamily = family{
	parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
		h, v := cs, []value.Component(nil)
		for i, c := range cs {
			if c.Kind == value.Slash {
				h, v = cs[:i], cs[i+1:]
				if len(v) == 0 {
					return nil, fmt.Errorf("missing vertical radius after '/' in %s", d.Name)
				}
				break
			}
		}
		if len(h) == 0 {
			return nil, fmt.Errorf("missing horizontal radius in %s", d.Name)
		}
		if v == nil {
			v = h
		}
		for _, part := range [][]value.Component{h, v} {
			if len(part) > 4 {
				return nil, fmt.Errorf("%s takes at most 4 radii per axis", d.Name)
			}
			for _, c := range part {
				if !c.IsNonNegativeLengthPercentage() {
					return nil, errUnexpected(d, c)
				}
			}
		}
		hs, vs := expandBox(h), expandBox(v)
		l := make(Layer, 4)
		for i, name := range d.Longhands {
			if same([]value.Component{hs[i]}, []value.Component{vs[i]}) {
				l[name] = []value.Component{hs[i]}
			} else {
				l[name] = []value.Component{hs[i], vs[i]}
			}
		}
		return l, nil
	},
	def: staticDefault,
	recombine: func(d *Descriptor, l Layer, _ bool) [][]value.Component {
		var hs, vs [4][]value.Component
		elliptic := false
		for i, name := range d.Longhands {
			cs := l[name]
			switch len(cs) {
			case 1:
				hs[i], vs[i] = cs, cs
			case 2:
				hs[i], vs[i] = cs[:1], cs[1:]
				elliptic = true
			default:
				return nil
			}
		}
		out := compressBox(hs)
		if elliptic {
			out = append(out, value.Component{Kind: value.Slash, Text: "/"})
			out = append(out, compressBox(vs)...)
		}
		return [][]value.Component{out}
	},
}

// pairFamily handles two longhand shorthands where the second value defaults
// to the first one.
var pairFamily = family{
	parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
		first, second := d.Longhands[0], d.Longhands[1]
		n := match(first, cs)
		if n == 0 {
			return nil, errUnexpected(d, cs[0])
		}
		l := Layer{first: cs[:n]}
		rest := cs[n:]
		if len(rest) == 0 {
			if !matchesAll(second, cs) {
				return nil, fmt.Errorf("%q is not valid for %s", value.Render(cs, false), second)
			}
			l[second] = cs
			return l, nil
		}
		if !matchesAll(second, rest) {
			return nil, errUnexpected(d, rest[0])
		}
		l[second] = rest
		return l, nil
	},
	def: staticDefault,
	recombine: func(d *Descriptor, l Layer, _ bool) [][]value.Component {
		first, second := l[d.Longhands[0]], l[d.Longhands[1]]
		both := append(append([]value.Component{}, first...), second...)
		if same(first, second) {
			return [][]value.Component{first, both}
		}
		return [][]value.Component{both}
	},
}
