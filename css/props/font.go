package props

import (
	"fmt"

	"cssdecl/css/value"
)

var fontPrefix = []string{"font-style", "font-variant", "font-weight", "font-stretch"}

// systemFonts set every font longhand to whatever the platform uses.
var systemFonts = []string{"caption", "icon", "menu", "message-box", "small-caption", "status-bar"}

// fontFamilyStrategy parses "[style || variant || weight || stretch]? size [/ line-height]? family".
var fontFamilyStrategy = family{
	parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
		l := make(Layer, len(d.Longhands))
		i, prefix := 0, 0
	next:
		for i < len(cs) && prefix < len(fontPrefix) {
			if cs[i].IsIdent("normal") {
				i++
				prefix++
				continue
			}
			// percentage here is always font size
			if cs[i].Kind == value.Percentage {
				break
			}
			for _, name := range fontPrefix {
				if l[name] != nil {
					continue
				}
				if n := match(name, cs[i:]); n > 0 {
					l[name] = cs[i : i+n]
					i += n
					prefix++
					continue next
				}
			}
			break
		}

		n := match("font-size", cs[i:])
		if n == 0 {
			return nil, fmt.Errorf("font size is required in %s", d.Name)
		}
		l["font-size"] = cs[i : i+n]
		i += n

		if i < len(cs) && cs[i].Kind == value.Slash {
			i++
			n = match("line-height", cs[i:])
			if n == 0 {
				return nil, fmt.Errorf("missing line height after '/' in %s", d.Name)
			}
			l["line-height"] = cs[i : i+n]
			i += n
		}

		if i == len(cs) {
			return nil, fmt.Errorf("font family is required in %s", d.Name)
		}
		if !matchesAll("font-family", cs[i:]) {
			return nil, errUnexpected(d, cs[i])
		}
		l["font-family"] = cs[i:]
		return l, nil
	},
	def: staticDefault,
	recombine: func(d *Descriptor, l Layer, _ bool) [][]value.Component {
		var minimal, full []value.Component
		for _, name := range fontPrefix {
			if !same(l[name], d.defaults[name]) {
				minimal = append(minimal, l[name]...)
			}
			full = append(full, l[name]...)
		}
		tail := l["font-size"]
		if !same(l["line-height"], d.defaults["line-height"]) {
			tail = append(append(tail[:len(tail):len(tail)], value.Component{Kind: value.Slash, Text: "/"}), l["line-height"]...)
		}
		tail = append(tail[:len(tail):len(tail)], l["font-family"]...)
		return [][]value.Component{append(minimal, tail...), append(full, tail...)}
	},
}

// flexFamily handles "none | [grow shrink? || basis]".
var flexFamily = family{
	parse: func(d *Descriptor, cs []value.Component, _ bool) (Layer, error) {
		if len(cs) == 1 {
			switch {
			case cs[0].IsIdent("none"):
				return flexLayer("0", "0", "auto"), nil
			case cs[0].IsIdent("auto"):
				return flexLayer("1", "1", "auto"), nil
			}
		}
		if len(cs) > 3 {
			return nil, fmt.Errorf("%s takes at most 3 values, got %d", d.Name, len(cs))
		}

		l := make(Layer, 3)
		factors := 0
		lastFactor := false
		for _, c := range cs {
			one := []value.Component{c}
			switch {
			case c.Kind == value.Number && factors < 2 && (factors == 0 || lastFactor) && c.IsNonNegativeNumber():
				l[d.Longhands[factors]] = one
				factors++
				lastFactor = true
				continue
			case l["flex-basis"] == nil && matchesAll("flex-basis", one):
				l["flex-basis"] = one
			default:
				return nil, errUnexpected(d, c)
			}
			lastFactor = false
		}
		return l, nil
	},
	def: staticDefault,
	recombine: func(_ *Descriptor, l Layer, _ bool) [][]value.Component {
		g, s, b := l["flex-grow"], l["flex-shrink"], l["flex-basis"]
		join := func(parts ...[]value.Component) []value.Component {
			var out []value.Component
			for _, p := range parts {
				out = append(out, p...)
			}
			return out
		}
		return [][]value.Component{
			{{Kind: value.Ident, Text: "none"}},
			{{Kind: value.Ident, Text: "auto"}},
			join(g),
			join(b),
			join(g, s),
			join(g, b),
			join(g, s, b),
		}
	},
}

func flexLayer(grow, shrink, basis string) Layer {
	return Layer{
		"flex-grow":   mustTokens(grow),
		"flex-shrink": mustTokens(shrink),
		"flex-basis":  mustTokens(basis),
	}
}
