package props

import (
	"fmt"

	"cssdecl/css/value"
)

const (
	bgImage      = "background-image"
	bgPosition   = "background-position"
	bgSizeName   = "background-size"
	bgRepeatName = "background-repeat"
	bgAttachment = "background-attachment"
	bgOrigin     = "background-origin"
	bgClip       = "background-clip"
	bgColor      = "background-color"
)

// backgroundFamily parses a single background layer. Color is only allowed
// in the final layer, a single box keyword sets both origin and clip.
var backgroundFamily = family{
	parse: func(d *Descriptor, cs []value.Component, last bool) (Layer, error) {
		l := make(Layer, len(d.Longhands))
		var boxes [][]value.Component
		for i := 0; i < len(cs); {
			rest := cs[i:]
			if n := match(bgPosition, rest); n > 0 && l[bgPosition] == nil {
				l[bgPosition] = rest[:n]
				i += n
				if i < len(cs) && cs[i].Kind == value.Slash {
					i++
					m := match(bgSizeName, cs[i:])
					if m == 0 {
						return nil, fmt.Errorf("missing size after '/' in %s", d.Name)
					}
					l[bgSizeName] = cs[i : i+m]
					i += m
				}
				continue
			}

			n := 0
			for _, slot := range [...]string{bgImage, bgRepeatName, bgAttachment} {
				if l[slot] != nil {
					continue
				}
				if n = match(slot, rest); n > 0 {
					l[slot] = rest[:n]
					break
				}
			}
			if n == 0 {
				switch {
				case len(boxes) == 0 && match(bgOrigin, rest) == 1,
					len(boxes) == 1 && match(bgClip, rest) == 1:
					boxes = append(boxes, rest[:1])
					n = 1
				case l[bgColor] == nil && match(bgColor, rest) == 1:
					if !last {
						return nil, fmt.Errorf("color is only allowed in the final layer of %s", d.Name)
					}
					l[bgColor] = rest[:1]
					n = 1
				default:
					return nil, errUnexpected(d, rest[0])
				}
			}
			i += n
		}

		switch len(boxes) {
		case 1:
			l[bgOrigin], l[bgClip] = boxes[0], boxes[0]
		case 2:
			l[bgOrigin], l[bgClip] = boxes[0], boxes[1]
		}
		return l, nil
	},
	def: staticDefault,
	recombine: func(d *Descriptor, l Layer, last bool) [][]value.Component {
		var minimal, full []value.Component
		emit := func(slot string, force bool) {
			full = append(full, l[slot]...)
			if force || !same(l[slot], d.defaults[slot]) {
				minimal = append(minimal, l[slot]...)
			}
		}

		emit(bgImage, false)
		sized := !same(l[bgSizeName], d.defaults[bgSizeName])
		emit(bgPosition, sized)
		slash := value.Component{Kind: value.Slash, Text: "/"}
		full = append(full, slash)
		full = append(full, l[bgSizeName]...)
		if sized {
			minimal = append(minimal, slash)
			minimal = append(minimal, l[bgSizeName]...)
		}
		emit(bgRepeatName, false)
		emit(bgAttachment, false)

		full = append(full, l[bgOrigin]...)
		full = append(full, l[bgClip]...)
		switch {
		case same(l[bgOrigin], l[bgClip]):
			minimal = append(minimal, l[bgOrigin]...)
		case !same(l[bgOrigin], d.defaults[bgOrigin]) || !same(l[bgClip], d.defaults[bgClip]):
			minimal = append(minimal, l[bgOrigin]...)
			minimal = append(minimal, l[bgClip]...)
		}

		if last {
			emit(bgColor, false)
		}
		if len(minimal) == 0 {
			minimal = []value.Component{{Kind: value.Ident, Text: "none"}}
		}
		return [][]value.Component{minimal, full}
	},
}
