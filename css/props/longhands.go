package props

import (
	"fmt"
	"strings"

	"cssdecl/css/value"
)

// matcher reports how many leading components form a valid value, 0 when
// there is no match.
type matcher func(cs []value.Component) int

func single(pred func(value.Component) bool) matcher {
	return func(cs []value.Component) int {
		if len(cs) > 0 && pred(cs[0]) {
			return 1
		}
		return 0
	}
}

func keywords(words ...string) matcher {
	return single(func(c value.Component) bool { return c.IsIdent(words...) })
}

func functions(names ...string) matcher {
	return single(func(c value.Component) bool { return c.IsFunction(names...) })
}

// span consumes between minimum and maximum consecutive components accepted by pred.
func span(pred func(value.Component) bool, minimum, maximum int) matcher {
	return func(cs []value.Component) int {
		n := 0
		for n < len(cs) && n < maximum && pred(cs[n]) {
			n++
		}
		if n < minimum {
			return 0
		}
		return n
	}
}

// distinct consumes up to len(words) different keywords from words.
func distinct(words ...string) matcher {
	return func(cs []value.Component) int {
		seen := make(map[string]bool, len(words))
		n := 0
		for n < len(cs) && cs[n].IsIdent(words...) && !seen[cs[n].Lower()] {
			seen[cs[n].Lower()] = true
			n++
		}
		return n
	}
}

func anyOf(ms ...matcher) matcher {
	return func(cs []value.Component) int {
		for _, m := range ms {
			if n := m(cs); n > 0 {
				return n
			}
		}
		return 0
	}
}

var (
	lengthPercentage     = single(value.Component.IsLengthPercentage)
	nonNegLengthPct      = single(value.Component.IsNonNegativeLengthPercentage)
	lengthPercentageAuto = anyOf(keywords("auto"), lengthPercentage)
	lineWidth            = single(value.Component.IsLineWidth)
	lineStyle            = single(value.Component.IsLineStyle)
	color                = single(value.Component.IsColor)
	nonNegNumber         = single(value.Component.IsNonNegativeNumber)
	timeValue            = single(value.Component.IsTime)
	image                = anyOf(keywords("none"), single(value.Component.IsImage))

	radius = span(value.Component.IsNonNegativeLengthPercentage, 1, 2)

	timingFunction = anyOf(
		keywords("ease", "linear", "ease-in", "ease-out", "ease-in-out", "step-start", "step-end"),
		functions("cubic-bezier", "steps", "linear"),
	)

	fontFamily matcher = matchFontFamily

	position = span(func(c value.Component) bool {
		return c.IsIdent("left", "right", "top", "bottom", "center") || c.IsLengthPercentage()
	}, 1, 4)

	bgSize = anyOf(keywords("cover", "contain"), span(func(c value.Component) bool {
		return c.IsIdent("auto") || c.IsNonNegativeLengthPercentage()
	}, 1, 2))

	bgRepeat = anyOf(keywords("repeat-x", "repeat-y"), span(func(c value.Component) bool {
		return c.IsIdent("repeat", "space", "round", "no-repeat")
	}, 1, 2))

	box = keywords("border-box", "padding-box", "content-box")

	selfPosition   = []string{"center", "start", "end", "self-start", "self-end", "flex-start", "flex-end"}
	alignItems     = keywords(append([]string{"normal", "stretch", "baseline"}, selfPosition...)...)
	justifyItems   = keywords(append([]string{"normal", "stretch", "baseline", "left", "right", "legacy"}, selfPosition...)...)
	alignSelf      = keywords(append([]string{"auto", "normal", "stretch", "baseline"}, selfPosition...)...)
	justifySelf    = keywords(append([]string{"auto", "normal", "stretch", "baseline", "left", "right"}, selfPosition...)...)
	contentPos     = []string{"normal", "stretch", "baseline", "center", "start", "end", "flex-start", "flex-end", "space-between", "space-around", "space-evenly"}
	alignContent   = keywords(contentPos...)
	justifyContent = keywords(append([]string{"left", "right"}, contentPos...)...)
	overflow       = keywords("visible", "hidden", "clip", "scroll", "auto")
	gap            = anyOf(keywords("normal"), nonNegLengthPct)
)

func matchFontFamily(cs []value.Component) int {
	n := 0
	for {
		switch {
		case n < len(cs) && cs[n].Kind == value.String:
			n++
		case n < len(cs) && cs[n].Kind == value.Ident:
			for n < len(cs) && cs[n].Kind == value.Ident {
				n++
			}
		default:
			return 0
		}
		if n < len(cs) && cs[n].Kind == value.Comma {
			n++
			continue
		}
		return n
	}
}

// matchFontStyle accepts "normal | italic | oblique <angle>?".
func matchFontStyle(cs []value.Component) int {
	switch {
	case len(cs) == 0:
		return 0
	case cs[0].IsIdent("normal", "italic"):
		return 1
	case cs[0].IsIdent("oblique"):
		if len(cs) > 1 && cs[1].IsAngle() {
			return 2
		}
		return 1
	}
	return 0
}

func fontWeightNumber(c value.Component) bool {
	f, ok := c.Float()
	return ok && c.Kind == value.Number && f >= 1 && f <= 1000
}

// longhandGrammar is the grammar of every longhand the registry knows of.
var longhandGrammar = map[string]matcher{
	"margin-top":    lengthPercentageAuto,
	"margin-right":  lengthPercentageAuto,
	"margin-bottom": lengthPercentageAuto,
	"margin-left":   lengthPercentageAuto,

	"padding-top":    nonNegLengthPct,
	"padding-right":  nonNegLengthPct,
	"padding-bottom": nonNegLengthPct,
	"padding-left":   nonNegLengthPct,

	"top":    lengthPercentageAuto,
	"right":  lengthPercentageAuto,
	"bottom": lengthPercentageAuto,
	"left":   lengthPercentageAuto,

	"border-top-width":    lineWidth,
	"border-right-width":  lineWidth,
	"border-bottom-width": lineWidth,
	"border-left-width":   lineWidth,
	"border-top-style":    lineStyle,
	"border-right-style":  lineStyle,
	"border-bottom-style": lineStyle,
	"border-left-style":   lineStyle,
	"border-top-color":    color,
	"border-right-color":  color,
	"border-bottom-color": color,
	"border-left-color":   color,

	"border-top-left-radius":     radius,
	"border-top-right-radius":    radius,
	"border-bottom-right-radius": radius,
	"border-bottom-left-radius":  radius,

	"outline-width": lineWidth,
	"outline-style": anyOf(keywords("auto"), single(func(c value.Component) bool {
		return c.IsLineStyle() && !c.IsIdent("hidden")
	})),
	"outline-color": anyOf(keywords("invert"), color),

	"column-rule-width": lineWidth,
	"column-rule-style": lineStyle,
	"column-rule-color": color,
	"column-width":      anyOf(keywords("auto"), single(value.Component.IsLength)),
	"column-count": anyOf(keywords("auto"), single(func(c value.Component) bool {
		f, ok := c.Float()
		return c.IsInteger() && (!ok || f >= 1)
	})),

	"list-style-type": anyOf(single(func(c value.Component) bool {
		return c.IsCustomIdent() || c.Kind == value.String
	}), functions("symbols")),
	"list-style-position": keywords("inside", "outside"),
	"list-style-image":    image,

	"font-style":   matchFontStyle,
	"font-variant": keywords("normal", "small-caps"),
	"font-weight":  anyOf(keywords("normal", "bold", "bolder", "lighter"), single(fontWeightNumber)),
	"font-stretch": anyOf(keywords("normal", "ultra-condensed", "extra-condensed", "condensed", "semi-condensed",
		"semi-expanded", "expanded", "extra-expanded", "ultra-expanded"), single(func(c value.Component) bool {
		return c.Kind == value.Percentage
	})),
	"font-size": anyOf(keywords("xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large",
		"xxx-large", "larger", "smaller", "math"), nonNegLengthPct),
	"line-height": anyOf(keywords("normal"), nonNegNumber, nonNegLengthPct),
	"font-family": fontFamily,

	"flex-grow":   nonNegNumber,
	"flex-shrink": nonNegNumber,
	"flex-basis": anyOf(keywords("auto", "content", "max-content", "min-content", "fit-content"),
		nonNegLengthPct),
	"flex-direction": keywords("row", "row-reverse", "column", "column-reverse"),
	"flex-wrap":      keywords("nowrap", "wrap", "wrap-reverse"),

	"text-decoration-line":  anyOf(keywords("none"), distinct("underline", "overline", "line-through", "blink")),
	"text-decoration-style": keywords("solid", "double", "dotted", "dashed", "wavy"),
	"text-decoration-color": color,

	"row-gap":         gap,
	"column-gap":      gap,
	"overflow-x":      overflow,
	"overflow-y":      overflow,
	"align-items":     alignItems,
	"justify-items":   justifyItems,
	"align-content":   alignContent,
	"justify-content": justifyContent,
	"align-self":      alignSelf,
	"justify-self":    justifySelf,

	"background-image":      image,
	"background-position":   position,
	"background-size":       bgSize,
	"background-repeat":     bgRepeat,
	"background-attachment": keywords("scroll", "fixed", "local"),
	"background-origin":     box,
	"background-clip":       anyOf(box, keywords("text")),
	"background-color":      color,

	"animation-name": anyOf(keywords("none"), single(func(c value.Component) bool {
		return c.IsCustomIdent() || c.Kind == value.String
	})),
	"animation-duration":        timeValue,
	"animation-timing-function": timingFunction,
	"animation-delay":           timeValue,
	"animation-iteration-count": anyOf(keywords("infinite"), nonNegNumber),
	"animation-direction":       keywords("normal", "reverse", "alternate", "alternate-reverse"),
	"animation-fill-mode":       keywords("none", "forwards", "backwards", "both"),
	"animation-play-state":      keywords("running", "paused"),

	"transition-property": anyOf(keywords("none", "all"), single(value.Component.IsCustomIdent)),
	"transition-duration":        timeValue,
	"transition-timing-function": timingFunction,
	"transition-delay":           timeValue,
}

// layeredLonghands take one value per layer of their shorthand.
var layeredLonghands = map[string]bool{}

// soleKeywords of layered longhands are only valid when there is a single layer.
var soleKeywords = map[string][]string{
	"transition-property": {"none"},
}

func checkSoleKeywords(name string, layers [][]value.Component) error {
	words, ok := soleKeywords[name]
	if !ok || len(layers) < 2 {
		return nil
	}
	for _, l := range layers {
		if len(l) == 1 && l[0].IsIdent(words...) {
			return fmt.Errorf("'%s' must be the only item of %s", l[0].Lower(), name)
		}
	}
	return nil
}

// match applies grammar of longhand name to the leading components.
func match(name string, cs []value.Component) int {
	if m, ok := longhandGrammar[name]; ok {
		return m(cs)
	}
	return 0
}

// matchesAll reports whether the whole component list is a valid value of longhand name.
func matchesAll(name string, cs []value.Component) bool {
	return len(cs) > 0 && match(name, cs) == len(cs)
}

// IsKnownLonghand reports whether name is a longhand the registry has a grammar for.
func IsKnownLonghand(name string) bool {
	_, ok := longhandGrammar[strings.ToLower(name)]
	return ok
}

// ValidateLonghand checks explicitly assigned longhand value. Properties
// without known grammar, CSS-wide keywords and pending values are always accepted.
func ValidateLonghand(name string, v value.Value) error {
	name = strings.ToLower(name)
	if _, ok := longhandGrammar[name]; !ok || v.Keyword != "" || v.Pending {
		return nil
	}
	layers := [][]value.Component{v.Components}
	if layeredLonghands[name] {
		layers = value.SplitLayers(v.Components)
	} else if value.ContainsKind(v.Components, value.Comma) && name != "font-family" {
		return value.Errorf(v.String(), "unexpected ',' in %s", name)
	}
	if err := checkSoleKeywords(name, layers); err != nil {
		return value.Errorf(v.String(), "%v", err)
	}
	for _, l := range layers {
		if !matchesAll(name, l) {
			return value.Errorf(v.String(), "does not match %s grammar", name)
		}
	}
	return nil
}

func errUnexpected(d *Descriptor, c value.Component) error {
	return fmt.Errorf("unexpected %s %q in %s", c.Kind, value.Render([]value.Component{c}, false), d.Name)
}
