package value

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
)

var lengthUnits = map[string]bool{
	"px": true, "em": true, "rem": true, "ex": true, "rex": true, "ch": true, "rch": true,
	"cap": true, "rcap": true, "ic": true, "ric": true, "lh": true, "rlh": true,
	"cm": true, "mm": true, "q": true, "in": true, "pt": true, "pc": true,
	"vw": true, "vh": true, "vi": true, "vb": true, "vmin": true, "vmax": true,
	"svw": true, "svh": true, "lvw": true, "lvh": true, "dvw": true, "dvh": true,
	"cqw": true, "cqh": true, "cqi": true, "cqb": true, "cqmin": true, "cqmax": true,
}

var mathFunctions = map[string]bool{
	"calc": true, "min": true, "max": true, "clamp": true,
}

var colorFunctions = map[string]bool{
	"rgb": true, "rgba": true, "hsl": true, "hsla": true, "hwb": true,
	"lab": true, "lch": true, "oklab": true, "oklch": true, "color": true,
	"color-mix": true, "light-dark": true,
}

var imageFunctions = map[string]bool{
	"url": true, "image": true, "image-set": true, "cross-fade": true, "element": true,
	"linear-gradient": true, "radial-gradient": true, "conic-gradient": true,
	"repeating-linear-gradient": true, "repeating-radial-gradient": true, "repeating-conic-gradient": true,
	"-webkit-linear-gradient": true, "-webkit-radial-gradient": true,
}

var lineStyles = []string{"none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset"}

// Lower returns lower-cased text of identifiers and function names.
func (c Component) Lower() string {
	return strings.ToLower(c.Text)
}

// IsIdent reports whether c is an identifier matching one of words
// (ASCII case-insensitive). Without words any identifier matches.
func (c Component) IsIdent(words ...string) bool {
	if c.Kind != Ident {
		return false
	}
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if strings.EqualFold(c.Text, w) {
			return true
		}
	}
	return false
}

// IsFunction reports whether c is a function with one of names.
func (c Component) IsFunction(names ...string) bool {
	if c.Kind != Function {
		return false
	}
	for _, n := range names {
		if strings.EqualFold(c.Text, n) {
			return true
		}
	}
	return false
}

func (c Component) isMath() bool {
	return c.Kind == Function && mathFunctions[c.Lower()]
}

// Float returns numeric part of number, percentage and dimension components.
func (c Component) Float() (float64, bool) {
	var num string
	switch c.Kind {
	case Number:
		num = c.Text
	case Percentage:
		num = strings.TrimSuffix(c.Text, "%")
	case Dimension:
		n, _ := parse.Dimension([]byte(c.Text))
		num = c.Text[:n]
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	return f, err == nil
}

// Unit returns lower-cased unit of a dimension component.
func (c Component) Unit() string {
	if c.Kind != Dimension {
		return ""
	}
	n, _ := parse.Dimension([]byte(c.Text))
	return strings.ToLower(c.Text[n:])
}

// IsZero reports whether c is a number equal to zero.
func (c Component) IsZero() bool {
	if c.Kind != Number {
		return false
	}
	f, ok := c.Float()
	return ok && f == 0
}

// IsNumber reports whether c is a number or a math function.
func (c Component) IsNumber() bool {
	return c.Kind == Number || c.isMath()
}

// IsNonNegativeNumber reports whether c is a number >= 0 (or math function).
func (c Component) IsNonNegativeNumber() bool {
	if c.isMath() {
		return true
	}
	f, ok := c.Float()
	return ok && c.Kind == Number && f >= 0
}

// IsInteger reports whether c is an integer number.
func (c Component) IsInteger() bool {
	if c.isMath() {
		return true
	}
	return c.Kind == Number && !strings.ContainsAny(c.Text, ".eE")
}

// IsLength reports whether c is a length (unitless zero included).
func (c Component) IsLength() bool {
	switch c.Kind {
	case Dimension:
		return lengthUnits[c.Unit()]
	case Number:
		return c.IsZero()
	case Function:
		return c.isMath()
	}
	return false
}

// IsLengthPercentage reports whether c is a length or a percentage.
func (c Component) IsLengthPercentage() bool {
	return c.Kind == Percentage || c.IsLength()
}

// IsNonNegativeLengthPercentage is IsLengthPercentage excluding negative values.
func (c Component) IsNonNegativeLengthPercentage() bool {
	if !c.IsLengthPercentage() {
		return false
	}
	if f, ok := c.Float(); ok && f < 0 {
		return false
	}
	return true
}

// IsAngle reports whether c is an angle (unitless zero included).
func (c Component) IsAngle() bool {
	switch c.Kind {
	case Dimension:
		switch c.Unit() {
		case "deg", "grad", "rad", "turn":
			return true
		}
	case Number:
		return c.IsZero()
	case Function:
		return c.isMath()
	}
	return false
}

// IsTime reports whether c is a time value.
func (c Component) IsTime() bool {
	switch c.Kind {
	case Dimension:
		u := c.Unit()
		return u == "s" || u == "ms"
	case Function:
		return c.isMath()
	}
	return false
}

// IsColor reports whether c is a color.
func (c Component) IsColor() bool {
	switch c.Kind {
	case Hash:
		hex := c.Text[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return false
		}
		for i := 0; i < len(hex); i++ {
			if !isHexDigit(hex[i]) {
				return false
			}
		}
		return true
	case Ident:
		l := c.Lower()
		return l == "currentcolor" || l == "transparent" || namedColors[l]
	case Function:
		return colorFunctions[c.Lower()]
	}
	return false
}

func isHexDigit(b byte) bool {
	return '0' <= b && b <= '9' || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

// IsImage reports whether c is an image reference.
func (c Component) IsImage() bool {
	switch c.Kind {
	case URL:
		return true
	case Function:
		return imageFunctions[c.Lower()]
	}
	return false
}

// IsLineWidth reports whether c is a border width.
func (c Component) IsLineWidth() bool {
	if c.IsIdent("thin", "medium", "thick") {
		return true
	}
	if !c.IsLength() {
		return false
	}
	f, ok := c.Float()
	return !ok || f >= 0
}

// IsLineStyle reports whether c is a border style keyword.
func (c Component) IsLineStyle() bool {
	return c.IsIdent(lineStyles...)
}

// IsCustomIdent reports whether c is an author defined identifier.
func (c Component) IsCustomIdent() bool {
	return c.Kind == Ident && !IsWideKeyword(c.Text) && !c.IsIdent("default")
}
