package props_test

import (
	"slices"
	"testing"

	"cssdecl/css/props"
	"cssdecl/css/value"
)

func tokens(t *testing.T, text string) []value.Component {
	t.Helper()
	cs, err := value.Tokenize(text)
	if err != nil {
		t.Fatalf("failed to tokenize %q: %v", text, err)
	}
	return cs
}

func expand(t *testing.T, shorthand, text string) map[string]value.Value {
	t.Helper()
	d, ok := props.Lookup(shorthand)
	if !ok {
		t.Fatalf("shorthand %q is not registered", shorthand)
	}
	vals, err := d.Expand(tokens(t, text))
	if err != nil {
		t.Fatalf("failed to expand %s: %q: %v", shorthand, text, err)
	}
	if len(vals) != len(d.Longhands) {
		t.Fatalf("%s: expected %d longhands, got %d", shorthand, len(d.Longhands), len(vals))
	}
	return vals
}

func TestExpand(t *testing.T) {
	tests := []struct {
		shorthand string
		text      string
		want      map[string]string
	}{
		{"margin", "1px 2px", map[string]string{
			"margin-top": "1px", "margin-right": "2px", "margin-bottom": "1px", "margin-left": "2px",
		}},
		{"padding", "1px 2px 3px", map[string]string{
			"padding-top": "1px", "padding-right": "2px", "padding-bottom": "3px", "padding-left": "2px",
		}},
		{"border", "1px dashed blue", map[string]string{
			"border-top-width": "1px", "border-left-style": "dashed", "border-bottom-color": "blue",
		}},
		{"border-top", "dotted", map[string]string{
			"border-top-width": "medium", "border-top-style": "dotted", "border-top-color": "currentcolor",
		}},
		{"border-radius", "10px / 20px", map[string]string{
			"border-top-left-radius": "10px 20px", "border-bottom-right-radius": "10px 20px",
		}},
		{"border-radius", "1px 2px", map[string]string{
			"border-top-left-radius": "1px", "border-top-right-radius": "2px",
			"border-bottom-right-radius": "1px", "border-bottom-left-radius": "2px",
		}},
		{"list-style", "none", map[string]string{
			"list-style-type": "none", "list-style-image": "none", "list-style-position": "outside",
		}},
		{"list-style", "square inside", map[string]string{
			"list-style-type": "square", "list-style-image": "none", "list-style-position": "inside",
		}},
		{"font", "oblique 14deg 12px serif", map[string]string{
			"font-style": "oblique 14deg", "font-weight": "normal", "font-size": "12px", "font-family": "serif",
		}},
		{"transition", "opacity 1s, transform 2s", map[string]string{
			"transition-property": "opacity, transform", "transition-duration": "1s, 2s",
		}},
		{"transition", "none", map[string]string{
			"transition-property": "none", "transition-duration": "0s",
		}},
		{"font", "italic bold 12px/1.5 Arial, sans-serif", map[string]string{
			"font-style": "italic", "font-variant": "normal", "font-weight": "bold", "font-stretch": "normal",
			"font-size": "12px", "line-height": "1.5", "font-family": "Arial, sans-serif",
		}},
		{"flex", "none", map[string]string{"flex-grow": "0", "flex-shrink": "0", "flex-basis": "auto"}},
		{"flex", "2", map[string]string{"flex-grow": "2", "flex-shrink": "1", "flex-basis": "0%"}},
		{"flex", "1 1 0", map[string]string{"flex-grow": "1", "flex-shrink": "1", "flex-basis": "0"}},
		{"flex", "10px", map[string]string{"flex-grow": "1", "flex-shrink": "1", "flex-basis": "10px"}},
		{"gap", "1em", map[string]string{"row-gap": "1em", "column-gap": "1em"}},
		{"overflow", "hidden auto", map[string]string{"overflow-x": "hidden", "overflow-y": "auto"}},
		{"animation", "ease-in ease-out", map[string]string{
			"animation-timing-function": "ease-in", "animation-name": "ease-out", "animation-duration": "0s",
		}},
		{"animation", "1s 2s spin", map[string]string{
			"animation-duration": "1s", "animation-delay": "2s", "animation-name": "spin",
		}},
		{"transition", "opacity 1s, color 2s linear", map[string]string{
			"transition-property": "opacity, color", "transition-duration": "1s, 2s",
			"transition-timing-function": "ease, linear", "transition-delay": "0s, 0s",
		}},
		{"background", "url(a.png) top left no-repeat, url(b.png) center / 100% 100% no-repeat, url(c.png) white", map[string]string{
			"background-image":    "url(a.png), url(b.png), url(c.png)",
			"background-position": "top left, center, 0% 0%",
			"background-size":     "auto, 100% 100%, auto",
			"background-repeat":   "no-repeat, no-repeat, repeat",
			"background-color":    "white",
		}},
		{"background", "content-box", map[string]string{
			"background-origin": "content-box", "background-clip": "content-box",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.shorthand+": "+tt.text, func(t *testing.T) {
			vals := expand(t, tt.shorthand, tt.text)
			for name, want := range tt.want {
				if got := vals[name].String(); got != want {
					t.Errorf("%s: expected %q, got %q", name, want, got)
				}
			}
		})
	}
}

func TestExpand_Invalid(t *testing.T) {
	tests := []struct {
		shorthand string
		text      string
	}{
		{"border", "1px dashed blue foo"},
		{"border-top", "1px 2px"},
		{"margin", "1px 2px 3px 4px 5px"},
		{"margin", "red"},
		{"padding", "-1px"},
		{"font", "bold Arial"},
		{"font", "12px"},
		{"background", "red, url(a.png)"},
		{"background", "url(a.png), , url(b.png)"},
		{"list-style", "none none none"},
		{"flex", "1 2 3 4"},
		{"border-radius", "1px /"},
		{"gap", "1px, 2px"},
		{"font", "oblique 12px"},
		{"font", "menu"},
		{"transition", "none, opacity 1s"},
		{"transition", "opacity 1s, none"},
	}

	for _, tt := range tests {
		t.Run(tt.shorthand+": "+tt.text, func(t *testing.T) {
			d, _ := props.Lookup(tt.shorthand)
			if _, err := d.Expand(tokens(t, tt.text)); err == nil {
				t.Errorf("expected error expanding %s: %q", tt.shorthand, tt.text)
			}
		})
	}
}

func TestRecombine(t *testing.T) {
	tests := []struct {
		shorthand string
		text      string
		want      string
	}{
		{"margin", "1px 2px 1px 2px", "1px 2px"},
		{"margin", "0 0 0 0", "0"},
		{"border", "1px dashed blue", "1px dashed blue"},
		{"border", "medium none currentcolor", "none"},
		{"border-top", "solid 2px", "2px solid"},
		{"border-radius", "10px / 20px", "10px / 20px"},
		{"border-radius", "1px 1px 1px 1px", "1px"},
		{"list-style", "none", "none"},
		{"list-style", "square outside none", "square"},
		{"font", "normal normal 12px Arial", "12px Arial"},
		{"font", "italic 12px/1.5 Arial, sans-serif", "italic 12px / 1.5 Arial, sans-serif"},
		{"flex", "0 0 auto", "none"},
		{"flex", "1 1 auto", "auto"},
		{"flex", "2", "2"},
		{"flex", "1 1 0", "1 1 0"},
		{"gap", "1em 1em", "1em"},
		{"place-items", "center start", "center start"},
		{"animation", "ease-in ease-out", "ease-in ease-out"},
		{"animation", "0s ease 0s 1 normal none running none", "none"},
		{"transition", "opacity 1s", "opacity 1s"},
		{"transition", "opacity 1s, color 2s", "opacity 1s, color 2s"},
		{"background", "none", "none"},
		{"background", "url(a.png) no-repeat, white", "url(a.png) no-repeat, white"},
		{"background", "center / cover", "center / cover"},
		{"text-decoration", "underline red", "underline red"},
		{"columns", "auto auto", "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.shorthand+": "+tt.text, func(t *testing.T) {
			d, _ := props.Lookup(tt.shorthand)
			vals := expand(t, tt.shorthand, tt.text)
			got, ok := d.Recombine(vals)
			if !ok {
				t.Fatalf("failed to recombine %s", tt.shorthand)
			}
			if got.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.String())
			}
		})
	}
}

func TestRecombine_Incomplete(t *testing.T) {
	d, _ := props.Lookup("margin")
	vals := expand(t, "margin", "1px")
	delete(vals, "margin-left")
	if _, ok := d.Recombine(vals); ok {
		t.Error("expected failure when longhand is missing")
	}
}

func TestRecombine_Keywords(t *testing.T) {
	d, _ := props.Lookup("padding")
	vals := map[string]value.Value{}
	for _, name := range d.Longhands {
		vals[name] = value.KeywordValue("inherit")
	}
	got, ok := d.Recombine(vals)
	if !ok || got.String() != "inherit" {
		t.Errorf("expected inherit, got %q (%v)", got.String(), ok)
	}

	vals["padding-left"] = value.KeywordValue("initial")
	if _, ok := d.Recombine(vals); ok {
		t.Error("expected failure for mixed keywords")
	}

	vals["padding-left"] = value.FromComponents(tokens(t, "1px"))
	if _, ok := d.Recombine(vals); ok {
		t.Error("expected failure for keyword mixed with value")
	}
}

func TestRecombine_LayerMismatch(t *testing.T) {
	d, _ := props.Lookup("transition")
	vals := expand(t, "transition", "opacity 1s, color 2s")
	vals["transition-delay"] = value.FromComponents(tokens(t, "0s"))
	if _, ok := d.Recombine(vals); ok {
		t.Error("expected failure when layer counts differ")
	}
}

func TestShorthands(t *testing.T) {
	names := props.Shorthands()
	for _, want := range []string{"margin", "border", "border-top", "background", "animation", "font", "flex"} {
		if !slices.Contains(names, want) {
			t.Errorf("expected %q among shorthands", want)
		}
	}
	if !props.IsShorthand("Margin") {
		t.Error("expected case insensitive lookup")
	}
	if props.IsShorthand("margin-top") {
		t.Error("margin-top is not a shorthand")
	}
}

func TestSubShorthands(t *testing.T) {
	d, _ := props.Lookup("border")
	var subs []string
	for _, s := range d.SubShorthands() {
		subs = append(subs, s.Name)
	}
	for _, want := range []string{"border-width", "border-style", "border-color", "border-top", "border-left"} {
		if !slices.Contains(subs, want) {
			t.Errorf("expected %q among border sub shorthands, got %v", want, subs)
		}
	}

	d, _ = props.Lookup("margin")
	if len(d.SubShorthands()) != 0 {
		t.Errorf("margin should have no sub shorthands")
	}
}

func TestValidateLonghand(t *testing.T) {
	p := value.NewParser(false)
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"margin-top", "10px", true},
		{"margin-top", "auto", true},
		{"margin-top", "red", false},
		{"padding-left", "-1px", false},
		{"border-top-color", "#fff", true},
		{"border-top-style", "dashed", true},
		{"background-position", "top left, center", true},
		{"background-color", "red, blue", false},
		{"font-family", "\"Times New Roman\", serif", true},
		{"color", "anything goes", true},
		{"margin-top", "inherit", true},
		{"margin-top", "var(--x)", true},
		{"font-style", "oblique", true},
		{"font-style", "oblique -10deg", true},
		{"font-style", "oblique 10px", false},
		{"font-style", "italic 10deg", false},
		{"transition-property", "none", true},
		{"transition-property", "opacity, transform", true},
		{"transition-property", "none, opacity", false},
		{"animation-name", "none, spin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+": "+tt.text, func(t *testing.T) {
			v, err := p.Parse(tt.text)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.text, err)
			}
			err = props.ValidateLonghand(tt.name, v)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIsSystemValue(t *testing.T) {
	p := value.NewParser(false)
	font, _ := props.Lookup("font")
	margin, _ := props.Lookup("margin")
	tests := []struct {
		d    *props.Descriptor
		text string
		want bool
	}{
		{font, "caption", true},
		{font, "Status-Bar", true},
		{font, "small-caption", true},
		{font, "menu 12px", false},
		{font, "12px serif", false},
		{font, "inherit", false},
		{margin, "menu", false},
	}

	for _, tt := range tests {
		t.Run(tt.d.Name+": "+tt.text, func(t *testing.T) {
			v, err := p.Parse(tt.text)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.text, err)
			}
			if got := tt.d.IsSystemValue(v); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
