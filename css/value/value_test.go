package value_test

import (
	"testing"

	"cssdecl/css/value"
)

func TestParse_Render(t *testing.T) {
	tests := []struct {
		in, canonical, minified string
	}{
		{"1px solid red", "1px solid red", "1px solid red"},
		{"rgb(0, 0,0)", "rgb(0, 0, 0)", "rgb(0,0,0)"},
		{"12px/1.5 serif", "12px / 1.5 serif", "12px/1.5 serif"},
		{"0.5em -0.25em", "0.5em -0.25em", ".5em -.25em"},
		{"a ,b", "a, b", "a,b"},
		{`"Times New Roman", serif`, `"Times New Roman", serif`, `"Times New Roman",serif`},
		{"url(a.png) no-repeat", "url(a.png) no-repeat", "url(a.png) no-repeat"},
		{"[a b]", "[a b]", "[a b]"},
	}

	p := value.NewParser(false)
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := p.Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.String(); got != tt.canonical {
				t.Errorf("canonical: expected %q, got %q", tt.canonical, got)
			}
			if got := v.Minified(); got != tt.minified {
				t.Errorf("minified: expected %q, got %q", tt.minified, got)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	p := value.NewParser(false)
	for _, in := range []string{"", "   ", "rgb(0, 0", "a)", "red !important", "a; b", "a { b }"} {
		if _, err := p.Parse(in); err == nil {
			t.Errorf("%q: expected error", in)
		} else if !value.IsSyntaxError(err) {
			t.Errorf("%q: expected syntax error, got %T", in, err)
		}
	}
}

func TestParse_Keywords(t *testing.T) {
	p := value.NewParser(false)
	for _, in := range []string{"inherit", "INITIAL", "unset", "Revert"} {
		v, err := p.Parse(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if v.Keyword == "" {
			t.Errorf("%q: expected keyword value", in)
		}
		if v.String() != v.Keyword {
			t.Errorf("%q: expected lower case keyword, got %q", in, v.String())
		}
	}

	v, err := p.Parse("inherit inherit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Keyword != "" {
		t.Error("keyword must be the only component")
	}
}

func TestParse_Pending(t *testing.T) {
	p := value.NewParser(false)
	tests := []struct {
		in      string
		pending bool
	}{
		{"var(--x)", true},
		{"1px var(--style) red", true},
		{"calc(1px + var(--gap))", true},
		{"env(safe-area-inset-top)", true},
		{"calc(1px + 2px)", false},
		{"--not-a-call", false},
	}
	for _, tt := range tests {
		v, err := p.Parse(tt.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if v.Pending != tt.pending {
			t.Errorf("%q: expected pending %v", tt.in, tt.pending)
		}
	}
}

func TestParse_Hack(t *testing.T) {
	if _, err := value.NewParser(false).Parse(`red\9`); err == nil {
		t.Error("expected hack to be rejected in strict mode")
	}

	p := value.NewParser(true)
	if !p.Lenient() {
		t.Fatal("expected lenient parser")
	}
	v, err := p.Parse(`red\9`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Hack || v.String() != "red" {
		t.Errorf("expected hack dropped, got %q (hack %v)", v.String(), v.Hack)
	}
}

func TestLayers(t *testing.T) {
	cs, err := value.Tokenize("a b, rgb(1, 2, 3), c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers := value.SplitLayers(cs)
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	if len(layers[0]) != 2 || len(layers[1]) != 1 {
		t.Errorf("unexpected layers %v", layers)
	}
	if got := value.Render(value.JoinLayers(layers), false); got != "a b, rgb(1, 2, 3), c" {
		t.Errorf("unexpected join result %q", got)
	}
	if !value.ContainsKind(cs, value.Comma) || value.ContainsKind(layers[1], value.Comma) {
		t.Error("nested commas must not be top level")
	}
}

func TestEqual(t *testing.T) {
	p := value.NewParser(false)
	a, _ := p.Parse("1px  solid   red")
	b, _ := p.Parse("1px solid red")
	c, _ := p.Parse("1px solid blue")
	if !a.Equal(b) {
		t.Error("expected equal values")
	}
	if a.Equal(c) {
		t.Error("expected different values")
	}
	if !(value.Value{}).IsZero() || a.IsZero() {
		t.Error("unexpected IsZero result")
	}
}

func TestClassify(t *testing.T) {
	comp := func(t *testing.T, text string) value.Component {
		t.Helper()
		cs, err := value.Tokenize(text)
		if err != nil || len(cs) != 1 {
			t.Fatalf("%q: expected single component, got %v (%v)", text, cs, err)
		}
		return cs[0]
	}

	tests := []struct {
		name string
		fn   func(value.Component) bool
		yes  []string
		no   []string
	}{
		{"length", value.Component.IsLength, []string{"0", "1px", "2.5EM", "calc(1px + 1em)"}, []string{"1", "5%", "1s", "auto"}},
		{"length-percentage", value.Component.IsLengthPercentage, []string{"5%", "1rem"}, []string{"red"}},
		{"non-negative", value.Component.IsNonNegativeLengthPercentage, []string{"0", "3px"}, []string{"-1px", "-5%"}},
		{"time", value.Component.IsTime, []string{"1s", "200ms"}, []string{"1", "1px"}},
		{"color", value.Component.IsColor, []string{"red", "RED", "#fff", "#a0b1c2", "transparent", "currentColor", "rgb(0, 0, 0)"}, []string{"#ggg", "#ab", "bold", "1px"}},
		{"image", value.Component.IsImage, []string{"url(a.png)", "linear-gradient(red, blue)"}, []string{"none", "rgb(0, 0, 0)"}},
		{"line-width", value.Component.IsLineWidth, []string{"thin", "medium", "2px", "0"}, []string{"-1px", "solid"}},
		{"line-style", value.Component.IsLineStyle, []string{"solid", "DOTTED", "none"}, []string{"red", "1px"}},
		{"integer", value.Component.IsInteger, []string{"1", "-3"}, []string{"1.5", "1px"}},
		{"custom-ident", value.Component.IsCustomIdent, []string{"spin", "fade-in"}, []string{"inherit", "default", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.yes {
				if !tt.fn(comp(t, s)) {
					t.Errorf("expected %q to match", s)
				}
			}
			for _, s := range tt.no {
				if tt.fn(comp(t, s)) {
					t.Errorf("expected %q not to match", s)
				}
			}
		})
	}
}

func TestComponentUnit(t *testing.T) {
	cs, err := value.Tokenize("1.5EM 10% 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u := cs[0].Unit(); u != "em" {
		t.Errorf("expected em, got %q", u)
	}
	if f, ok := cs[1].Float(); !ok || f != 10 {
		t.Errorf("expected 10, got %v", f)
	}
	if cs[2].Unit() != "" {
		t.Error("numbers have no unit")
	}
}
