package value

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// SyntaxError is returned when value text cannot be tokenized or does not
// match the grammar expected by the caller.
type SyntaxError struct {
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid value %q: %s", e.Text, e.Reason)
}

// Errorf makes a syntax error for value text.
func Errorf(text, format string, args ...any) error {
	return &SyntaxError{Text: text, Reason: fmt.Sprintf(format, args...)}
}

// IsSyntaxError reports whether err (or anything it wraps) is a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// hackSuffix is the IE "\9" value hack.
const hackSuffix = `\9`

// substitution functions which make a value pending.
var substitutions = map[string]bool{"var": true, "env": true, "attr": true}

// Parser is the property value parser. It is stateless and may be shared.
type Parser struct {
	lenient bool
}

// NewParser creates value parser. In lenient mode legacy hacks are accepted
// and marked rather than rejected.
func NewParser(lenient bool) *Parser {
	return &Parser{lenient: lenient}
}

// Lenient reports parser mode.
func (p *Parser) Lenient() bool {
	return p.lenient
}

// Parse tokenizes value text.
func (p *Parser) Parse(text string) (Value, error) {
	cs, err := Tokenize(text)
	if err != nil {
		return Value{}, err
	}
	if len(cs) == 0 {
		return Value{}, Errorf(text, "empty value")
	}

	v := Value{Components: cs}
	if last := &cs[len(cs)-1]; strings.HasSuffix(last.Text, hackSuffix) && last.Kind != String {
		if !p.lenient {
			return Value{}, Errorf(text, "legacy hack suffix is not allowed")
		}
		last.Text = strings.TrimSuffix(last.Text, hackSuffix)
		if last.Text == "" {
			v.Components = cs[:len(cs)-1]
			if len(v.Components) == 0 {
				return Value{}, Errorf(text, "empty value")
			}
		}
		v.Hack = true
	}

	if hasSubstitution(v.Components) {
		v.Pending = true
		return v, nil
	}
	if len(v.Components) == 1 && v.Components[0].Kind == Ident {
		if kw := strings.ToLower(v.Components[0].Text); IsWideKeyword(kw) {
			return KeywordValue(kw), nil
		}
	}
	return v, nil
}

// IsWideKeyword reports whether kw is one of CSS-wide keywords.
func IsWideKeyword(kw string) bool {
	switch strings.ToLower(kw) {
	case KeywordInherit, KeywordInitial, KeywordUnset, KeywordRevert:
		return true
	}
	return false
}

func hasSubstitution(cs []Component) bool {
	for _, c := range cs {
		if c.Kind == Function && substitutions[strings.ToLower(c.Text)] {
			return true
		}
		if len(c.Args) > 0 && hasSubstitution(c.Args) {
			return true
		}
	}
	return false
}

// Tokenize splits text into component values, grouping function arguments
// and bracketed blocks. Whitespace and comments are dropped.
func Tokenize(text string) ([]Component, error) {
	t := tokenizer{
		text: text,
		l:    css.NewLexer(parse.NewInputString(text)),
	}
	return t.list(0)
}

type tokenizer struct {
	text string
	l    *css.Lexer
}

func (t *tokenizer) list(closer byte) ([]Component, error) {
	var out []Component
	for {
		tt, data := t.l.Next()
		switch tt {
		case css.ErrorToken:
			if err := t.l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &SyntaxError{Text: t.text, Reason: err.Error()}
			}
			if closer != 0 {
				return nil, Errorf(t.text, "missing closing %q", closer)
			}
			return out, nil

		case css.WhitespaceToken, css.CommentToken:
			continue

		case css.IdentToken, css.CustomPropertyNameToken:
			out = append(out, Component{Kind: Ident, Text: string(data)})

		case css.FunctionToken:
			args, err := t.list(')')
			if err != nil {
				return nil, err
			}
			out = append(out, Component{Kind: Function, Text: string(data[:len(data)-1]), Args: args})

		case css.LeftParenthesisToken, css.LeftBracketToken:
			closeWith := byte(')')
			if tt == css.LeftBracketToken {
				closeWith = ']'
			}
			args, err := t.list(closeWith)
			if err != nil {
				return nil, err
			}
			out = append(out, Component{Kind: Block, Text: string(data), Args: args})

		case css.RightParenthesisToken, css.RightBracketToken:
			if closer == 0 || closer != data[0] {
				return nil, Errorf(t.text, "unexpected %q", string(data))
			}
			return out, nil

		case css.NumberToken:
			out = append(out, Component{Kind: Number, Text: string(data)})
		case css.PercentageToken:
			out = append(out, Component{Kind: Percentage, Text: string(data)})
		case css.DimensionToken:
			out = append(out, Component{Kind: Dimension, Text: string(data)})
		case css.HashToken:
			out = append(out, Component{Kind: Hash, Text: string(data)})
		case css.StringToken:
			out = append(out, Component{Kind: String, Text: string(data)})
		case css.URLToken:
			out = append(out, Component{Kind: URL, Text: string(data)})

		case css.BadStringToken, css.BadURLToken:
			return nil, Errorf(t.text, "malformed %s", strings.TrimSuffix(tt.String(), "Token"))

		case css.CommaToken:
			out = append(out, Component{Kind: Comma, Text: ","})

		case css.DelimToken:
			switch data[0] {
			case '/':
				out = append(out, Component{Kind: Slash, Text: "/"})
			case '!':
				return nil, Errorf(t.text, "unexpected '!'")
			default:
				out = append(out, Component{Kind: Delim, Text: string(data)})
			}

		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken:
			return nil, Errorf(t.text, "unexpected %q", string(data))

		case css.ColonToken:
			if closer == 0 {
				return nil, Errorf(t.text, "unexpected ':'")
			}
			out = append(out, Component{Kind: Other, Text: ":"})

		default:
			out = append(out, Component{Kind: Other, Text: string(data)})
		}
	}
}
