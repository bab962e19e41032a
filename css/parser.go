package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"cssdecl/css/decl"
	"cssdecl/css/diag"
	"cssdecl/css/value"
)

// Parser parses CSS stylesheets into rules owning declaration blocks.
type Parser struct {
	log    *zap.Logger
	values *value.Parser
	eh     diag.Handler
}

// Option configures Parser.
type Option func(*Parser)

// WithLenient switches value parser into lenient mode accepting legacy hacks.
func WithLenient(lenient bool) Option {
	return func(p *Parser) {
		p.values = value.NewParser(lenient)
	}
}

// WithDiagnostics sets handler receiving problems found in declarations.
func WithDiagnostics(eh diag.Handler) Option {
	return func(p *Parser) {
		p.eh = eh
	}
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger, opts ...Option) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Parser{
		log:    log.Named("css-parser"),
		values: value.NewParser(false),
		eh:     diag.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDeclaration creates standalone declaration block (style attribute)
// sharing parser settings.
func (p *Parser) NewDeclaration() *decl.Declaration {
	return decl.New(p.values, p.eh, p.log)
}

// ParseInline parses declaration list such as content of a style attribute.
func (p *Parser) ParseInline(text string) *decl.Declaration {
	d := p.NewDeclaration()
	_ = d.SetCSSText(text)
	return d
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		ID:       newID(),
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}
	log := p.log.With(zap.Stringer("sheet", sheet.ID))

	// Log parsing start with source identifier if provided
	if len(source) > 0 && source[0] != "" {
		log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)
	rules := 0
	sheet.Items = p.parseItems(parser, sheet, &rules, false, log)
	log.Debug("Parsed CSS", zap.Int("items", len(sheet.Items)), zap.Int("rules", rules))
	return sheet
}

// parseItems reads rules and @-rules until end of input or, when nested, end
// of the enclosing @-rule block.
func (p *Parser) parseItems(parser *css.Parser, sheet *Stylesheet, rules *int, nested bool, log *zap.Logger) []StylesheetItem {
	items := make([]StylesheetItem, 0)
	var group []string

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error
			err := parser.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return items
			}
			log.Debug("CSS parse error", zap.Error(err))
			sheet.Warnings = append(sheet.Warnings, err.Error())

		case css.EndAtRuleGrammar:
			if nested {
				return items
			}

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			switch atRule {
			case "@media":
				mq := parseMediaQueryFromTokens(parser.Values())
				block := &MediaBlock{Query: mq, Rules: p.parseMediaBlockRules(parser, sheet, rules)}
				log.Debug("Parsed @media block", zap.String("query", mq.Raw), zap.Int("rules", len(block.Rules)))
				items = append(items, StylesheetItem{MediaBlock: block})
			case "@font-face":
				ff := &FontFace{Style: p.NewDeclaration()}
				ff.Style.Read(parser)
				items = append(items, StylesheetItem{FontFace: ff})
			default:
				ar := p.parseAtRuleBlock(parser, sheet, atRule, rules, log)
				log.Debug("Parsed @-rule", zap.String("rule", atRule), zap.String("prelude", ar.Prelude))
				items = append(items, StylesheetItem{AtRule: ar})
			}

		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g., @import)
			atRule := strings.ToLower(string(data))
			switch atRule {
			case "@import":
				if url := extractImportURL(parser.Values()); url != "" {
					items = append(items, StylesheetItem{Import: &url})
					log.Debug("Parsed @import", zap.String("url", url))
				}
			case "@charset":
				// output is always UTF-8
				log.Debug("Skipping @-rule", zap.String("rule", atRule))
			default:
				items = append(items, StylesheetItem{AtRule: &AtRule{Name: atRule, Prelude: preludeText(parser.Values())}})
			}

		case css.QualifiedRuleGrammar:
			// selector followed by comma, the rest of the group comes with the ruleset
			group = append(group, parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			rule := p.parseRule(parser, append(group, parseSelectors(data, parser.Values())...), *rules)
			group = nil
			*rules++
			items = append(items, StylesheetItem{Rule: rule})
		}
	}
}

// parseAtRuleBlock reads block of @-rule other than @media and @font-face.
// Block content follows the grammar the tokenizer picked for the rule: rule
// lists are parsed as nested items, declaration lists into a declaration
// block and anything else is kept as written.
func (p *Parser) parseAtRuleBlock(parser *css.Parser, sheet *Stylesheet, name string, rules *int, log *zap.Logger) *AtRule {
	ar := &AtRule{Name: name, Prelude: preludeText(parser.Values()), Block: true}
	switch unprefixed(name) {
	case "@page":
		ar.Style = p.NewDeclaration()
		ar.Style.Read(parser)
	case "@keyframes", "@supports", "@layer", "@document":
		ar.Items = p.parseItems(parser, sheet, rules, true, log)
	default:
		ar.Raw = rawBlock(parser)
	}
	return ar
}

// unprefixed drops vendor prefix from @-rule name: @-webkit-keyframes is @keyframes.
func unprefixed(name string) string {
	if len(name) > 2 && name[1] == '-' {
		if i := strings.IndexByte(name[2:], '-'); i >= 0 {
			return "@" + name[i+3:]
		}
	}
	return name
}

// preludeText rebuilds @-rule prelude with whitespace normalized.
func preludeText(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
		if t.TokenType == css.CommaToken {
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// rawBlock collects content of a block the grammar parser returns token by
// token, whitespace included.
func rawBlock(parser *css.Parser) string {
	var sb strings.Builder
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.TokenGrammar:
			sb.Write(data)
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return strings.TrimSpace(sb.String())
		}
	}
}

func (p *Parser) parseRule(parser *css.Parser, selectors []string, index int) *Rule {
	rule := &Rule{
		Selectors: selectors,
		Style:     p.NewDeclaration(),
	}
	rule.Style.SetOwner(index)
	rule.Style.Read(parser)
	return rule
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			// url(something): the token data is the full url(...) string
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// parseSelectors extracts selector strings from token data.
func parseSelectors(data []byte, values []css.Token) []string {
	// Build full selector string from data and values
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err == nil || errors.Is(err, io.EOF) {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaQueryFromTokens parses a media query from CSS tokens.
// Handles queries like "print", "not screen and (color)", etc.
func parseMediaQueryFromTokens(tokens []css.Token) MediaQuery {
	mq := MediaQuery{}

	var (
		raw   strings.Builder
		words []string
		word  string
		depth int
		sep   bool
	)
	flush := func() {
		if word != "" {
			words, word = append(words, word), ""
		}
	}
	for _, t := range tokens {
		switch {
		case t.TokenType == css.WhitespaceToken:
			sep = true
			continue
		case depth == 0 && t.TokenType == css.CommaToken:
			flush()
			raw.WriteByte(',')
			sep = true
			continue
		case depth == 0 && word != "" && (t.TokenType == css.IdentToken || t.TokenType == css.LeftParenthesisToken):
			sep = true
		}
		if sep {
			if depth == 0 {
				flush()
			}
			if raw.Len() > 0 {
				raw.WriteByte(' ')
			}
			sep = false
		}
		switch t.TokenType {
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		}
		raw.Write(t.Data)
		word += string(t.Data)
	}
	flush()
	mq.Raw = strings.Join(strings.Fields(raw.String()), " ")

	if len(words) == 0 {
		return mq
	}

	// Format: [not|only] type [and [not] feature]...
	i := 0
	switch strings.ToLower(words[i]) {
	case "not":
		mq.Negated = true
		i++
	case "only":
		i++
	}

	if i < len(words) && !strings.HasPrefix(words[i], "(") {
		mq.Type = strings.ToLower(words[i])
		i++
	}

	for i < len(words) {
		w := strings.ToLower(words[i])
		i++
		if w == "and" {
			continue
		}
		feature := MediaFeature{}
		if w == "not" && i < len(words) {
			feature.Negated = true
			w = strings.ToLower(words[i])
			i++
		}
		feature.Name = w
		mq.Features = append(mq.Features, feature)
	}

	return mq
}

// parseMediaBlockRules parses rules inside an @media block and returns them.
func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet, rules *int) []*Rule {
	var (
		out   []*Rule
		group []string
	)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			err := parser.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return out
			}
			sheet.Warnings = append(sheet.Warnings, err.Error())

		case css.EndAtRuleGrammar:
			return out

		case css.BeginAtRuleGrammar:
			skipAtRuleBlock(parser)
			sheet.Warnings = append(sheet.Warnings, "nested "+string(data)+" rule dropped")

		case css.QualifiedRuleGrammar:
			group = append(group, parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			out = append(out, p.parseRule(parser, append(group, parseSelectors(data, parser.Values())...), *rules))
			group = nil
			*rules++
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
