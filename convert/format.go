package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"cssdecl/config"
	"cssdecl/css"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// readText reads whole input converting it to UTF-8 from forced encoding
// when one is specified.
func readText(r io.Reader, cp encoding.Encoding) ([]byte, error) {
	if cp != nil {
		r = transform.NewReader(r, cp.NewDecoder())
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

// formatter rewrites CSS text with shared parser and output settings.
type formatter struct {
	p      *css.Parser
	minify bool
	rpt    *config.Report
	log    *zap.Logger
}

func (f *formatter) stylesheet(data []byte, src string) string {
	sheet := f.p.Parse(data, src)
	for _, w := range sheet.Warnings {
		f.log.Debug("Stylesheet warning", zap.Stringer("sheet", sheet.ID), zap.String("warning", w))
	}
	if f.rpt != nil {
		name := config.CleanFileName(strings.Trim(filepath.Base(src), "<>"))
		f.rpt.StoreData(fmt.Sprintf("debug/%s-%s.txt", name, sheet.ID), []byte(sheet.Dump()))
	}
	if f.minify {
		return sheet.Minified()
	}
	return strings.TrimSuffix(sheet.String(), "\n")
}

func (f *formatter) inline(text string) string {
	d := f.p.ParseInline(text)
	if f.minify {
		return d.MinifiedCSSText()
	}
	return strings.TrimSpace(d.CSSText())
}

// htmlDocument reformats content of text/css <style> elements and of style
// attributes. Document is always written as UTF-8.
func (f *formatter) htmlDocument(ctx context.Context, r io.Reader, w io.Writer, cp encoding.Encoding) error {
	if cp != nil {
		r = transform.NewReader(r, cp.NewDecoder())
	} else {
		var err error
		if r, err = charset.NewReader(r, "text/html"); err != nil {
			return fmt.Errorf("unable to detect document encoding: %w", err)
		}
	}
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to parse HTML: %w", err)
	}

	var styles, attrs int
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || ctx.Err() != nil {
			return
		}
		switch n.DataAtom {
		case atom.Style:
			if isStylesheet(n) {
				f.styleElement(n)
				styles++
			}
		case atom.Meta:
			forceUTF8(n)
		}
		for i := range n.Attr {
			if n.Attr[i].Namespace == "" && strings.EqualFold(n.Attr[i].Key, "style") {
				n.Attr[i].Val = f.inline(n.Attr[i].Val)
				attrs++
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	f.log.Debug("Formatted HTML document", zap.Int("styles", styles), zap.Int("attributes", attrs))

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("unable to write HTML: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// isStylesheet checks type of <style> element, only "type/subtype" part of
// the attribute is considered.
func isStylesheet(n *html.Node) bool {
	mimeType, _ := attr(n, "type")
	return isCSSType(mimeType)
}

func isCSSType(mimeType string) bool {
	if mimeType == "" {
		return true
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.EqualFold(strings.TrimSpace(mimeType), "text/css")
}

// styleElement replaces text content of <style> element.
func (f *formatter) styleElement(n *html.Node) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}

	text := f.stylesheet([]byte(sb.String()), "<style>")
	if !f.minify && text != "" {
		text = "\n" + text + "\n"
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// forceUTF8 fixes declared document encoding since output is never converted
// back.
func forceUTF8(n *html.Node) {
	for i := range n.Attr {
		a := &n.Attr[i]
		switch strings.ToLower(a.Key) {
		case "charset":
			a.Val = "utf-8"
		case "content":
			if equiv, _ := attr(n, "http-equiv"); strings.EqualFold(equiv, "content-type") {
				a.Val = "text/html; charset=utf-8"
			}
		}
	}
}
