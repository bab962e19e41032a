package convert

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// xhtmlDocument is htmlDocument for XML documents. Text of reformatted <style>
// elements is written as CDATA when it has characters XML would escape.
func (f *formatter) xhtmlDocument(ctx context.Context, r io.Reader, w io.Writer, cp encoding.Encoding) error {
	doc := etree.NewDocument()
	if cp != nil {
		r = transform.NewReader(r, cp.NewDecoder())
		// input is UTF-8 already, whatever declaration says
		doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	} else {
		doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return fmt.Errorf("unable to parse XHTML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("unable to parse XHTML: no root element")
	}

	for _, t := range doc.Child {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = `version="1.0" encoding="UTF-8"`
		}
	}

	var styles, attrs int
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		if ctx.Err() != nil {
			return
		}
		switch strings.ToLower(el.Tag) {
		case "style":
			if mimeType := el.SelectAttrValue("type", ""); isCSSType(mimeType) {
				f.styleText(el)
				styles++
			}
		case "meta":
			forceUTF8Attrs(el)
		}
		for i := range el.Attr {
			if el.Attr[i].Space == "" && el.Attr[i].Key == "style" {
				el.Attr[i].Value = f.inline(el.Attr[i].Value)
				attrs++
			}
		}
		for _, c := range el.ChildElements() {
			visit(c)
		}
	}
	visit(root)
	if err := ctx.Err(); err != nil {
		return err
	}
	f.log.Debug("Formatted XHTML document", zap.Int("styles", styles), zap.Int("attributes", attrs))

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write XHTML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (f *formatter) styleText(el *etree.Element) {
	var sb strings.Builder
	for _, t := range el.Child {
		if cd, ok := t.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	for len(el.Child) > 0 {
		el.RemoveChildAt(0)
	}

	text := f.stylesheet([]byte(sb.String()), "<style>")
	if !f.minify && text != "" {
		text = "\n" + text + "\n"
	}
	if strings.ContainsAny(text, "<>&") {
		el.SetCData(text)
		return
	}
	el.SetText(text)
}

func forceUTF8Attrs(el *etree.Element) {
	for i := range el.Attr {
		a := &el.Attr[i]
		switch strings.ToLower(a.Key) {
		case "charset":
			a.Value = "utf-8"
		case "content":
			if strings.EqualFold(el.SelectAttrValue("http-equiv", ""), "content-type") {
				a.Value = "text/html; charset=utf-8"
			}
		}
	}
}
