package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"cssdecl/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	SourceFile string
	Ext        string
	Input      string
	Minify     bool
	Date       string
}

func buildValues(name, src string, kind config.InputKind, minify bool) Values {
	if src == stdio {
		src = "stdin.css"
	}
	ext := filepath.Ext(src)
	return Values{
		Context:    name,
		SourceFile: strings.TrimSuffix(filepath.Base(src), ext),
		Ext:        ext,
		Input:      kind.String(),
		Minify:     minify,
		Date:       time.Now().Format("2006-01-02"),
	}
}

func expandTemplate(name, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(name).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
