package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"cssdecl/config"
	"cssdecl/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runProcess(t *testing.T, ctx context.Context, src string, kind config.InputKind) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "out")
	if err := process(ctx, src, dst, kind, false, zap.NewNop()); err != nil {
		t.Fatalf("process: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestProcess_Stylesheet(t *testing.T) {
	src := writeInput(t, "style.css", "p { margin: 1px 2px 1px 2px; margin-top: 3px }\nh1,h2{border:1px solid red}")

	ctx, env := setupTestEnv(t)
	want := "p {\n  margin: 1px 2px;\n  margin-top: 3px;\n}\n\nh1, h2 {\n  border: 1px solid red;\n}\n"
	if got := runProcess(t, ctx, src, config.InputKindStylesheet); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}

	env.Cfg.Output.Minify = true
	want = "p{margin:1px 2px;margin-top:3px;}h1,h2{border:1px solid red;}\n"
	if got := runProcess(t, ctx, src, config.InputKindStylesheet); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestProcess_Inline(t *testing.T) {
	src := writeInput(t, "attr.txt", "padding: 0 0 0 0; color: red !important")

	ctx, _ := setupTestEnv(t)
	want := "padding: 0; color: red ! important;\n"
	if got := runProcess(t, ctx, src, config.InputKindInline); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestProcess_HTML(t *testing.T) {
	src := writeInput(t, "index.html", `<!DOCTYPE html>
<html><head><meta charset="windows-1251"><style>p{padding:0 0 0 0}</style>
<style type="text/x-template">{{ not css }}</style></head>
<body><div style="border-width:1px 1px;border-style:solid;border-color:red">x</div></body></html>`)

	ctx, env := setupTestEnv(t)
	got := runProcess(t, ctx, src, config.InputKindAuto.Resolve(src))

	for _, want := range []string{
		"<style>\np {\n  padding: 0;\n}\n</style>",
		"{{ not css }}",
		`style="border-width: 1px; border-style: solid; border-color: red;"`,
		`charset="utf-8"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}

	env.Cfg.Output.Minify = true
	got = runProcess(t, ctx, src, config.InputKindHtml)
	for _, want := range []string{"<style>p{padding:0;}</style>", `style="border-width:1px;border-style:solid;border-color:red;"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestProcess_XHTML(t *testing.T) {
	src := writeInput(t, "page.xhtml", `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><style type="text/css">p{margin:0 0 0 0}</style>
<style>div &gt; p{color:red}</style></head>
<body><p style="padding:1px 1px 1px 1px">x</p></body></html>`)

	ctx, _ := setupTestEnv(t)
	got := runProcess(t, ctx, src, config.InputKindAuto.Resolve(src))

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<style type=\"text/css\">\np {\n  margin: 0;\n}\n</style>",
		"<![CDATA[",
		`style="padding: 1px;"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestProcess_Charset(t *testing.T) {
	text := `p::before { content: "Привет" }`
	encoded, err := charmap.Windows1251.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	src := writeInput(t, "cyr.css", encoded)

	ctx, env := setupTestEnv(t)
	env.CodePage = charmap.Windows1251
	if got := runProcess(t, ctx, src, config.InputKindStylesheet); !strings.Contains(got, `content: "Привет";`) {
		t.Errorf("expected decoded text, got %q", got)
	}
}

func TestProcess_DebugReport(t *testing.T) {
	src := writeInput(t, "style.css", "p { padding: 1px }")

	ctx, env := setupTestEnv(t)
	dest := filepath.Join(t.TempDir(), "report.zip")
	rpt, err := (&config.ReporterConfig{Destination: dest}).Prepare()
	if err != nil {
		t.Fatalf("prepare report: %v", err)
	}
	env.Rpt = rpt
	runProcess(t, ctx, src, config.InputKindStylesheet)
	if err := rpt.Close(); err != nil {
		t.Fatalf("close report: %v", err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	var dump string
	for _, f := range zr.File {
		names[f.Name] = true
		if strings.HasPrefix(f.Name, "debug/style.css-") {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open %s: %v", f.Name, err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			dump = string(data)
		}
	}
	for _, want := range []string{"input/style.css", "output/style.css"} {
		if !names[want] {
			t.Errorf("expected %s in report, got %v", want, names)
		}
	}
	if !strings.Contains(dump, `padding-left: "1px" [padding run `) {
		t.Errorf("expected declaration dump in report, got %q", dump)
	}
}

func TestProcess_FailOnError(t *testing.T) {
	src := writeInput(t, "bad.css", "p { margin: red; color: blue }")

	ctx, env := setupTestEnv(t)
	dst := filepath.Join(t.TempDir(), "out.css")
	err := process(ctx, src, dst, config.InputKindStylesheet, true, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for invalid CSS")
	}
	if !strings.Contains(err.Error(), "margin") {
		t.Errorf("expected problem scope in error, got %v", err)
	}
	if env.Diag.HasErrors() {
		t.Error("expected problems to be reset after reporting")
	}

	// output is still produced
	data, rerr := os.ReadFile(dst)
	if rerr != nil || !bytes.Contains(data, []byte("color: blue;")) {
		t.Errorf("expected valid declarations in output, got %q (%v)", data, rerr)
	}
}

func TestProcess_Overwrite(t *testing.T) {
	src := writeInput(t, "a.css", "a { color: red }")
	dst := writeInput(t, "b.css", "old")

	ctx, env := setupTestEnv(t)
	if err := process(ctx, src, dst, config.InputKindStylesheet, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for existing output")
	}

	env.Overwrite = true
	if err := process(ctx, src, dst, config.InputKindStylesheet, false, zap.NewNop()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "a {\n  color: red;\n}\n" {
		t.Errorf("unexpected output %q", data)
	}

	if err := process(ctx, src, src, config.InputKindStylesheet, false, zap.NewNop()); err == nil {
		t.Error("expected error when output is the input")
	}
}

func TestProcess_MissingInput(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	err := process(ctx, filepath.Join(t.TempDir(), "none.css"), "", config.InputKindStylesheet, false, zap.NewNop())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestProcess_Directory(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"a.css":            "p { margin: 0 0 0 0 }",
		"sub/b.css":        "h1 { padding: 1px 1px }",
		"sub/page.html":    `<p style="margin:0 0 0 0">x</p>`,
		"sub/readme.txt":   "not css",
		"sub/deep/c.xhtml": `<html xmlns="http://www.w3.org/1999/xhtml"><body style="margin:1px 1px 1px 1px"/></html>`,
	} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	ctx, _ := setupTestEnv(t)
	dst := filepath.Join(dir, "out")
	if err := process(ctx, dir, dst, config.InputKindAuto, false, zap.NewNop()); err != nil {
		t.Fatalf("process: %v", err)
	}

	for name, want := range map[string]string{
		"a.css":            "p {\n  margin: 0;\n}\n",
		"sub/b.css":        "h1 {\n  padding: 1px;\n}\n",
		"sub/page.html":    `style="margin: 0;"`,
		"sub/deep/c.xhtml": `style="margin: 1px;"`,
	} {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		if err != nil {
			t.Errorf("expected output %s: %v", name, err)
			continue
		}
		if !strings.Contains(string(data), want) {
			t.Errorf("%s: expected %q in %q", name, want, data)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "sub", "readme.txt")); !os.IsNotExist(err) {
		t.Errorf("unexpected output for non CSS file: %v", err)
	}

	// second run must not pick up its own output and must not overwrite it
	if err := process(ctx, dir, dst, config.InputKindAuto, false, zap.NewNop()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "out")); !os.IsNotExist(err) {
		t.Errorf("output directory was processed as input: %v", err)
	}

	if err := process(ctx, dir, "", config.InputKindAuto, false, zap.NewNop()); err == nil {
		t.Error("expected error for directory without destination")
	}
}

func TestProcess_Archive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"mimetype":              "application/epub+zip",
		"OEBPS/style.css":       "p { border-width: 1px; border-style: solid; border-color: red; margin: red }",
		"OEBPS/images/logo.png": "png",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ctx, _ := setupTestEnv(t)
	dst := t.TempDir()
	err = process(ctx, src, dst, config.InputKindAuto, true, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "invalid CSS") {
		t.Errorf("expected invalid CSS error, got %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "book", "OEBPS", "style.css"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "p {\n  border-width: 1px;\n  border-style: solid;\n  border-color: red;\n}\n"; string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
	if _, err := os.Stat(filepath.Join(dst, "book", "OEBPS", "images")); !os.IsNotExist(err) {
		t.Errorf("unexpected output for images: %v", err)
	}
}

func TestProcess_ArchivePath(t *testing.T) {
	src := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"mimetype":            "application/epub+zip",
		"OEBPS/a/style.css":   "p { margin: 1px }",
		"OEBPS/b/other.css":   "p { margin: 2px }",
		"OEBPS/ab/nested.css": "p { margin: 3px }",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ctx, _ := setupTestEnv(t)
	dst := t.TempDir()
	if err := process(ctx, filepath.Join(src, "OEBPS", "a"), dst, config.InputKindAuto, true, zap.NewNop()); err != nil {
		t.Fatalf("process: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "book", "OEBPS", "a", "style.css"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "p {\n  margin: 1px;\n}\n"; string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
	for _, name := range []string{"b", "ab"} {
		if _, err := os.Stat(filepath.Join(dst, "book", "OEBPS", name)); !os.IsNotExist(err) {
			t.Errorf("unexpected output for OEBPS/%s: %v", name, err)
		}
	}

	// tail after plain file or directory means nothing
	css := filepath.Join(t.TempDir(), "a.css")
	if err := os.WriteFile(css, []byte("p { margin: 0 }"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{filepath.Join(css, "x"), filepath.Join(filepath.Dir(css), "missing", "x")} {
		err := process(ctx, in, t.TempDir(), config.InputKindAuto, false, zap.NewNop())
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("process(%s) expected not exist error, got %v", in, err)
		}
	}
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "a.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(zf)
	if _, err := zw.Create("a.css"); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	zf.Close()

	fake := writeInput(t, "fake.zip", "not a real zip file")
	css := writeInput(t, "a.css", "PK")

	tests := []struct {
		path string
		want bool
	}{
		{zipPath, true},
		{fake, false},
		{css, false},
	}
	for _, tt := range tests {
		got, err := isArchiveFile(tt.path)
		if err != nil {
			t.Errorf("isArchiveFile(%s) error = %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("isArchiveFile(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := isArchiveFile(filepath.Join(dir, "none.zip")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		src      string
		minify   bool
		translit bool
		want     string
	}{
		{"/a/style.css", false, false, "style.css"},
		{"/a/style.css", true, false, "style.min.css"},
		{"/a/style.min.css", true, false, "style.min.css"},
		{"/a/style.min.css", false, false, "style.min.css"},
		{"/a/index.html", true, false, "index.min.html"},
		{"/a/Main Style.css", false, true, "main-style.css"},
		{"/a/Main Style.css", true, true, "main-style.min.css"},
		{stdio, false, false, "stdin.css"},
	}
	for _, tt := range tests {
		if got := outputFileName(tt.src, tt.minify, tt.translit); got != tt.want {
			t.Errorf("outputFileName(%q, %v, %v) = %q, want %q", tt.src, tt.minify, tt.translit, got, tt.want)
		}
	}
}

func TestBuildFileName_Template(t *testing.T) {
	_, env := setupTestEnv(t)

	tests := []struct {
		name     string
		template string
		minify   bool
		want     string
	}{
		{"default", "", false, "style.css"},
		{"plain", "{{ .SourceFile }}-out", false, "style-out.css"},
		{"minify", "{{ .SourceFile }}{{ if .Minify }}-min{{ end }}", true, "style-min.css"},
		{"sprig", "{{ .SourceFile | upper }}", false, "STYLE.css"},
		{"subdirs", "{{ .Input }}/{{ .SourceFile }}", false, filepath.Join("stylesheet", "style.css")},
		{"broken", "{{ .SourceFile", false, "style.css"},
		{"empty", "{{ if false }}x{{ end }}", true, "style.min.css"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.Cfg.Output.NameTemplate = tt.template
			env.Cfg.Output.Minify = tt.minify
			if got := buildFileName("/a/style.css", config.InputKindStylesheet, env); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildOutputPath(t *testing.T) {
	_, env := setupTestEnv(t)

	if name, err := buildOutputPath("/a/style.css", "", config.InputKindStylesheet, env); err != nil || name != "" {
		t.Errorf("expected standard output, got %q (%v)", name, err)
	}
	if name, err := buildOutputPath("/a/style.css", stdio, config.InputKindStylesheet, env); err != nil || name != "" {
		t.Errorf("expected standard output, got %q (%v)", name, err)
	}

	env.Cfg.Output.Minify = true
	dir := t.TempDir()
	name, err := buildOutputPath("/a/style.css", dir, config.InputKindStylesheet, env)
	if err != nil {
		t.Fatalf("buildOutputPath: %v", err)
	}
	if want := filepath.Join(dir, "style.min.css"); name != want {
		t.Errorf("expected %q, got %q", want, name)
	}

	nested := filepath.Join(dir, "x", "y", "out.css")
	if _, err := buildOutputPath("/a/style.css", nested, config.InputKindStylesheet, env); err != nil {
		t.Fatalf("buildOutputPath: %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(nested)); err != nil || !fi.IsDir() {
		t.Error("expected output directory to be created")
	}

	env.Cfg.Output.NameTemplate = "{{ .Input }}/{{ .SourceFile }}"
	name, err = buildOutputPath("/a/index.html", dir, config.InputKindHtml, env)
	if err != nil {
		t.Fatalf("buildOutputPath: %v", err)
	}
	if want := filepath.Join(dir, "html", "index.html"); name != want {
		t.Errorf("expected %q, got %q", want, name)
	}
}
