package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter builds indented text dumps of nested structures, it exists
// solely for manual inspection of debug reports.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Field writes quoted value under label followed by bracketed flags, empty
// flags are skipped.
func (tw TreeWriter) Field(depth int, label, value string, flags ...string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	for _, f := range flags {
		if f == "" {
			continue
		}
		tw.w.WriteString(" [")
		tw.w.WriteString(f)
		tw.w.WriteByte(']')
	}
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
