package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Specification of how input is interpreted.
// ENUM(auto, stylesheet, inline, html, xhtml)
type InputKind int

const (
	InputKindAuto InputKind = iota
	InputKindStylesheet
	InputKindInline
	InputKindHtml
	InputKindXhtml
)

var ErrInvalidInputKind = errors.New("not a valid InputKind")

var inputKindNames = []string{"auto", "stylesheet", "inline", "html", "xhtml"}

// InputKindNames returns a list of possible string values of InputKind.
func InputKindNames() []string {
	tmp := make([]string, len(inputKindNames))
	copy(tmp, inputKindNames)
	return tmp
}

// String implements the Stringer interface.
func (x InputKind) String() string {
	if x.IsValid() {
		return inputKindNames[x]
	}
	return fmt.Sprintf("InputKind(%d)", x)
}

// IsValid provides a quick way to determine if the typed value is part of
// the allowed enumerated values.
func (x InputKind) IsValid() bool {
	return x >= 0 && int(x) < len(inputKindNames)
}

// ParseInputKind attempts to convert a string to a InputKind.
func ParseInputKind(name string) (InputKind, error) {
	for i, n := range inputKindNames {
		if strings.EqualFold(n, name) {
			return InputKind(i), nil
		}
	}
	return InputKind(0), fmt.Errorf("%s is %w", name, ErrInvalidInputKind)
}

// MarshalText implements the text marshaller method.
func (x InputKind) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements the text unmarshaller method.
func (x *InputKind) UnmarshalText(text []byte) error {
	tmp, err := ParseInputKind(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}

// Resolve turns auto into concrete kind using file name extension.
func (x InputKind) Resolve(fname string) InputKind {
	if x != InputKindAuto {
		return x
	}
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".html", ".htm":
		return InputKindHtml
	case ".xhtml", ".xht":
		return InputKindXhtml
	}
	return InputKindStylesheet
}
