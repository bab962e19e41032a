package decl

import "fmt"

// ModificationError is returned by every mutating call on a read-only view.
type ModificationError struct {
	Op string
}

func (e *ModificationError) Error() string {
	if e.Op == "" {
		return "no modification allowed"
	}
	return fmt.Sprintf("no modification allowed: %s", e.Op)
}

// Is makes all modification errors match ErrNoModificationAllowed.
func (e *ModificationError) Is(target error) bool {
	_, ok := target.(*ModificationError)
	return ok
}

// ErrNoModificationAllowed matches any ModificationError with errors.Is.
var ErrNoModificationAllowed error = &ModificationError{}

// ReadOnly wraps style into view which rejects modifications.
func ReadOnly(s Style) Style {
	if ro, ok := s.(readOnly); ok {
		return ro
	}
	return readOnly{s: s}
}

type readOnly struct {
	s Style
}

func (r readOnly) CSSText() string                     { return r.s.CSSText() }
func (r readOnly) MinifiedCSSText() string             { return r.s.MinifiedCSSText() }
func (r readOnly) GetPropertyValue(name string) string { return r.s.GetPropertyValue(name) }
func (r readOnly) GetPropertyPriority(n string) string { return r.s.GetPropertyPriority(n) }
func (r readOnly) Length() int                         { return r.s.Length() }
func (r readOnly) Item(i int) string                   { return r.s.Item(i) }

func (r readOnly) SetCSSText(string) error {
	return &ModificationError{Op: "setCssText"}
}

func (r readOnly) SetProperty(name, _, _ string) error {
	return &ModificationError{Op: "setProperty " + name}
}

func (r readOnly) RemoveProperty(name string) (string, error) {
	return "", &ModificationError{Op: "removeProperty " + name}
}
