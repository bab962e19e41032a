// Package diag collects problems found while processing CSS declarations.
package diag

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Handler receives value level problems. Declarations never fail on malformed
// CSS, they report here instead.
type Handler interface {
	ReportError(scope, message string)
	ReportWarning(scope, message string)
	HasErrors() bool
	HasWarnings() bool
}

// Problem is a single reported error or warning.
type Problem struct {
	Scope   string
	Message string
	Warning bool
}

func (p Problem) Error() string {
	if p.Scope == "" {
		return p.Message
	}
	return fmt.Sprintf("%s: %s", p.Scope, p.Message)
}

// Collector is Handler which logs problems and keeps them for later inspection.
// NOTE: not to be used concurrently, same as declarations it is attached to.
type Collector struct {
	log      *zap.Logger
	err      error
	problems []Problem
	errors   int
	warnings int
}

// NewCollector creates an empty collector.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log.Named("diag")}
}

func (c *Collector) ReportError(scope, message string) {
	p := Problem{Scope: scope, Message: message}
	c.problems = append(c.problems, p)
	c.errors++
	c.err = multierr.Append(c.err, p)
	c.log.Debug("CSS error", zap.String("scope", scope), zap.String("message", message))
}

func (c *Collector) ReportWarning(scope, message string) {
	c.problems = append(c.problems, Problem{Scope: scope, Message: message, Warning: true})
	c.warnings++
	c.log.Debug("CSS warning", zap.String("scope", scope), zap.String("message", message))
}

func (c *Collector) HasErrors() bool {
	return c.errors > 0
}

func (c *Collector) HasWarnings() bool {
	return c.warnings > 0
}

// Problems returns everything reported so far in order.
func (c *Collector) Problems() []Problem {
	return c.problems
}

// Err returns all reported errors combined, nil if there were none.
func (c *Collector) Err() error {
	return c.err
}

// Reset forgets everything reported so far.
func (c *Collector) Reset() {
	c.err = nil
	c.problems = nil
	c.errors, c.warnings = 0, 0
}

// ReportErr reports err with the given scope, unwrapping combined errors.
func ReportErr(h Handler, scope string, err error) {
	if h == nil || err == nil {
		return
	}
	for _, e := range multierr.Errors(err) {
		var p Problem
		if errors.As(e, &p) && p.Warning {
			h.ReportWarning(scope, p.Message)
			continue
		}
		h.ReportError(scope, e.Error())
	}
}

// Discard is a Handler which ignores everything.
var Discard Handler = discard{}

type discard struct{}

func (discard) ReportError(string, string)   {}
func (discard) ReportWarning(string, string) {}
func (discard) HasErrors() bool              { return false }
func (discard) HasWarnings() bool            { return false }
