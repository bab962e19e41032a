package diag_test

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssdecl/css/diag"
)

func TestCollector(t *testing.T) {
	c := diag.NewCollector(zap.NewNop())
	if c.HasErrors() || c.HasWarnings() || c.Err() != nil {
		t.Fatal("expected empty collector")
	}

	c.ReportWarning("_zoom", "underscore hack property")
	c.ReportError("margin", "bad value")
	c.ReportError("", "unexpected token")

	if !c.HasErrors() || !c.HasWarnings() {
		t.Fatal("expected errors and warnings")
	}
	if n := len(c.Problems()); n != 3 {
		t.Fatalf("expected 3 problems, got %d", n)
	}
	if errs := multierr.Errors(c.Err()); len(errs) != 2 {
		t.Errorf("expected 2 combined errors, got %d", len(errs))
	}
	if got := c.Problems()[1].Error(); got != "margin: bad value" {
		t.Errorf("unexpected problem text %q", got)
	}
	if got := c.Problems()[2].Error(); got != "unexpected token" {
		t.Errorf("unexpected problem text %q", got)
	}

	c.Reset()
	if c.HasErrors() || c.HasWarnings() || len(c.Problems()) != 0 {
		t.Error("expected collector to be empty after reset")
	}
}

func TestReportErr(t *testing.T) {
	c := diag.NewCollector(nil)
	err := multierr.Combine(
		errors.New("first"),
		diag.Problem{Message: "soft", Warning: true},
		errors.New("second"),
	)
	diag.ReportErr(c, "font", err)

	problems := c.Problems()
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %d", len(problems))
	}
	if !problems[1].Warning || problems[1].Message != "soft" {
		t.Errorf("expected warning to be kept, got %+v", problems[1])
	}
	for _, p := range problems {
		if p.Scope != "font" {
			t.Errorf("unexpected scope %q", p.Scope)
		}
	}

	diag.ReportErr(c, "font", nil)
	diag.ReportErr(nil, "font", err)
	if len(c.Problems()) != 3 {
		t.Error("nil error or handler must be ignored")
	}
}

func TestDiscard(t *testing.T) {
	diag.Discard.ReportError("a", "b")
	diag.Discard.ReportWarning("a", "b")
	if diag.Discard.HasErrors() || diag.Discard.HasWarnings() {
		t.Error("discard handler must not keep anything")
	}
}
