package diag

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/folio/pkg/ast"
)

func TestAtFillsDetachedSpan(t *testing.T) {
	span := ast.Span{File: 1, Start: 4, End: 9}
	err := At(span, Errorf(ast.Detached, "cannot add integer and string"))

	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("At returned %T, want *Diagnostic", err)
	}
	if d.Span != span {
		t.Errorf("span = %v, want %v", d.Span, span)
	}
}

func TestAtKeepsExistingSpan(t *testing.T) {
	inner := ast.Span{File: 1, Start: 1, End: 2}
	err := At(ast.Span{File: 1, Start: 10, End: 20}, Errorf(inner, "boom"))

	var d *Diagnostic
	errors.As(err, &d)
	if d.Span != inner {
		t.Errorf("span = %v, want %v", d.Span, inner)
	}
}

func TestAtWrapsPlainErrors(t *testing.T) {
	span := ast.Span{File: 2, Start: 0, End: 3}
	err := At(span, errors.New("file not found"))

	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("At returned %T, want *Diagnostic", err)
	}
	if d.Message != "file not found" || d.Span != span {
		t.Errorf("got %q at %v", d.Message, d.Span)
	}
}

func TestHintsRenderInError(t *testing.T) {
	d := Errorf(ast.Detached, "unknown variable: x").WithHint("if you meant to display x, write `#x`")
	if !strings.Contains(d.Error(), "hint: if you meant") {
		t.Errorf("Error() = %q, missing hint", d.Error())
	}
}

func TestNilSinkDiscards(t *testing.T) {
	var s *Sink
	s.Warn(Warnf(ast.Detached, "ignored"))
	if len(s.Warnings()) != 0 {
		t.Error("nil sink should not collect warnings")
	}

	s = &Sink{}
	s.Warn(Errorf(ast.Detached, "downgraded"))
	if got := s.Warnings(); len(got) != 1 || got[0].Severity != SeverityWarning {
		t.Errorf("warnings = %v", got)
	}
}
