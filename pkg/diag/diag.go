// Package diag holds source diagnostics produced while compiling and
// evaluating a module.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/folio/pkg/ast"
)

// Severity is the level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Tracepoint records a frame the error passed through on its way out.
type Tracepoint struct {
	Span  ast.Span
	Label string
}

// Diagnostic is an error or warning anchored at a span. It implements error
// so that it travels through ordinary Go error returns.
type Diagnostic struct {
	Severity Severity
	Span     ast.Span
	Message  string
	Hints    []string
	Trace    []Tracepoint
}

// Errorf builds an error diagnostic.
func Errorf(span ast.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warnf builds a warning diagnostic.
func Warnf(span ast.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithHint appends a hint and returns the diagnostic for chaining.
func (d *Diagnostic) WithHint(format string, args ...any) *Diagnostic {
	d.Hints = append(d.Hints, fmt.Sprintf(format, args...))
	return d
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Message)
	for _, h := range d.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(h)
	}
	return sb.String()
}

// Format renders the diagnostic in a compiler-like single line.
func (d *Diagnostic) Format(path string) string {
	return fmt.Sprintf("%s:%d-%d: %s: %s", path, d.Span.Start, d.Span.End, d.Severity, d.Message)
}

// At anchors err at span. Diagnostics that already carry a span keep it;
// spanless diagnostics are copied with the span filled in; any other error
// becomes a new error diagnostic with its message.
func At(span ast.Span, err error) error {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		if !d.Span.IsDetached() {
			return d
		}
		cp := *d
		cp.Span = span
		return &cp
	}
	return &Diagnostic{Severity: SeverityError, Span: span, Message: err.Error()}
}

// Trace appends a tracepoint to a diagnostic error. Non-diagnostic errors
// pass through unchanged.
func Trace(err error, span ast.Span, label string) error {
	var d *Diagnostic
	if !errors.As(err, &d) {
		return err
	}
	d.Trace = append(d.Trace, Tracepoint{Span: span, Label: label})
	return d
}

// Sink collects warnings. A nil *Sink discards them.
type Sink struct {
	warnings []*Diagnostic
}

// Warn records a warning.
func (s *Sink) Warn(d *Diagnostic) {
	if s == nil {
		return
	}
	d.Severity = SeverityWarning
	s.warnings = append(s.warnings, d)
}

// Warnings returns the collected warnings in emission order.
func (s *Sink) Warnings() []*Diagnostic {
	if s == nil {
		return nil
	}
	return s.warnings
}
