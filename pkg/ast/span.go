package ast

import "fmt"

// FileID identifies a source file known to the parser collaborator.
// Zero means the span is not attached to any file.
type FileID uint16

// Span is a byte range in a source file. Spans are assigned by the parser
// and are stable for the lifetime of a tree.
type Span struct {
	File  FileID
	Start int
	End   int
}

// Detached is the span of synthesized nodes.
var Detached = Span{}

// IsDetached reports whether the span points nowhere.
func (s Span) IsDetached() bool {
	return s == Detached
}

// Join returns the smallest span covering both s and other.
// Detached spans are ignored.
func (s Span) Join(other Span) Span {
	if s.IsDetached() {
		return other
	}
	if other.IsDetached() || other.File != s.File {
		return s
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

func (s Span) String() string {
	if s.IsDetached() {
		return "detached"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}
