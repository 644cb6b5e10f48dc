package token

import (
	"fmt"
	"strings"
)

// Frame is one line of a multi-line input, exposing the structural split
// of that line on demand.
type Frame struct {
	Text string
}

// Elements classifies the macro openers/closers in the frame's text.
func (f Frame) Elements() ([]Element, []int) { return Split(f.Text) }

// Iterator yields one Frame per line of a multi-line input. It performs no
// validation — see StrictIterator for the variant that does.
type Iterator struct {
	lines []string
	pos   int
}

// NewIterator splits input on newlines and returns an Iterator over the
// resulting lines.
func NewIterator(input string) *Iterator {
	return &Iterator{lines: strings.Split(input, "\n")}
}

// Next returns the next frame, or ok=false once every line is consumed.
func (it *Iterator) Next() (Frame, bool) {
	if it.pos >= len(it.lines) {
		return Frame{}, false
	}
	f := Frame{Text: it.lines[it.pos]}
	it.pos++
	return f, true
}

// MalformedError reports a structurally invalid line encountered by
// StrictIterator.
type MalformedError struct {
	Line string
	Pos  int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed macro token at byte %d of %q", e.Pos, e.Line)
}

// StrictIterator behaves like Iterator, but rejects a line containing an
// unescaped "{{" — two opener braces with no identifier between them — a
// shape the element grammar does not support. It is used only by the AST
// parser (internal/wml/ast), which bails the current parse on this error
// and keeps scanning; the plain Iterator used elsewhere never validates.
type StrictIterator struct {
	Iterator
}

// NewStrictIterator is the validating counterpart of NewIterator.
func NewStrictIterator(input string) *StrictIterator {
	return &StrictIterator{Iterator: Iterator{lines: strings.Split(input, "\n")}}
}

// Next returns the next frame, or an error if the line is malformed.
func (it *StrictIterator) Next() (Frame, bool, error) {
	f, ok := it.Iterator.Next()
	if !ok {
		return Frame{}, false, nil
	}
	if idx := strings.Index(f.Text, "{{"); idx >= 0 {
		return Frame{}, false, &MalformedError{Line: f.Text, Pos: idx}
	}
	return f, true, nil
}
