// Package scan implements the character-level state-machine scanner: a
// deterministic dispatcher that walks configuration source line by line,
// recognizing directives, tags, attribute assignments, and the two
// quoted-text syntaxes, and reports completed translatable strings (and
// informational attributes) to a Collector.
//
// All mutable scan state that the original tooling kept in module
// globals — current textdomain, pending string, node stack, pending
// comment buffers, the open #define frame, the embedded-script flag —
// lives on Context instead, passed by reference into every state action.
package scan

import (
	"fmt"
	"strings"

	"github.com/wesnoth-tools/wmlxgettext/internal/luascript"
)

// EmittedString is the payload handed to Collector.EmitString once a
// PendingString is stored.
type EmittedString struct {
	Text         string
	Line         int
	Multiline    bool
	Translatable bool
	Raw          bool
	Textdomain   string
	NodeStack    []string
	AddedInfo    []string
	OverrideInfo []string
	// InfoType names the recognized attribute (speaker, id, role, ...)
	// this string was captured from, empty for an ordinary string.
	InfoType string
}

// Collector receives scan output. It is implemented by the node/domain
// bookkeeping layer (internal/domain), which is otherwise opaque to scan.
type Collector interface {
	EmitString(EmittedString)
	// RecordInfo handles a recognized attribute whose value contained no
	// quote — not translatable, just contextual bookkeeping (e.g. id=foo).
	RecordInfo(attr, value string)
}

// PendingString is a mutable buffer holding an in-progress translatable
// (or informational) string: created on an opening quote or heredoc
// token, grown by AddLine across continuation lines, and consumed once
// by the Context that owns it.
type PendingString struct {
	Line         int
	lines        []string
	Multiline    bool
	Translatable bool
	Raw          bool
	InfoType     string
}

func newPendingString(line int, first string, multiline, translatable, raw bool, infoType string) *PendingString {
	return &PendingString{
		Line:         line,
		lines:        []string{first},
		Multiline:    multiline,
		Translatable: translatable,
		Raw:          raw,
		InfoType:     infoType,
	}
}

// AddLine appends a continuation line's contribution to the buffer.
func (p *PendingString) AddLine(s string) { p.lines = append(p.lines, s) }

// Text joins the buffered lines with newlines, reproducing the original
// multiline body.
func (p *PendingString) Text() string { return strings.Join(p.lines, "\n") }

// NodeStack is the runtime stack of opened tag names ("[name]" without
// the brackets), scoping the contextual attributes attached to strings.
type NodeStack struct {
	names []string
}

// Push opens a tag.
func (s *NodeStack) Push(name string) { s.names = append(s.names, name) }

// Pop closes a tag. A name mismatch is reported through warnf but still
// pops the innermost frame — the stack recovers from a single bad
// closer rather than staying corrupted for the rest of the file.
func (s *NodeStack) Pop(name string, warnf func(string, ...any)) {
	if len(s.names) == 0 {
		warnf("unmatched closing tag [/%s]: node stack is empty", name)
		return
	}
	top := s.names[len(s.names)-1]
	if top != name {
		warnf("closing tag [/%s] does not match open tag [%s]", name, top)
	}
	s.names = s.names[:len(s.names)-1]
}

// Snapshot returns the current stack, outermost first, safe for the
// caller to retain.
func (s *NodeStack) Snapshot() []string { return append([]string(nil), s.names...) }

// DefineFrame records an open "#define NAME ..." awaiting its "#enddef".
type DefineFrame struct {
	Name string
	Line int
}

// InvariantError reports an internal assertion failure — a state's
// pattern matched but its action could not make sense of the result.
// The caller should abort scanning the current file on this error.
type InvariantError struct {
	State StateID
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("scan: invariant violation in state %v: %s", e.State, e.Msg)
}

// Context carries every piece of scan state threaded through the state
// table, plus the hooks that let the core stay decoupled from logging
// and from the embedded-script tokenizer.
type Context struct {
	Domain       string
	Pending      *PendingString
	AddedInfo    []string
	OverrideInfo []string
	Nodes        NodeStack
	Define       *DefineFrame
	InScript     bool
	pendingInfo  string // attribute type recorded by getinf, consumed by str01

	Collector Collector
	// Warnf reports a non-fatal diagnostic; defaults to a no-op.
	Warnf func(format string, args ...any)
	// ScriptSkip steps over one embedded-script string literal; defaults
	// to luascript.SkipString.
	ScriptSkip func(line string) (rest string, ok bool)

	// resume is the state a multiline continuation (str10/str20) left
	// off in, carried across ScanLine calls. Every other state resolves
	// back to Idle before a line is exhausted, so this is the only
	// cross-line memory the dispatcher needs.
	resume StateID
}

// NewContext builds a Context ready to scan, reporting completed strings
// to collector. warnf may be nil, in which case diagnostics are dropped.
func NewContext(collector Collector, warnf func(string, ...any)) *Context {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Context{
		Collector:  collector,
		Warnf:      warnf,
		ScriptSkip: luascript.SkipString,
	}
}

// storePending commits the pending string, if any, to the collector,
// stamping it with the domain, node-stack snapshot, and whatever
// added/override comments are currently pending. Unlike the pending
// string itself, the comment buffers are not cleared here — only a tag
// boundary resets them, matching the scanner's grounding behavior.
func (c *Context) storePending() {
	if c.Pending == nil {
		return
	}
	c.Collector.EmitString(EmittedString{
		Text:         c.Pending.Text(),
		Line:         c.Pending.Line,
		Multiline:    c.Pending.Multiline,
		Translatable: c.Pending.Translatable,
		Raw:          c.Pending.Raw,
		Textdomain:   c.Domain,
		NodeStack:    c.Nodes.Snapshot(),
		AddedInfo:    c.AddedInfo,
		OverrideInfo: c.OverrideInfo,
		InfoType:     c.Pending.InfoType,
	})
	c.Pending = nil
}

// Flush commits any string still pending at end-of-file.
func (c *Context) Flush() { c.storePending() }
