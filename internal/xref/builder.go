package xref

import (
	"regexp"
	"strings"

	"github.com/wesnoth-tools/wmlxgettext/internal/wml/token"
)

var (
	defineOpen  = regexp.MustCompile(`(?i)^\s*#define[ \t]+(.+)$`)
	enddefLine  = regexp.MustCompile(`(?i)^\s*#enddef\s*$`)
	argOpen     = regexp.MustCompile(`(?i)^\s*#arg[ \t]+(\S+)\s*$`)
	defaultLine = regexp.MustCompile(`(?i)^\s*#default\s*$`)
	endargLine  = regexp.MustCompile(`(?i)^\s*#endarg\s*$`)
)

// Builder accumulates corpus files and produces a MemIndex from them. It
// runs two passes over the retained lines: one to collect every macro
// definition, one to collect every call site and attach it to every
// Definition sharing that name. The corpus does not model #undef
// rescoping, so a name with multiple definitions (in different files, or
// redefined later in the same file) simply shares one call-site list
// across all of them.
type Builder struct {
	files map[string][]string
	order []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{files: map[string][]string{}}
}

// AddFile retains filename's lines (1-based line numbering is implied by
// slice position) for the next Build call.
func (b *Builder) AddFile(filename string, lines []string) {
	if _, ok := b.files[filename]; !ok {
		b.order = append(b.order, filename)
	}
	b.files[filename] = lines
}

// Build runs both passes and returns the resulting index.
func (b *Builder) Build() *MemIndex {
	idx := newMemIndex()
	for _, fname := range b.order {
		idx.collectDefinitions(fname, b.files[fname])
	}
	for _, fname := range b.order {
		idx.collectCallSites(fname, b.files[fname])
	}
	return idx
}

type argBlock struct {
	name         string
	sawDefault   bool
	defaultLines []string
}

func (idx *MemIndex) collectDefinitions(filename string, lines []string) {
	var open *Definition
	var block *argBlock

	for i, raw := range lines {
		lineno := i + 1
		switch {
		case open == nil:
			if m := defineOpen.FindStringSubmatch(raw); m != nil {
				fields := strings.Fields(m[1])
				if len(fields) == 0 {
					continue
				}
				open = &Definition{
					Name:         fields[0],
					Filename:     filename,
					Lineno:       lineno,
					Args:         fields[1:],
					OptionalArgs: map[string]string{},
					References:   map[string][]CallSite{},
				}
			}
		case enddefLine.MatchString(raw):
			open.LinenoEnd = lineno
			idx.add(open)
			open, block = nil, nil
		case block != nil:
			switch {
			case endargLine.MatchString(raw):
				open.OptionalArgs[block.name] = strings.Join(block.defaultLines, "\n")
				block = nil
			case defaultLine.MatchString(raw):
				block.sawDefault = true
			case block.sawDefault:
				block.defaultLines = append(block.defaultLines, raw)
			}
		default:
			if m := argOpen.FindStringSubmatch(raw); m != nil {
				block = &argBlock{name: m[1]}
				continue
			}
			open.Body = append(open.Body, raw)
		}
	}
}

func (idx *MemIndex) collectCallSites(filename string, lines []string) {
	for i, raw := range lines {
		lineno := i + 1
		for _, call := range scanCallSites(raw) {
			positional, named := splitCallArgs(call.args)
			idx.recordCallSite(call.name, filename, lineno, positional, named)
		}
	}
}

type rawCall struct {
	name string
	args string
}

// scanCallSites finds every "{NAME ...}" span in raw, at any nesting
// depth, pairing each opener with its matching closer via a stack walk.
// A macro call is assumed to never span multiple lines.
func scanCallSites(raw string) []rawCall {
	elements, _ := token.Split(raw)
	var stack []token.Element
	var calls []rawCall
	for _, el := range elements {
		switch el.Kind {
		case token.Open:
			stack = append(stack, el)
		case token.Close:
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			calls = append(calls, rawCall{
				name: open.Text[1:],
				args: raw[open.End():el.Start],
			})
		}
	}
	return calls
}

// splitCallArgs tokenizes a call's raw argument text on top-level
// whitespace, treating "(...)"/"{...}" groups and "..." quoted spans as
// single atomic tokens, then separates "name=value" bare-word tokens out
// as named arguments.
func splitCallArgs(raw string) (positional []string, named map[string]string) {
	named = map[string]string{}
	for _, tok := range tokenizeCallArgs(raw) {
		if name, value, ok := splitNamedArg(tok); ok {
			named[name] = value
			continue
		}
		positional = append(positional, tok)
	}
	return positional, named
}

func tokenizeCallArgs(raw string) []string {
	var tokens []string
	i, n := 0, len(raw)
	for i < n {
		switch c := raw[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			// A parenthesized span is a single argument; its delimiters
			// are not part of the value, mirroring the AST parser's own
			// argument-splitting rule.
			j := matchBalanced(raw, i, '(', ')')
			inner := raw[i+1 : j]
			inner = strings.TrimSuffix(inner, ")")
			tokens = append(tokens, inner)
			i = j
		case c == '{':
			j := matchBalanced(raw, i, '{', '}')
			tokens = append(tokens, raw[i:j])
			i = j
		case c == '"':
			j := i + 1
			for j < n && raw[j] != '"' {
				j++
			}
			if j < n {
				j++
			}
			tokens = append(tokens, raw[i:j])
			i = j
		default:
			j := i
			for j < n && raw[j] != ' ' && raw[j] != '\t' && raw[j] != '(' && raw[j] != '{' && raw[j] != '"' {
				j++
			}
			tokens = append(tokens, raw[i:j])
			i = j
		}
	}
	return tokens
}

func matchBalanced(s string, start int, open, close byte) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

func splitNamedArg(tok string) (name, value string, ok bool) {
	if tok == "" {
		return "", "", false
	}
	switch tok[0] {
	case '(', '{', '"':
		return "", "", false
	}
	eq := strings.IndexByte(tok, '=')
	if eq <= 0 {
		return "", "", false
	}
	return tok[:eq], tok[eq+1:], true
}
