package scan

import (
	"regexp"
	"strings"
)

// StateID names a state in the fixed routing table.
type StateID int

const (
	Idle StateID = iota
	Define
	Checkdom
	Checkpo
	Comment
	Str02
	Tag
	Getinf
	Str01
	Str10
	Str20
	Golua
	Final
)

func (s StateID) String() string {
	switch s {
	case Idle:
		return "idle"
	case Define:
		return "define"
	case Checkdom:
		return "checkdom"
	case Checkpo:
		return "checkpo"
	case Comment:
		return "comment"
	case Str02:
		return "str02"
	case Tag:
		return "tag"
	case Getinf:
		return "getinf"
	case Str01:
		return "str01"
	case Str10:
		return "str10"
	case Str20:
		return "str20"
	case Golua:
		return "golua"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// Match wraps a regexp submatch so states can ask for a capture group's
// text and whether it participated at all, and recover the offset just
// past the whole match — all of which plain FindStringSubmatch conflates
// into ambiguous empty strings.
type Match struct {
	text string
	idx  []int // as returned by FindStringSubmatchIndex
}

// Group returns capture group i's text and whether it matched at all.
func (m Match) Group(i int) (string, bool) {
	lo, hi := m.idx[2*i], m.idx[2*i+1]
	if lo < 0 {
		return "", false
	}
	return m.text[lo:hi], true
}

// End is the byte offset in the original text just past the whole match.
func (m Match) End() int { return m.idx[1] }

// action runs a state against the remaining text of the current line. A
// zero-value Match means the state has no pattern of its own (idle,
// str20, final) and always runs.
type action func(c *Context, text string, lineno int, m Match) (remaining *string, next StateID, err error)

type stateDef struct {
	pattern     *regexp.Regexp // nil: always runs, no fallback possible
	fallback    StateID
	hasFallback bool
	run         action
}

// blankLine matches a line (or line remainder) with nothing but whitespace.
var blankLine = regexp.MustCompile(`^\s*$`)

// defineLine recognizes "#define NAME ...", "#enddef", and the
// "#wmlxgettext:" escape prefix. The character class here is "[ \t]"
// rather than the original tooling's "[ |\t]" — that extra '|' inside the
// class admits a literal pipe character between "define" and the macro
// name, which is plainly not the intent.
var defineLine = regexp.MustCompile(`(?i)^\s*#(define[ \t][^\n]+|enddef|\s+wmlxgettext:\s+)`)

var textdomainLine = regexp.MustCompile(`(?i)^\s*#textdomain\s+(\S+)`)

var poLine = regexp.MustCompile(`(?i)^\s*#\s*(wmlxgettext|po-override|po):\s+(.+)`)

var commentLine = regexp.MustCompile(`^\s*#.+`)

// str02Line recognizes a heredoc translatable string; it refuses to match
// if an unescaped '"' precedes "_ <<" so a line mixing an ordinary string
// with a heredoc still reaches str01 for the ordinary part first.
var str02Line = regexp.MustCompile(`^[^"]*_\s*<<(?:(.*?)>>|(.*))`)

// tagLine recognizes "[name]", "[/name]", "[+name]", "[-name]", optionally
// preceded by an unquoted prefix ending in "(" (a macro-call opener).
var tagLine = regexp.MustCompile(`^\s*(?:[^"]+\(\s*)?\[\s*([/+-]?)\s*([A-Za-z0-9_]+)\s*\]`)

var getinfLine = regexp.MustCompile(`(?i)^\s*(speaker|id|role|description|condition|type|race)\s*=\s*(.*)`)

// str01Line recognizes an ordinary quoted string, optionally preceded by
// the translation sigil; "" is the internal escape for a literal quote.
var str01Line = regexp.MustCompile(`^(?:[^"]*?)\s*(_?)\s*"((?:""|[^"])*)("?)`)

var str10Line = regexp.MustCompile(`^((?:""|[^"])*)("?)`)

var str20Opener = regexp.MustCompile(`^(.*?)>>`)

var goluaLine = regexp.MustCompile(`^.*?<<\s*`)

var states [Final + 1]stateDef

func init() {
	states[Idle] = stateDef{run: idleAction}
	states[Define] = stateDef{pattern: defineLine, fallback: Checkdom, hasFallback: true, run: defineAction}
	states[Checkdom] = stateDef{pattern: textdomainLine, fallback: Checkpo, hasFallback: true, run: checkdomAction}
	states[Checkpo] = stateDef{pattern: poLine, fallback: Comment, hasFallback: true, run: checkpoAction}
	states[Comment] = stateDef{pattern: commentLine, fallback: Str02, hasFallback: true, run: commentAction}
	states[Str02] = stateDef{pattern: str02Line, fallback: Tag, hasFallback: true, run: str02Action}
	states[Tag] = stateDef{pattern: tagLine, fallback: Getinf, hasFallback: true, run: tagAction}
	states[Getinf] = stateDef{pattern: getinfLine, fallback: Str01, hasFallback: true, run: getinfAction}
	states[Str01] = stateDef{pattern: str01Line, fallback: Golua, hasFallback: true, run: str01Action}
	states[Str10] = stateDef{pattern: str10Line, fallback: Str10, hasFallback: true, run: str10Action}
	states[Str20] = stateDef{run: str20Action}
	states[Golua] = stateDef{pattern: goluaLine, fallback: Final, hasFallback: true, run: goluaAction}
	states[Final] = stateDef{run: finalAction}
}

func strPtr(s string) *string { return &s }

func idleAction(c *Context, text string, lineno int, _ Match) (*string, StateID, error) {
	c.storePending()
	if blankLine.MatchString(text) {
		return nil, Idle, nil
	}
	return strPtr(text), Define, nil
}

func defineAction(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	directive, _ := m.Group(1)
	upper := strings.ToUpper(directive)
	switch {
	case strings.HasPrefix(upper, "DEFINE"):
		rest := strings.TrimSpace(directive[len("define "):])
		name := strings.SplitN(rest, " ", 2)[0]
		c.Define = &DefineFrame{Name: name, Line: lineno}
		return nil, Idle, nil
	case strings.EqualFold(directive, "ENDDEF"):
		if c.Define != nil {
			c.Define = nil
		} else {
			c.Warnf("found an #enddef at line %d, but no macro definition is pending", lineno)
		}
		return nil, Idle, nil
	default:
		// "#wmlxgettext: <code>" — strip the prefix, re-scan the remainder.
		return strPtr(text[m.End():]), Idle, nil
	}
}

func checkdomAction(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	domain, _ := m.Group(1)
	c.Domain = domain
	return nil, Idle, nil
}

func checkpoAction(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	kind, _ := m.Group(1)
	body, _ := m.Group(2)
	switch {
	case strings.EqualFold(kind, "wmlxgettext"):
		return strPtr(body), Idle, nil
	case strings.EqualFold(kind, "po"):
		c.AddedInfo = append(c.AddedInfo, body)
		return nil, Idle, nil
	default: // po-override
		c.OverrideInfo = append(c.OverrideInfo, body)
		return nil, Idle, nil
	}
}

func commentAction(c *Context, text string, lineno int, _ Match) (*string, StateID, error) {
	return nil, Idle, nil
}

func str02Action(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	if single, ok := m.Group(1); ok {
		c.Pending = newPendingString(lineno, single, false, true, true, "")
		return strPtr(text[m.End():]), Idle, nil
	}
	if multi, ok := m.Group(2); ok {
		c.Pending = newPendingString(lineno, multi, true, true, true, "")
		return nil, Str20, nil
	}
	return nil, Idle, &InvariantError{State: Str02, Msg: "pattern matched but neither single- nor multi-line group captured"}
}

func tagAction(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	marker, _ := m.Group(1)
	name, _ := m.Group(2)
	if marker == "/" {
		c.Nodes.Pop(name, c.Warnf)
		if name == "lua" {
			c.InScript = false
		}
	} else {
		c.Nodes.Push(name)
		if name == "lua" {
			c.InScript = true
		}
	}
	c.AddedInfo = nil
	c.OverrideInfo = nil
	return strPtr(text[m.End():]), Idle, nil
}

func getinfAction(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	attr, _ := m.Group(1)
	value, _ := m.Group(2)
	if strings.Contains(value, `"`) {
		c.pendingInfo = strings.ToLower(attr)
		return strPtr(text), Str01, nil
	}
	c.Collector.RecordInfo(attr, value)
	return nil, Idle, nil
}

func str01Action(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	sigil, _ := m.Group(1)
	body, _ := m.Group(2)
	closer, _ := m.Group(3)
	infoType := c.pendingInfo
	c.pendingInfo = ""
	if closer == "" {
		c.Pending = newPendingString(lineno, body, true, sigil == "_", false, infoType)
		return nil, Str10, nil
	}
	c.Pending = newPendingString(lineno, body, false, sigil == "_", false, infoType)
	return strPtr(text[m.End():]), Idle, nil
}

func str10Action(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	body, _ := m.Group(1)
	closer, _ := m.Group(2)
	c.Pending.AddLine(body)
	if closer == "" {
		return nil, Str10, nil
	}
	return strPtr(text[m.End():]), Idle, nil
}

func str20Action(c *Context, text string, lineno int, _ Match) (*string, StateID, error) {
	if loc := str20Opener.FindStringSubmatch(text); loc != nil {
		c.Pending.AddLine(loc[1])
		return strPtr(text[len(loc[0]):]), Idle, nil
	}
	c.Pending.AddLine(text)
	return nil, Str20, nil
}

func goluaAction(c *Context, text string, lineno int, m Match) (*string, StateID, error) {
	if c.InScript {
		rest := text[m.End():]
		if skipped, ok := c.ScriptSkip(rest); ok {
			return strPtr(skipped), Idle, nil
		}
		return nil, Idle, nil
	}
	return strPtr(text), Final, nil
}

func finalAction(c *Context, text string, lineno int, _ Match) (*string, StateID, error) {
	c.storePending()
	return nil, Idle, nil
}

// step runs the fallback cascade starting at start against text, until
// some state's pattern matches (or a pattern-less state is reached),
// and returns that state's result.
func step(c *Context, start StateID, text string, lineno int) (*string, StateID, error) {
	state := start
	for {
		def := states[state]
		if def.pattern == nil {
			return def.run(c, text, lineno, Match{})
		}
		idx := def.pattern.FindStringSubmatchIndex(text)
		if idx != nil {
			return def.run(c, text, lineno, Match{text: text, idx: idx})
		}
		if !def.hasFallback {
			return nil, Idle, &InvariantError{State: state, Msg: "pattern did not match and no fallback is defined"}
		}
		state = def.fallback
	}
}

// ScanLine drives one line of input through the state table. It resumes
// wherever the previous line's multiline string continuation (str10 or
// str20) left off, or at Idle for an ordinary line.
func (c *Context) ScanLine(lineno int, line string) error {
	cur := &line
	state := c.resume
	for cur != nil {
		rem, next, err := step(c, state, *cur, lineno)
		if err != nil {
			return err
		}
		cur = rem
		state = next
	}
	c.resume = state
	return nil
}
