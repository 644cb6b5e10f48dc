// Package expand implements the expansion driver: given a translatable
// seed string and the macro it was found inside (or none, for a top-level
// string), it produces every concrete string the seed can materialize
// into once every reachable caller's arguments are propagated through it.
package expand

import (
	"strings"

	"github.com/wesnoth-tools/wmlxgettext/internal/wml/ast"
	"github.com/wesnoth-tools/wmlxgettext/internal/xref"
)

// Origin is the (file, line) of the call site a variant's bindings were
// ultimately drawn from — attached to each Result for catalog attribution,
// since the seed string's own location (inside a macro body) is rarely a
// real source location a translator would want to be pointed at.
type Origin struct {
	File string
	Line int
}

// Result is one fully-expanded concrete string.
type Result struct {
	Text string
	// Context is the originating macro identity passed to Expand (the
	// macro the seed was found inside), or nil for a top-level seed. It is
	// the same for every Result of one Expand call: the outer callers'
	// macros that the bindings were propagated through are not recorded.
	Context *xref.ID
	Site    Origin
}

// Logger receives the soft-fault warnings Stage A/B produce; nil is valid
// and simply discards them.
type Logger func(format string, args ...any)

func (l Logger) warnf(format string, args ...any) {
	if l != nil {
		l(format, args...)
	}
}

// Driver runs the expansion algorithm against a cross-reference index and
// a globals table.
type Driver struct {
	Index   xref.Index
	Globals map[string]GlobalMacro
	Warnf   Logger
}

// NewDriver returns a Driver wired to idx, using DefaultGlobals if globals
// is nil.
func NewDriver(idx xref.Index, globals map[string]GlobalMacro, warnf Logger) *Driver {
	if globals == nil {
		globals = DefaultGlobals()
	}
	return &Driver{Index: idx, Globals: globals, Warnf: warnf}
}

// poolEntry is one variant's binding state: args known so far, and either
// the macro identity whose external callers still need walking (Ctx) or
// nil once the variant is terminal.
type poolEntry struct {
	args map[string]string
	ctx  *xref.ID
	site Origin
}

// Expand runs the full driver: Stage A (if originating is non-nil), Stage
// B's deep-replacement pool walk, the globals pre-pass, and Stage C
// materialization.
func (d *Driver) Expand(seed string, originating *xref.ID) []Result {
	tree, err := ast.Parse(seed, nil)
	if err != nil {
		d.Warnf.warnf("expand: seed string could not be parsed, emitting verbatim: %v", err)
		return []Result{{Text: seed}}
	}

	var formals map[string]bool
	var originatingDef *xref.Definition
	if originating != nil {
		originatingDef = d.lookupDefinition(*originating)
		if originatingDef != nil {
			formals = formalSet(originatingDef)
		}
	}
	inlineBranches := d.inlineKnownMacros(tree, formals)

	var pool []poolEntry
	if originating == nil {
		pool = []poolEntry{{args: map[string]string{}}}
	} else {
		def := originatingDef
		if def == nil {
			d.Warnf.warnf("expand: originating macro %s not found in index, emitting seed verbatim", originating.Name)
			return []Result{{Text: seed}}
		}
		pool = d.getArguments(def, nil)
	}

	pool = d.runStageB(pool)

	var results []Result
	for _, entry := range pool {
		// runStageB only leaves an entry with a non-nil ctx once none of its
		// arguments contains a brace, so every entry here is fully bound.
		for _, gb := range inlineBranches {
			bindings := mergeMissing(entry.args, gb)
			results = append(results, Result{
				Text:    tree.Render(bindings),
				Context: originating,
				Site:    entry.site,
			})
		}
	}
	return results
}

// runStageB walks the pool, swap-removing any entry whose context is
// non-nil and whose arguments still contain an unresolved brace, replacing
// it with either a terminal entry (no formal parameters were referenced)
// or one entry per grandparent call site.
func (d *Driver) runStageB(pool []poolEntry) []poolEntry {
	i := 0
	for i < len(pool) {
		entry := pool[i]
		if entry.ctx == nil || !anyBrace(entry.args) {
			i++
			continue
		}
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		pool = append(pool, d.deepen(entry)...)
	}
	return pool
}

func (d *Driver) deepen(entry poolEntry) []poolEntry {
	contextDef := d.lookupDefinition(*entry.ctx)
	if contextDef == nil {
		d.Warnf.warnf("expand: context macro %s not found in index, treating %s as terminal", entry.ctx.Name, entry.ctx.Name)
		return []poolEntry{{args: entry.args, site: entry.site}}
	}

	perParamAST := map[string]*ast.Tree{}
	usedParams := map[string]bool{}
	for name, value := range entry.args {
		if !ast.HasBrace(value) {
			continue
		}
		t, err := ast.Parse(value, func(t *ast.Tree, ref ast.NodeRef) {
			n := t.Name(ref)
			if isFormalOrOptional(contextDef, n) {
				usedParams[n] = true
			} else {
				d.Warnf.warnf("expand: %s references external macro %s, not followed", entry.ctx.Name, n)
			}
		})
		if err != nil {
			d.Warnf.warnf("expand: argument %q for %s could not be parsed: %v", name, entry.ctx.Name, err)
			continue
		}
		perParamAST[name] = t
	}

	if len(usedParams) == 0 {
		return []poolEntry{{args: entry.args, site: entry.site}}
	}

	grandparents := d.getArguments(contextDef, usedParams)
	out := make([]poolEntry, 0, len(grandparents))
	for _, gp := range grandparents {
		merged := mergeMissing(gp.args, entry.args)
		for name, t := range perParamAST {
			merged[name] = t.Render(merged)
		}
		out = append(out, poolEntry{args: merged, ctx: gp.ctx, site: gp.site})
	}
	return out
}

// getArguments implements Stage A: for every call site of def (restricted
// to formal/optional parameter names passing filter, when filter is
// non-nil), build its argument map and enclosing-macro context.
func (d *Driver) getArguments(def *xref.Definition, filter map[string]bool) []poolEntry {
	var out []poolEntry
	for file, sites := range def.References {
		for _, site := range sites {
			if len(site.PositionalArgs) > len(def.Args) {
				d.Warnf.warnf("expand: %s:%d calls %s with %d args, formal list only has %d; truncating",
					file, site.Line, def.Name, len(site.PositionalArgs), len(def.Args))
			}

			args := map[string]string{}
			for i, formal := range def.Args {
				if i >= len(site.PositionalArgs) {
					break
				}
				if filter == nil || filter[formal] {
					args[formal] = site.PositionalArgs[i]
				} else {
					args[formal] = "_ignored_"
				}
			}
			for name, value := range site.NamedArgs {
				if _, ok := def.OptionalArgs[name]; !ok {
					d.Warnf.warnf("expand: %s:%d passes unknown optional argument %q to %s", file, site.Line, name, def.Name)
					continue
				}
				if filter == nil || filter[name] {
					args[name] = value
				} else {
					args[name] = "_ignored_"
				}
			}
			for name, defaultVal := range def.OptionalArgs {
				if _, ok := args[name]; ok {
					continue
				}
				if filter == nil || filter[name] {
					args[name] = defaultVal
				} else {
					args[name] = "_ignored_"
				}
			}

			if containsUntranslatableQuote(args) {
				d.Warnf.warnf("expand: %s:%d call to %s has a quoted argument, untranslatable; dropped", file, site.Line, def.Name)
				continue
			}

			var ctx *xref.ID
			if encl := d.Index.At(file, site.Line); encl != nil {
				ctx = &xref.ID{Name: encl.Name, File: encl.Filename, Line: encl.Lineno}
			}
			out = append(out, poolEntry{args: args, ctx: ctx, site: Origin{File: file, Line: site.Line}})
		}
	}
	return out
}

func (d *Driver) lookupDefinition(id xref.ID) *xref.Definition {
	for _, def := range d.Index.Definitions(id.Name) {
		if def.Filename == id.File && def.Lineno == id.Line {
			return def
		}
	}
	return nil
}

// inlineKnownMacros walks tree for macro references that can be resolved
// entirely from their own call (no external caller lookup needed): the
// globals table, and any corpus macro satisfying the embeddability filter.
// A name in skip — the originating macro's own formal/optional parameters,
// when there is one — is left alone for Stage C to bind later. It returns
// one binding map per fan-out branch (a single map when nothing
// multi-bodied was found). A macro with no formal parameters contributes
// a constant binding from its first body only, without branching; a
// macro with formals (a multi-body global, or multiple embeddable
// definitions sharing a name) evaluates the call's own literal arguments
// against each body in turn, branching the whole seed once per body.
func (d *Driver) inlineKnownMacros(tree *ast.Tree, skip map[string]bool) []map[string]string {
	branches := []map[string]string{{}}
	var walk func(ref ast.NodeRef)
	walk = func(ref ast.NodeRef) {
		if tree.Kind(ref) != ast.KindExpandable {
			for _, c := range tree.Children(ref) {
				walk(c)
			}
			return
		}
		name := tree.Name(ref)
		if skip[name] {
			return
		}

		bodies, formals := d.bodiesFor(name)
		if bodies == nil {
			for _, c := range tree.Children(ref) {
				walk(c)
			}
			return
		}
		if len(formals) == 0 {
			if len(bodies) > 0 {
				for _, b := range branches {
					b[name] = bodies[0]
				}
			}
			return
		}

		children := tree.Children(ref)
		callArgs := map[string]string{}
		for i, argName := range formals {
			if i < len(children) {
				callArgs[argName] = tree.RenderChild(children[i], nil)
			}
		}

		var next []map[string]string
		for _, bodySrc := range bodies {
			bodyTree, err := ast.Parse(bodySrc, nil)
			if err != nil {
				d.Warnf.warnf("expand: macro %s body %q could not be parsed: %v", name, bodySrc, err)
				continue
			}
			value := bodyTree.Render(callArgs)
			for _, b := range branches {
				nb := cloneMap(b)
				nb[name] = value
				next = append(next, nb)
			}
		}
		if next != nil {
			branches = next
		}
	}
	walk(ast.Root)
	return branches
}

// bodiesFor reports the candidate bodies and shared formal-parameter list
// for name, checking the globals table first and falling back to every
// embeddable corpus definition sharing that name (a non-embeddable
// definition is logged once and skipped, per the embeddability filter).
// A nil bodies slice means name is neither a global nor a known macro with
// at least one embeddable definition, and should be left for ordinary
// parameter binding or re-emitted unresolved.
func (d *Driver) bodiesFor(name string) (bodies []string, formals []string) {
	if g, ok := d.Globals[name]; ok {
		return g.Bodies, g.Args
	}
	defs := d.Index.Definitions(name)
	if len(defs) == 0 {
		return nil, nil
	}
	var out []string
	for _, def := range defs {
		if !def.Embeddable() {
			d.Warnf.warnf("expand: %s is not embeddable (body spans multiple lines or contains a quote), skipped in nested expansion", name)
			continue
		}
		out = append(out, strings.Join(def.Body, "\n"))
	}
	if out == nil {
		return nil, nil
	}
	return out, defs[0].Args
}

func formalSet(def *xref.Definition) map[string]bool {
	out := make(map[string]bool, len(def.Args)+len(def.OptionalArgs))
	for _, a := range def.Args {
		out[a] = true
	}
	for name := range def.OptionalArgs {
		out[name] = true
	}
	return out
}

func isFormalOrOptional(def *xref.Definition, name string) bool {
	for _, a := range def.Args {
		if a == name {
			return true
		}
	}
	_, ok := def.OptionalArgs[name]
	return ok
}

func anyBrace(args map[string]string) bool {
	for _, v := range args {
		if ast.HasBrace(v) {
			return true
		}
	}
	return false
}

func containsUntranslatableQuote(args map[string]string) bool {
	for _, v := range args {
		if strings.ContainsRune(v, '"') {
			return true
		}
	}
	return false
}

// mergeMissing returns a copy of base with every key of extra that base
// doesn't already have.
func mergeMissing(base, extra map[string]string) map[string]string {
	out := cloneMap(base)
	for k, v := range extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
