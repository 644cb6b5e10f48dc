package ast

import "strings"

// Render materializes the tree into a string, substituting every
// Expandable node whose name is a key of bindings with the bound value,
// and re-emitting "{NAME arg1 arg2 … argN}" (arguments separated by a
// single space) for every Expandable left unbound.
//
// A Literal node with an empty value only ever arises from an empty
// parenthesized argument span, e.g. the "()" in "{GREET (message) ()}";
// by convention it renders back as "()" to preserve that form.
func (t *Tree) Render(bindings map[string]string) string {
	return t.render(Root, bindings)
}

// RenderChild renders a single node of the tree rather than the whole
// root — used when a caller already knows which child it wants (e.g. one
// positional argument of a macro call), without re-parsing it as a tree
// of its own.
func (t *Tree) RenderChild(ref NodeRef, bindings map[string]string) string {
	return t.render(ref, bindings)
}

func (t *Tree) render(ref NodeRef, bindings map[string]string) string {
	n := &t.nodes[ref]
	switch n.kind {
	case KindLiteral:
		if n.text == "" {
			return "()"
		}
		return n.text
	case KindExpandable:
		if bound, ok := bindings[n.name]; ok {
			return bound
		}
		parts := make([]string, 0, len(n.children)+1)
		parts = append(parts, "{"+n.name)
		for _, c := range n.children {
			parts = append(parts, t.render(c, bindings))
		}
		return strings.Join(parts, " ") + "}"
	default: // KindRoot
		var sb strings.Builder
		for _, c := range n.children {
			sb.WriteString(t.render(c, bindings))
		}
		return sb.String()
	}
}

// HasBrace reports whether s still contains an unresolved macro reference,
// i.e. an opening '{' — this is the specification's has_brace, deliberately
// defined on '{' rather than '}' (the ambiguous revision in the original
// tooling used '}', which does not actually detect unresolved references).
func HasBrace(s string) bool { return strings.Contains(s, "{") }
