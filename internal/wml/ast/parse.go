package ast

import (
	"fmt"

	"github.com/wesnoth-tools/wmlxgettext/internal/wml/token"
)

// OnMacro is invoked once per closed Expandable node, in source order.
type OnMacro func(t *Tree, ref NodeRef)

// Parse builds an AST out of input (a translatable sentence, or a single
// macro call argument). onMacro, if non-nil, fires for every Expandable
// node as soon as its closing brace is seen.
//
// Parse tolerates an unbalanced closing brace at the root: it is a no-op
// rather than an error (the strict iterator only rejects "{{"), since a
// translator-facing sentence containing a stray '}' should still make it
// into the catalog.
func Parse(input string, onMacro OnMacro) (*Tree, error) {
	t := newTree(input)
	it := token.NewStrictIterator(input)

	lineOffset := 0
	for {
		frame, ok, err := it.Next()
		if err != nil {
			return t, fmt.Errorf("ast: %w", err)
		}
		if !ok {
			break
		}
		elements, _ := frame.Elements()
		for _, el := range elements {
			start := lineOffset + el.Start
			end := lineOffset + el.End()
			switch el.Kind {
			case token.Close:
				t.fillLiteral(start)
				if t.active == Root {
					// Unbalanced close at top level: tolerated by skipping.
					t.nodes[t.active].search = end
					continue
				}
				closed := t.active
				if onMacro != nil {
					onMacro(t, closed)
				}
				t.active = t.nodes[closed].parent
				t.nodes[t.active].search = end
			case token.Open:
				t.fillLiteral(start)
				name := el.Text[1:] // strip leading '{'
				child := t.addChild(t.active, node{kind: KindExpandable, name: name})
				t.nodes[child].search = end
				t.active = child
			case token.Raw:
				// already characterized by the splitter; nothing to do here
			}
		}
		lineOffset += len(frame.Text) + 1 // +1 for the newline Split(input, "\n") consumed
	}
	t.fillLiteral(len(input))
	return t, nil
}
