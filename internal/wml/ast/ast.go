// Package ast parses a translatable sentence (or a single macro call
// argument) into a tree of literal text and macro-call nodes, and renders
// that tree back into a string once some of its macro calls are bound to
// concrete argument values.
//
// The tree is arena-indexed rather than built from nodes holding Go
// pointers to their parents: every node lives in Tree.nodes and refers to
// its parent/children by slice index. This sidesteps the cyclic
// parent-pointer ownership the original design relied on and keeps walks
// (Render, the on-macro callback) simple index arithmetic instead of
// interior mutability.
package ast

// Kind discriminates the three node shapes a Tree can hold.
type Kind int

const (
	// KindRoot is always node index 0: the tree's own root.
	KindRoot Kind = iota
	// KindLiteral is a leaf carrying a verbatim text span.
	KindLiteral
	// KindExpandable is an interior node naming a macro call; its
	// children are the call's positional arguments in source order.
	KindExpandable
)

// NodeRef is an index into a Tree's node arena. The root is always 0.
type NodeRef int

const Root NodeRef = 0

type node struct {
	kind     Kind
	parent   NodeRef // -1 only for the root
	text     string  // KindLiteral
	name     string  // KindExpandable
	children []NodeRef
	search   int // fill cursor, meaningful only while this node is active
}

// Tree is a parsed AST, as produced by Parse.
type Tree struct {
	src    string
	nodes  []node
	active NodeRef
}

func newTree(src string) *Tree {
	return &Tree{
		src:    src,
		nodes:  []node{{kind: KindRoot, parent: -1}},
		active: Root,
	}
}

// Kind reports the kind of the node at ref.
func (t *Tree) Kind(ref NodeRef) Kind { return t.nodes[ref].kind }

// Name reports the macro name of an Expandable node.
func (t *Tree) Name(ref NodeRef) string { return t.nodes[ref].name }

// Children reports the children of ref in source order.
func (t *Tree) Children(ref NodeRef) []NodeRef { return t.nodes[ref].children }

// Parent reports the parent of ref; it is meaningless for the root.
func (t *Tree) Parent(ref NodeRef) NodeRef { return t.nodes[ref].parent }

func (t *Tree) addChild(parent NodeRef, n node) NodeRef {
	n.parent = parent
	idx := NodeRef(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx
}

// argSplit approximates the lookaround regex
// `(?<=\()[^)]*(?=\))|".+?"|\w+` from the specification using explicit
// scanning, since RE2 (and therefore Go's regexp package) does not support
// lookaround assertions. It is used only to split literal spans that fall
// inside a macro call's argument list (see fillLiteral).
func argSplit(span string) []string {
	var out []string
	i := 0
	for i < len(span) {
		switch c := span[i]; {
		case c == '(':
			j := i + 1
			for j < len(span) && span[j] != ')' {
				j++
			}
			if j < len(span) {
				out = append(out, span[i+1:j])
				i = j + 1
			} else {
				// no matching ')' in this span: not a match, just skip
				// the '(' itself so a bare run after it can still match.
				i++
			}
		case c == '"':
			j := i + 1
			for j < len(span) && span[j] != '"' {
				j++
			}
			if j < len(span) {
				out = append(out, span[i:j+1])
				i = j + 1
			} else {
				// unterminated quote: treat the rest as a bare run, fall through below
				i++
			}
		case isWordByte(c):
			j := i
			for j < len(span) && isWordByte(span[j]) {
				j++
			}
			out = append(out, span[i:j])
			i = j
		default:
			i++
		}
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// fillLiteral consumes t.src[search:end], where search is the active
// node's fill cursor, and appends the appropriate literal child/children:
// one verbatim literal at the root, or one literal per matched argument
// token (whitespace dropped) inside a macro call's argument list.
//
// Each call only sees the span between two structural elements, so a
// parenthesized group that is itself interrupted by a nested macro call
// never matches as one argument — it degrades to its surviving bare
// words, with the nested call(s) becoming their own sibling children.
func (t *Tree) fillLiteral(end int) {
	active := &t.nodes[t.active]
	span := t.src[active.search:end]
	if t.active == Root {
		if len(span) > 0 {
			t.addChild(t.active, node{kind: KindLiteral, text: span})
		}
		return
	}
	for _, part := range argSplit(span) {
		t.addChild(t.active, node{kind: KindLiteral, text: part})
	}
}
