package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLiteralOnly(t *testing.T) {
	tree, err := Parse("Hello, world.", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Hello, world.", tree.Render(nil))
}

func TestParseAndRenderDirectSubstitution(t *testing.T) {
	tree, err := Parse("Hello, {WHOM}.", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Hello, world.", tree.Render(map[string]string{"WHOM": "world"}))
}

func TestRenderWithEmptyArgsReproducesInputAtRoot(t *testing.T) {
	inputs := []string{
		"Hello, world.",
		"plain",
		"  spaced  out  ",
	}
	for _, in := range inputs {
		tree, err := Parse(in, nil)
		assert.NoError(t, err)
		assert.Equal(t, in, tree.Render(map[string]string{}))
	}
}

func TestUnresolvedMacroReemits(t *testing.T) {
	tree, err := Parse("{LEFT_BRACE}hello{RIGHT_BRACE}", nil)
	assert.NoError(t, err)
	assert.Equal(t, "{LEFT_BRACE}hello{RIGHT_BRACE}", tree.Render(nil))
	assert.Equal(t, "{hello}", tree.Render(map[string]string{
		"LEFT_BRACE": "{", "RIGHT_BRACE": "}",
	}))
}

func TestUnresolvedMacroReemitsWithArguments(t *testing.T) {
	tree, err := Parse("a {FOO bar baz} c", nil)
	assert.NoError(t, err)
	assert.Equal(t, "a {FOO bar baz} c", tree.Render(nil))
}

func TestOnMacroCallbackFiresPerClosedNode(t *testing.T) {
	var names []string
	_, err := Parse("{A} and {B x y}", func(tr *Tree, ref NodeRef) {
		names = append(names, tr.Name(ref))
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestUnbalancedCloseAtRootIsTolerated(t *testing.T) {
	tree, err := Parse("oops } trailing", nil)
	assert.NoError(t, err)
	assert.Equal(t, "oops  trailing", tree.Render(nil))
}

func TestArgumentContextDropsWhitespaceAndSplitsTokens(t *testing.T) {
	// Inside MOODY_GREET's body, "{GREET {MODE} (very {QUALIFIER} {WHOM})}"
	// makes GREET a top-level Expandable. A parenthesized group only
	// survives as a single literal argument when it closes within one
	// literal span; here it is interrupted by nested macro calls, so the
	// parens are dropped and each nested call becomes its own child,
	// alongside the one bare word "very" the argument-splitting regex
	// still recovers from the interrupted span.
	var greetArgs []string
	tree, err := Parse("{GREET {MODE} (very {QUALIFIER} {WHOM})}", func(tr *Tree, ref NodeRef) {
		if tr.Name(ref) != "GREET" {
			return
		}
		for _, c := range tr.Children(ref) {
			greetArgs = append(greetArgs, tr.render(c, nil))
		}
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"{MODE}", "very", "{QUALIFIER}", "{WHOM}"}, greetArgs)
}

func TestHasBrace(t *testing.T) {
	assert.True(t, HasBrace("has {a brace"))
	assert.False(t, HasBrace("has a } only"))
	assert.False(t, HasBrace("plain"))
}

func TestParseMalformedBails(t *testing.T) {
	_, err := Parse("bad {{oops}", nil)
	assert.Error(t, err)
}
