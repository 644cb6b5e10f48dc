package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollector struct {
	emitted []EmittedString
	infos   map[string]string
	warns   []string
}

func newFakeCollector() *fakeCollector {
	return &fakeCollector{infos: map[string]string{}}
}

func (f *fakeCollector) EmitString(s EmittedString) { f.emitted = append(f.emitted, s) }
func (f *fakeCollector) RecordInfo(attr, value string) { f.infos[attr] = value }

func newTestContext() (*Context, *fakeCollector) {
	col := newFakeCollector()
	ctx := NewContext(col, func(format string, args ...any) {
		col.warns = append(col.warns, format)
	})
	return ctx, col
}

func scanAll(t *testing.T, ctx *Context, lines []string) {
	t.Helper()
	for i, line := range lines {
		require.NoError(t, ctx.ScanLine(i+1, line))
	}
	ctx.Flush()
}

func TestOrdinaryTranslatableStringSingleLine(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`text = _ "Hello, world."`})
	require.Len(t, col.emitted, 1)
	got := col.emitted[0]
	assert.Equal(t, "Hello, world.", got.Text)
	assert.True(t, got.Translatable)
	assert.False(t, got.Raw)
	assert.False(t, got.Multiline)
}

func TestHeredocMixedWithRegularStringOnOneLine(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`name = "('buttons/misc/orb{STATE}.png" + <<~RC(magenta>{icon})')>>`,
	})
	require.Len(t, col.emitted, 1)
	got := col.emitted[0]
	assert.Equal(t, `('buttons/misc/orb{STATE}.png`, got.Text)
	assert.False(t, got.Translatable)
}

func TestHeredocTranslatableSingleLine(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`name = _ <<hello>>`})
	require.Len(t, col.emitted, 1)
	got := col.emitted[0]
	assert.Equal(t, "hello", got.Text)
	assert.True(t, got.Translatable)
	assert.True(t, got.Raw)
}

func TestHeredocTranslatableMultiline(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`name = _ <<line one`,
		`line two>> trailing`,
	})
	require.Len(t, col.emitted, 1)
	got := col.emitted[0]
	assert.Equal(t, "line one\nline two", got.Text)
	assert.True(t, got.Multiline)
	assert.True(t, got.Raw)
}

func TestOrdinaryStringMultilineContinuation(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`text = _ "first line`,
		`second line"`,
	})
	require.Len(t, col.emitted, 1)
	got := col.emitted[0]
	assert.Equal(t, "first line\nsecond line", got.Text)
	assert.True(t, got.Multiline)
	assert.False(t, got.Raw)
}

func TestTextdomainDirectiveAppliesToSubsequentStrings(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`#textdomain wesnoth-units`,
		`text = _ "Elvish Lord"`,
	})
	require.Len(t, col.emitted, 1)
	assert.Equal(t, "wesnoth-units", col.emitted[0].Textdomain)
}

func TestNodeStackAttachesToEmittedString(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`[unit]`,
		`    description = _ "A wandering soul."`,
		`[/unit]`,
	})
	require.Len(t, col.emitted, 1)
	assert.Equal(t, []string{"unit"}, col.emitted[0].NodeStack)
}

func TestNodeStackUnmatchedCloserWarnsAndRecovers(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`[unit]`,
		`[/wrongname]`,
		`text = _ "after mismatch"`,
	})
	assert.NotEmpty(t, col.warns)
	require.Len(t, col.emitted, 1)
	assert.Empty(t, col.emitted[0].NodeStack)
}

func TestEnddefWithoutDefineWarns(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`#enddef`})
	assert.NotEmpty(t, col.warns)
}

func TestPoCommentsAttachToNextStoredString(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{
		`#po: translator note`,
		`#po-override: override note`,
		`text = _ "greetings"`,
	})
	require.Len(t, col.emitted, 1)
	assert.Equal(t, []string{"translator note"}, col.emitted[0].AddedInfo)
	assert.Equal(t, []string{"override note"}, col.emitted[0].OverrideInfo)
}

func TestGetinfWithoutQuoteRecordsInfoDirectly(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`id=elvish_lord`})
	assert.Equal(t, "elvish_lord", col.infos["id"])
	assert.Empty(t, col.emitted)
}

func TestGetinfWithQuoteEntersStr01AndTagsInfoType(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`speaker = _"Elvish Lord"`})
	require.Len(t, col.emitted, 1)
	assert.Equal(t, "speaker", col.emitted[0].InfoType)
	assert.Equal(t, "Elvish Lord", col.emitted[0].Text)
}

func TestWmlxgettextPrefixReScansRemainder(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`# wmlxgettext: text = _ "escaped macro body"`})
	require.Len(t, col.emitted, 1)
	assert.Equal(t, "escaped macro body", col.emitted[0].Text)
}

func TestLuaTagGatesScriptSkip(t *testing.T) {
	ctx, _ := newTestContext()
	var skipped string
	ctx.ScriptSkip = func(line string) (string, bool) {
		skipped = line
		return "", false
	}
	scanAll(t, ctx, []string{
		`[lua]`,
		`code << rest`,
		`[/lua]`,
	})
	assert.Equal(t, "rest", skipped)
}

func TestOrdinaryCommentIsDiscarded(t *testing.T) {
	ctx, col := newTestContext()
	scanAll(t, ctx, []string{`# just a comment`})
	assert.Empty(t, col.emitted)
	assert.Empty(t, col.warns)
}
