package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesnoth-tools/wmlxgettext/internal/expand"
	"github.com/wesnoth-tools/wmlxgettext/internal/wml/scan"
	"github.com/wesnoth-tools/wmlxgettext/internal/xref"
)

func TestEmitStringDropsNonTranslatable(t *testing.T) {
	c := NewCollector(nil, nil, "wesnoth")
	c.BeginFile("f.cfg")

	c.EmitString(scan.EmittedString{Text: "plain", Line: 1, Translatable: false})

	assert.Empty(t, c.Entries)
}

func TestEmitStringKeepsRawHeredocVerbatim(t *testing.T) {
	c := NewCollector(nil, nil, "wesnoth")
	c.BeginFile("f.cfg")

	c.EmitString(scan.EmittedString{Text: "raw {NOT_A_MACRO}", Line: 2, Translatable: true, Raw: true})

	require.Len(t, c.Entries, 1)
	assert.Equal(t, "raw {NOT_A_MACRO}", c.Entries[0].MsgID)
	assert.Equal(t, 2, c.Entries[0].Line)
}

func TestEmitStringRecordsEntryWithNoDriver(t *testing.T) {
	c := NewCollector(nil, nil, "wesnoth")
	c.BeginFile("f.cfg")

	c.EmitString(scan.EmittedString{Text: "Hello.", Line: 5, Translatable: true})

	require.Len(t, c.Entries, 1)
	e := c.Entries[0]
	assert.Equal(t, "Hello.", e.MsgID)
	assert.Equal(t, "wesnoth", e.Domain)
	assert.Equal(t, "f.cfg", e.File)
	assert.Equal(t, 5, e.Line)
}

func TestEmitStringDefaultsDomainWhenUnset(t *testing.T) {
	c := NewCollector(nil, nil, "wesnoth-lib")
	c.BeginFile("f.cfg")
	c.EmitString(scan.EmittedString{Text: "Hi", Line: 1, Translatable: true, Textdomain: ""})
	require.Len(t, c.Entries, 1)
	assert.Equal(t, "wesnoth-lib", c.Entries[0].Domain)
}

func TestRecordInfoSurfacesContextualAttrsAsComments(t *testing.T) {
	c := NewCollector(nil, nil, "wesnoth")
	c.BeginFile("f.cfg")

	c.RecordInfo("speaker", "Konrad")
	c.RecordInfo("description", "not surfaced as context")
	c.EmitString(scan.EmittedString{Text: "Hello.", Line: 1, Translatable: true})

	require.Len(t, c.Entries, 1)
	assert.Contains(t, c.Entries[0].Comments, "speaker: Konrad")
}

func TestEmitStringRawBypassesDriverEvenWhenWired(t *testing.T) {
	b := xref.NewBuilder()
	b.AddFile("greet.cfg", []string{
		`#define GREET WHOM`,
		`_ "Hello, {WHOM}."`,
		`#enddef`,
	})
	idx := b.Build()
	driver := expand.NewDriver(idx, nil, nil)

	c := NewCollector(idx, driver, "wesnoth")
	c.BeginFile("greet.cfg")
	c.EmitString(scan.EmittedString{Text: "<<raw {NOT_EXPANDED}>>", Line: 9, Translatable: true, Raw: true})

	require.Len(t, c.Entries, 1)
	assert.Equal(t, "<<raw {NOT_EXPANDED}>>", c.Entries[0].MsgID)
}

func TestEmitStringExpandsThroughDriver(t *testing.T) {
	b := xref.NewBuilder()
	b.AddFile("greet.cfg", []string{
		`#define GREET WHOM`,
		`_ "Hello, {WHOM}."`,
		`#enddef`,
		`{GREET world}`,
	})
	idx := b.Build()
	driver := expand.NewDriver(idx, nil, nil)

	c := NewCollector(idx, driver, "wesnoth")
	c.BeginFile("greet.cfg")
	c.EmitString(scan.EmittedString{Text: "Hello, {WHOM}.", Line: 2, Translatable: true})

	require.Len(t, c.Entries, 1)
	assert.Equal(t, "Hello, world.", c.Entries[0].MsgID)
	assert.Equal(t, "greet.cfg", c.Entries[0].File)
	assert.Equal(t, 4, c.Entries[0].Line)
}
