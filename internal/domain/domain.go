// Package domain bridges the scanner to the catalog: it implements
// scan.Collector, tracks the contextual attributes (speaker, id, role)
// recorded alongside a translatable string, and turns every emitted string
// into one or more catalog.Entry values via the expansion driver.
package domain

import (
	"fmt"

	"github.com/wesnoth-tools/wmlxgettext/internal/catalog"
	"github.com/wesnoth-tools/wmlxgettext/internal/expand"
	"github.com/wesnoth-tools/wmlxgettext/internal/wml/scan"
	"github.com/wesnoth-tools/wmlxgettext/internal/xref"
)

// contextualAttrs is the subset of getinf's recognized attribute names
// worth surfacing as context on the catalog entry, as opposed to
// description/condition/type/race, which the scanner recognizes with the
// same syntax but are not carried into the catalog.
var contextualAttrs = map[string]bool{"speaker": true, "id": true, "role": true}

// Collector accumulates catalog entries as the scanner reports strings.
// It satisfies scan.Collector.
type Collector struct {
	Index         xref.Index // may be nil: strings are then expanded as top-level seeds (no originating macro)
	Driver        *expand.Driver
	DefaultDomain string

	Entries []catalog.Entry

	currentFile string
	attrs       map[string]string
}

// NewCollector returns an empty Collector. idx and driver may both be nil,
// in which case every emitted string is recorded as-is with no macro
// expansion — useful for scanning a single file with no cross-reference
// context available.
func NewCollector(idx xref.Index, driver *expand.Driver, defaultDomain string) *Collector {
	return &Collector{Index: idx, Driver: driver, DefaultDomain: defaultDomain, attrs: map[string]string{}}
}

// BeginFile must be called before scanning a new file's lines, so emitted
// strings and macro lookups are attributed to the right source location.
func (c *Collector) BeginFile(name string) {
	c.currentFile = name
	c.attrs = map[string]string{}
}

// RecordInfo implements scan.Collector. Only the names in contextualAttrs
// are retained; others are scanner-recognized but carry no catalog-visible
// context.
func (c *Collector) RecordInfo(attr, value string) {
	if contextualAttrs[attr] {
		c.attrs[attr] = value
	}
}

// EmitString implements scan.Collector: non-translatable strings are
// dropped; a raw (heredoc) string still belongs in the catalog but skips
// macro expansion, so it is appended verbatim; everything else is
// expanded against the cross-reference index (if any) and appended as
// one entry per variant.
func (c *Collector) EmitString(e scan.EmittedString) {
	if !e.Translatable {
		return
	}

	domain := e.Textdomain
	if domain == "" {
		domain = c.DefaultDomain
	}

	comments := contextComments(c.attrs, e.InfoType)
	comments = append(comments, e.AddedInfo...)

	if c.Driver == nil || e.Raw {
		c.Entries = append(c.Entries, catalog.Entry{
			MsgID:    e.Text,
			Domain:   domain,
			File:     c.currentFile,
			Line:     e.Line,
			Comments: comments,
			Override: e.OverrideInfo,
		})
		return
	}

	var originating *xref.ID
	if c.Index != nil {
		if def := c.Index.At(c.currentFile, e.Line); def != nil {
			originating = &xref.ID{Name: def.Name, File: def.Filename, Line: def.Lineno}
		}
	}

	for _, result := range c.Driver.Expand(e.Text, originating) {
		file, line := c.currentFile, e.Line
		if result.Site.File != "" {
			file, line = result.Site.File, result.Site.Line
		}
		c.Entries = append(c.Entries, catalog.Entry{
			MsgID:    result.Text,
			Domain:   domain,
			File:     file,
			Line:     line,
			Comments: comments,
			Override: e.OverrideInfo,
		})
	}
}

func contextComments(attrs map[string]string, infoType string) []string {
	var out []string
	for _, name := range []string{"speaker", "id", "role"} {
		if v, ok := attrs[name]; ok {
			out = append(out, fmt.Sprintf("%s: %s", name, v))
		}
	}
	if infoType != "" && !contextualAttrs[infoType] {
		out = append(out, fmt.Sprintf("%s attribute", infoType))
	}
	return out
}
