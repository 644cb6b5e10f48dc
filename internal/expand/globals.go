package expand

import (
	"io"

	"gopkg.in/yaml.v3"
)

// GlobalMacro describes a well-known macro whose definition does not live
// anywhere in the corpus — it ships with the engine itself. Args names the
// macro's formal positional parameters in order; Bodies holds one or more
// alternative one-line bodies. A zero-arg global (LEFT_BRACE, RIGHT_BRACE)
// has exactly one body and behaves like an ordinary bound substitution. A
// multi-body global (the ON_DIFFICULTY family) fans a seed out into one
// variant per body, each selecting a different one of the call's own
// literal arguments.
type GlobalMacro struct {
	Name   string   `yaml:"name"`
	Args   []string `yaml:"args"`
	Bodies []string `yaml:"bodies"`
}

// DefaultGlobals returns the built-in globals table: the brace escapes and
// the difficulty selector, matching the engine's own well-known macros.
func DefaultGlobals() map[string]GlobalMacro {
	list := []GlobalMacro{
		{Name: "LEFT_BRACE", Bodies: []string{"{"}},
		{Name: "RIGHT_BRACE", Bodies: []string{"}"}},
		{Name: "ON_DIFFICULTY", Args: []string{"A", "B", "C"}, Bodies: []string{"{A}", "{B}", "{C}"}},
	}
	return indexGlobals(list)
}

// LoadGlobals reads a YAML document (a list of GlobalMacro records) from r,
// overlaying DefaultGlobals with anything it supplies.
func LoadGlobals(r io.Reader) (map[string]GlobalMacro, error) {
	var list []GlobalMacro
	if err := yaml.NewDecoder(r).Decode(&list); err != nil && err != io.EOF {
		return nil, err
	}
	table := DefaultGlobals()
	for name, g := range indexGlobals(list) {
		table[name] = g
	}
	return table, nil
}

func indexGlobals(list []GlobalMacro) map[string]GlobalMacro {
	out := make(map[string]GlobalMacro, len(list))
	for _, g := range list {
		out[g.Name] = g
	}
	return out
}
