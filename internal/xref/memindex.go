package xref

// MemIndex is an in-memory Index, populated by Builder.
type MemIndex struct {
	byName map[string][]*Definition
	byFile map[string][]*Definition
}

func newMemIndex() *MemIndex {
	return &MemIndex{byName: map[string][]*Definition{}, byFile: map[string][]*Definition{}}
}

func (idx *MemIndex) add(def *Definition) {
	idx.byName[def.Name] = append(idx.byName[def.Name], def)
	idx.byFile[def.Filename] = append(idx.byFile[def.Filename], def)
}

func (idx *MemIndex) recordCallSite(name, file string, line int, positional []string, named map[string]string) {
	for _, def := range idx.byName[name] {
		def.References[file] = append(def.References[file], CallSite{
			Line:           line,
			PositionalArgs: positional,
			NamedArgs:      named,
		})
	}
}

// Definitions implements Index.
func (idx *MemIndex) Definitions(name string) []*Definition { return idx.byName[name] }

// At implements Index, returning the innermost definition (by latest
// start line among those that contain it) whose span strictly contains
// line, or nil if line is top-level.
func (idx *MemIndex) At(file string, line int) *Definition {
	var best *Definition
	for _, def := range idx.byFile[file] {
		if def.Lineno < line && line < def.LinenoEnd {
			if best == nil || def.Lineno > best.Lineno {
				best = def
			}
		}
	}
	return best
}
