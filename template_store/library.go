package template_store

import (
	"maps"

	"speech-command-detection/feature_extraction"
)

// Template is one labeled reference feature matrix.
type Template struct {
	Label    string                    `msgpack:"label"`
	Source   string                    `msgpack:"source"`
	Features feature_extraction.Matrix `msgpack:"features"`
}

// Snapshot maps each reference path to its modification time in Unix
// nanoseconds.
type Snapshot map[string]int64

// Equal reports whether both snapshots hold the same paths with the same
// timestamps.
func (s Snapshot) Equal(other Snapshot) bool {
	return maps.Equal(s, other)
}

// Library is the set of templates built from one snapshot of the reference
// directory. It is not modified after it is returned.
type Library struct {
	Snapshot  Snapshot              `msgpack:"snapshot"`
	Templates map[string][]Template `msgpack:"templates"`
	FileNames []string              `msgpack:"file_names"`
	Labels    []string              `msgpack:"labels"`
}

// All returns every template ordered by FileNames.
func (l *Library) All() []Template {
	if l == nil {
		return nil
	}

	bySource := make(map[string]Template, len(l.FileNames))
	for _, list := range l.Templates {
		for _, tpl := range list {
			bySource[tpl.Source] = tpl
		}
	}

	out := make([]Template, 0, len(bySource))
	for _, name := range l.FileNames {
		if tpl, ok := bySource[name]; ok {
			out = append(out, tpl)
		}
	}

	return out
}

// Len is the number of templates in the library.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}

	n := 0
	for _, list := range l.Templates {
		n += len(list)
	}

	return n
}
