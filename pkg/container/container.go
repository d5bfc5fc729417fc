// Package container rewrites HDF5-internal string metadata that mirrors a
// file's external name, so a renamed container stays self-consistent.
//
// The patcher treats metadata generically: any string-typed attribute or
// scalar string dataset whose value embeds an old cohort filename (or the
// bare old prefix) is rewritten. Nothing else in the container is touched.
package container

import (
	"gitlab.com/tozd/go/errors"
)

// ErrCorrupt reports a file that carries the HDF5 signature but cannot be
// opened for writing (locked or malformed).
var ErrCorrupt = errors.Base("corrupt container")

// Result describes what a patch call did to one file.
type Result struct {
	// Skipped is true when the file is not an HDF5 container at all and
	// passed through untouched.
	Skipped bool
	// Rewrites is the number of string values that were rewritten.
	Rewrites int
	// Fields lists the object/attribute paths that were rewritten.
	Fields []string
	// Failed lists the object/attribute paths whose rewrite did not take,
	// either a write error or a silent fixed-size truncation.
	Failed []string
}

// defaultAttrNames are the traceability attribute names probed on every
// object, in addition to names discovered by the raw byte scan. NeXus writes
// file_name on the root group; some beamline writers use filename or
// template fields instead.
var defaultAttrNames = []string{
	"filename",
	"file_name",
	"name",
	"source",
	"template",
	"original_filename",
	"data_origin",
}

// Patcher rewrites filename-bearing metadata inside HDF5 containers.
type Patcher struct {
	attrNames []string
}

// NewPatcher creates a patcher. extraAttrNames extends the built-in list of
// traceability attribute names to probe.
func NewPatcher(extraAttrNames []string) *Patcher {
	names := make([]string, 0, len(defaultAttrNames)+len(extraAttrNames))
	seen := make(map[string]struct{}, cap(names))
	for _, name := range append(append([]string{}, defaultAttrNames...), extraAttrNames...) {
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return &Patcher{attrNames: names}
}
