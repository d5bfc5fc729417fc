// Package inspect provides read-only looks inside HDF5 containers: the
// sibling files a container refers to and the places a string shows up.
// It is pure Go and never needs the C HDF5 library.
package inspect

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/scigolib/hdf5"
	"gitlab.com/tozd/go/errors"
)

// refExtensions are the filename shapes treated as references to sibling
// data files (external link targets, master/meta companions).
var refExtensions = []string{".h5", ".hdf5", ".nxs", ".cbf"}

// Occurrence is one place a search string shows up inside a container.
type Occurrence struct {
	// Kind is "filename", "bytes" or "object".
	Kind string
	// Detail is the matching filename, token or object path.
	Detail string
	// Offset is the byte offset for raw matches, -1 otherwise.
	Offset int64
}

// ExternalRefs returns the sorted unique filenames the container at path
// refers to, excluding its own name. References live in link messages and
// string metadata, both of which surface as printable runs in the raw bytes;
// the container is opened first so a non-HDF5 file is an error, not an
// empty answer.
func ExternalRefs(ctx context.Context, path string) ([]string, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening container: %w", err)
	}
	defer f.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading container: %w", err)
	}

	self := filepath.Base(path)
	seen := make(map[string]struct{})
	for _, token := range stringRuns(raw) {
		if token == self || !looksLikeDataFile(token) {
			continue
		}
		seen[token] = struct{}{}
	}

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	zerolog.Ctx(ctx).Debug().Str("file", path).Int("refs", len(refs)).Msg("collected external references")
	return refs, nil
}

// Search reports every place needle occurs in the container at path: the
// filename itself, the raw bytes (with offsets) and the object hierarchy.
func Search(ctx context.Context, path, needle string) ([]Occurrence, error) {
	if needle == "" {
		return nil, errors.Errorf("search string must not be empty")
	}

	var found []Occurrence

	if strings.Contains(filepath.Base(path), needle) {
		found = append(found, Occurrence{Kind: "filename", Detail: filepath.Base(path), Offset: -1})
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading container: %w", err)
	}
	for _, off := range offsets(raw, needle) {
		found = append(found, Occurrence{Kind: "bytes", Detail: needle, Offset: off})
	}

	f, err := hdf5.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening container: %w", err)
	}
	defer f.Close()

	f.Walk(func(objPath string, obj hdf5.Object) {
		if strings.Contains(objPath, needle) {
			found = append(found, Occurrence{Kind: "object", Detail: objPath, Offset: -1})
		}
	})

	zerolog.Ctx(ctx).Debug().Str("file", path).Str("needle", needle).Int("occurrences", len(found)).Msg("searched container")
	return found, nil
}

// looksLikeDataFile reports whether token has the shape of a sibling data
// filename.
func looksLikeDataFile(token string) bool {
	lower := strings.ToLower(token)
	for _, ext := range refExtensions {
		if strings.HasSuffix(lower, ext) && len(token) > len(ext) {
			return true
		}
	}
	return false
}

// stringRuns extracts the printable ASCII runs of a plausible filename
// length from raw container bytes.
func stringRuns(data []byte) []string {
	const minLen = 4

	var runs []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minLen {
			runs = append(runs, string(data[start:end]))
		}
		start = -1
	}

	for i, b := range data {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return runs
}

// offsets returns every byte offset of needle in data.
func offsets(data []byte, needle string) []int64 {
	var out []int64
	target := []byte(needle)
	for i := 0; ; {
		j := bytes.Index(data[i:], target)
		if j < 0 {
			return out
		}
		out = append(out, int64(i+j))
		i += j + 1
	}
}
