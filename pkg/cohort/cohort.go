// Package cohort discovers the set of files that share a filename prefix and
// are renamed together as one unit.
package cohort

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNotFound reports a search directory that does not exist or is not a
// directory.
var ErrNotFound = errors.Base("directory not found")

// Candidate is a single file matched during the directory scan. Candidates
// are immutable once created.
type Candidate struct {
	// Dir is the directory the file lives in.
	Dir string
	// Name is the bare file name, prefix included.
	Name string
	// Prefix is the matched search prefix.
	Prefix string
}

// Path returns the full path of the candidate file.
func (c Candidate) Path() string {
	return filepath.Join(c.Dir, c.Name)
}

// Find scans dir (non-recursively) for regular files whose name starts with
// prefix and returns them in raw directory-listing order. That order is
// preserved all the way through planning, display and execution, so Find
// deliberately avoids the sorted os.ReadDir.
//
// A directory with no matches yields an empty result and a nil error. A
// missing directory yields an error wrapping ErrNotFound. Files matching one
// of the ignore globs are excluded.
func Find(ctx context.Context, dir, prefix string, ignore []string) ([]Candidate, error) {
	logger := zerolog.Ctx(ctx)

	if prefix == "" {
		return nil, errors.Errorf("prefix must not be empty")
	}

	f, err := os.Open(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, errors.Errorf("opening directory: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Errorf("stating directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, errors.Errorf("listing directory: %w", err)
	}

	var matches []Candidate
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if isIgnored(ctx, name, ignore) {
			logger.Debug().Str("file", name).Msg("excluded by ignore pattern")
			continue
		}
		matches = append(matches, Candidate{Dir: dir, Name: name, Prefix: prefix})
	}

	logger.Debug().
		Str("dir", dir).
		Str("prefix", prefix).
		Int("matches", len(matches)).
		Msg("scanned directory")

	return matches, nil
}

// isIgnored checks a file name against the configured ignore globs.
func isIgnored(ctx context.Context, name string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Err(err).Msg("error matching ignore pattern")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
