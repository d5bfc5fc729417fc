// Package plan turns matched candidates into the old->new rename mapping
// that the executor and the metadata patcher consume.
package plan

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/h5utils/h5mv/pkg/cohort"
)

// Kind classifies a file for the metadata patching step.
type Kind int

const (
	// KindOpaque files are renamed but never opened.
	KindOpaque Kind = iota
	// KindContainer files are probed for HDF5 metadata after the transfer.
	KindContainer
)

// String returns a human readable kind label.
func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Plan maps one original file to its renamed destination, prior to execution.
type Plan struct {
	// Source is the full path of the original file.
	Source string
	// Dest is the full path the file is transferred to.
	Dest string
	// OldName and NewName are the bare file names; NewName differs from
	// OldName only in the prefix segment.
	OldName string
	NewName string
	// Kind selects whether the metadata patcher runs after the transfer.
	Kind Kind
}

// Set holds the plans for one cohort, in candidate order, together with the
// cohort-wide name mapping.
type Set struct {
	plans     []Plan
	mapping   map[string]string
	prefix    string
	newPrefix string
}

// Plans returns the plans in the order the candidates were matched.
func (s *Set) Plans() []Plan { return s.plans }

// Len returns the number of plans in the set.
func (s *Set) Len() int { return len(s.plans) }

// Prefix returns the matched search prefix.
func (s *Set) Prefix() string { return s.prefix }

// NewPrefix returns the replacement prefix.
func (s *Set) NewPrefix() string { return s.newPrefix }

// Mapping returns the old name -> new name mapping for the whole cohort.
// Metadata inside one container may reference sibling files, so the patcher
// needs all of it, not just the pair for the file at hand.
func (s *Set) Mapping() map[string]string { return s.mapping }

// NewName substitutes newPrefix for the leading prefix of name. The remainder
// of the name, extensions and numeric segments included, is byte-identical.
// Pure function; errors only when name does not actually start with prefix,
// which cannot happen for names coming out of the matcher.
func NewName(name, prefix, newPrefix string) (string, error) {
	if !strings.HasPrefix(name, prefix) {
		return "", errors.Errorf("%q does not start with prefix %q", name, prefix)
	}
	return newPrefix + name[len(prefix):], nil
}

// Build derives one plan per candidate, in input order. It fails when the new
// prefix would make a plan's destination collide with another candidate in
// the set, so no file can end up as both source and destination of two
// different plans. A destination that merely exists on disk is not checked
// here; that surfaces as a per-file transfer error so the other plans still
// run.
func Build(candidates []cohort.Candidate, newPrefix string, containerExts []string) (*Set, error) {
	set := &Set{
		mapping:   make(map[string]string, len(candidates)),
		newPrefix: newPrefix,
	}

	oldNames := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		oldNames[c.Name] = struct{}{}
	}

	for _, c := range candidates {
		set.prefix = c.Prefix

		newName, err := NewName(c.Name, c.Prefix, newPrefix)
		if err != nil {
			return nil, errors.Errorf("rewriting %s: %w", c.Name, err)
		}
		if newName == c.Name {
			return nil, errors.Errorf("new name for %s is unchanged", c.Name)
		}
		if _, clash := oldNames[newName]; clash {
			return nil, errors.Errorf("renaming %s to %s would collide with a file in the same cohort", c.Name, newName)
		}

		set.plans = append(set.plans, Plan{
			Source:  c.Path(),
			Dest:    filepath.Join(c.Dir, newName),
			OldName: c.Name,
			NewName: newName,
			Kind:    kindOf(c.Name, containerExts),
		})
		set.mapping[c.Name] = newName
	}

	return set, nil
}

// kindOf decides the file kind from its extension. Detection by signature
// happens again inside the patcher, so a mislabeled container degrades to a
// skipped patch, never to corruption.
func kindOf(name string, containerExts []string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range containerExts {
		if ext == strings.ToLower(e) {
			return KindContainer
		}
	}
	return KindOpaque
}
