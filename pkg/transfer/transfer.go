// Package transfer executes rename plans: it copies or moves each file to
// its new name and hands successfully transferred containers to the
// metadata patcher. Plans are processed strictly one at a time and failures
// stay contained to their own plan.
package transfer

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/h5utils/h5mv/pkg/plan"
)

// ErrDestinationExists reports a transfer refused because the destination
// is already present. Overwriting silently is never acceptable; resolving
// the clash is left to the user.
var ErrDestinationExists = errors.Base("destination already exists")

// Mode selects what happens to the original file.
type Mode int

const (
	// ModeCopy duplicates the file; the original stays untouched, stale
	// metadata included.
	ModeCopy Mode = iota
	// ModeMove renames the file, copying across volumes when a direct
	// rename is not possible.
	ModeMove
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeMove {
		return "move"
	}
	return "copy"
}

// PatchResult is the patcher's answer for one file.
type PatchResult struct {
	// Skipped means the file is not a container and passed through.
	Skipped bool
	// Rewrites counts the metadata values rewritten.
	Rewrites int
}

// Patcher rewrites container metadata on the transferred file. Implemented
// by the HDF5 patcher; faked in tests.
type Patcher interface {
	Patch(ctx context.Context, path string, mapping map[string]string, oldPrefix, newPrefix string) (PatchResult, error)
}

// Outcome is the per-plan result the final report consumes.
type Outcome struct {
	Plan plan.Plan
	// Transferred is true once the file exists under its new name.
	Transferred bool
	// Patched is true when container metadata was rewritten.
	Patched bool
	// Skipped is true when the file needed no patch (opaque companion
	// file, or a container without old-name metadata).
	Skipped bool
	// Rewrites counts rewritten metadata values.
	Rewrites int
	// Err is the per-plan failure, nil on success.
	Err error
}

// Executor runs the plans of one cohort.
type Executor struct {
	patcher Patcher
}

// NewExecutor creates an executor that patches transferred containers with
// patcher.
func NewExecutor(patcher Patcher) *Executor {
	return &Executor{patcher: patcher}
}

// Execute processes every plan in order and returns one outcome per plan,
// in the same order. A failing plan never stops the rest; its error travels
// in the outcome. Each file is fully transferred and patched before the
// next one starts, and no file handle survives its plan.
func (e *Executor) Execute(ctx context.Context, set *plan.Set, mode Mode) []Outcome {
	outcomes := make([]Outcome, 0, set.Len())
	for _, pl := range set.Plans() {
		outcomes = append(outcomes, e.executeOne(ctx, pl, set, mode))
	}
	return outcomes
}

func (e *Executor) executeOne(ctx context.Context, pl plan.Plan, set *plan.Set, mode Mode) Outcome {
	logger := zerolog.Ctx(ctx)
	out := Outcome{Plan: pl}

	if err := transferFile(pl, mode); err != nil {
		out.Err = errors.Errorf("transferring %s: %w", pl.OldName, err)
		return out
	}
	out.Transferred = true
	logger.Debug().Str("from", pl.OldName).Str("to", pl.NewName).Stringer("mode", mode).Msg("transferred")

	if pl.Kind != plan.KindContainer {
		out.Skipped = true
		return out
	}

	// Patch the destination only. In copy mode the original keeps its old
	// metadata, which stays historically accurate for the old name.
	res, err := e.patcher.Patch(ctx, pl.Dest, set.Mapping(), set.Prefix(), set.NewPrefix())
	if err != nil {
		out.Err = errors.Errorf("patching %s: %w", pl.NewName, err)
		return out
	}

	out.Rewrites = res.Rewrites
	if res.Skipped || res.Rewrites == 0 {
		out.Skipped = true
	} else {
		out.Patched = true
	}
	return out
}

// transferFile produces pl.Dest with the contents of pl.Source according to
// mode.
func transferFile(pl plan.Plan, mode Mode) error {
	if mode == ModeCopy {
		return copyFile(pl.Source, pl.Dest)
	}

	// os.Rename overwrites silently on POSIX, so the refusal has to be an
	// explicit check here.
	if _, err := os.Lstat(pl.Dest); err == nil {
		return errors.Errorf("%w: %s", ErrDestinationExists, pl.NewName)
	}

	if err := os.Rename(pl.Source, pl.Dest); err == nil {
		return nil
	}

	// Rename failed (typically a cross-device link); fall back to copy
	// then remove.
	if err := copyFile(pl.Source, pl.Dest); err != nil {
		return err
	}
	if err := os.Remove(pl.Source); err != nil {
		return errors.Errorf("removing original after copy: %w", err)
	}
	return nil
}

// copyFile duplicates src to dst, preserving the permission bits. O_EXCL
// enforces the no-overwrite policy; a partial destination left by an I/O
// failure is removed so the plan either fully succeeds or leaves only the
// original behind.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("stating source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return errors.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return errors.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Errorf("copying contents: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Errorf("flushing destination: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return errors.Errorf("closing destination: %w", err)
	}
	return nil
}
