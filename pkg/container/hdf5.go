package container

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gonum.org/v1/hdf5"
)

// attrHolder is the subset of binding handles that can carry attributes.
type attrHolder interface {
	OpenAttribute(name string) (*hdf5.Attribute, error)
}

// Patch opens the container at path read-write and rewrites every string
// attribute and scalar string dataset whose value embeds an old cohort name
// or the old prefix. path is the post-transfer destination; the original
// file is never touched here.
//
// Files without the HDF5 signature pass through as a skipped no-op. Files
// that carry the signature but cannot be opened read-write fail with an
// error wrapping ErrCorrupt. A value that should have been rewritten but
// was not, because the write failed or the on-disk string type truncated
// it, makes the whole call fail so the stale metadata is never reported as
// a clean result. The container handle never outlives the call.
func (p *Patcher) Patch(ctx context.Context, path string, mapping map[string]string, oldPrefix, newPrefix string) (Result, error) {
	logger := zerolog.Ctx(ctx)

	if !hdf5.IsHDF5(path) {
		logger.Debug().Str("file", path).Msg("no HDF5 signature, passing through")
		return Result{Skipped: true}, nil
	}

	repl := newReplacer(mapping, oldPrefix, newPrefix)

	// Cheap gate before any library call: if the raw bytes never mention an
	// old name there is nothing to rewrite. The scan streams the file, so a
	// multi-gigabyte detector container costs one pass, not its size in RAM.
	found, tokens, err := newByteScanner(repl.needles()).ScanFile(path)
	if err != nil {
		return Result{}, errors.Errorf("scanning container: %w", err)
	}
	if !found {
		logger.Debug().Str("file", path).Msg("container holds no old-name metadata")
		return Result{}, nil
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDWR)
	if err != nil {
		return Result{}, errors.Errorf("%w: opening %s read-write: %v", ErrCorrupt, path, err)
	}
	defer f.Close()

	root, err := f.OpenGroup("/")
	if err != nil {
		return Result{}, errors.Errorf("%w: opening root group of %s: %v", ErrCorrupt, path, err)
	}
	defer root.Close()

	var res Result
	p.patchGroup(ctx, root, "/", repl, &res)

	// Occurrences the attribute probe could not reach (e.g. link targets
	// stored in link messages) stay visible to debugging.
	if res.Rewrites == 0 && len(tokens) > 0 {
		logger.Debug().Str("file", path).Strs("tokens", tokens).Msg("old-name occurrences not reachable as string metadata")
	}

	logger.Debug().
		Str("file", path).
		Int("rewrites", res.Rewrites).
		Strs("fields", res.Fields).
		Msg("patched container")

	if len(res.Failed) > 0 {
		return res, errors.Errorf("rewriting %s in %s failed, old-name metadata remains", strings.Join(res.Failed, ", "), path)
	}
	return res, nil
}

// patchGroup rewrites the group's own attributes, then walks its members.
// Walk errors are logged and skipped; a single unreadable object must not
// fail the whole file.
func (p *Patcher) patchGroup(ctx context.Context, g *hdf5.Group, path string, repl *replacer, res *Result) {
	logger := zerolog.Ctx(ctx)

	p.patchAttrs(ctx, g, path, repl, res)

	n, err := g.NumObjects()
	if err != nil {
		logger.Debug().Str("group", path).Err(err).Msg("cannot count group members")
		return
	}

	for i := uint(0); i < n; i++ {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			logger.Debug().Str("group", path).Uint("index", i).Err(err).Msg("cannot read member name")
			continue
		}
		childPath := joinObjectPath(path, name)

		if ds, err := g.OpenDataset(name); err == nil {
			p.patchAttrs(ctx, ds, childPath, repl, res)
			p.patchDatasetValue(ctx, ds, childPath, repl, res)
			ds.Close()
			continue
		}
		if sub, err := g.OpenGroup(name); err == nil {
			p.patchGroup(ctx, sub, childPath, repl, res)
			sub.Close()
			continue
		}
		// Named datatypes and dangling external links carry no patchable
		// string metadata.
	}
}

// patchAttrs probes the configured traceability attribute names on one
// object and rewrites the string-valued ones that embed an old name. The
// binding exposes open-by-name rather than attribute iteration, so probing
// the known names is the scan.
func (p *Patcher) patchAttrs(ctx context.Context, obj interface{}, objPath string, repl *replacer, res *Result) {
	holder, ok := obj.(attrHolder)
	if !ok {
		return
	}
	logger := zerolog.Ctx(ctx)

	for _, name := range p.attrNames {
		attr, err := holder.OpenAttribute(name)
		if err != nil {
			// Attribute not present on this object.
			continue
		}

		var value string
		if err := attr.Read(&value, hdf5.T_GO_STRING); err != nil {
			// Not a string-typed attribute; leave it alone.
			attr.Close()
			continue
		}

		if newValue, count := repl.apply(value); count > 0 {
			if err := rewriteAttr(attr, newValue); err != nil {
				logger.Warn().Str("attr", objPath+"@"+name).Err(err).Msg("rewriting attribute failed")
				res.Failed = append(res.Failed, objPath+"@"+name)
			} else {
				res.Rewrites += count
				res.Fields = append(res.Fields, objPath+"@"+name)
			}
		}
		attr.Close()
	}
}

// patchDatasetValue rewrites a scalar string dataset in place. Larger
// datasets are never read; a filename field is a single string.
func (p *Patcher) patchDatasetValue(ctx context.Context, ds *hdf5.Dataset, objPath string, repl *replacer, res *Result) {
	logger := zerolog.Ctx(ctx)

	space := ds.Space()
	if space == nil {
		return
	}
	defer space.Close()
	if space.SimpleExtentNPoints() != 1 {
		return
	}

	var value string
	if err := ds.Read(&value); err != nil {
		// Not a string dataset.
		return
	}
	if !repl.contains(value) {
		return
	}

	newValue, count := repl.apply(value)
	if err := rewriteDatasetValue(ds, newValue); err != nil {
		logger.Warn().Str("dataset", objPath).Err(err).Msg("rewriting dataset value failed")
		res.Failed = append(res.Failed, objPath)
		return
	}
	res.Rewrites += count
	res.Fields = append(res.Fields, objPath)
}

// rewriteAttr writes value and reads it back. A fixed-size string type on
// disk can truncate a longer value without the write reporting anything, so
// the read-back is the only reliable check. The binding wraps no attribute
// deletion, so recreating the attribute at a larger size is not an option;
// the truncation surfaces as a failure instead.
func rewriteAttr(attr *hdf5.Attribute, value string) error {
	if err := attr.Write(&value, hdf5.T_GO_STRING); err != nil {
		return err
	}
	var got string
	if err := attr.Read(&got, hdf5.T_GO_STRING); err != nil {
		return errors.Errorf("reading back: %w", err)
	}
	if got != value {
		return errors.Errorf("value truncated to %q, on-disk string type too small", got)
	}
	return nil
}

// rewriteDatasetValue writes value and reads it back, same contract as
// rewriteAttr.
func rewriteDatasetValue(ds *hdf5.Dataset, value string) error {
	if err := ds.Write(&value); err != nil {
		return err
	}
	var got string
	if err := ds.Read(&got); err != nil {
		return errors.Errorf("reading back: %w", err)
	}
	if got != value {
		return errors.Errorf("value truncated to %q, on-disk string type too small", got)
	}
	return nil
}

func joinObjectPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}
