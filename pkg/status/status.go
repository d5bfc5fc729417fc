// Package status renders the final per-file report and derives the process
// exit code from the collected outcomes.
package status

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/h5utils/h5mv/pkg/transfer"
)

// State is the reported condition of one plan.
type State int

const (
	StateOK State = iota
	StateSkipped
	StateError
)

// String returns the report label for the state.
func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateSkipped:
		return "skipped-no-metadata"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Of classifies an outcome. A metadata no-op is deliberately distinct from
// an error: companion files without HDF5 structure are expected.
func Of(out transfer.Outcome) State {
	switch {
	case out.Err != nil:
		return StateError
	case out.Patched:
		return StateOK
	default:
		return StateSkipped
	}
}

// Formatter renders report lines. Colors degrade to plain text when the
// output is not a terminal.
type Formatter struct {
	ok      *color.Color
	skipped *color.Color
	failed  *color.Color
}

// NewFormatter creates the default formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		ok:      color.New(color.FgGreen),
		skipped: color.New(color.FgYellow),
		failed:  color.New(color.FgRed),
	}
}

// Line formats one outcome as `OLD -> NEW  status`.
func (f *Formatter) Line(out transfer.Outcome) string {
	label := fmt.Sprintf("%s -> %s", out.Plan.OldName, out.Plan.NewName)

	switch Of(out) {
	case StateError:
		reason := f.failed.Sprintf("error: %v", out.Err)
		if out.Transferred {
			// The file made it to its new name; only the patch failed.
			reason += " (file was renamed)"
		}
		return fmt.Sprintf("%s  %s", label, reason)
	case StateOK:
		return fmt.Sprintf("%s  %s", label, f.ok.Sprint(StateOK))
	default:
		return fmt.Sprintf("%s  %s", label, f.skipped.Sprint(StateSkipped))
	}
}

// Report writes one line per outcome, preserving outcome order.
func Report(w io.Writer, f *Formatter, outcomes []transfer.Outcome) {
	for _, out := range outcomes {
		fmt.Fprintln(w, f.Line(out))
	}
}

// Failures counts the outcomes that carry an error.
func Failures(outcomes []transfer.Outcome) int {
	n := 0
	for _, out := range outcomes {
		if out.Err != nil {
			n++
		}
	}
	return n
}

// ExitCode is zero when every plan either fully succeeded or needed no
// patch, non-zero otherwise.
func ExitCode(outcomes []transfer.Outcome) int {
	if Failures(outcomes) > 0 {
		return 1
	}
	return 0
}
