package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/h5utils/h5mv/pkg/cohort"
	"github.com/h5utils/h5mv/pkg/config"
	"github.com/h5utils/h5mv/pkg/container"
	"github.com/h5utils/h5mv/pkg/plan"
	"github.com/h5utils/h5mv/pkg/status"
	"github.com/h5utils/h5mv/pkg/transfer"
)

type renameOptions struct {
	dir            string
	prefix         string
	newPrefix      string
	removeOriginal bool
	// removeOriginalSet is true when --remove-original was given on the
	// command line, in either direction.
	removeOriginalSet bool
	yes               bool
	configFile        string
}

// runRename is the whole rename flow: match, plan, confirm, execute, report.
// The plan list is computed and shown before anything touches the disk; a
// negative answer leaves the filesystem exactly as it was.
func runRename(ctx context.Context, opts renameOptions) error {
	cfg, err := config.Load(ctx, opts.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	mode := resolveMode(cfg.RemoveOriginal, opts.removeOriginal, opts.removeOriginalSet)

	candidates, err := cohort.Find(ctx, opts.dir, opts.prefix, cfg.Ignore)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Printf("no files found with prefix %q in %s\n", opts.prefix, opts.dir)
		return nil
	}

	set, err := plan.Build(candidates, opts.newPrefix, cfg.ContainerExtensions)
	if err != nil {
		return err
	}

	renderPreview(set, mode)

	if !opts.yes {
		ok, err := confirm(set.Len())
		if err != nil {
			return errors.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			fmt.Println("rename cancelled, nothing written")
			return nil
		}
	}

	patcher := container.NewPatcher(cfg.AttributeNames)
	executor := transfer.NewExecutor(patchAdapter{patcher})
	outcomes := executor.Execute(ctx, set, mode)

	status.Report(os.Stdout, status.NewFormatter(), outcomes)

	if status.ExitCode(outcomes) != 0 {
		return errors.Errorf("%d of %d files failed", status.Failures(outcomes), len(outcomes))
	}
	return nil
}

// resolveMode picks copy or move. An explicit command-line flag wins over
// the config file in both directions.
func resolveMode(cfgRemove, flagRemove, flagSet bool) transfer.Mode {
	remove := cfgRemove
	if flagSet {
		remove = flagRemove
	}
	if remove {
		return transfer.ModeMove
	}
	return transfer.ModeCopy
}

// renderPreview shows the planned renames before confirmation.
func renderPreview(set *plan.Set, mode transfer.Mode) {
	data := pterm.TableData{{"current name", "new name", "kind"}}
	for _, pl := range set.Plans() {
		data = append(data, []string{pl.OldName, pl.NewName, pl.Kind.String()})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printf("mode: %s\n", mode)
}

// confirm blocks on a yes/no prompt; yes is the default answer.
func confirm(n int) (bool, error) {
	answer := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Rename these %d files?", n),
		Default: true,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

// patchAdapter narrows the container patcher to the executor's interface.
type patchAdapter struct {
	patcher *container.Patcher
}

func (a patchAdapter) Patch(ctx context.Context, path string, mapping map[string]string, oldPrefix, newPrefix string) (transfer.PatchResult, error) {
	res, err := a.patcher.Patch(ctx, path, mapping, oldPrefix, newPrefix)
	if err != nil {
		return transfer.PatchResult{}, err
	}
	return transfer.PatchResult{Skipped: res.Skipped, Rewrites: res.Rewrites}, nil
}
