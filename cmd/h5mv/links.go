package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/h5utils/h5mv/pkg/inspect"
)

// newLinksCmd creates the read-only links command.
func newLinksCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "links FILE",
		Short: "List the sibling data files an HDF5 container refers to",
		Long: `Links reads a container without modifying it and prints the unique
filenames it references (external link targets and filename metadata),
one per line, sorted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), flags.debug)

			refs, err := inspect.ExternalRefs(ctx, args[0])
			if err != nil {
				return errors.Errorf("inspecting %s: %w", args[0], err)
			}
			for _, ref := range refs {
				fmt.Println(ref)
			}
			return nil
		},
	}
}
