package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/h5utils/h5mv/pkg/inspect"
)

// newSearchCmd creates the read-only search command.
func newSearchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search FILE STRING",
		Short: "Report where a string occurs inside an HDF5 container",
		Long: `Search looks for STRING in the container's filename, its raw bytes
(reporting offsets) and its object hierarchy. Useful for checking which
traces of an old name a container still carries.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), flags.debug)

			found, err := inspect.Search(ctx, args[0], args[1])
			if err != nil {
				return errors.Errorf("searching %s: %w", args[0], err)
			}
			if len(found) == 0 {
				fmt.Printf("no occurrences of %q\n", args[1])
				return nil
			}
			for _, occ := range found {
				switch occ.Kind {
				case "bytes":
					fmt.Printf("%-8s offset %d\n", occ.Kind, occ.Offset)
				default:
					fmt.Printf("%-8s %s\n", occ.Kind, occ.Detail)
				}
			}
			return nil
		},
	}
}
