package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootFlags are the options shared with the rename run.
type rootFlags struct {
	configFile     string
	removeOriginal bool
	yes            bool
	debug          bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "h5mv DIRECTORY PREFIX NEW_PREFIX",
		Short: "Rename an experiment file cohort and keep its HDF5 metadata consistent",
		Long: `h5mv renames every file in DIRECTORY whose name starts with PREFIX,
substituting NEW_PREFIX for the prefix, and rewrites HDF5-internal string
metadata (filename attributes and similar traceability fields) so each
renamed container still describes itself correctly.

Files are copied by default; pass --remove-original to move them instead.
Nothing is written before the planned renames are confirmed.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), flags.debug)
			return runRename(ctx, renameOptions{
				dir:               args[0],
				prefix:            args[1],
				newPrefix:         args[2],
				removeOriginal:    flags.removeOriginal,
				removeOriginalSet: cmd.Flags().Changed("remove-original"),
				yes:               flags.yes,
				configFile:        flags.configFile,
			})
		},
	}

	cmd.Flags().BoolVar(&flags.removeOriginal, "remove-original", false, "move files instead of copying them")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .h5mv.{yaml,yml,hcl,json})")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		newLinksCmd(flags),
		newSearchCmd(flags),
		newVersionCmd(),
	)

	return cmd
}

// setupLogging configures zerolog and stores the logger in the context.
// Warn is the quiet default so log lines never interleave with the report.
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
