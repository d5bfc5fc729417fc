package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h5utils/h5mv/pkg/transfer"
)

func TestRootCmd_RequiresThreeArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"onlydir"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
}

func TestRootCmd_FlagsAreRegistered(t *testing.T) {
	cmd := newRootCmd()
	assert.NotNil(t, cmd.Flags().Lookup("remove-original"))
	assert.NotNil(t, cmd.Flags().Lookup("yes"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["links"])
	assert.True(t, names["search"])
	assert.True(t, names["version"])
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name       string
		cfgRemove  bool
		flagRemove bool
		flagSet    bool
		want       transfer.Mode
	}{
		{"defaults_to_copy", false, false, false, transfer.ModeCopy},
		{"config_enables_move", true, false, false, transfer.ModeMove},
		{"flag_enables_move", false, true, true, transfer.ModeMove},
		{"explicit_flag_overrides_config_back_to_copy", true, false, true, transfer.ModeCopy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveMode(tt.cfgRemove, tt.flagRemove, tt.flagSet))
		})
	}
}

func TestRunRename_MissingDirectoryFailsBeforeAnyPlan(t *testing.T) {
	err := runRename(context.Background(), renameOptions{
		dir:       "/no/such/dir",
		prefix:    "_b99",
		newPrefix: "experiment1",
		yes:       true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory not found")
}
