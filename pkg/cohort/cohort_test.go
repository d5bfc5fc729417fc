package cohort

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644))
	}
}

func names(candidates []Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Name)
	}
	return out
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		dirs    []string
		prefix  string
		ignore  []string
		want    []string
		wantErr string
	}{
		{
			name:   "matches_exact_prefix_only",
			files:  []string{"_b99.run", "_b99_1.nxs", "_b99_1_master.h5", "x_b99.run", "other.h5"},
			prefix: "_b99",
			want:   []string{"_b99.run", "_b99_1.nxs", "_b99_1_master.h5"},
		},
		{
			name:   "no_matches_is_not_an_error",
			files:  []string{"a.h5", "b.nxs"},
			prefix: "_b99",
			want:   nil,
		},
		{
			name:   "prefix_inside_name_does_not_match",
			files:  []string{"data_b99.h5"},
			prefix: "_b99",
			want:   nil,
		},
		{
			name:   "directories_are_skipped",
			files:  []string{"_b99.run"},
			dirs:   []string{"_b99_subdir"},
			prefix: "_b99",
			want:   []string{"_b99.run"},
		},
		{
			name:   "ignore_globs_exclude_matches",
			files:  []string{"_b99.run", "_b99.log", "_b99_1.nxs"},
			prefix: "_b99",
			ignore: []string{"*.log"},
			want:   []string{"_b99.run", "_b99_1.nxs"},
		},
		{
			name:    "empty_prefix_is_rejected",
			files:   []string{"a.h5"},
			prefix:  "",
			wantErr: "prefix must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			for _, sub := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0755))
			}

			got, err := Find(context.Background(), dir, tt.prefix, tt.ignore)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(got))
			for _, c := range got {
				assert.Equal(t, dir, c.Dir)
				assert.Equal(t, tt.prefix, c.Prefix)
			}
		})
	}
}

func TestFind_MissingDirectory(t *testing.T) {
	_, err := Find(context.Background(), filepath.Join(t.TempDir(), "nope"), "_b99", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFind_PathIsNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Find(context.Background(), file, "_b99", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCandidatePath(t *testing.T) {
	c := Candidate{Dir: "/data", Name: "_b99.run", Prefix: "_b99"}
	assert.Equal(t, filepath.Join("/data", "_b99.run"), c.Path())
}
