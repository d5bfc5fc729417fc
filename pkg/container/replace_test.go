package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplacerApply(t *testing.T) {
	mapping := map[string]string{
		"_b99.run":         "experiment1.run",
		"_b99_1.nxs":       "experiment1_1.nxs",
		"_b99_1_master.h5": "experiment1_1_master.h5",
	}

	tests := []struct {
		name      string
		mapping   map[string]string
		oldPrefix string
		newPrefix string
		value     string
		want      string
		wantCount int
	}{
		{
			name:      "exact_filename_value",
			mapping:   mapping,
			oldPrefix: "_b99",
			newPrefix: "experiment1",
			value:     "_b99_1_master.h5",
			want:      "experiment1_1_master.h5",
			wantCount: 1,
		},
		{
			name:      "filename_embedded_in_path",
			mapping:   mapping,
			oldPrefix: "_b99",
			newPrefix: "experiment1",
			value:     "/data/run42/_b99_1_master.h5",
			want:      "/data/run42/experiment1_1_master.h5",
			wantCount: 1,
		},
		{
			name:      "longest_match_wins_over_bare_prefix",
			mapping:   mapping,
			oldPrefix: "_b99",
			newPrefix: "experiment1",
			value:     "template _b99 points at _b99_1.nxs",
			want:      "template experiment1 points at experiment1_1.nxs",
			wantCount: 2,
		},
		{
			name:      "new_prefix_containing_old_is_not_rematched",
			mapping:   map[string]string{"_b99_1.nxs": "my_b99_1.nxs"},
			oldPrefix: "_b99",
			newPrefix: "my_b99",
			value:     "_b99_1.nxs and _b99 twice",
			want:      "my_b99_1.nxs and my_b99 twice",
			wantCount: 2,
		},
		{
			name:      "no_occurrence",
			mapping:   mapping,
			oldPrefix: "_b99",
			newPrefix: "experiment1",
			value:     "unrelated string",
			want:      "unrelated string",
			wantCount: 0,
		},
		{
			name:      "identical_prefixes_are_dropped",
			mapping:   map[string]string{"same.h5": "same.h5"},
			oldPrefix: "p",
			newPrefix: "p",
			value:     "same.h5 p",
			want:      "same.h5 p",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repl := newReplacer(tt.mapping, tt.oldPrefix, tt.newPrefix)
			got, count := repl.apply(tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestReplacerContains(t *testing.T) {
	repl := newReplacer(map[string]string{"_b99.run": "x.run"}, "_b99", "x")
	assert.True(t, repl.contains("path/_b99.run"))
	assert.True(t, repl.contains("bare _b99 occurrence"))
	assert.False(t, repl.contains("nothing here"))
}

func TestReplacerNeedlesLongestFirst(t *testing.T) {
	repl := newReplacer(map[string]string{
		"_b99.run":         "a",
		"_b99_1_master.h5": "b",
	}, "_b99", "c")

	needles := repl.needles()
	assert.Equal(t, []string{"_b99_1_master.h5", "_b99.run", "_b99"}, needles)
}
