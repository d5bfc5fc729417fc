package container

import (
	"sort"
	"strings"
)

// replacer applies the cohort's old->new substitutions to a string value in
// a single left-to-right pass, longest old string first. Single-pass matters:
// a naive sequential ReplaceAll over the bare prefix would re-match text that
// an earlier full-filename substitution already produced whenever the new
// prefix still contains the old one (e.g. "_b99" -> "my_b99").
type replacer struct {
	olds []string
	news map[string]string
}

// newReplacer builds a replacer from the cohort name mapping plus the bare
// prefix pair. Full filenames sort before the prefix, so
// "_b99_1_master.h5" -> "experiment1_1_master.h5" wins over
// "_b99" -> "experiment1" inside the same value.
func newReplacer(mapping map[string]string, oldPrefix, newPrefix string) *replacer {
	r := &replacer{news: make(map[string]string, len(mapping)+1)}
	for oldName, newName := range mapping {
		if oldName == "" || oldName == newName {
			continue
		}
		r.news[oldName] = newName
	}
	if oldPrefix != "" && oldPrefix != newPrefix {
		if _, taken := r.news[oldPrefix]; !taken {
			r.news[oldPrefix] = newPrefix
		}
	}

	r.olds = make([]string, 0, len(r.news))
	for old := range r.news {
		r.olds = append(r.olds, old)
	}
	sort.Slice(r.olds, func(i, j int) bool {
		if len(r.olds[i]) != len(r.olds[j]) {
			return len(r.olds[i]) > len(r.olds[j])
		}
		return r.olds[i] < r.olds[j]
	})
	return r
}

// needles returns every old string the replacer substitutes, longest first.
func (r *replacer) needles() []string {
	return r.olds
}

// apply rewrites value and reports how many substitutions were made.
func (r *replacer) apply(value string) (string, int) {
	if len(r.olds) == 0 {
		return value, 0
	}

	var b strings.Builder
	count := 0
	i := 0
	for i < len(value) {
		matched := false
		for _, old := range r.olds {
			if strings.HasPrefix(value[i:], old) {
				b.WriteString(r.news[old])
				i += len(old)
				count++
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(value[i])
			i++
		}
	}
	if count == 0 {
		return value, 0
	}
	return b.String(), count
}

// contains reports whether value embeds any of the old strings.
func (r *replacer) contains(value string) bool {
	for _, old := range r.olds {
		if strings.Contains(value, old) {
			return true
		}
	}
	return false
}
