package container

import (
	"bytes"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	// minTokenLen filters out noise from the raw byte scan; real attribute
	// names and filenames are longer than two characters.
	minTokenLen = 3
	// maxRunLen caps one printable run so an all-printable region cannot
	// balloon the scanner state.
	maxRunLen = 256
	// maxTokens caps the debug token list collected from one container.
	maxTokens = 32

	defaultScanChunk = 4 << 20
)

// printable reports whether b is a printable ASCII byte. HDF5 stores object
// names, attribute names and string values as ASCII/UTF-8 runs delimited by
// binary structure, so a printable-run scan surfaces all of them.
func printable(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}

// byteScanner streams a container chunk by chunk and reports whether any
// needle occurs in the raw bytes. Detector containers run to many gigabytes,
// so the file is never held in memory whole. As a side product the scanner
// collects the printable runs embedding a needle, for debug output.
type byteScanner struct {
	needles []string
	chunk   int
}

func newByteScanner(needles []string) *byteScanner {
	return &byteScanner{needles: needles, chunk: defaultScanChunk}
}

// ScanFile scans the file at path without loading it whole.
func (s *byteScanner) ScanFile(path string) (bool, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, nil, err
	}
	defer f.Close()
	return s.scan(f)
}

// scan reads r in fixed-size chunks. A needle split across a read boundary
// is caught by re-checking the tail of the previous reads joined with the
// head of the current chunk; the tail is one byte shorter than the longest
// needle, which is exactly the context a straddling match needs.
func (s *byteScanner) scan(r io.Reader) (bool, []string, error) {
	if len(s.needles) == 0 {
		return false, nil, nil
	}

	overlap := 0
	for _, needle := range s.needles {
		if len(needle) > overlap {
			overlap = len(needle)
		}
	}
	overlap--

	var (
		found bool
		seen  = make(map[string]struct{})
		run   []byte
		carry []byte
	)
	flush := func() {
		if len(run) >= minTokenLen && len(seen) < maxTokens {
			token := string(run)
			for _, needle := range s.needles {
				if strings.Contains(token, needle) {
					seen[token] = struct{}{}
					break
				}
			}
		}
		run = run[:0]
	}

	buf := make([]byte, s.chunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := buf[:n]

			if !found {
				if containsAny(data, s.needles) {
					found = true
				} else if len(carry) > 0 {
					head := data
					if len(head) > overlap {
						head = head[:overlap]
					}
					window := append(append(make([]byte, 0, len(carry)+len(head)), carry...), head...)
					if containsAny(window, s.needles) {
						found = true
					}
				}
			}

			if overlap > 0 {
				if len(data) >= overlap {
					carry = append(carry[:0], data[len(data)-overlap:]...)
				} else {
					carry = append(carry, data...)
					if len(carry) > overlap {
						carry = append(carry[:0], carry[len(carry)-overlap:]...)
					}
				}
			}

			for _, b := range data {
				if printable(b) {
					if len(run) < maxRunLen {
						run = append(run, b)
					}
					continue
				}
				flush()
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, nil, err
		}
	}
	flush()

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return found, tokens, nil
}

// containsAny reports whether data embeds at least one needle anywhere,
// printable run or not.
func containsAny(data []byte, needles []string) bool {
	for _, needle := range needles {
		if bytes.Contains(data, []byte(needle)) {
			return true
		}
	}
	return false
}
