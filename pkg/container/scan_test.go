package container

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanString(t *testing.T, data string, chunk int, needles ...string) (bool, []string) {
	t.Helper()
	s := &byteScanner{needles: needles, chunk: chunk}
	found, tokens, err := s.scan(strings.NewReader(data))
	require.NoError(t, err)
	return found, tokens
}

func TestScan_CollectsMatchingTokens(t *testing.T) {
	data := "\x89HDF\r\n\x1a\n\x00\x00filename\x00_b99_1_master.h5\x00\x01\x02junk_b99junk\x00short\x00"

	found, tokens := scanString(t, data, defaultScanChunk, "_b99")
	assert.True(t, found)
	assert.Equal(t, []string{"_b99_1_master.h5", "junk_b99junk"}, tokens)
}

func TestScan_NoNeedles(t *testing.T) {
	found, tokens := scanString(t, "_b99 everywhere", defaultScanChunk)
	assert.False(t, found)
	assert.Empty(t, tokens)
}

func TestScan_NeedleSplitAcrossChunks(t *testing.T) {
	// A 3-byte chunk forces "_b99" to straddle every read boundary; the
	// carried tail must still catch it and the token run must reassemble.
	found, tokens := scanString(t, "\x00\x01xx_b99_1.nxs\x02", 3, "_b99")
	assert.True(t, found)
	assert.Equal(t, []string{"xx_b99_1.nxs"}, tokens)
}

func TestScan_ChunksSmallerThanNeedle(t *testing.T) {
	// The carried tail accumulates across reads shorter than the needle.
	found, _ := scanString(t, "experiment_b99data", 2, "_b99")
	assert.True(t, found)
}

func TestScan_NoMatchStaysNegative(t *testing.T) {
	found, tokens := scanString(t, "\x00other_data.h5\x00", 3, "_b99")
	assert.False(t, found)
	assert.Empty(t, tokens)
}

func TestScan_TokenAtEndOfData(t *testing.T) {
	found, tokens := scanString(t, "\x00_b99.run", defaultScanChunk, "_b99")
	assert.True(t, found)
	assert.Equal(t, []string{"_b99.run"}, tokens)
}

func TestScan_ShortRunsAreDropped(t *testing.T) {
	// "_b" runs shorter than the minimum token length never surface.
	found, tokens := scanString(t, "_b\x00_b\x00", defaultScanChunk, "_b")
	assert.True(t, found)
	assert.Empty(t, tokens)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.h5")
	require.NoError(t, os.WriteFile(path, []byte("\x00_b99_1_master.h5\x00"), 0644))

	found, tokens, err := newByteScanner([]string{"_b99"}).ScanFile(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"_b99_1_master.h5"}, tokens)
}

func TestScanFile_MissingFile(t *testing.T) {
	_, _, err := newByteScanner([]string{"_b99"}).ScanFile(filepath.Join(t.TempDir(), "absent.h5"))
	require.Error(t, err)
}

func TestContainsAny(t *testing.T) {
	data := []byte("\x00\x01_b99_1.nxs\x02")
	assert.True(t, containsAny(data, []string{"zzz", "_b99"}))
	assert.False(t, containsAny(data, []string{"zzz"}))
	assert.False(t, containsAny(data, nil))
}
