package cli_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kopia/repbytes/internal/artifact"
)

// setupScanDir creates a directory with one file for each interesting scan outcome.
func setupScanDir(t *testing.T) (dir string, bigCore []byte) {
	t.Helper()

	dir = t.TempDir()
	bigCore = sequence(100)

	writeTestFile(t, dir, "abort.bin", anchorOnlyData())
	writeTestFile(t, dir, "big.bin", bytes.Repeat(bigCore, 3))
	writeTestFile(t, dir, "rep.bin", bytes.Repeat([]byte("ABCD"), 100))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))
	writeTestFile(t, dir, "sub/small.bin", bytes.Repeat([]byte("AB"), 10))

	return dir, bigCore
}

func TestScan_Text(t *testing.T) {
	dir, _ := setupScanDir(t)

	r := runAndExpectSuccess(t, "scan", dir, "--max-attempts", "5")

	require.Equal(t, []string{
		filepath.Join(dir, "big.bin") + "\t100 bytes repeat 3.000000 times (200 repeated bytes)",
		filepath.Join(dir, "rep.bin") + "\t4 bytes repeat 100.000000 times (396 repeated bytes)\tABCD",
	}, nonEmptyLines(r.stdout))

	require.Contains(t, r.stderr, filepath.Join(dir, "abort.bin")+": search aborted after 5 attempts, use --force\n")
	require.Contains(t, r.stderr, "Scanned 4 files (821B), found 2, aborted 1.\n")
}

func TestScan_PolicyFlags(t *testing.T) {
	dir, _ := setupScanDir(t)

	// small.bin has 18 repeated bytes, below the default.
	r := runAndExpectSuccess(t, "scan", dir, "--min-repeated", "16B", "--force", "--parallel", "1")
	require.Contains(t, r.stdout, filepath.Join(dir, "sub", "small.bin")+"\t2 bytes repeat 10.000000 times (18 repeated bytes)\tAB\n")
	require.Contains(t, r.stderr, "Scanned 4 files (821B), found 3, aborted 0.\n")

	r = runAndExpectSuccess(t, "scan", dir, "--min-ratio", "50")
	require.Equal(t, []string{
		filepath.Join(dir, "rep.bin") + "\t4 bytes repeat 100.000000 times (396 repeated bytes)\tABCD",
	}, nonEmptyLines(r.stdout))

	r = runAndExpectSuccess(t, "scan", filepath.Join(dir, "rep.bin"), "--max-preview-size", "2")
	require.Equal(t, filepath.Join(dir, "rep.bin")+"\t4 bytes repeat 100.000000 times (396 repeated bytes)\n", r.stdout)
}

func TestScan_Artifacts(t *testing.T) {
	for _, comp := range []string{"none", "zstd", "pgzip", "lz4"} {
		t.Run(comp, func(t *testing.T) {
			dir, bigCore := setupScanDir(t)
			artifactDir := filepath.Join(t.TempDir(), "artifacts")

			r := runAndExpectSuccess(t, "scan", dir, "--artifact-dir", artifactDir, "--artifact-compression", comp)

			id := artifact.ID(bigCore)
			require.Contains(t, r.stdout, "\tdeduplicated "+filepath.Join(artifactDir, id))

			entries, err := os.ReadDir(artifactDir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			require.True(t, strings.HasPrefix(entries[0].Name(), id))

			got, err := artifact.Read(filepath.Join(artifactDir, entries[0].Name()))
			require.NoError(t, err)
			require.Equal(t, bigCore, got)
		})
	}
}

func TestScan_ArtifactsFromConfig(t *testing.T) {
	dir, bigCore := setupScanDir(t)
	artifactDir := filepath.Join(t.TempDir(), "artifacts")
	cfg := writeTestFile(t, t.TempDir(), "repbytes.yaml", []byte(
		"artifacts:\n  dir: "+artifactDir+"\n  compression: zstd\n"))

	runAndExpectSuccess(t, "--config-file", cfg, "scan", dir)

	got, err := artifact.Read(filepath.Join(artifactDir, artifact.ID(bigCore)+".zst"))
	require.NoError(t, err)
	require.Equal(t, bigCore, got)
}

func TestScan_JSON(t *testing.T) {
	dir, _ := setupScanDir(t)

	r := runAndExpectSuccess(t, "scan", dir, "--json", "--max-attempts", "5")

	type line struct {
		Path   string `json:"path"`
		Result struct {
			Outcome string `json:"outcome"`
			Width   int    `json:"width"`
		} `json:"result"`
		Feature *struct {
			Width   int    `json:"width"`
			Preview string `json:"preview"`
		} `json:"feature"`
	}

	var lines []line

	s := bufio.NewScanner(strings.NewReader(r.stdout))
	for s.Scan() {
		var l line

		require.NoError(t, json.Unmarshal(s.Bytes(), &l))

		lines = append(lines, l)
	}

	require.Len(t, lines, 3)

	require.Equal(t, filepath.Join(dir, "abort.bin"), lines[0].Path)
	require.Equal(t, "aborted", lines[0].Result.Outcome)
	require.Nil(t, lines[0].Feature)

	require.Equal(t, filepath.Join(dir, "big.bin"), lines[1].Path)
	require.Equal(t, 100, lines[1].Feature.Width)
	require.Empty(t, lines[1].Feature.Preview)

	require.Equal(t, filepath.Join(dir, "rep.bin"), lines[2].Path)
	require.Equal(t, "found", lines[2].Result.Outcome)
	require.Equal(t, "ABCD", lines[2].Feature.Preview)
}

func TestScan_InvalidCompression(t *testing.T) {
	dir, _ := setupScanDir(t)

	require.Error(t, run(t, "scan", dir, "--artifact-dir", t.TempDir(), "--artifact-compression", "no-such").err)
}
