package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/require"

	"github.com/kopia/repbytes/cli"
	"github.com/kopia/repbytes/internal/testlogging"
)

// runResult captures the outputs of a single in-process invocation.
type runResult struct {
	stdout string
	stderr string
	err    error
	app    *cli.App
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()

	var stdout, stderr bytes.Buffer

	app := cli.NewApp()
	kp := kingpin.New("test", "test")

	err := app.RunSubcommand(testlogging.Context(t), kp, &stdout, &stderr, append([]string{"--disable-color"}, args...))

	return runResult{stdout.String(), stderr.String(), err, app}
}

func runAndExpectSuccess(t *testing.T, args ...string) runResult {
	t.Helper()

	r := run(t, args...)
	require.NoError(t, r.err, "stderr: %v", r.stderr)

	return r
}

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	fname := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(fname, data, 0o600))

	return fname
}

// sequence returns n bytes that never repeat for n <= 256.
func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}

// anchorOnlyData returns data in which the leading bytes occur at many offsets
// but that never repeats.
func anchorOnlyData() []byte {
	return append(make([]byte, 100), 'X')
}

func nonEmptyLines(s string) []string {
	var result []string

	for l := range strings.SplitSeq(s, "\n") {
		if l != "" {
			result = append(result, l)
		}
	}

	return result
}
