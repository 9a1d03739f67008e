package cli

import (
	"context"
	"io"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kopia/repbytes/logging"
)

// RunSubcommand executes the subcommand synchronously in current process
// with flags in an isolated CLI environment, writing standard output and standard error
// to the provided writers.
func (c *App) RunSubcommand(ctx context.Context, kpapp *kingpin.Application, stdout, stderr io.Writer, argsAndFlags []string) error {
	c.stdoutWriter = stdout
	c.stderrWriter = stderr
	c.rootctx = ctx
	c.loggerFactory = logging.ToWriter(stderr)

	kpapp.Writer(stderr).ErrorWriter(stderr).UsageWriter(stderr)
	kpapp.Terminate(nil)

	c.Attach(kpapp)

	_, err := kpapp.Parse(argsAndFlags)

	return err //nolint:wrapcheck
}
