package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	warningColor = color.New(color.FgYellow)
	foundColor   = color.New(color.FgGreen)
)

type textOutput struct {
	svc appServices
}

func (o *textOutput) setup(svc appServices) {
	o.svc = svc
}

func (o *textOutput) stdout() io.Writer {
	return o.svc.stdout()
}

func (o *textOutput) stderr() io.Writer {
	return o.svc.stderr()
}

func (o *textOutput) printStdout(msg string, args ...any) {
	fmt.Fprintf(o.stdout(), msg, args...) //nolint:errcheck
}

func (o *textOutput) printStderr(msg string, args ...any) {
	fmt.Fprintf(o.stderr(), msg, args...) //nolint:errcheck
}

// printStdoutColor prints to stdout, coloring the output unless colors are disabled.
func (o *textOutput) printStdoutColor(c *color.Color, msg string, args ...any) {
	c.Fprintf(o.stdout(), msg, args...) //nolint:errcheck
}

func (o *textOutput) printStderrColor(c *color.Color, msg string, args ...any) {
	c.Fprintf(o.stderr(), msg, args...) //nolint:errcheck
}
