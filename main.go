/*
Command-line tool for finding files that consist of repeated data.

Usage:

	$ repbytes [<flags>] <subcommand> [<args> ...]

Use 'repbytes help' to see more details.
*/
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kopia/repbytes/cli"
)

// BuildVersion is set at build time.
var BuildVersion = "v0-unofficial"

func main() {
	app := kingpin.New("repbytes", "Repeated data detector.").Author("http://github.com/kopia/repbytes")
	app.Version(BuildVersion)

	cli.NewApp().Attach(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
