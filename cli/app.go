// Package cli implements command-line commands for repbytes.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kopia/repbytes/internal/config"
	"github.com/kopia/repbytes/internal/metrics"
	"github.com/kopia/repbytes/logging"
)

var log = logging.Module("repbytes/cli")

type commandParent interface {
	Command(name, help string) *kingpin.CmdClause
}

// appServices are the methods of *App that commands use.
type appServices interface {
	stdout() io.Writer
	stderr() io.Writer
	config() *config.Config
	detections() *metrics.Detections
	setLoggerFactory(f logging.LoggerFactory)
	baseActionWithContext(act func(ctx context.Context) error) func(ctx *kingpin.ParseContext) error
}

// App contains per-invocation flags and state of repbytes CLI.
type App struct {
	configFile string
	cfg        *config.Config

	logging       loggingFlags
	observability observabilityFlags

	detect commandDetect
	scan   commandScan

	registry *prometheus.Registry
	metrics  *metrics.Detections

	// testability hooks
	stdoutWriter  io.Writer
	stderrWriter  io.Writer
	rootctx       context.Context //nolint:containedctx
	loggerFactory logging.LoggerFactory
}

func (c *App) stdout() io.Writer {
	return c.stdoutWriter
}

func (c *App) stderr() io.Writer {
	return c.stderrWriter
}

func (c *App) config() *config.Config {
	return c.cfg
}

func (c *App) detections() *metrics.Detections {
	return c.metrics
}

// Registry returns the registry of metrics collected by the app.
func (c *App) Registry() *prometheus.Registry {
	return c.registry
}

func (c *App) setLoggerFactory(f logging.LoggerFactory) {
	c.loggerFactory = f
}

// Attach attaches the CLI parser to the application.
func (c *App) Attach(app *kingpin.Application) {
	app.Flag("config-file", "Specify the config file to use").Envar("REPBYTES_CONFIG_FILE").StringVar(&c.configFile)

	c.logging.setup(c, app)
	c.observability.setup(c, app)

	c.detect.setup(c, app)
	c.scan.setup(c, app)

	app.PreAction(c.loadConfig)
}

func (c *App) loadConfig(_ *kingpin.ParseContext) error {
	cfg, err := config.LoadFromFile(c.configFile)
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	c.cfg = cfg

	return nil
}

func (c *App) baseActionWithContext(act func(ctx context.Context) error) func(ctx *kingpin.ParseContext) error {
	return func(_ *kingpin.ParseContext) error {
		ctx := logging.WithLogger(c.rootctx, c.loggerFactory)

		if err := c.observability.start(ctx); err != nil {
			return errors.Wrap(err, "unable to start metrics")
		}

		err := act(ctx)

		if serr := c.observability.stop(ctx); serr != nil {
			log(ctx).Errorf("unable to write metrics: %v", serr)
		}

		return err
	}
}

// NewApp creates a new instance of App.
func NewApp() *App {
	reg := prometheus.NewRegistry()

	return &App{
		cfg:           config.Default(),
		registry:      reg,
		metrics:       metrics.NewDetections(reg),
		stdoutWriter:  os.Stdout,
		stderrWriter:  os.Stderr,
		rootctx:       context.Background(),
		loggerFactory: logging.ToWriter(os.Stderr),
	}
}
