package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gorilla/mux"
	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kopia/repbytes/internal/metrics"
)

// DirMode is the directory mode for output directories.
const DirMode = 0o700

const metricsShutdownTimeout = 5 * time.Second

type observabilityFlags struct {
	enablePProf         bool
	metricsListenAddr   string
	metricsPushAddr     string
	metricsJob          string
	metricsPushInterval time.Duration
	metricsGroupings    []string
	metricsOutputDir    string
	outputFilePrefix    string

	registry *prometheus.Registry

	server   *http.Server
	listener net.Listener

	stopPusher chan struct{}
	pusherWG   sync.WaitGroup
}

func (c *observabilityFlags) setup(app *App, kp *kingpin.Application) {
	kp.Flag("metrics-listen-addr", "Expose Prometheus metrics on a given host:port").Hidden().StringVar(&c.metricsListenAddr)
	kp.Flag("enable-pprof", "Expose pprof handlers").Hidden().BoolVar(&c.enablePProf)

	// push gateway parameters
	kp.Flag("metrics-push-addr", "Address of push gateway").Envar("REPBYTES_METRICS_PUSH_ADDR").Hidden().StringVar(&c.metricsPushAddr)
	kp.Flag("metrics-push-interval", "Frequency of metrics push").Envar("REPBYTES_METRICS_PUSH_INTERVAL").Hidden().Default("5s").DurationVar(&c.metricsPushInterval)
	kp.Flag("metrics-push-job", "Job ID for to push gateway").Envar("REPBYTES_METRICS_JOB").Hidden().Default("repbytes").StringVar(&c.metricsJob)
	kp.Flag("metrics-push-grouping", "Grouping for push gateway").Envar("REPBYTES_METRICS_PUSH_GROUPING").Hidden().StringsVar(&c.metricsGroupings)

	kp.Flag("metrics-directory", "Directory where the metrics should be saved when repbytes exits. A file per process execution will be created in this directory").Hidden().StringVar(&c.metricsOutputDir)

	kp.PreAction(c.initialize)

	c.registry = app.registry
}

func (c *observabilityFlags) initialize(ctx *kingpin.ParseContext) error {
	if c.metricsOutputDir == "" {
		return nil
	}

	// write to a separate file per command and process execution to avoid
	// conflicts with previously created files
	command := "unknown"
	if cmd := ctx.SelectedCommand; cmd != nil {
		command = strings.ReplaceAll(cmd.FullCommand(), " ", "-")
	}

	c.outputFilePrefix = time.Now().Format("20060102-150405-") + command

	return nil
}

func (c *observabilityFlags) start(ctx context.Context) error {
	if err := c.maybeStartListener(ctx); err != nil {
		return err
	}

	if err := c.maybeStartMetricsPusher(ctx); err != nil {
		return err
	}

	if c.metricsOutputDir != "" {
		c.metricsOutputDir = filepath.Clean(c.metricsOutputDir)

		// ensure the metrics output dir can be created
		if err := os.MkdirAll(c.metricsOutputDir, DirMode); err != nil {
			return errors.Wrapf(err, "could not create metrics output directory: %s", c.metricsOutputDir)
		}
	}

	return nil
}

// Starts observability listener when a listener address is specified.
func (c *observabilityFlags) maybeStartListener(ctx context.Context) error {
	if c.metricsListenAddr == "" {
		return nil
	}

	m := mux.NewRouter()
	m.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	if c.enablePProf {
		m.HandleFunc("/debug/pprof/", pprof.Index)
		m.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		m.HandleFunc("/debug/pprof/profile", pprof.Profile)
		m.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		m.HandleFunc("/debug/pprof/trace", pprof.Trace)
		m.HandleFunc("/debug/pprof/{cmd}", pprof.Index)
	}

	l, err := net.Listen("tcp", c.metricsListenAddr)
	if err != nil {
		return errors.Wrap(err, "unable to listen for metrics")
	}

	log(ctx).Infof("starting prometheus metrics on %v", l.Addr())

	c.listener = l
	c.server = &http.Server{Handler: m, ReadHeaderTimeout: metricsShutdownTimeout}

	go c.server.Serve(l) //nolint:errcheck

	return nil
}

func (c *observabilityFlags) maybeStartMetricsPusher(ctx context.Context) error {
	if c.metricsPushAddr == "" {
		return nil
	}

	pusher := push.New(c.metricsPushAddr, c.metricsJob).Gatherer(c.registry)

	for _, g := range c.metricsGroupings {
		const nParts = 2

		parts := strings.SplitN(g, ":", nParts)
		if len(parts) != nParts {
			return errors.Errorf("grouping must be name:value")
		}

		pusher.Grouping(parts[0], parts[1])
	}

	c.stopPusher = make(chan struct{})
	c.pusherWG.Add(1)

	log(ctx).Infof("starting prometheus pusher on %v every %v", c.metricsPushAddr, c.metricsPushInterval)
	c.pushOnce(ctx, "initial", pusher)

	go c.pushPeriodically(ctx, pusher)

	return nil
}

func (c *observabilityFlags) stop(ctx context.Context) error {
	if c.stopPusher != nil {
		close(c.stopPusher)

		c.pusherWG.Wait()
		c.stopPusher = nil
	}

	if c.server != nil {
		sctx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
		defer cancel()

		if err := c.server.Shutdown(sctx); err != nil {
			log(ctx).Warnf("unable to shut down metrics server: %v", err)
		}

		c.server = nil
	}

	if c.metricsOutputDir == "" {
		return nil
	}

	var buf bytes.Buffer

	if err := metrics.WriteText(&buf, c.registry); err != nil {
		return errors.Wrap(err, "unable to gather metrics")
	}

	filename := filepath.Join(c.metricsOutputDir, c.outputFilePrefix+".prom")

	return errors.Wrapf(atomic.WriteFile(filename, &buf), "unable to write metrics file '%s'", filename)
}

func (c *observabilityFlags) pushPeriodically(ctx context.Context, p *push.Pusher) {
	defer c.pusherWG.Done()

	ticker := time.NewTicker(c.metricsPushInterval)

	for {
		select {
		case <-ticker.C:
			c.pushOnce(ctx, "periodic", p)

		case <-c.stopPusher:
			ticker.Stop()
			c.pushOnce(ctx, "final", p)

			return
		}
	}
}

func (c *observabilityFlags) pushOnce(ctx context.Context, kind string, p *push.Pusher) {
	log(ctx).Debugw("pushing prometheus metrics", "kind", kind)

	if err := p.Push(); err != nil {
		log(ctx).Debugw("error pushing prometheus metrics", "kind", kind, "err", err)
	}
}
