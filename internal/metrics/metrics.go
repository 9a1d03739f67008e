// Package metrics exposes Prometheus metrics describing repetition searches.
package metrics

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/kopia/repbytes/repeat"
)

const prometheusPrefix = "repbytes_"

// Detections records the results of repetition searches.
type Detections struct {
	outcomes *prometheus.CounterVec
	bytes    prometheus.Counter
	attempts prometheus.Histogram
	widths   prometheus.Histogram
}

// NewDetections creates detection metrics registered with the provided registerer.
func NewDetections(reg prometheus.Registerer) *Detections {
	f := promauto.With(reg)

	d := &Detections{
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: prometheusPrefix + "detections_total",
			Help: "Number of repetition searches by outcome.",
		}, []string{"outcome", "method"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Name: prometheusPrefix + "scanned_bytes_total",
			Help: "Number of bytes searched for repetition.",
		}),
		attempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    prometheusPrefix + "candidate_attempts",
			Help:    "Number of rejected candidate widths per search.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7), //nolint:mnd
		}),
		widths: f.NewHistogram(prometheus.HistogramOpts{
			Name:    prometheusPrefix + "repeat_width_bytes",
			Help:    "Width of repeated data found by searches.",
			Buckets: prometheus.ExponentialBuckets(1, 16, 7), //nolint:mnd
		}),
	}

	// make all outcomes visible before the first search.
	for _, o := range []repeat.Outcome{repeat.NotFound, repeat.Found, repeat.Aborted} {
		d.outcomes.WithLabelValues(o.String(), repeat.MethodNone.String())
	}

	return d
}

// Record records the result of searching data of a given length.
func (d *Detections) Record(r repeat.Result, length int) {
	d.outcomes.WithLabelValues(r.Outcome.String(), r.Method.String()).Inc()
	d.bytes.Add(float64(length))
	d.attempts.Observe(float64(r.Attempts))

	if r.Outcome == repeat.Found {
		d.widths.Observe(float64(r.Width))
	}
}

// WriteText writes all metrics gathered from g in Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "unable to gather metrics")
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))

	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrap(err, "unable to encode metrics")
		}
	}

	return nil
}
