package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"celemeter/internal/parser"
	"celemeter/internal/trajectory"
)

type Collector struct {
	reg *prometheus.Registry

	Uploads         *prometheus.CounterVec // result label: ok|empty|error
	RecordsMatched  prometheus.Counter
	RecordsRejected *prometheus.CounterVec // reason label
	PointsAccepted  prometheus.Counter
	SegmentsBuilt   prometheus.Counter
	ParseDuration   prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "celemeter_uploads_total",
			Help: "Log files parsed, by outcome.",
		}, []string{"result"}),
		RecordsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "celemeter_records_matched_total",
			Help: "Log lines matching the telemetry marker.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "celemeter_records_rejected_total",
			Help: "Matched records dropped during validation.",
		}, []string{"reason"}),
		PointsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "celemeter_points_accepted_total",
			Help: "Validated track points.",
		}),
		SegmentsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "celemeter_segments_built_total",
			Help: "Colored segments produced.",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "celemeter_parse_duration_seconds",
			Help:    "Time to turn one log file into a trajectory.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.Uploads, c.RecordsMatched, c.RecordsRejected,
		c.PointsAccepted, c.SegmentsBuilt, c.ParseDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// ObserveParse records the outcome of one pipeline run
func (c *Collector) ObserveParse(stats parser.Stats, segments int, elapsed time.Duration, err error) {
	c.ParseDuration.Observe(elapsed.Seconds())
	c.RecordsMatched.Add(float64(stats.Matched))
	c.PointsAccepted.Add(float64(stats.Accepted))
	c.SegmentsBuilt.Add(float64(segments))
	for reason, n := range stats.Reasons {
		c.RecordsRejected.WithLabelValues(reason).Add(float64(n))
	}

	switch {
	case err == nil:
		c.Uploads.WithLabelValues("ok").Inc()
	case errors.Is(err, trajectory.ErrEmptyTrajectory):
		c.Uploads.WithLabelValues("empty").Inc()
	default:
		c.Uploads.WithLabelValues("error").Inc()
	}
}
