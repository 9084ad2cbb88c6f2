package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the queue instruments. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	jobTransitions   *prometheus.CounterVec
	filamentDeducted *prometheus.CounterVec
	lowStockWarnings *prometheus.CounterVec
	sweepRuns        *prometheus.CounterVec
	printersOccupied prometheus.Gauge
	requestDuration  *prometheus.HistogramVec
	startConflicts   prometheus.Counter
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	jobTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printq_job_transitions_total",
			Help: "Print job state transitions.",
		},
		[]string{"from", "to"},
	)

	filamentDeducted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printq_filament_deducted_grams_total",
			Help: "Grams removed from filament stock.",
		},
		[]string{"reason"}, // stop | mark_failed | completion | manual
	)

	lowStockWarnings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printq_low_stock_warnings_total",
			Help: "Low stock signals raised.",
		},
		[]string{"source"}, // create | adjust
	)

	sweepRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printq_completion_sweeps_total",
			Help: "Completion sweeps by outcome.",
		},
		[]string{"result"}, // success | failed
	)

	printersOccupied := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "printq_printers_occupied",
			Help: "Printers currently holding a printing job.",
		},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "printq_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	startConflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "printq_job_start_conflicts_total",
			Help: "Start requests rejected because the printer was busy.",
		},
	)

	registerer.MustRegister(
		jobTransitions,
		filamentDeducted,
		lowStockWarnings,
		sweepRuns,
		printersOccupied,
		requestDuration,
		startConflicts,
	)

	return &Metrics{
		jobTransitions:   jobTransitions,
		filamentDeducted: filamentDeducted,
		lowStockWarnings: lowStockWarnings,
		sweepRuns:        sweepRuns,
		printersOccupied: printersOccupied,
		requestDuration:  requestDuration,
		startConflicts:   startConflicts,
	}
}

func (m *Metrics) JobTransition(from, to string) {
	if m == nil {
		return
	}
	m.jobTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) FilamentDeducted(reason string, grams float64) {
	if m == nil || grams <= 0 {
		return
	}
	m.filamentDeducted.WithLabelValues(reason).Add(grams)
}

func (m *Metrics) LowStock(source string) {
	if m == nil {
		return
	}
	m.lowStockWarnings.WithLabelValues(source).Inc()
}

func (m *Metrics) SweepRun(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	m.sweepRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) SetPrintersOccupied(n int) {
	if m == nil {
		return
	}
	m.printersOccupied.Set(float64(n))
}

func (m *Metrics) StartConflict() {
	if m == nil {
		return
	}
	m.startConflicts.Inc()
}

// GinMiddleware records request latency keyed by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
