package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cosmez/reapi-go/internal/bridge"
	"github.com/cosmez/reapi-go/internal/command"
)

// otherCommand labels commands the registry does not know, keeping the
// label set bounded whatever paths clients send.
const otherCommand = "OTHER"

// Metrics collects command counters on a private registry. It implements
// bridge.Observer.
type Metrics struct {
	registry    *prometheus.Registry
	known       *command.Registry
	cmdCount    *prometheus.CounterVec
	cmdDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors. known decides which command names get
// their own label; nil labels every command by name.
func NewMetrics(known *command.Registry) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		known:    known,
		cmdCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reapi_commands_total",
			Help: "Commands executed through the gateway, by outcome.",
		}, []string{"command", "outcome"}),
		cmdDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reapi_command_duration_seconds",
			Help:    "Time spent holding the backend session per command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}
	m.registry.MustRegister(
		m.cmdCount,
		m.cmdDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one command.
func (m *Metrics) Observe(name string, outcome bridge.Kind, elapsed time.Duration) {
	label := m.label(name)
	m.cmdCount.WithLabelValues(label, outcome.String()).Inc()
	m.cmdDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *Metrics) label(name string) string {
	name = strings.ToUpper(name)
	if m.known == nil || m.known.Get(name) != nil {
		return name
	}
	return otherCommand
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
