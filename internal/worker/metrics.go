package worker

import "github.com/prometheus/client_golang/prometheus"

// Posting outcomes recorded by Metrics.
const (
	resultSynced    = "synced"
	resultDuplicate = "duplicate"
	resultDropped   = "dropped"
	resultFailed    = "failed"
)

// Metrics counts what the worker did with each posting.
type Metrics struct {
	postings   *prometheus.CounterVec
	categories prometheus.Gauge
	added      prometheus.Counter
}

// NewMetrics creates the worker's collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "sync",
			Name:      "postings_total",
			Help:      "Posting messages handled, by result.",
		}, []string{"result"}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fintrack",
			Subsystem: "sync",
			Name:      "categories",
			Help:      "Size of the local category set after the last sync.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "sync",
			Name:      "categories_added_total",
			Help:      "Categories merged in from the spreadsheet.",
		}),
	}
	reg.MustRegister(m.postings, m.categories, m.added)
	for _, r := range []string{resultSynced, resultDuplicate, resultDropped, resultFailed} {
		m.postings.WithLabelValues(r)
	}
	return m
}

func (m *Metrics) posting(result string) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(result).Inc()
}

func (m *Metrics) categorySync(size, added int) {
	if m == nil {
		return
	}
	m.categories.Set(float64(size))
	m.added.Add(float64(added))
}
