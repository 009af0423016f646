package radius

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds optional Prometheus counters for codec-level events. A nil *Metrics is
// valid everywhere it is used (all methods are no-ops), so a host that does not care about
// metrics pays nothing and never has to guard calls with a nil check of its own.
type Metrics struct {
	parseFailures  *prometheus.CounterVec
	attributeSkips *prometheus.CounterVec
	dictionaryMiss *prometheus.CounterVec
}

// NewMetrics builds and registers the codec's counters against reg. Pass nil to disable
// metrics entirely; the returned *Metrics will be non-nil but every increment becomes a
// no-op, matching the teacher's own pattern of a constructor that registers everything in
// one place up front.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radius",
			Subsystem: "codec",
			Name:      "parse_failures_total",
			Help:      "Packet-level parse failures by error kind.",
		}, []string{"kind"}),
		attributeSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radius",
			Subsystem: "codec",
			Name:      "attribute_skips_total",
			Help:      "Per-attribute decode skips during parsing.",
		}, []string{"reason"}),
		dictionaryMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radius",
			Subsystem: "codec",
			Name:      "dictionary_misses_total",
			Help:      "Attribute code/name lookups that missed the dictionary.",
		}, []string{"direction"}),
	}

	reg.MustRegister(m.parseFailures, m.attributeSkips, m.dictionaryMiss)
	return m
}

func (m *Metrics) recordParseFailure(kind string) {
	if m == nil || m.parseFailures == nil {
		return
	}
	m.parseFailures.With(prometheus.Labels{"kind": kind}).Inc()
}

func (m *Metrics) recordAttributeSkip(reason string) {
	if m == nil || m.attributeSkips == nil {
		return
	}
	m.attributeSkips.With(prometheus.Labels{"reason": reason}).Inc()
}

func (m *Metrics) recordDictionaryMiss(direction string) {
	if m == nil || m.dictionaryMiss == nil {
		return
	}
	m.dictionaryMiss.With(prometheus.Labels{"direction": direction}).Inc()
}
