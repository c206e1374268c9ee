package server

import "github.com/prometheus/client_golang/prometheus"

type metrics interface {
	incQueries()
	incAllowed()
	incDenied()
	incMalformed()
}

type noopMetrics struct{}

func (noopMetrics) incQueries()   {}
func (noopMetrics) incAllowed()   {}
func (noopMetrics) incDenied()    {}
func (noopMetrics) incMalformed() {}

type promMetrics struct {
	queries   prometheus.Counter
	allowed   prometheus.Counter
	denied    prometheus.Counter
	malformed prometheus.Counter
}

func newPromMetrics(labels prometheus.Labels) *promMetrics {
	p := &promMetrics{
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipsetd_queries_count",
			Help:        "ipsetd received classification queries count",
			ConstLabels: labels,
		}),
		allowed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipsetd_allowed_count",
			Help:        "ipsetd queries answered with allow",
			ConstLabels: labels,
		}),
		denied: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipsetd_denied_count",
			Help:        "ipsetd queries answered with deny",
			ConstLabels: labels,
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ipsetd_malformed_count",
			Help:        "ipsetd queries that did not carry a valid IPv4 address",
			ConstLabels: labels,
		}),
	}
	return p
}

func (m *promMetrics) Describe(d chan<- *prometheus.Desc) {
	d <- m.queries.Desc()
	d <- m.allowed.Desc()
	d <- m.denied.Desc()
	d <- m.malformed.Desc()
}

func (m *promMetrics) Collect(c chan<- prometheus.Metric) {
	m.queries.Collect(c)
	m.allowed.Collect(c)
	m.denied.Collect(c)
	m.malformed.Collect(c)
}

func (m *promMetrics) incQueries()   { m.queries.Inc() }
func (m *promMetrics) incAllowed()   { m.allowed.Inc() }
func (m *promMetrics) incDenied()    { m.denied.Inc() }
func (m *promMetrics) incMalformed() { m.malformed.Inc() }
