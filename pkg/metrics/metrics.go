package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "camrelay"

// Join rejection reasons.
const (
	ReasonAlreadyInSession = "already_in_session"
	ReasonSessionFull      = "session_full"
	ReasonTooManySessions  = "too_many_sessions"
)

// Metrics owns the relay's Prometheus registry and collectors.
type Metrics struct {
	Registry *prometheus.Registry

	Connections    prometheus.Gauge
	Sessions       prometheus.Gauge
	Joins          prometheus.Counter
	JoinRejections *prometheus.CounterVec
	Relayed        *prometheus.CounterVec
	Dropped        prometheus.Counter
	Violations     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Open signaling connections.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Sessions with at least one member.",
		}),
		Joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Successful session joins.",
		}),
		JoinRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_rejections_total",
			Help:      "Rejected session joins by reason.",
		}, []string{"reason"}),
		Relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Negotiation messages accepted for relay, by kind.",
		}, []string{"kind"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_dropped_total",
			Help:      "Outbound messages dropped because the recipient queue was full or closed.",
		}),
		Violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Connections closed for protocol violations.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Connections,
		m.Sessions,
		m.Joins,
		m.JoinRejections,
		m.Relayed,
		m.Dropped,
		m.Violations,
	)
	return m
}
