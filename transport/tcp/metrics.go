package tcp

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts traffic of every Stream and Listener sharing it.
// A nil *Metrics records nothing.
type Metrics struct {
	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter
	resets       prometheus.Counter
	streams      *prometheus.CounterVec // by flow.
	open         prometheus.Gauge
}

const metricsNamespace = "tcp_stream"

// NewMetrics creates the collectors and registers them to reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "read_bytes_total",
			Help:      "Bytes read from sockets into stream buffers",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "written_bytes_total",
			Help:      "Bytes written to sockets",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "resets_total",
			Help:      "Streams closed because the peer reset or closed the connection",
		}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "established_total",
			Help:      "Streams established, by flow",
		}, []string{"flow"}),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "open",
			Help:      "Streams currently holding an open descriptor",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.bytesRead, m.bytesWritten, m.resets, m.streams, m.open,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) read(n int) {
	if m != nil && n > 0 {
		m.bytesRead.Add(float64(n))
	}
}

func (m *Metrics) written(n int) {
	if m != nil && n > 0 {
		m.bytesWritten.Add(float64(n))
	}
}

func (m *Metrics) reset() {
	if m != nil {
		m.resets.Inc()
	}
}

func (m *Metrics) established(flow Flow) {
	if m != nil {
		m.streams.WithLabelValues(flow.String()).Inc()
		m.open.Inc()
	}
}

func (m *Metrics) closed() {
	if m != nil {
		m.open.Dec()
	}
}
