package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reportsReceived *prometheus.CounterVec
	incidents       *prometheus.CounterVec
	writeFailures   *prometheus.CounterVec
	gateSuppressed  *prometheus.CounterVec
	sosCommands     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reportsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_reports_received_total",
			Help: "Sensor reports accepted by the ingestion endpoints.",
		}, []string{"sensor"}),
		incidents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_incidents_recorded_total",
			Help: "Incident rows written to the event log.",
		}, []string{"type"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_log_write_failures_total",
			Help: "Event log writes that failed and were dropped.",
		}, []string{"op"}),
		gateSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_gate_suppressed_total",
			Help: "Writes skipped because a rate gate was closed.",
		}, []string{"gate"}),
		sosCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_sos_commands_total",
			Help: "SOS mailbox transitions.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.reportsReceived, m.incidents, m.writeFailures, m.gateSuppressed, m.sosCommands)
	return m
}

func (m *Metrics) ReportReceived(sensor string) {
	if m == nil {
		return
	}
	m.reportsReceived.WithLabelValues(sensor).Inc()
}

func (m *Metrics) IncidentRecorded(incidentType string) {
	if m == nil {
		return
	}
	m.incidents.WithLabelValues(incidentType).Inc()
}

func (m *Metrics) WriteFailed(op string) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) GateSuppressed(gate string) {
	if m == nil {
		return
	}
	m.gateSuppressed.WithLabelValues(gate).Inc()
}

// SOS records a mailbox transition: "queued", "delivered" or "expired"
func (m *Metrics) SOS(outcome string) {
	if m == nil {
		return
	}
	m.sosCommands.WithLabelValues(outcome).Inc()
}
