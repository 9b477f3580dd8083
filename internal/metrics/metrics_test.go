package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReportReceived("vibration")
	m.ReportReceived("vibration")
	if got := testutil.ToFloat64(m.reportsReceived.WithLabelValues("vibration")); got != 2 {
		t.Fatalf("expected 2 vibration reports, got %f", got)
	}

	m.IncidentRecorded("SOS")
	if got := testutil.ToFloat64(m.incidents.WithLabelValues("SOS")); got != 1 {
		t.Fatalf("expected 1 SOS incident, got %f", got)
	}

	m.WriteFailed("incident")
	m.GateSuppressed("debounce")
	m.SOS("expired")
	if got := testutil.ToFloat64(m.sosCommands.WithLabelValues("expired")); got != 1 {
		t.Fatalf("expected 1 expired command, got %f", got)
	}

	if n := testutil.CollectAndCount(m.writeFailures); n != 1 {
		t.Fatalf("expected 1 write failure series, got %d", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ReportReceived("radar")
	m.IncidentRecorded("SOS")
	m.WriteFailed("sensor_log")
	m.GateSuppressed("throttle")
	m.SOS("queued")
}
