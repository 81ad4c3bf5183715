package server

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecordPoll(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RecordPoll("v4", PollOK, 10*time.Millisecond, 128)
	m.RecordPoll("v4", PollOK, 20*time.Millisecond, 64)
	m.RecordPoll("v4", PollAborted, time.Second, 0)

	if got := counterValue(t, m.polls.WithLabelValues("v4", PollOK)); got != 2 {
		t.Errorf("polls_total(v4, ok) = %v, want 2", got)
	}
	if got := counterValue(t, m.polls.WithLabelValues("v4", PollAborted)); got != 1 {
		t.Errorf("polls_total(v4, aborted) = %v, want 1", got)
	}
	if got := histogramCount(t, m.pollWait.WithLabelValues("v4")); got != 3 {
		t.Errorf("poll_wait_seconds count = %d, want 3", got)
	}
	// Empty payloads are not observed
	if got := histogramCount(t, m.payloadBytes.WithLabelValues("v4")); got != 2 {
		t.Errorf("payload_bytes count = %d, want 2", got)
	}
}

func TestMetricsSessionsAndPackets(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordPackets(TransportWebSocket, 3)
	m.RecordWebSocketError("write")

	if got := gaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}
	if got := counterValue(t, m.packetsSent.WithLabelValues(TransportWebSocket)); got != 3 {
		t.Errorf("packets_sent_total = %v, want 3", got)
	}
	if got := counterValue(t, m.wsErrors.WithLabelValues("write")); got != 1 {
		t.Errorf("websocket_errors_total = %v, want 1", got)
	}
}

func TestMetricsOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegistry(reg),
		WithNamespace("test"),
		WithSubsystem("eio"),
		WithConstLabels(prometheus.Labels{"instance": "a"}),
		WithBuckets([]float64{0.1, 1}),
	)
	m.RecordPoll("v3", PollNoop, time.Millisecond, 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "test_eio_polls_total" {
			continue
		}
		found = true
		labels := mf.GetMetric()[0].GetLabel()
		hasInstance := false
		for _, l := range labels {
			if l.GetName() == "instance" && l.GetValue() == "a" {
				hasInstance = true
			}
		}
		if !hasInstance {
			t.Errorf("const label missing: %v", labels)
		}
	}
	if !found {
		t.Error("test_eio_polls_total not registered")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordPoll("v4", PollOK, time.Millisecond, 1)
	m.RecordPackets(TransportPolling, 1)
	m.SessionOpened()
	m.SessionClosed()
	m.RecordWebSocketError("read")
}
