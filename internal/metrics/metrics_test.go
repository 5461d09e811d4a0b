package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue reads one labelled sample from the default registry.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if want, ok := labels[l.GetName()]; ok && want != l.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveCommand(t *testing.T) {
	labels := map[string]string{"command": "metrics_test_cmd", "result": "ok"}
	before := counterValue(t, "habits_commands_total", labels)

	ObserveCommand("metrics_test_cmd", "ok", 3*time.Millisecond)
	ObserveCommand("metrics_test_cmd", "ok", time.Millisecond)

	if got := counterValue(t, "habits_commands_total", labels); got != before+2 {
		t.Errorf("commands_total = %v, want %v", got, before+2)
	}
}

func TestObserveDelta(t *testing.T) {
	pos := map[string]string{"sign": "positive"}
	neg := map[string]string{"sign": "negative"}
	beforePos := counterValue(t, "habits_point_deltas_total", pos)
	beforeNeg := counterValue(t, "habits_point_deltas_total", neg)

	ObserveDelta(5)
	ObserveDelta(-3)
	ObserveDelta(0)

	if got := counterValue(t, "habits_point_deltas_total", pos); got != beforePos+5 {
		t.Errorf("positive = %v, want %v", got, beforePos+5)
	}
	if got := counterValue(t, "habits_point_deltas_total", neg); got != beforeNeg+3 {
		t.Errorf("negative = %v, want %v", got, beforeNeg+3)
	}
}
