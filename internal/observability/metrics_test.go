package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDomainMetrics_Registered(t *testing.T) {
	ErrorsCaptured.WithLabelValues("metrics-test").Inc()

	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "jobmonitor_errors_captured_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected jobmonitor_errors_captured_total in the default registry")
	}
}

func TestDomainMetrics_Labels(t *testing.T) {
	before := testutil.ToFloat64(Tasks.WithLabelValues("metrics-test", "ok"))
	Tasks.WithLabelValues("metrics-test", "ok").Inc()
	if got := testutil.ToFloat64(Tasks.WithLabelValues("metrics-test", "ok")); got != before+1 {
		t.Fatalf("tasks counter=%v want %v", got, before+1)
	}

	Interactions.WithLabelValues("metrics-test").Inc()
	if got := testutil.ToFloat64(Interactions.WithLabelValues("metrics-test")); got != 1 {
		t.Fatalf("interactions counter=%v want 1", got)
	}
}
