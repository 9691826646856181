package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncOutcome(OutcomeAccepted)
	m.IncOutcome(OutcomeAccepted)
	m.IncOutcome("")
	m.ObserveDuration(120 * time.Millisecond)

	if got := testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeAccepted)); got != 2 {
		t.Fatalf("expected accepted=2, got %f", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}
	if n := testutil.CollectAndCount(m.duration, "checkout_submission_duration_seconds"); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestCartMetricsCountsMutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)
	m.IncMutation("add")
	m.IncMutation("add")
	m.IncMutation("clear")

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("add")); got != 2 {
		t.Fatalf("expected add=2, got %f", got)
	}
	if n := testutil.CollectAndCount(reg, "cart_mutations_total"); n != 2 {
		t.Fatalf("expected 2 series, got %d", n)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	var nilMetrics *CheckoutMetrics
	nilMetrics.IncOutcome(OutcomeFailure)
	NewCheckoutMetrics(nil).ObserveDuration(time.Second)
	NewCartMetrics(nil).IncMutation("add")
}
