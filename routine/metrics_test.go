package routine

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.observeTick(time.Now().UTC().Add(-time.Millisecond))
	m.observeDue(3)
	m.observeLocked(2)
	m.observeContention(1)
	m.observeRun(RunStatusSuccess)
	m.observeRun(RunStatusFail)

	if got := testutil.ToFloat64(m.dueRoutines); got != 3 {
		t.Fatalf("due_routines_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.lockedRoutines); got != 2 {
		t.Fatalf("locked_routines_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.lockContention); got != 1 {
		t.Fatalf("lock_contention_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues(string(RunStatusSuccess))); got != 1 {
		t.Fatalf("runs_total{status=SUCCESS} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues(string(RunStatusFail))); got != 1 {
		t.Fatalf("runs_total{status=FAIL} = %v, want 1", got)
	}

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(metricFamilies) == 0 {
		t.Fatalf("Gather() returned no metric families, want the five registered collectors")
	}
}

func TestNewMetrics_SecondRegistrationPanicsOnDuplicateCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic registering a second Metrics against the same registry")
		}
	}()
	NewMetrics(reg)
}
