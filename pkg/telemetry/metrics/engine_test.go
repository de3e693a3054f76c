package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	em := NewEngineMetrics("canvass", registry)

	em.RecordCompile("ok")
	em.RecordCompile("ok")
	em.RecordCompile("error")

	if got := testutil.ToFloat64(em.compilesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("compiles_total{outcome=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(em.compilesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("compiles_total{outcome=error} = %v, want 1", got)
	}

	em.RecordHeartbeat("accepted")
	em.RecordHeartbeat("expired")
	if got := testutil.ToFloat64(em.heartbeatsTotal.WithLabelValues("accepted")); got != 1 {
		t.Errorf("heartbeats_total{outcome=accepted} = %v, want 1", got)
	}

	em.RecordSubmission("rejected")
	if got := testutil.ToFloat64(em.submissionsTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("submissions_total{outcome=rejected} = %v, want 1", got)
	}

	em.SetActiveSessions(7)
	if got := testutil.ToFloat64(em.activeSessions); got != 7 {
		t.Errorf("active_sessions = %v, want 7", got)
	}

	em.AddSwept(3)
	em.AddSwept(2)
	if got := testutil.ToFloat64(em.sweptTotal); got != 5 {
		t.Errorf("swept_sessions_total = %v, want 5", got)
	}
}

func TestEngineMetrics_Histogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	em := NewEngineMetrics("canvass", registry)

	em.RecordVisibleSet(50 * time.Microsecond)
	em.RecordVisibleSet(200 * time.Microsecond)

	count := testutil.CollectAndCount(em.visibleSetDuration, "canvass_visible_set_duration_seconds")
	if count != 1 {
		t.Errorf("Expected the histogram to be collectable, got %d series", count)
	}
}

func TestEngineMetrics_RegistersAll(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewEngineMetrics("canvass", registry)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	// Counter vecs with no observations yet do not gather; record one of
	// each so every family shows up.
	registry = prometheus.NewRegistry()
	em := NewEngineMetrics("canvass", registry)
	em.RecordCompile("ok")
	em.RecordHeartbeat("accepted")
	em.RecordSubmission("accepted")
	em.RecordVisibleSet(time.Microsecond)
	em.SetActiveSessions(1)
	em.AddSwept(1)

	families, err = registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	want := map[string]bool{
		"canvass_compiles_total":               false,
		"canvass_visible_set_duration_seconds": false,
		"canvass_heartbeats_total":             false,
		"canvass_submissions_total":            false,
		"canvass_active_sessions":              false,
		"canvass_swept_sessions_total":         false,
	}
	for _, family := range families {
		if _, ok := want[family.GetName()]; ok {
			want[family.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Metric family %q was not gathered", name)
		}
	}
}
