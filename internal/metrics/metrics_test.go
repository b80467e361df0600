package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	m.CacheLookup(KindHistory, LookupHit)
	m.CacheWrite(KindHistory)
	m.Upstream("/history", "ok", time.Millisecond)
	m.SameCurrency()
}

func TestCacheLookupCounts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.CacheLookup(KindHistory, LookupHit)
	m.CacheLookup(KindHistory, LookupHit)
	m.CacheLookup(KindCurrencies, LookupBust)

	if got := testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues(KindHistory, LookupHit)); got != 2 {
		t.Errorf("expected 2 history hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues(KindCurrencies, LookupBust)); got != 1 {
		t.Errorf("expected 1 currencies bust, got %v", got)
	}
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// registering twice on the same registry would panic
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}
