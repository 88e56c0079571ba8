package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEstimatorMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEstimatorMetrics(reg)

	m.IncEstimate("quantity")
	m.IncEstimate("quantity")
	m.IncEstimate("fallback")
	m.IncMalformedRule()
	m.IncStaleDrop()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "delivery_estimates_total", "source", "quantity"); err != nil {
		t.Fatalf("fetch estimates: %v", err)
	} else if got != 2 {
		t.Fatalf("expected quantity estimates=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "delivery_estimates_total", "source", "fallback"); err != nil {
		t.Fatalf("fetch fallback estimates: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fallback estimates=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "delivery_rules_malformed_total", "", ""); err != nil {
		t.Fatalf("fetch malformed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected malformed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "delivery_recompute_stale_drops_total", "", ""); err != nil {
		t.Fatalf("fetch stale drops: %v", err)
	} else if got != 1 {
		t.Fatalf("expected stale drops=1, got %f", got)
	}
}

func TestEstimatorMetricsNilReceiverSafe(t *testing.T) {
	var m *EstimatorMetrics
	m.IncEstimate("quantity")
	m.IncMalformedRule()
	m.IncStaleDrop()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(pairs []*dto.LabelPair, label, value string) bool {
	for _, pair := range pairs {
		if pair.GetName() == label && pair.GetValue() == value {
			return true
		}
	}
	return false
}
