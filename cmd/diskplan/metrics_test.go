package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jbweber/diskplan/internal/proposal"
)

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = proposal.NewMetrics(reg)

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_total", Help: "Test counter"}, []string{"result"})
	reg.MustRegister(counter)
	counter.WithLabelValues("success").Add(2)

	var buf bytes.Buffer
	if err := writeMetrics(&buf, reg); err != nil {
		t.Fatalf("writeMetrics() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# HELP test_total Test counter",
		"# TYPE test_total counter",
		`test_total{result="success"} 2`,
		"# TYPE diskplan_invalidations_total counter",
		"diskplan_invalidations_total 0",
		"# TYPE diskplan_issues gauge",
		"# TYPE diskplan_calculation_duration_seconds histogram",
		`diskplan_calculation_duration_seconds_bucket{le="0.01"} 0`,
		`diskplan_calculation_duration_seconds_bucket{le="+Inf"} 0`,
		"diskplan_calculation_duration_seconds_count 0",
		"diskplan_calculation_duration_seconds_sum 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
