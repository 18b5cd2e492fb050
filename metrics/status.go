package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LabeledGauge exports one gauge per label value. Set replaces every value at
// once, so label values missing from the latest Set are no longer exported.
type LabeledGauge struct {
	desc *prometheus.Desc

	mu     sync.Mutex
	values map[string]int64
}

// NewLabeledGauge returns a LabeledGauge named name with a single label.
func NewLabeledGauge(name, help, label string) *LabeledGauge {
	return &LabeledGauge{
		desc:   prometheus.NewDesc(name, help, []string{label}, nil),
		values: make(map[string]int64),
	}
}

// VacanciesByStatus holds the number of vacancies per status.
var VacanciesByStatus = NewLabeledGauge("vacancies_by_status", "Number of vacancies with each status.", "status")

// Set replaces the exported values with values.
func (g *LabeledGauge) Set(values map[string]int64) {
	next := make(map[string]int64, len(values))
	for k, v := range values {
		next[k] = v
	}
	g.mu.Lock()
	g.values = next
	g.mu.Unlock()
}

// Values returns a copy of the current values.
func (g *LabeledGauge) Values() map[string]int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int64, len(g.values))
	for k, v := range g.values {
		out[k] = v
	}
	return out
}

func (g *LabeledGauge) Describe(ch chan<- *prometheus.Desc) {
	ch <- g.desc
}

func (g *LabeledGauge) Collect(ch chan<- prometheus.Metric) {
	for label, v := range g.Values() {
		m, err := prometheus.NewConstMetric(g.desc, prometheus.GaugeValue, float64(v), label)
		if err != nil {
			// label values must be valid UTF-8
			continue
		}
		ch <- m
	}
}
