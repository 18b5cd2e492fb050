package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	gometrics "github.com/rcrowley/go-metrics"
)

// registryCollector exports a go-metrics registry as Prometheus metrics.
// Counters become counters, gauges become gauges and timers become
// summaries in seconds.
type registryCollector struct {
	r gometrics.Registry
}

// NewCollector returns a prometheus.Collector reading from r.
func NewCollector(r gometrics.Registry) prometheus.Collector {
	return &registryCollector{r: r}
}

var nameReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")

func promName(name string) string {
	return nameReplacer.Replace(name)
}

// Describe sends nothing, which makes this an unchecked collector; the set of
// metrics grows as the registry does.
func (c *registryCollector) Describe(ch chan<- *prometheus.Desc) {}

func (c *registryCollector) Collect(ch chan<- prometheus.Metric) {
	c.r.Each(func(name string, i interface{}) {
		pn := promName(name)
		switch m := i.(type) {
		case gometrics.Counter:
			desc := prometheus.NewDesc(pn+"_total", name, nil, nil)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(m.Count()))
		case gometrics.Gauge:
			desc := prometheus.NewDesc(pn, name, nil, nil)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(m.Value()))
		case gometrics.Timer:
			s := m.Snapshot()
			ps := s.Percentiles([]float64{0.5, 0.99})
			desc := prometheus.NewDesc(pn+"_seconds", name, nil, nil)
			ch <- prometheus.MustNewConstSummary(desc, uint64(s.Count()), float64(s.Sum())/1e9, map[float64]float64{
				0.5:  ps[0] / 1e9,
				0.99: ps[1] / 1e9,
			})
		}
	})
}

// Handler serves the registry, plus Go runtime and process metrics, in the
// Prometheus exposition format.
func Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(Registry),
		VacanciesByStatus,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
