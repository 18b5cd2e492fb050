// The metrics package instruments your code.
//
// Counters, gauges and timers are kept in a go-metrics registry. They can be
// logged periodically (see Start) and are exposed to Prometheus by Handler.
package metrics

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Namespace is the namespace under which all metrics will get incremented.
// Typically this should match up with the running service ("server",
// "truncate", &c).
var Namespace string

// Registry holds every metric recorded by this package.
var Registry = gometrics.NewRegistry()

func getWithNamespace(metricName string) string {
	if Namespace == "" {
		return metricName
	}
	return fmt.Sprintf("%s.%s", Namespace, metricName)
}

type slogPrinter struct {
	l *slog.Logger
}

func (p slogPrinter) Printf(format string, v ...interface{}) {
	p.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Start begins logging every metric with the given source to l once per
// interval. An interval of zero or less disables periodic logging.
func Start(source string, interval time.Duration, l *slog.Logger) {
	if interval <= 0 {
		l.Debug("metrics logging disabled", "source", source)
		return
	}
	go gometrics.Log(Registry, interval, slogPrinter{l: l.With("source", source)})
}

// Increment a counter with the given name.
func Increment(name string) {
	mn := getWithNamespace(name)
	c := gometrics.GetOrRegisterCounter(mn, Registry)
	c.Inc(1)
}

// Measure that the given metric has the given value.
func Measure(name string, value int64) {
	mn := getWithNamespace(name)
	g := gometrics.GetOrRegisterGauge(mn, Registry)
	g.Update(value)
}

// Time adds a new timing measurement for the given metric.
func Time(name string, value time.Duration) {
	mn := getWithNamespace(name)
	t := gometrics.GetOrRegisterTimer(mn, Registry)
	t.Update(value)
}
