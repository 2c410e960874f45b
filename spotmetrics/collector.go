// Package spotmetrics exposes a spot.Spot detector's internal counters as
// Prometheus counters and its thresholds and tail parameters as gauges. A custom prometheus.Collector is
// the idiomatic way to surface a live object's state as metrics without
// the object itself depending on Prometheus.
package spotmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/victoralfred/spot"
)

// Collector implements prometheus.Collector over a spot.Spot, read
// directly at scrape time so it never holds state staler than the
// detector's own.
type Collector struct {
	detector *spot.Spot

	n      *prometheus.Desc
	nt     *prometheus.Desc
	t      *prometheus.Desc
	z      *prometheus.Desc
	gamma  *prometheus.Desc
	sigma  *prometheus.Desc
	fitted *prometheus.Desc
}

// NewCollector wraps detector for Prometheus registration. labels are
// attached to every exported metric (e.g. {"series": "cpu_load"}).
func NewCollector(detector *spot.Spot, labels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("spot", "", name), help, nil, labels)
	}

	return &Collector{
		detector: detector,
		n:        desc("observations_total", "Total observations passed to Step."),
		nt:       desc("excesses_total", "Total tail events observed, including discarded anomalies."),
		t:        desc("excess_threshold", "Current tail-entry threshold t."),
		z:        desc("anomaly_threshold", "Current anomaly threshold z."),
		gamma:    desc("tail_gamma", "Fitted GPD shape parameter."),
		sigma:    desc("tail_sigma", "Fitted GPD scale parameter."),
		fitted:   desc("fitted", "1 if the detector has completed Fit, 0 otherwise."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.n
	ch <- c.nt
	ch <- c.t
	ch <- c.z
	ch <- c.gamma
	ch <- c.sigma
	ch <- c.fitted
}

// Collect implements prometheus.Collector, reading the detector's current
// state at scrape time.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.n, prometheus.CounterValue, float64(c.detector.N()))
	ch <- prometheus.MustNewConstMetric(c.nt, prometheus.CounterValue, float64(c.detector.Nt()))

	fittedValue := 0.0
	if c.detector.Fitted() {
		fittedValue = 1.0
		ch <- prometheus.MustNewConstMetric(c.t, prometheus.GaugeValue, c.detector.ExcessThreshold())
		ch <- prometheus.MustNewConstMetric(c.z, prometheus.GaugeValue, c.detector.AnomalyThreshold())
		gamma, sigma := c.detector.TailParameters()
		ch <- prometheus.MustNewConstMetric(c.gamma, prometheus.GaugeValue, gamma)
		ch <- prometheus.MustNewConstMetric(c.sigma, prometheus.GaugeValue, sigma)
	}
	ch <- prometheus.MustNewConstMetric(c.fitted, prometheus.GaugeValue, fittedValue)
}
