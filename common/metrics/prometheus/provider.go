/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/prometheus"
	"github.com/hyperledger/fabric-sbt/common/metrics"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Provider creates prometheus backed meters. Meters are registered with
// Registerer, or with the prometheus default registerer when it is nil.
type Provider struct {
	Registerer prom.Registerer
}

func (p *Provider) registerer() prom.Registerer {
	if p.Registerer == nil {
		return prom.DefaultRegisterer
	}
	return p.Registerer
}

func (p *Provider) NewCounter(o metrics.CounterOpts) metrics.Counter {
	cv := prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
		},
		o.LabelNames,
	)
	p.registerer().MustRegister(cv)
	return &Counter{Counter: prometheus.NewCounter(cv)}
}

func (p *Provider) NewGauge(o metrics.GaugeOpts) metrics.Gauge {
	gv := prom.NewGaugeVec(
		prom.GaugeOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
		},
		o.LabelNames,
	)
	p.registerer().MustRegister(gv)
	return &Gauge{Gauge: prometheus.NewGauge(gv)}
}

func (p *Provider) NewHistogram(o metrics.HistogramOpts) metrics.Histogram {
	hv := prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
			Buckets:   o.Buckets,
		},
		o.LabelNames,
	)
	p.registerer().MustRegister(hv)
	return &Histogram{Histogram: prometheus.NewHistogram(hv)}
}

type Counter struct{ kitmetrics.Counter }

func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{Counter: c.Counter.With(labelValues...)}
}

type Gauge struct{ kitmetrics.Gauge }

func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return &Gauge{Gauge: g.Gauge.With(labelValues...)}
}

type Histogram struct{ kitmetrics.Histogram }

func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{Histogram: h.Histogram.With(labelValues...)}
}
