/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"github.com/hyperledger/fabric-sbt/common/metrics"
)

var (
	callsCountOpts = metrics.CounterOpts{
		Namespace:  "sbt",
		Subsystem:  "sandbox",
		Name:       "calls_total",
		Help:       "The number of contract calls executed, by method and result.",
		LabelNames: []string{"method", "result"},
	}
	callDurationOpts = metrics.HistogramOpts{
		Namespace:  "sbt",
		Subsystem:  "sandbox",
		Name:       "call_duration",
		Help:       "The time taken to execute a contract call in seconds.",
		Buckets:    []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		LabelNames: []string{"method"},
	}
	tokensMintedOpts = metrics.CounterOpts{
		Namespace: "sbt",
		Subsystem: "sandbox",
		Name:      "tokens_minted",
		Help:      "The number of certificates minted.",
	}
	accountsOpts = metrics.GaugeOpts{
		Namespace: "sbt",
		Subsystem: "sandbox",
		Name:      "accounts",
		Help:      "The number of accounts created by this worker, including the root account.",
	}
)

type Metrics struct {
	Calls        metrics.Counter
	CallDuration metrics.Histogram
	TokensMinted metrics.Counter
	Accounts     metrics.Gauge
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		Calls:        p.NewCounter(callsCountOpts),
		CallDuration: p.NewHistogram(callDurationOpts),
		TokensMinted: p.NewCounter(tokensMintedOpts),
		Accounts:     p.NewGauge(accountsOpts),
	}
}
