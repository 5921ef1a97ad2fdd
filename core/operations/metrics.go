/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"github.com/hyperledger/fabric-sbt/common/metrics"
)

var sbtVersion = metrics.GaugeOpts{
	Name:       "sbt_version",
	Help:       "The active version of the certificate ledger host.",
	LabelNames: []string{"version"},
}

func versionGauge(provider metrics.Provider) metrics.Gauge {
	return provider.NewGauge(sbtVersion)
}
