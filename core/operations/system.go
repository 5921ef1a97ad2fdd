/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"os"

	"github.com/hyperledger/fabric-lib-go/healthz"
	"github.com/hyperledger/fabric-sbt/common/fabhttp"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/common/flogging/httpadmin"
	"github.com/hyperledger/fabric-sbt/common/metadata"
	"github.com/hyperledger/fabric-sbt/common/metrics"
	"github.com/hyperledger/fabric-sbt/common/metrics/disabled"
	"github.com/hyperledger/fabric-sbt/common/metrics/prometheus"
	readiness "github.com/hyperledger/fabric-sbt/core/operations/healthz"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Logger interface {
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
}

type MetricsOptions struct {
	Provider string
}

type Options struct {
	fabhttp.Options
	Metrics MetricsOptions
	Version string
}

type System struct {
	*fabhttp.Server
	metrics.Provider

	logger           Logger
	healthHandler    *healthz.HealthHandler
	readinessHandler *readiness.ReadinessHandler
	options          Options
	registry         *prom.Registry
	versionGauge     metrics.Gauge
}

func NewSystem(o Options) *System {
	logger := o.Logger
	if logger == nil {
		logger = flogging.MustGetLogger("operations.runner")
	}
	if o.Version == "" {
		o.Version = metadata.Version
	}

	s := fabhttp.NewServer(o.Options)

	system := &System{
		Server:  s,
		logger:  logger,
		options: o,
	}

	system.initializeHealthCheckHandler()
	system.initializeReadinessHandler()
	system.initializeLoggingHandler()
	system.initializeMetricsProvider()
	system.initializeVersionInfoHandler()

	return system
}

func (s *System) Start() error {
	s.versionGauge.With("version", s.options.Version).Set(1)

	return s.Server.Start()
}

// Run implements ifrit.Runner.
func (s *System) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	err := s.Start()
	if err != nil {
		return err
	}

	close(ready)

	<-signals
	return s.Stop()
}

// RegisterChecker adds a liveness checker served on /healthz.
func (s *System) RegisterChecker(component string, checker healthz.HealthChecker) error {
	return s.healthHandler.RegisterChecker(component, checker)
}

// RegisterReadinessChecker adds a checker served on /readyz.
func (s *System) RegisterReadinessChecker(component string, checker readiness.ReadinessChecker) error {
	return s.readinessHandler.RegisterChecker(component, checker)
}

// Registry returns the prometheus registry backing the metrics provider, or
// nil when metrics are not exported through prometheus.
func (s *System) Registry() *prom.Registry {
	return s.registry
}

func (s *System) initializeMetricsProvider() {
	providerType := s.options.Metrics.Provider
	switch providerType {
	case "prometheus":
		s.registry = prom.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.Provider = &prometheus.Provider{Registerer: s.registry}
		s.versionGauge = versionGauge(s.Provider)
		// swagger:operation GET /metrics operations metrics
		// ---
		// responses:
		//     '200':
		//        description: Ok.
		s.RegisterHandler("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}), s.options.TLS.Enabled)

	default:
		if providerType != "disabled" {
			s.logger.Warnf("Unknown provider type: %s; metrics disabled", providerType)
		}

		s.Provider = &disabled.Provider{}
		s.versionGauge = versionGauge(s.Provider)
	}
}

func (s *System) initializeLoggingHandler() {
	// swagger:operation GET /logspec operations logspecget
	// ---
	// summary: Retrieves the active logging spec.
	// responses:
	//     '200':
	//        description: Ok.

	// swagger:operation PUT /logspec operations logspecput
	// ---
	// summary: Updates the active logging spec.
	//
	// parameters:
	// - name: payload
	//   in: body
	//   type: string
	//   description: The payload must consist of a single attribute named spec.
	//   required: true
	// responses:
	//     '204':
	//        description: No content.
	//     '400':
	//        description: Bad request.
	s.RegisterHandler("/logspec", httpadmin.NewSpecHandler(), s.options.TLS.Enabled)
}

func (s *System) initializeHealthCheckHandler() {
	s.healthHandler = healthz.NewHealthHandler()
	// swagger:operation GET /healthz operations healthz
	// ---
	// summary: Retrieves all registered health checkers for the process.
	// responses:
	//     '200':
	//        description: Ok.
	//     '503':
	//        description: Service unavailable.
	s.RegisterHandler("/healthz", s.healthHandler, false)
}

func (s *System) initializeReadinessHandler() {
	s.readinessHandler = readiness.NewReadinessHandler()
	// swagger:operation GET /readyz operations readyz
	// ---
	// summary: Reports whether the registered components can serve requests.
	// responses:
	//     '200':
	//        description: Ok or degraded.
	//     '503':
	//        description: Service unavailable.
	s.RegisterHandler("/readyz", s.readinessHandler, false)
}

func (s *System) initializeVersionInfoHandler() {
	versionInfo := newVersionInfoHandler(s.logger, metadata.ProgramName, s.options.Version, metadata.CommitSHA)
	// swagger:operation GET /version operations version
	// ---
	// summary: Returns the program, version, commit SHA and Go version of the host.
	// responses:
	//     '200':
	//        description: Ok.
	s.RegisterHandler("/version", versionInfo, false)
}
