/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sbtctl

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperledger/fabric-sbt/common/fabhttp"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	floggingmetrics "github.com/hyperledger/fabric-sbt/common/flogging/metrics"
	"github.com/hyperledger/fabric-sbt/core/operations"
	"github.com/hyperledger/fabric-sbt/core/operations/healthcheckers"
	"github.com/hyperledger/fabric-sbt/internal/pkg/gateway"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
)

const readinessTimeout = 5 * time.Second

func serveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the sandbox over the gateway and operations endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve(cmd.Context())
		},
	}
}

func (e *env) serve(ctx context.Context) error {
	conf := e.config

	system := operations.NewSystem(conf.OperationsOptions())
	flogging.SetObserver(floggingmetrics.NewObserver(system.Provider))
	defer flogging.SetObserver(nil)

	opts := conf.SandboxOptions()
	opts.MetricsProvider = system.Provider
	worker, err := sandbox.NewWorker(opts)
	if err != nil {
		return err
	}
	defer worker.TearDown()

	if err := system.RegisterChecker("statedb", worker); err != nil {
		return errors.WithMessage(err, "failed to register health checker")
	}
	checker := healthcheckers.NewWorkerChecker(worker, readinessTimeout)
	if err := system.RegisterReadinessChecker("sandbox", checker); err != nil {
		return errors.WithMessage(err, "failed to register readiness checker")
	}

	gw := fabhttp.NewServer(conf.GatewayOptions())
	handler := gateway.NewHTTPHandler(&gateway.WorkerHost{Worker: worker}, gateway.Options{RequestTimeout: conf.Gateway.RequestTimeout})
	gw.RegisterRouter(gateway.URLBaseV1, handler, conf.Gateway.TLS.Enabled)

	group := grouper.NewOrdered(syscall.SIGTERM, grouper.Members{
		{Name: "operations", Runner: system},
		{Name: "gateway", Runner: gw},
	})
	process := ifrit.Background(group)
	select {
	case <-process.Ready():
	case err := <-process.Wait():
		return errors.WithMessage(err, "failed to start servers")
	}

	logger.Infof("Serving gateway on %s, operations on %s", gw.Addr(), system.Addr())
	if e.onReady != nil {
		e.onReady(system.Addr(), gw.Addr())
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		logger.Infof("Received signal: %d (%s)", sig, sig)
	case <-ctx.Done():
	case err := <-process.Wait():
		return err
	}
	process.Signal(syscall.SIGTERM)
	return <-process.Wait()
}
