/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"syscall"

	"github.com/hyperledger/fabric-sbt/common/fabhttp"
	"github.com/hyperledger/fabric-sbt/common/metrics/disabled"
	"github.com/hyperledger/fabric-sbt/common/metrics/prometheus"
	"github.com/hyperledger/fabric-sbt/core/operations"
	"github.com/hyperledger/fabric-sbt/core/operations/fakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tedsuo/ifrit"
)

type checkerFunc func(context.Context) error

func (c checkerFunc) HealthCheck(ctx context.Context) error    { return c(ctx) }
func (c checkerFunc) ReadinessCheck(ctx context.Context) error { return c(ctx) }

var _ = Describe("System", func() {
	var (
		fakeLogger *fakes.Logger
		options    operations.Options
		system     *operations.System
	)

	BeforeEach(func() {
		fakeLogger = &fakes.Logger{}
		options = operations.Options{
			Options: fabhttp.Options{
				Logger:        fakeLogger,
				ListenAddress: "127.0.0.1:0",
			},
			Metrics: operations.MetricsOptions{
				Provider: "disabled",
			},
			Version: "1.2.3",
		}
		system = operations.NewSystem(options)
	})

	AfterEach(func() {
		system.Stop()
	})

	get := func(path string) (int, string) {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", system.Addr(), path))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(body)
	}

	It("hosts the version endpoint", func() {
		Expect(system.Start()).To(Succeed())

		code, body := get("/version")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(fmt.Sprintf(`{"Program": "sbtctl", "CommitSHA": "development build", "Version": "1.2.3", "GoVersion": %q}`, runtime.Version())))
	})

	It("hosts the logspec endpoint", func() {
		Expect(system.Start()).To(Succeed())

		code, body := get("/logspec")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"spec"`))
	})

	It("reports registered liveness checkers", func() {
		Expect(system.RegisterChecker("statedb", checkerFunc(func(context.Context) error {
			return errors.New("leveldb is not open")
		}))).To(Succeed())
		Expect(system.Start()).To(Succeed())

		code, body := get("/healthz")
		Expect(code).To(Equal(http.StatusServiceUnavailable))
		Expect(body).To(ContainSubstring(`"component":"statedb"`))
		Expect(body).To(ContainSubstring(`"reason":"leveldb is not open"`))
	})

	It("reports registered readiness checkers", func() {
		Expect(system.RegisterReadinessChecker("sandbox", checkerFunc(func(context.Context) error {
			return nil
		}))).To(Succeed())
		Expect(system.Start()).To(Succeed())

		code, body := get("/readyz")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"sandbox":{"status":"OK"}`))

		code, _ = get("/healthz")
		Expect(code).To(Equal(http.StatusOK))
	})

	It("does not host metrics when disabled", func() {
		Expect(system.Provider).To(BeAssignableToTypeOf(&disabled.Provider{}))
		Expect(system.Registry()).To(BeNil())
		Expect(system.Start()).To(Succeed())

		code, _ := get("/metrics")
		Expect(code).To(Equal(http.StatusNotFound))
	})

	Context("when the prometheus provider is selected", func() {
		BeforeEach(func() {
			options.Metrics.Provider = "prometheus"
			system = operations.NewSystem(options)
		})

		It("exports the version gauge and provider metrics", func() {
			Expect(system.Provider).To(BeAssignableToTypeOf(&prometheus.Provider{}))
			Expect(system.Registry()).NotTo(BeNil())
			Expect(system.Start()).To(Succeed())

			code, body := get("/metrics")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`sbt_version{version="1.2.3"} 1`))
			Expect(body).To(ContainSubstring("go_goroutines"))
		})

		It("keeps registries separate between systems", func() {
			other := operations.NewSystem(options)
			Expect(other.Registry()).NotTo(BeIdenticalTo(system.Registry()))
		})
	})

	Context("when the provider type is unknown", func() {
		BeforeEach(func() {
			options.Metrics.Provider = "something-unknown"
			system = operations.NewSystem(options)
		})

		It("warns and disables metrics", func() {
			Expect(system.Provider).To(BeAssignableToTypeOf(&disabled.Provider{}))
			Expect(fakeLogger.WarnfCallCount()).To(Equal(1))
			msg, args := fakeLogger.WarnfArgsForCall(0)
			Expect(fmt.Sprintf(msg, args...)).To(Equal("Unknown provider type: something-unknown; metrics disabled"))
		})
	})

	It("supports ifrit", func() {
		process := ifrit.Invoke(system)
		Eventually(process.Ready()).Should(BeClosed())

		code, body := get("/version")
		Expect(code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(body)).NotTo(BeEmpty())

		process.Signal(syscall.SIGTERM)
		Eventually(process.Wait()).Should(Receive(BeNil()))
	})
})
