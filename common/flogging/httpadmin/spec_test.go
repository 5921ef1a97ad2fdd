/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package httpadmin_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/common/flogging/httpadmin"
	"github.com/hyperledger/fabric-sbt/common/flogging/httpadmin/fakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("SpecHandler", func() {
	var (
		fakeLogging *fakes.Logging
		handler     *httpadmin.SpecHandler
	)

	BeforeEach(func() {
		fakeLogging = &fakes.Logging{}
		fakeLogging.SpecReturns("the-returned-spec")
		handler = &httpadmin.SpecHandler{
			Logging: fakeLogging,
			Logger:  flogging.NewFabricLogger(zap.NewNop()),
		}
	})

	It("responds with the current logging spec", func() {
		req := httptest.NewRequest("GET", "/ignored", nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		Expect(fakeLogging.SpecCallCount()).To(Equal(1))
		Expect(resp.Result().StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Body).To(MatchJSON(`{"spec": "the-returned-spec"}`))
		Expect(resp.Header().Get("Content-Type")).To(Equal("application/json"))
	})

	It("sets the current logging spec", func() {
		req := httptest.NewRequest("PUT", "/ignored", strings.NewReader(`{"spec": "updated-spec"}`))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		Expect(resp.Result().StatusCode).To(Equal(http.StatusNoContent))
		Expect(fakeLogging.ActivateSpecCallCount()).To(Equal(1))
		Expect(fakeLogging.ActivateSpecArgsForCall(0)).To(Equal("updated-spec"))
	})

	Context("when the update spec payload cannot be decoded", func() {
		It("responds with an error payload", func() {
			req := httptest.NewRequest("PUT", "/ignored", strings.NewReader(`goo`))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			Expect(fakeLogging.ActivateSpecCallCount()).To(Equal(0))
			Expect(resp.Result().StatusCode).To(Equal(http.StatusBadRequest))
			Expect(resp.Body).To(MatchJSON(`{"error": "invalid character 'g' looking for beginning of value"}`))
		})
	})

	Context("when activating the spec fails", func() {
		BeforeEach(func() {
			fakeLogging.ActivateSpecReturns(errors.New("ewww; that's not right!"))
		})

		It("responds with an error payload", func() {
			req := httptest.NewRequest("PUT", "/ignored", strings.NewReader(`{}`))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			Expect(resp.Result().StatusCode).To(Equal(http.StatusBadRequest))
			Expect(resp.Body).To(MatchJSON(`{"error": "ewww; that's not right!"}`))
		})
	})

	Context("when an unsupported method is used", func() {
		It("responds with an error", func() {
			req := httptest.NewRequest("POST", "/ignored", strings.NewReader(`{}`))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			Expect(resp.Result().StatusCode).To(Equal(http.StatusBadRequest))
			Expect(resp.Body).To(MatchJSON(`{"error": "invalid request method: POST"}`))
		})

		It("doesn't use logging", func() {
			req := httptest.NewRequest("POST", "/ignored", strings.NewReader(`{}`))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			Expect(fakeLogging.ActivateSpecCallCount()).To(Equal(0))
			Expect(fakeLogging.SpecCallCount()).To(Equal(0))
		})
	})

	It("defaults to the global logging system", func() {
		h := httpadmin.NewSpecHandler()
		Expect(h.Logging).To(BeIdenticalTo(flogging.Global))
	})
})
