/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"net/http"
	"net/http/httptest"
	"runtime"

	"github.com/hyperledger/fabric-sbt/core/operations/fakes"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("VersionInfoHandler", func() {
	var handler *VersionInfoHandler

	BeforeEach(func() {
		handler = newVersionInfoHandler(&fakes.Logger{}, "sbtctl", "1.0.0", "abc123")
	})

	It("describes the running build", func() {
		for _, method := range []string{http.MethodGet, http.MethodHead} {
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, httptest.NewRequest(method, "/version", nil))
			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(resp.Body.String()).To(MatchJSON(`{"Program": "sbtctl", "Version": "1.0.0", "CommitSHA": "abc123", "GoVersion": "` + runtime.Version() + `"}`))
		}
	})

	It("leaves out unset fields", func() {
		resp := httptest.NewRecorder()
		(&VersionInfoHandler{Version: "latest"}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/version", nil))
		Expect(resp.Body.String()).To(MatchJSON(`{"Version": "latest"}`))
	})

	It("rejects methods other than GET and HEAD", func() {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/version", nil))
		Expect(resp.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(resp.Header().Get("Allow")).To(Equal("GET, HEAD"))
		Expect(resp.Body.String()).To(MatchJSON(`{"Error": "invalid request method: PUT"}`))
	})

	It("reports payloads it cannot encode", func() {
		logger := &fakes.Logger{}
		handler.Logger = logger
		resp := httptest.NewRecorder()
		handler.sendResponse(resp, http.StatusOK, make(chan int))
		Expect(resp.Code).To(Equal(http.StatusInternalServerError))
		Expect(logger.WarnfCallCount()).To(Equal(1))
	})
})
