/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fakes

import (
	"net/http"
	"sync"

	"github.com/hyperledger/fabric-sbt/common/fabhttp"
)

// Handler replies with Code and Text and records the request id fabhttp
// assigned to each request it served.
type Handler struct {
	Code int
	Text string

	mutex      sync.Mutex
	requestIDs []string
}

func (h *Handler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	h.mutex.Lock()
	h.requestIDs = append(h.requestIDs, fabhttp.RequestID(req.Context()))
	h.mutex.Unlock()

	resp.Header().Set("Content-Type", "text/plain")
	resp.WriteHeader(h.Code)
	resp.Write([]byte(h.Text))
}

func (h *Handler) RequestIDs() []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]string(nil), h.requestIDs...)
}
