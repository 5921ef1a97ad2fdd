/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
)

// VersionInfoHandler serves the build of the running host on /version.
type VersionInfoHandler struct {
	Logger    Logger `json:"-"`
	Program   string `json:"Program,omitempty"`
	CommitSHA string `json:"CommitSHA,omitempty"`
	Version   string `json:"Version,omitempty"`
	GoVersion string `json:"GoVersion,omitempty"`
}

func (m *VersionInfoHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		m.sendResponse(resp, http.StatusOK, m)
	default:
		resp.Header().Set("Allow", "GET, HEAD")
		err := fmt.Errorf("invalid request method: %s", req.Method)
		m.sendResponse(resp, http.StatusMethodNotAllowed, err)
	}
}

type errorResponse struct {
	Error string `json:"Error"`
}

func (m *VersionInfoHandler) sendResponse(resp http.ResponseWriter, code int, payload interface{}) {
	if err, ok := payload.(error); ok {
		payload = &errorResponse{Error: err.Error()}
	}
	js, err := json.Marshal(payload)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Warnf("failed to encode version response: %s", err)
		}
		resp.WriteHeader(http.StatusInternalServerError)
		return
	}
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	resp.Write(js)
}

func newVersionInfoHandler(logger Logger, program, version, commit string) *VersionInfoHandler {
	return &VersionInfoHandler{
		Logger:    logger,
		Program:   program,
		CommitSHA: commit,
		Version:   version,
		GoVersion: runtime.Version(),
	}
}
