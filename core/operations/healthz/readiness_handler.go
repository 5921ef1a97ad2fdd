/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthz

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	libhealthz "github.com/hyperledger/fabric-lib-go/healthz"
)

const (
	StatusOK          = "OK"
	StatusDegraded    = "DEGRADED"
	StatusUnavailable = "UNAVAILABLE"
)

// ReadinessChecker reports whether a component can serve requests.
type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

// DetailedReadinessChecker is a ReadinessChecker that can also describe its
// state when the check passes, for example to report that it is degraded.
type DetailedReadinessChecker interface {
	ReadinessChecker
	GetStatus() ComponentStatus
}

type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ReadinessStatus struct {
	Status     string                     `json:"status"`
	Time       time.Time                  `json:"time"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

// ReadinessHandler serves /readyz. Unlike the liveness handler a degraded
// component does not fail the request; only unavailable ones do.
type ReadinessHandler struct {
	mutex    sync.RWMutex
	checkers map[string]ReadinessChecker
	now      func() time.Time
	timeout  time.Duration
}

func NewReadinessHandler() *ReadinessHandler {
	return &ReadinessHandler{
		checkers: map[string]ReadinessChecker{},
		now:      time.Now,
		timeout:  10 * time.Second,
	}
}

func (h *ReadinessHandler) RegisterChecker(component string, checker ReadinessChecker) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.checkers[component]; ok {
		return libhealthz.AlreadyRegisteredError(component)
	}
	h.checkers[component] = checker
	return nil
}

func (h *ReadinessHandler) DeregisterChecker(component string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.checkers, component)
}

func (h *ReadinessHandler) SetTimeout(timeout time.Duration) {
	h.timeout = timeout
}

// RunChecks returns the components whose readiness check failed, ordered by
// component name.
func (h *ReadinessHandler) RunChecks(ctx context.Context) []libhealthz.FailedCheck {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var failedChecks []libhealthz.FailedCheck
	for _, component := range h.components() {
		if err := h.checkers[component].ReadinessCheck(ctx); err != nil {
			failedChecks = append(failedChecks, libhealthz.FailedCheck{
				Component: component,
				Reason:    err.Error(),
			})
		}
	}
	return failedChecks
}

func (h *ReadinessHandler) GetDetailedStatus(ctx context.Context) ReadinessStatus {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	rs := ReadinessStatus{
		Status:     StatusOK,
		Time:       h.now(),
		Components: map[string]ComponentStatus{},
	}
	for _, component := range h.components() {
		checker := h.checkers[component]
		cs := ComponentStatus{Status: StatusOK}
		if err := checker.ReadinessCheck(ctx); err != nil {
			cs = ComponentStatus{Status: StatusUnavailable, Message: err.Error()}
		} else if dc, ok := checker.(DetailedReadinessChecker); ok {
			cs = dc.GetStatus()
		}
		rs.Components[component] = cs

		switch {
		case cs.Status == StatusUnavailable:
			rs.Status = StatusUnavailable
		case cs.Status == StatusDegraded && rs.Status == StatusOK:
			rs.Status = StatusDegraded
		}
	}
	return rs
}

func (h *ReadinessHandler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checksCtx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	statusCh := make(chan ReadinessStatus, 1)
	go func() {
		statusCh <- h.GetDetailedStatus(checksCtx)
	}()

	select {
	case rs := <-statusCh:
		writeReadinessResponse(rw, rs)
	case <-checksCtx.Done():
		if checksCtx.Err() == context.DeadlineExceeded {
			rw.WriteHeader(http.StatusRequestTimeout)
		}
	}
}

// components must be called with the mutex held.
func (h *ReadinessHandler) components() []string {
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeReadinessResponse(rw http.ResponseWriter, rs ReadinessStatus) {
	rc := http.StatusOK
	if rs.Status == StatusUnavailable {
		rc = http.StatusServiceUnavailable
	}
	rw.Header().Set("Content-Type", "application/json")
	resp, err := json.Marshal(rs)
	if err != nil {
		rc = http.StatusInternalServerError
	}
	rw.WriteHeader(rc)
	rw.Write(resp)
}
