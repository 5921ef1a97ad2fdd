/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthcheckers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperledger/fabric-sbt/core/operations/healthz"
)

// Readier is implemented by the sandbox worker.
type Readier interface {
	ReadinessCheck(ctx context.Context) error
}

// WorkerChecker bounds the readiness check of a sandbox worker with a timeout
// and reports the worker as degraded when a passing check takes more than
// half of it.
type WorkerChecker struct {
	worker  Readier
	timeout time.Duration
	now     func() time.Time

	mutex  sync.Mutex
	status healthz.ComponentStatus
}

func NewWorkerChecker(worker Readier, timeout time.Duration) *WorkerChecker {
	return &WorkerChecker{
		worker:  worker,
		timeout: timeout,
		now:     time.Now,
		status:  healthz.ComponentStatus{Status: healthz.StatusOK},
	}
}

func (w *WorkerChecker) ReadinessCheck(ctx context.Context) error {
	if w.worker == nil {
		return fmt.Errorf("sandbox worker not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := w.now()
	err := w.worker.ReadinessCheck(ctx)
	elapsed := w.now().Sub(start)

	status := healthz.ComponentStatus{Status: healthz.StatusOK}
	switch {
	case err != nil:
		status = healthz.ComponentStatus{Status: healthz.StatusUnavailable, Message: err.Error()}
	case elapsed > w.timeout/2:
		status = healthz.ComponentStatus{
			Status:  healthz.StatusDegraded,
			Message: fmt.Sprintf("readiness check took %s", elapsed),
		}
	}

	w.mutex.Lock()
	w.status = status
	w.mutex.Unlock()

	return err
}

// GetStatus returns the result of the last check.
func (w *WorkerChecker) GetStatus() healthz.ComponentStatus {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.status
}
