/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"net/http"

	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/pkg/errors"
)

// statusCode maps host and ledger errors onto HTTP statuses.
func statusCode(err error) int {
	switch kindOf(err) {
	case ledger.KindTokenNotFound:
		return http.StatusNotFound
	case ledger.KindInvalidArgument, ledger.KindUnknownMethod:
		return http.StatusBadRequest
	case ledger.KindUnauthorized:
		return http.StatusForbidden
	case ledger.KindInsufficientDeposit:
		return http.StatusPaymentRequired
	case ledger.KindAlreadyInitialized, ledger.KindNotInitialized, ledger.KindDuplicateTokenID, ledger.KindTransferNotSupported:
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, sandbox.ErrUnknownAccount), errors.Is(err, sandbox.ErrNoContract):
		return http.StatusNotFound
	case errors.Is(err, sandbox.ErrUnknownCode):
		return http.StatusBadRequest
	case errors.Is(err, sandbox.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, sandbox.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, sandbox.ErrWorkerClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindOf(err error) ledger.Kind {
	kind, _ := ledger.KindOf(err)
	return kind
}
