/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a ledger failure.
type Kind string

const (
	KindAlreadyInitialized   Kind = "AlreadyInitialized"
	KindNotInitialized       Kind = "NotInitialized"
	KindDuplicateTokenID     Kind = "DuplicateTokenId"
	KindInsufficientDeposit  Kind = "InsufficientDeposit"
	KindTransferNotSupported Kind = "TransferNotSupported"
	KindTokenNotFound        Kind = "TokenNotFound"
	KindUnauthorized         Kind = "Unauthorized"
	KindInvalidArgument      Kind = "InvalidArgument"
	KindUnknownMethod        Kind = "UnknownMethod"
)

var kinds = []Kind{
	KindAlreadyInitialized,
	KindNotInitialized,
	KindDuplicateTokenID,
	KindInsufficientDeposit,
	KindTransferNotSupported,
	KindTokenNotFound,
	KindUnauthorized,
	KindInvalidArgument,
	KindUnknownMethod,
}

// Sentinels for use with errors.Is. A sentinel matches any *Error of the same
// Kind regardless of its message.
var (
	ErrAlreadyInitialized   = &Error{Kind: KindAlreadyInitialized}
	ErrNotInitialized       = &Error{Kind: KindNotInitialized}
	ErrDuplicateTokenID     = &Error{Kind: KindDuplicateTokenID}
	ErrInsufficientDeposit  = &Error{Kind: KindInsufficientDeposit}
	ErrTransferNotSupported = &Error{Kind: KindTransferNotSupported}
	ErrTokenNotFound        = &Error{Kind: KindTokenNotFound}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrUnknownMethod        = &Error{Kind: KindUnknownMethod}
)

// Error is returned when a ledger operation is rejected. A rejected operation
// never modifies the state it was given.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports whether target is a sentinel, or an identical error, of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// Errorf creates an *Error of the given kind.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// ParseError turns a message produced by (*Error).Error back into an *Error.
// It returns false when msg does not start with a known kind.
func ParseError(msg string) (*Error, bool) {
	for _, k := range kinds {
		switch {
		case msg == string(k):
			return &Error{Kind: k}, true
		case strings.HasPrefix(msg, string(k)+": "):
			return &Error{Kind: k, Msg: msg[len(k)+2:]}, true
		}
	}
	return nil, false
}
