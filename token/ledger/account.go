/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"regexp"
)

const (
	minAccountIDLen = 2
	maxAccountIDLen = 64
)

// dot separated parts of lowercase alphanumerics joined by single '-' or '_'
var accountIDRegexp = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

// AccountID names an account on the host.
type AccountID string

func (id AccountID) String() string { return string(id) }

// Validate fails with KindInvalidArgument when id is not a well formed account id.
func (id AccountID) Validate() error {
	if len(id) < minAccountIDLen || len(id) > maxAccountIDLen {
		return Errorf(KindInvalidArgument, "account id '%s' must be between %d and %d characters", id, minAccountIDLen, maxAccountIDLen)
	}
	if !accountIDRegexp.MatchString(string(id)) {
		return Errorf(KindInvalidArgument, "account id '%s' is malformed", id)
	}
	return nil
}

// ParseAccountID validates s and returns it as an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	id := AccountID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}
