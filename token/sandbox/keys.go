/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"github.com/hyperledger/fabric-sbt/token/ledger"
)

const (
	accountPrefix = "acct"
	statePrefix   = "state"
	keySeparator  = "\x00"
)

func accountKey(id ledger.AccountID) []byte {
	return []byte(accountPrefix + keySeparator + string(id))
}

func stateKey(contract ledger.AccountID, key string) []byte {
	return []byte(statePrefix + keySeparator + string(contract) + keySeparator + key)
}
