/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chaincode

import (
	"encoding/json"

	"github.com/hyperledger/fabric-sbt/token/ledger"
)

// NewArgs are the arguments of "new".
type NewArgs struct {
	OwnerID  ledger.AccountID          `json:"owner_id"`
	Metadata ledger.CollectionMetadata `json:"metadata"`
}

// TokenArgs are the arguments of "nft_token".
type TokenArgs struct {
	TokenID string `json:"token_id"`
}

// OwnerArgs are the arguments of "nft_tokens_for_owner".
type OwnerArgs struct {
	AccountID ledger.AccountID `json:"account_id"`
}

// TransferArgs are the arguments of "nft_transfer".
type TransferArgs struct {
	ReceiverID ledger.AccountID `json:"receiver_id"`
	TokenID    string           `json:"token_id"`
	ApprovalID *uint64          `json:"approval_id,omitempty"`
	Memo       *string          `json:"memo,omitempty"`
}

// TransferCallArgs are the arguments of "nft_transfer_call".
type TransferCallArgs struct {
	TransferArgs
	Msg string `json:"msg"`
}

// decodeArgs decodes the single JSON object argument of a call. No argument
// at all is the empty object.
func decodeArgs(params []string, v interface{}) error {
	switch len(params) {
	case 0:
		return nil
	case 1:
		if err := json.Unmarshal([]byte(params[0]), v); err != nil {
			return ledger.Errorf(ledger.KindInvalidArgument, "failed to decode arguments: %s", err)
		}
		return nil
	default:
		return ledger.Errorf(ledger.KindInvalidArgument, "expected one JSON argument, got %d", len(params))
	}
}
