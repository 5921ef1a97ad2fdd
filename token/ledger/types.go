/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

// MetadataSpec is the only collection metadata spec version accepted.
const MetadataSpec = "nft-1.0.0"

// CollectionMetadata describes the certificate collection as a whole.
type CollectionMetadata struct {
	Spec      string `json:"spec"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Icon      string `json:"icon,omitempty"`
	BaseURI   string `json:"base_uri,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (m CollectionMetadata) validate() error {
	if m.Spec != MetadataSpec {
		return Errorf(KindInvalidArgument, "metadata spec must be '%s', got '%s'", MetadataSpec, m.Spec)
	}
	if m.Name == "" {
		return Errorf(KindInvalidArgument, "metadata name is required")
	}
	if m.Symbol == "" {
		return Errorf(KindInvalidArgument, "metadata symbol is required")
	}
	return nil
}

// TokenMetadata describes a single certificate.
type TokenMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media,omitempty"`
	IssuedAt    string `json:"issued_at,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

// TokenRecord is an issued certificate. Once stored, neither its owner nor
// its metadata can change.
type TokenRecord struct {
	TokenID  string        `json:"token_id"`
	OwnerID  AccountID     `json:"owner_id"`
	Metadata TokenMetadata `json:"metadata"`
}

// CallContext carries the host supplied facts about the current call.
type CallContext struct {
	Caller  AccountID
	Deposit Amount
}

// MintRequest is the argument set of a mint.
type MintRequest struct {
	TokenID       string        `json:"token_id"`
	TokenOwnerID  AccountID     `json:"token_owner_id"`
	TokenMetadata TokenMetadata `json:"token_metadata"`
}

// MintResult is the outcome of a successful mint. Refund is owed to the caller.
type MintResult struct {
	Token       TokenRecord
	StorageCost Amount
	Refund      Amount
	Event       Event
}
