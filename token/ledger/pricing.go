/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	DefaultBytePrice          = "10000000000000000000"
	DefaultEntryOverheadBytes = 40
)

// StoragePricing converts the storage a record occupies into a required deposit.
type StoragePricing struct {
	BytePrice          Amount
	EntryOverheadBytes uint64
}

// DefaultStoragePricing returns the pricing used when none is configured.
func DefaultStoragePricing() StoragePricing {
	return StoragePricing{
		BytePrice:          MustParseAmount(DefaultBytePrice),
		EntryOverheadBytes: DefaultEntryOverheadBytes,
	}
}

// Bytes returns the number of bytes charged for storing rec.
func (p StoragePricing) Bytes(rec TokenRecord) (uint64, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return 0, errors.Wrap(err, "failed to serialize token record")
	}
	return uint64(len(b)) + p.EntryOverheadBytes, nil
}

// Cost returns the deposit required to store rec.
func (p StoragePricing) Cost(rec TokenRecord) (Amount, error) {
	n, err := p.Bytes(rec)
	if err != nil {
		return Amount{}, err
	}
	return p.BytePrice.Mul(NewAmount(n))
}
