/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"encoding/json"

	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
)

// Event is an event set by a contract during a call.
type Event struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// Outcome is the result of an executed call. A failed call committed nothing
// and its deposit stayed with the caller.
type Outcome struct {
	TxID    string          `json:"tx_id"`
	Failed  bool            `json:"failed"`
	Failure string          `json:"failure,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Events  []Event         `json:"events,omitempty"`
	Refund  ledger.Amount   `json:"refund"`
}

// Err returns the failure as an error, typed as *ledger.Error when the
// contract reported a ledger failure.
func (o *Outcome) Err() error {
	if !o.Failed {
		return nil
	}
	if lerr, ok := ledger.ParseError(o.Failure); ok {
		return lerr
	}
	return errors.New(o.Failure)
}

// Decode unmarshals the returned value into v.
func (o *Outcome) Decode(v interface{}) error {
	if err := o.Err(); err != nil {
		return err
	}
	if len(o.Value) == 0 {
		return errors.Errorf("transaction %s returned no value", o.TxID)
	}
	return errors.Wrap(json.Unmarshal(o.Value, v), "failed to decode call result")
}
