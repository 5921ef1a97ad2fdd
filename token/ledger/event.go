/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"encoding/json"
)

const (
	EventStandard = "nep171"
	EventVersion  = "1.0.0"
	EventNftMint  = "nft_mint"
)

// Event is a structured log entry emitted by a successful mutating call.
type Event struct {
	Standard string          `json:"standard"`
	Version  string          `json:"version"`
	Event    string          `json:"event"`
	Data     []MintEventData `json:"data"`
}

type MintEventData struct {
	OwnerID  AccountID `json:"owner_id"`
	TokenIDs []string  `json:"token_ids"`
}

func newMintEvent(owner AccountID, tokenIDs ...string) Event {
	return Event{
		Standard: EventStandard,
		Version:  EventVersion,
		Event:    EventNftMint,
		Data:     []MintEventData{{OwnerID: owner, TokenIDs: tokenIDs}},
	}
}

// Payload returns the JSON encoding of e.
func (e Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent decodes a payload produced by Payload.
func ParseEvent(payload []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(payload, &e)
	return e, err
}
