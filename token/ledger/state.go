/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"encoding/json"
	"iter"
	"sort"

	"github.com/pkg/errors"
)

// StateKey is the key under which hosts persist the encoded State.
const StateKey = "STATE"

// State is the complete contract state of one deployed ledger. Hosts load it
// before a call and persist it after a successful mutating call.
type State struct {
	Initialized bool                    `json:"initialized"`
	Owner       AccountID               `json:"owner_id,omitempty"`
	Collection  *CollectionMetadata     `json:"metadata,omitempty"`
	Tokens      map[string]*TokenRecord `json:"tokens,omitempty"`
}

// NewState returns an uninitialized state.
func NewState() *State {
	return &State{}
}

// LoadState decodes a state written by Bytes. Empty input is an
// uninitialized state.
func LoadState(b []byte) (*State, error) {
	st := NewState()
	if len(b) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(b, st); err != nil {
		return nil, errors.Wrap(err, "failed to decode ledger state")
	}
	// an initialized state without tokens encodes no tokens field
	if st.Initialized && st.Tokens == nil {
		st.Tokens = map[string]*TokenRecord{}
	}
	return st, nil
}

// Bytes encodes the state.
func (s *State) Bytes() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode ledger state")
	}
	return b, nil
}

// Token returns a copy of the record for tokenID. It reports false when no
// such token exists, including before initialization.
func (s *State) Token(tokenID string) (TokenRecord, bool) {
	if !s.Initialized {
		return TokenRecord{}, false
	}
	rec, ok := s.Tokens[tokenID]
	if !ok {
		return TokenRecord{}, false
	}
	return *rec, true
}

// Lookup is Token that fails with KindTokenNotFound for absent ids.
func (s *State) Lookup(tokenID string) (TokenRecord, error) {
	rec, ok := s.Token(tokenID)
	if !ok {
		return TokenRecord{}, Errorf(KindTokenNotFound, "token '%s' does not exist", tokenID)
	}
	return rec, nil
}

// TokensForOwner yields the records owned by owner in ascending token id
// order. Each iteration reads the state afresh.
func (s *State) TokensForOwner(owner AccountID) iter.Seq[TokenRecord] {
	return func(yield func(TokenRecord) bool) {
		if !s.Initialized {
			return
		}
		var ids []string
		for id, rec := range s.Tokens {
			if rec.OwnerID == owner {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		for _, id := range ids {
			if !yield(*s.Tokens[id]) {
				return
			}
		}
	}
}

// Metadata returns the collection metadata.
func (s *State) Metadata() (CollectionMetadata, error) {
	if !s.Initialized || s.Collection == nil {
		return CollectionMetadata{}, Errorf(KindNotInitialized, "contract is not initialized")
	}
	return *s.Collection, nil
}
