/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
)

// SandboxMSPID is the msp id of every identity the sandbox presents to contracts.
const SandboxMSPID = "SandboxMSP"

// txStub is the chaincode stub of a single sandbox transaction. Writes and
// events are buffered and only reach the state database when the worker
// commits the transaction.
type txStub struct {
	db       StateDB
	txID     string
	contract ledger.AccountID
	caller   ledger.AccountID
	deposit  ledger.Amount
	fn       string
	params   []string

	writes  map[string][]byte
	order   []string
	events  []Event
	refunds []refund
}

type refund struct {
	to     ledger.AccountID
	amount ledger.Amount
}

var (
	_ chaincode.Stub     = &txStub{}
	_ chaincode.Refunder = &txStub{}
)

func (s *txStub) GetFunctionAndParameters() (string, []string) {
	return s.fn, s.params
}

func (s *txStub) GetTxID() string { return s.txID }

func (s *txStub) GetState(key string) ([]byte, error) {
	if v, ok := s.writes[key]; ok {
		return v, nil
	}
	return s.db.Get(stateKey(s.contract, key))
}

func (s *txStub) PutState(key string, value []byte) error {
	if key == "" {
		return errors.New("key must not be an empty string")
	}
	if s.writes == nil {
		s.writes = map[string][]byte{}
	}
	if _, seen := s.writes[key]; !seen {
		s.order = append(s.order, key)
	}
	s.writes[key] = append([]byte(nil), value...)
	return nil
}

func (s *txStub) GetCreator() ([]byte, error) {
	if s.caller == "" {
		return nil, errors.New("view calls have no creator")
	}
	return proto.Marshal(&msp.SerializedIdentity{Mspid: SandboxMSPID, IdBytes: []byte(s.caller)})
}

func (s *txStub) GetTransient() (map[string][]byte, error) {
	return map[string][]byte{
		chaincode.TransientDepositField: []byte(s.deposit.String()),
	}, nil
}

// SetEvent keeps every event, unlike a peer which keeps only the last one.
func (s *txStub) SetEvent(name string, payload []byte) error {
	if name == "" {
		return errors.New("event name can not be empty string")
	}
	s.events = append(s.events, Event{Name: name, Payload: append([]byte(nil), payload...)})
	return nil
}

// Refund returns part of the attached deposit to an account.
func (s *txStub) Refund(to ledger.AccountID, amount ledger.Amount) error {
	owed := amount
	for _, r := range s.refunds {
		var err error
		if owed, err = owed.Add(r.amount); err != nil {
			return err
		}
	}
	if owed.Cmp(s.deposit) > 0 {
		return errors.Errorf("refund of %s exceeds the attached deposit %s", owed, s.deposit)
	}
	s.refunds = append(s.refunds, refund{to: to, amount: amount})
	return nil
}

func (s *txStub) refunded() ledger.Amount {
	var total ledger.Amount
	for _, r := range s.refunds {
		total, _ = total.Add(r.amount)
	}
	return total
}
