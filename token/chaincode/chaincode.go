/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chaincode

import (
	"encoding/json"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("sbt.chaincode")

// Function names understood by the chaincode.
const (
	FuncNew               = "new"
	FuncMint              = "nft_mint"
	FuncToken             = "nft_token"
	FuncTokensForOwner    = "nft_tokens_for_owner"
	FuncTransfer          = "nft_transfer"
	FuncTransferCall      = "nft_transfer_call"
	FuncMetadata          = "nft_metadata"
	TransientDepositField = "attached_deposit"
)

// Stub is the part of the chaincode stub the ledger needs.
//
//go:generate counterfeiter -o mock/stub.go -fake-name Stub . Stub
type Stub interface {
	GetFunctionAndParameters() (string, []string)
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	GetCreator() ([]byte, error)
	GetTransient() (map[string][]byte, error)
	SetEvent(name string, payload []byte) error
	GetTxID() string
}

// Refunder is implemented by hosts that can return unused deposit to the
// caller. Stubs that do not implement it have their refunds logged only.
//
//go:generate counterfeiter -o mock/refunder.go -fake-name Refunder . Refunder
type Refunder interface {
	Refund(to ledger.AccountID, amount ledger.Amount) error
}

// Chaincode exposes a ledger.Ledger as Fabric chaincode. The whole ledger
// state is kept under ledger.StateKey.
type Chaincode struct {
	Ledger *ledger.Ledger
}

// New returns a Chaincode backed by l.
func New(l *ledger.Ledger) *Chaincode {
	return &Chaincode{Ledger: l}
}

// Init runs "new" when the instantiation names it and otherwise does nothing,
// so that initialization can also happen as a regular invocation.
func (cc *Chaincode) Init(stub shim.ChaincodeStubInterface) pb.Response {
	fn, _ := stub.GetFunctionAndParameters()
	if fn != FuncNew {
		return shim.Success(nil)
	}
	return cc.Dispatch(stub)
}

// Invoke dispatches a transaction proposal.
func (cc *Chaincode) Invoke(stub shim.ChaincodeStubInterface) pb.Response {
	return cc.Dispatch(stub)
}

// Dispatch runs the function named by the stub and converts the outcome into
// a peer response. Ledger failures carry their kind in the message.
func (cc *Chaincode) Dispatch(stub Stub) pb.Response {
	fn, params := stub.GetFunctionAndParameters()
	logger.Debugf("[%s] invoking '%s'", shortTxID(stub.GetTxID()), fn)

	payload, err := cc.dispatch(stub, fn, params)
	if err != nil {
		if _, ok := ledger.KindOf(err); ok {
			logger.Debugf("[%s] '%s' rejected: %s", shortTxID(stub.GetTxID()), fn, err)
		} else {
			logger.Errorf("[%s] '%s' failed: %s", shortTxID(stub.GetTxID()), fn, err)
		}
		return shim.Error(err.Error())
	}
	return shim.Success(payload)
}

func (cc *Chaincode) dispatch(stub Stub, fn string, params []string) ([]byte, error) {
	switch fn {
	case FuncTransfer:
		var args TransferArgs
		// transfers fail whatever the arguments
		_ = decodeArgs(params, &args)
		return nil, cc.Ledger.Transfer(nil, ledger.CallContext{}, args.ReceiverID, args.TokenID)
	case FuncTransferCall:
		var args TransferCallArgs
		_ = decodeArgs(params, &args)
		return nil, cc.Ledger.TransferCall(nil, ledger.CallContext{}, args.ReceiverID, args.TokenID, args.Msg)
	case FuncNew:
		return cc.initialize(stub, params)
	case FuncMint:
		return cc.mint(stub, params)
	case FuncToken:
		return cc.token(stub, params)
	case FuncTokensForOwner:
		return cc.tokensForOwner(stub, params)
	case FuncMetadata:
		return cc.metadata(stub)
	default:
		return nil, ledger.Errorf(ledger.KindUnknownMethod, "function '%s' is not supported", fn)
	}
}

func (cc *Chaincode) initialize(stub Stub, params []string) ([]byte, error) {
	st, err := loadState(stub)
	if err != nil {
		return nil, err
	}
	if st.Initialized {
		return nil, ledger.Errorf(ledger.KindAlreadyInitialized, "contract is already initialized")
	}
	var args NewArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if err := cc.Ledger.Initialize(st, args.OwnerID, args.Metadata); err != nil {
		return nil, err
	}
	return nil, putState(stub, st)
}

func (cc *Chaincode) mint(stub Stub, params []string) ([]byte, error) {
	st, err := loadState(stub)
	if err != nil {
		return nil, err
	}
	caller, err := Caller(stub)
	if err != nil {
		return nil, err
	}
	if err := cc.Ledger.Authorize(st, caller); err != nil {
		return nil, err
	}
	deposit, err := Deposit(stub)
	if err != nil {
		return nil, err
	}
	var req ledger.MintRequest
	if err := decodeArgs(params, &req); err != nil {
		return nil, err
	}

	callCtx := ledger.CallContext{Caller: caller, Deposit: deposit}
	res, err := cc.Ledger.Mint(st, callCtx, req)
	if err != nil {
		return nil, err
	}
	if err := putState(stub, st); err != nil {
		return nil, err
	}

	event, err := res.Event.Payload()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode mint event")
	}
	if err := stub.SetEvent(res.Event.Event, event); err != nil {
		return nil, errors.Wrap(err, "failed to set mint event")
	}
	if err := refund(stub, callCtx.Caller, res.Refund); err != nil {
		return nil, err
	}
	return json.Marshal(res.Token)
}

func refund(stub Stub, to ledger.AccountID, amount ledger.Amount) error {
	if amount.IsZero() {
		return nil
	}
	r, ok := stub.(Refunder)
	if !ok {
		logger.Infof("[%s] unused deposit %s owed to '%s' is not returned by this host", shortTxID(stub.GetTxID()), amount, to)
		return nil
	}
	return errors.WithMessagef(r.Refund(to, amount), "failed to refund '%s'", to)
}

func (cc *Chaincode) token(stub Stub, params []string) ([]byte, error) {
	var args TokenArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	st, err := loadState(stub)
	if err != nil {
		return nil, err
	}
	rec, ok := st.Token(args.TokenID)
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(rec)
}

func (cc *Chaincode) tokensForOwner(stub Stub, params []string) ([]byte, error) {
	var args OwnerArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	st, err := loadState(stub)
	if err != nil {
		return nil, err
	}
	records := []ledger.TokenRecord{}
	for rec := range st.TokensForOwner(args.AccountID) {
		records = append(records, rec)
	}
	return json.Marshal(records)
}

func (cc *Chaincode) metadata(stub Stub) ([]byte, error) {
	st, err := loadState(stub)
	if err != nil {
		return nil, err
	}
	md, err := st.Metadata()
	if err != nil {
		return nil, err
	}
	return json.Marshal(md)
}

func loadState(stub Stub) (*ledger.State, error) {
	b, err := stub.GetState(ledger.StateKey)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read ledger state")
	}
	return ledger.LoadState(b)
}

func putState(stub Stub, st *ledger.State) error {
	b, err := st.Bytes()
	if err != nil {
		return err
	}
	return errors.WithMessage(stub.PutState(ledger.StateKey, b), "failed to write ledger state")
}

func shortTxID(txID string) string {
	if len(txID) < 8 {
		return txID
	}
	return txID[0:8]
}
