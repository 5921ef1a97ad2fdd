/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/common/metrics"
	"github.com/hyperledger/fabric-sbt/common/metrics/disabled"
	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("sbt.sandbox")

const (
	DefaultCodeID            = "sbt"
	DefaultRootAccount       = "test.near"
	DefaultRootBalance       = "1000000000000000000000000000000000"
	DefaultSubAccountBalance = "100000000000000000000000000"
)

var (
	ErrUnknownAccount      = errors.New("unknown account")
	ErrAccountExists       = errors.New("account already exists")
	ErrNoContract          = errors.New("no contract deployed")
	ErrUnknownCode         = errors.New("unknown contract code")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWorkerClosed        = errors.New("worker is torn down")
)

// Contract is deployable code. *chaincode.Chaincode is a Contract.
type Contract interface {
	Dispatch(stub chaincode.Stub) pb.Response
}

// Options configure a Worker. Zero values select the defaults.
type Options struct {
	RootAccount       ledger.AccountID
	RootBalance       ledger.Amount
	SubAccountBalance ledger.Amount
	StateDB           StateDBConfig
	// Ledger backs the default contract registered as DefaultCodeID.
	Ledger *ledger.Ledger
	// Contracts replaces the default contract registry.
	Contracts       map[string]Contract
	MetricsProvider metrics.Provider
}

// AccountInfo is the persisted record of an account.
type AccountInfo struct {
	ID      ledger.AccountID `json:"account_id"`
	Balance ledger.Amount    `json:"balance"`
	CodeID  string           `json:"code_id,omitempty"`
}

// Worker is an in-process host for contracts. It executes one call at a time
// and commits each successful call atomically.
type Worker struct {
	mutex             sync.Mutex
	db                StateDB
	root              ledger.AccountID
	subAccountBalance ledger.Amount
	contracts         map[string]Contract
	metrics           *Metrics
	closed            bool
}

// NewWorker opens the state database and creates the root account when it
// does not exist yet.
func NewWorker(opts Options) (*Worker, error) {
	if opts.RootAccount == "" {
		opts.RootAccount = DefaultRootAccount
	}
	if err := opts.RootAccount.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid root account")
	}
	if opts.RootBalance.IsZero() {
		opts.RootBalance = ledger.MustParseAmount(DefaultRootBalance)
	}
	if opts.SubAccountBalance.IsZero() {
		opts.SubAccountBalance = ledger.MustParseAmount(DefaultSubAccountBalance)
	}
	if opts.Contracts == nil {
		l := opts.Ledger
		if l == nil {
			l = ledger.New()
		}
		opts.Contracts = map[string]Contract{DefaultCodeID: chaincode.New(l)}
	}
	if opts.MetricsProvider == nil {
		opts.MetricsProvider = &disabled.Provider{}
	}

	db, err := OpenStateDB(opts.StateDB)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to open state database")
	}

	w := &Worker{
		db:                db,
		root:              opts.RootAccount,
		subAccountBalance: opts.SubAccountBalance,
		contracts:         opts.Contracts,
		metrics:           NewMetrics(opts.MetricsProvider),
	}

	_, err = w.loadAccount(w.root)
	switch {
	case errors.Is(err, ErrUnknownAccount):
		batch := &Batch{}
		if err := putAccount(batch, &AccountInfo{ID: w.root, Balance: opts.RootBalance}); err != nil {
			db.Close()
			return nil, err
		}
		if err := db.Commit(context.Background(), batch); err != nil {
			db.Close()
			return nil, errors.WithMessage(err, "failed to create root account")
		}
		logger.Infof("created root account '%s' with balance %s", w.root, opts.RootBalance)
	case err != nil:
		db.Close()
		return nil, err
	}

	logger.Infof("sandbox worker started with %s state database", backendName(opts.StateDB.Backend))
	return w, nil
}

func backendName(b string) string {
	if b == "" {
		return BackendMemory
	}
	return b
}

// RootAccount returns the account created with the worker.
func (w *Worker) RootAccount() *Account {
	return &Account{w: w, id: w.root}
}

// Account returns a handle for an existing account.
func (w *Worker) Account(id ledger.AccountID) (*Account, error) {
	if _, err := w.AccountInfo(id); err != nil {
		return nil, err
	}
	return &Account{w: w, id: id}, nil
}

// AccountInfo returns the persisted record of an account.
func (w *Worker) AccountInfo(id ledger.AccountID) (*AccountInfo, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil, ErrWorkerClosed
	}
	return w.loadAccount(id)
}

// Balance returns the balance of an account.
func (w *Worker) Balance(id ledger.AccountID) (ledger.Amount, error) {
	info, err := w.AccountInfo(id)
	if err != nil {
		return ledger.Amount{}, err
	}
	return info.Balance, nil
}

// HealthCheck reports whether the state database is usable.
func (w *Worker) HealthCheck(ctx context.Context) error {
	w.mutex.Lock()
	closed := w.closed
	w.mutex.Unlock()
	if closed {
		return ErrWorkerClosed
	}
	return w.db.HealthCheck(ctx)
}

// ReadinessCheck reports whether the worker can execute calls, that is
// whether it is open and its root account can be read.
func (w *Worker) ReadinessCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := w.AccountInfo(w.root)
	return err
}

// View runs a read-only call against contract. Nothing is committed, and a
// call that writes state fails.
func (w *Worker) View(ctx context.Context, contract ledger.AccountID, method string, args interface{}) (json.RawMessage, error) {
	outcome, err := w.execute(ctx, "", contract, method, args, ledger.Amount{}, true)
	if err != nil {
		return nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, err
	}
	return outcome.Value, nil
}

// TearDown closes the worker. Ephemeral state databases are removed.
func (w *Worker) TearDown() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.db.Close()
}

func (w *Worker) loadAccount(id ledger.AccountID) (*AccountInfo, error) {
	b, err := w.db.Get(accountKey(id))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load account '%s'", id)
	}
	if b == nil {
		return nil, errors.Wrapf(ErrUnknownAccount, "account '%s'", id)
	}
	info := &AccountInfo{}
	if err := json.Unmarshal(b, info); err != nil {
		return nil, errors.Wrapf(err, "failed to decode account '%s'", id)
	}
	return info, nil
}

func putAccount(batch *Batch, info *AccountInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return errors.Wrapf(err, "failed to encode account '%s'", info.ID)
	}
	batch.Put(accountKey(info.ID), b)
	return nil
}

func encodeArgs(args interface{}) ([]string, error) {
	switch a := args.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{a}, nil
	case []byte:
		return []string{string(a)}, nil
	case json.RawMessage:
		if len(a) == 0 {
			return nil, nil
		}
		return []string{string(a)}, nil
	default:
		b, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode call arguments")
		}
		return []string{string(b)}, nil
	}
}

// dispatch runs the contract. A panicking contract fails the call like any
// other contract error.
func dispatch(code Contract, stub *txStub) (resp pb.Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[%s] contract panicked during '%s': %v", stub.txID[:8], stub.fn, r)
			resp = shim.Error(fmt.Sprintf("contract panicked: %v", r))
		}
	}()
	return code.Dispatch(stub)
}

// execute runs one call. Rejections that prevent execution are returned as
// errors. Contract failures are reported in the outcome.
func (w *Worker) execute(ctx context.Context, caller, contract ledger.AccountID, method string, args interface{}, deposit ledger.Amount, view bool) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params, err := encodeArgs(args)
	if err != nil {
		return nil, err
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil, ErrWorkerClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos := map[ledger.AccountID]*AccountInfo{}
	contractInfo, err := w.loadAccount(contract)
	if err != nil {
		return nil, err
	}
	infos[contract] = contractInfo
	code, ok := w.contracts[contractInfo.CodeID]
	if contractInfo.CodeID == "" || !ok {
		return nil, errors.Wrapf(ErrNoContract, "account '%s'", contract)
	}
	if !view {
		callerInfo, ok := infos[caller]
		if !ok {
			if callerInfo, err = w.loadAccount(caller); err != nil {
				return nil, err
			}
			infos[caller] = callerInfo
		}
		if callerInfo.Balance.Cmp(deposit) < 0 {
			return nil, errors.Wrapf(ErrInsufficientBalance, "account '%s' has %s, needs %s", caller, callerInfo.Balance, deposit)
		}
	}

	stub := &txStub{
		db:       w.db,
		txID:     uuid.New().String(),
		contract: contract,
		caller:   caller,
		deposit:  deposit,
		fn:       method,
		params:   params,
	}

	start := time.Now()
	resp := dispatch(code, stub)
	w.metrics.CallDuration.With("method", method).Observe(time.Since(start).Seconds())

	outcome := &Outcome{TxID: stub.txID}
	if resp.Status >= shim.ERRORTHRESHOLD {
		outcome.Failed = true
		outcome.Failure = resp.Message
		w.metrics.Calls.With("method", method, "result", "failure").Add(1)
		logger.Debugf("[%s] '%s' on '%s' failed: %s", stub.txID[:8], method, contract, resp.Message)
		return outcome, nil
	}
	if len(resp.Payload) > 0 {
		outcome.Value = json.RawMessage(resp.Payload)
	}
	outcome.Events = stub.events
	outcome.Refund = stub.refunded()

	if view {
		if len(stub.writes) > 0 {
			return nil, errors.Errorf("view of '%s' on '%s' attempted to modify state", method, contract)
		}
		w.metrics.Calls.With("method", method, "result", "success").Add(1)
		return outcome, nil
	}

	if err := w.commit(ctx, stub, infos); err != nil {
		return nil, err
	}
	w.metrics.Calls.With("method", method, "result", "success").Add(1)
	w.countMinted(stub.events)
	logger.Debugf("[%s] '%s' on '%s' by '%s' committed", stub.txID[:8], method, contract, caller)
	return outcome, nil
}

// commit moves the deposit and refunds between accounts and writes them
// together with the contract state in one batch.
func (w *Worker) commit(ctx context.Context, stub *txStub, infos map[ledger.AccountID]*AccountInfo) error {
	caller, contract := infos[stub.caller], infos[stub.contract]

	var err error
	if caller.Balance, err = caller.Balance.Sub(stub.deposit); err != nil {
		return errors.WithMessage(err, "failed to charge deposit")
	}
	if contract.Balance, err = contract.Balance.Add(stub.deposit); err != nil {
		return errors.WithMessage(err, "failed to credit deposit")
	}
	for _, r := range stub.refunds {
		to, ok := infos[r.to]
		if !ok {
			if to, err = w.loadAccount(r.to); err != nil {
				return errors.WithMessage(err, "failed to refund")
			}
			infos[r.to] = to
		}
		if contract.Balance, err = contract.Balance.Sub(r.amount); err != nil {
			return errors.WithMessage(err, "failed to refund")
		}
		if to.Balance, err = to.Balance.Add(r.amount); err != nil {
			return errors.WithMessage(err, "failed to refund")
		}
	}

	batch := &Batch{}
	for _, key := range stub.order {
		batch.Put(stateKey(stub.contract, key), stub.writes[key])
	}
	for _, info := range infos {
		if err := putAccount(batch, info); err != nil {
			return err
		}
	}
	if err := w.db.Commit(context.WithoutCancel(ctx), batch); err != nil {
		return errors.WithMessagef(err, "failed to commit transaction %s", stub.txID)
	}
	return nil
}

func (w *Worker) countMinted(events []Event) {
	for _, e := range events {
		if e.Name != ledger.EventNftMint {
			continue
		}
		ev, err := ledger.ParseEvent(e.Payload)
		if err != nil {
			logger.Warningf("ignoring malformed %s event: %s", e.Name, err)
			continue
		}
		for _, d := range ev.Data {
			w.metrics.TokensMinted.Add(float64(len(d.TokenIDs)))
		}
	}
}
