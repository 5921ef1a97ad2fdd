/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
)

// Account is a handle on an account of a Worker.
type Account struct {
	w  *Worker
	id ledger.AccountID
}

// SubAccountOptions customize CreateSubAccount. A nil InitialBalance uses the
// worker's configured sub-account balance.
type SubAccountOptions struct {
	InitialBalance *ledger.Amount
}

// CallOptions customize a call.
type CallOptions struct {
	Deposit ledger.Amount
}

func (a *Account) ID() ledger.AccountID { return a.id }

// Info returns the persisted record of the account.
func (a *Account) Info() (*AccountInfo, error) {
	return a.w.AccountInfo(a.id)
}

// CreateSubAccount creates the account "<name>.<a>" funded from a.
func (a *Account) CreateSubAccount(ctx context.Context, name string, opts SubAccountOptions) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := ledger.ParseAccountID(name + "." + string(a.id))
	if err != nil {
		return nil, err
	}
	balance := a.w.subAccountBalance
	if opts.InitialBalance != nil {
		balance = *opts.InitialBalance
	}

	w := a.w
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil, ErrWorkerClosed
	}

	parent, err := w.loadAccount(a.id)
	if err != nil {
		return nil, err
	}
	if _, err := w.loadAccount(id); err == nil {
		return nil, errors.Wrapf(ErrAccountExists, "account '%s'", id)
	} else if !errors.Is(err, ErrUnknownAccount) {
		return nil, err
	}
	if parent.Balance, err = parent.Balance.Sub(balance); err != nil {
		return nil, errors.Wrapf(ErrInsufficientBalance, "account '%s' cannot fund %s", a.id, balance)
	}

	batch := &Batch{}
	if err := putAccount(batch, parent); err != nil {
		return nil, err
	}
	if err := putAccount(batch, &AccountInfo{ID: id, Balance: balance}); err != nil {
		return nil, err
	}
	if err := w.db.Commit(ctx, batch); err != nil {
		return nil, errors.WithMessagef(err, "failed to create account '%s'", id)
	}
	w.metrics.Accounts.Add(1)
	logger.Debugf("created account '%s' with balance %s", id, balance)
	return &Account{w: w, id: id}, nil
}

// Deploy binds the registered contract codeID to the account. Redeploying
// keeps the contract state.
func (a *Account) Deploy(ctx context.Context, codeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := a.w
	if _, ok := w.contracts[codeID]; !ok {
		return errors.Wrapf(ErrUnknownCode, "code '%s'", codeID)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return ErrWorkerClosed
	}
	info, err := w.loadAccount(a.id)
	if err != nil {
		return err
	}
	info.CodeID = codeID
	batch := &Batch{}
	if err := putAccount(batch, info); err != nil {
		return err
	}
	if err := w.db.Commit(ctx, batch); err != nil {
		return errors.WithMessagef(err, "failed to deploy to '%s'", a.id)
	}
	logger.Infof("deployed '%s' to '%s'", codeID, a.id)
	return nil
}

// Call calls method on contract and returns its value. Contract failures are
// returned as errors, typed as *ledger.Error for ledger failures.
func (a *Account) Call(ctx context.Context, contract ledger.AccountID, method string, args interface{}, opts CallOptions) (json.RawMessage, error) {
	outcome, err := a.CallRaw(ctx, contract, method, args, opts)
	if err != nil {
		return nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, err
	}
	return outcome.Value, nil
}

// CallRaw is Call returning the full outcome. Only rejections that prevent
// execution are returned as errors.
func (a *Account) CallRaw(ctx context.Context, contract ledger.AccountID, method string, args interface{}, opts CallOptions) (*Outcome, error) {
	return a.w.execute(ctx, a.id, contract, method, args, opts.Deposit, false)
}
