/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
)

// WorkerHost serves a sandbox worker through the gateway.
type WorkerHost struct {
	Worker *sandbox.Worker
}

var _ Host = &WorkerHost{}

func (w *WorkerHost) AccountInfo(id ledger.AccountID) (*sandbox.AccountInfo, error) {
	return w.Worker.AccountInfo(id)
}

// CreateAccount creates "<name>.<parent>". An empty parent selects the root
// account.
func (w *WorkerHost) CreateAccount(ctx context.Context, parent ledger.AccountID, name string, initialBalance *ledger.Amount) (*sandbox.AccountInfo, error) {
	account, err := w.account(parent)
	if err != nil {
		return nil, err
	}
	sub, err := account.CreateSubAccount(ctx, name, sandbox.SubAccountOptions{InitialBalance: initialBalance})
	if err != nil {
		return nil, err
	}
	return sub.Info()
}

func (w *WorkerHost) Deploy(ctx context.Context, id ledger.AccountID, codeID string) (*sandbox.AccountInfo, error) {
	account, err := w.Worker.Account(id)
	if err != nil {
		return nil, err
	}
	if err := account.Deploy(ctx, codeID); err != nil {
		return nil, err
	}
	return account.Info()
}

func (w *WorkerHost) Call(ctx context.Context, signer, contract ledger.AccountID, method string, args json.RawMessage, deposit ledger.Amount) (*sandbox.Outcome, error) {
	account, err := w.Worker.Account(signer)
	if err != nil {
		return nil, err
	}
	return account.CallRaw(ctx, contract, method, args, sandbox.CallOptions{Deposit: deposit})
}

func (w *WorkerHost) View(ctx context.Context, contract ledger.AccountID, method string, args json.RawMessage) (json.RawMessage, error) {
	return w.Worker.View(ctx, contract, method, args)
}

func (w *WorkerHost) account(id ledger.AccountID) (*sandbox.Account, error) {
	if id == "" {
		return w.Worker.RootAccount(), nil
	}
	return w.Worker.Account(id)
}
