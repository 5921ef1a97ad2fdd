/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox_test

import (
	"context"
	"encoding/json"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric-sbt/common/metrics"
	"github.com/hyperledger/fabric-sbt/common/metrics/metricsfakes"
	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/pkg/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const attachedDeposit = "2490000000000000000000"

func newArgs(owner ledger.AccountID) map[string]interface{} {
	return map[string]interface{}{
		"owner_id": owner,
		"metadata": map[string]string{"spec": "nft-1.0.0", "name": "test certificate", "symbol": "NCD"},
	}
}

func mintArgs(tokenID string, owner ledger.AccountID) map[string]interface{} {
	return map[string]interface{}{
		"token_id":       tokenID,
		"token_owner_id": owner,
		"token_metadata": map[string]string{
			"title":       "Certificate",
			"description": "Successfully completed the course",
		},
	}
}

func withDeposit(amount string) sandbox.CallOptions {
	return sandbox.CallOptions{Deposit: ledger.MustParseAmount(amount)}
}

var _ = Describe("Worker", func() {
	var (
		ctx      context.Context
		worker   *sandbox.Worker
		root     *sandbox.Account
		contract *sandbox.Account
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		worker, err = sandbox.NewWorker(sandbox.Options{})
		Expect(err).NotTo(HaveOccurred())

		root = worker.RootAccount()
		contract, err = root.CreateSubAccount(ctx, "test-account", sandbox.SubAccountOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(contract.ID()).To(Equal(ledger.AccountID("test-account.test.near")))
		Expect(contract.Deploy(ctx, sandbox.DefaultCodeID)).To(Succeed())
	})

	AfterEach(func() {
		Expect(worker.TearDown()).To(Succeed())
	})

	It("new initializes contract state", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())

		value, err := worker.View(ctx, contract.ID(), "nft_metadata", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(MatchJSON(`{"spec":"nft-1.0.0","name":"test certificate","symbol":"NCD"}`))
	})

	It("new fails to re-initialize contract state", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())

		result, err := contract.CallRaw(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Failed).To(BeTrue())
		Expect(errors.Is(result.Err(), ledger.ErrAlreadyInitialized)).To(BeTrue())
	})

	It("nft_mint mints a certificate for the user", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())

		value, err := contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())

		var minted ledger.TokenRecord
		Expect(json.Unmarshal(value, &minted)).To(Succeed())
		Expect(minted.OwnerID).To(Equal(ledger.AccountID("someone.testnet")))
	})

	It("nft_transfer fails, making the certificate account-bound", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", root.ID()), withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())

		result, err := root.CallRaw(ctx, contract.ID(), "nft_transfer", map[string]string{"receiver_id": "someone_else.testnet", "token_id": "1"}, sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Failed).To(BeTrue())
		Expect(result.Failure).To(HavePrefix("TransferNotSupported"))

		value, err := worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "1"})
		Expect(err).NotTo(HaveOccurred())
		var token ledger.TokenRecord
		Expect(json.Unmarshal(value, &token)).To(Succeed())
		Expect(token.OwnerID).To(Equal(root.ID()))
	})

	It("leaves no token behind when the deposit is too small", func() {
		_, err := root.Call(ctx, contract.ID(), "new", newArgs(root.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		before, err := root.Info()
		Expect(err).NotTo(HaveOccurred())

		_, err = root.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit("1000"))
		kind, ok := ledger.KindOf(err)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(ledger.KindInsufficientDeposit))

		value, err := worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(value)).To(Equal("null"))

		after, err := root.Info()
		Expect(err).NotTo(HaveOccurred())
		Expect(after.Balance.Cmp(before.Balance)).To(Equal(0), "a failed call keeps the deposit with the caller")
	})

	It("rejects mints from accounts other than the owner", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())

		_, err = root.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", root.ID()), withDeposit(attachedDeposit))
		Expect(errors.Is(err, ledger.ErrUnauthorized)).To(BeTrue())
	})

	It("charges the storage cost and refunds the rest", func() {
		_, err := root.Call(ctx, contract.ID(), "new", newArgs(root.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		rootBefore, err := worker.Balance(root.ID())
		Expect(err).NotTo(HaveOccurred())
		contractBefore, err := worker.Balance(contract.ID())
		Expect(err).NotTo(HaveOccurred())

		outcome, err := root.CallRaw(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Failed).To(BeFalse())
		Expect(outcome.TxID).To(HaveLen(36))
		Expect(outcome.Refund.String()).To(Equal("790000000000000000000"))
		Expect(outcome.Events).To(HaveLen(1))
		Expect(outcome.Events[0].Name).To(Equal("nft_mint"))
		Expect([]byte(outcome.Events[0].Payload)).To(MatchJSON(`{"standard":"nep171","version":"1.0.0","event":"nft_mint","data":[{"owner_id":"someone.testnet","token_ids":["1"]}]}`))

		cost := ledger.MustParseAmount("1700000000000000000000")
		rootAfter, err := worker.Balance(root.ID())
		Expect(err).NotTo(HaveOccurred())
		expectedRoot, err := rootBefore.Sub(cost)
		Expect(err).NotTo(HaveOccurred())
		Expect(rootAfter.String()).To(Equal(expectedRoot.String()))

		contractAfter, err := worker.Balance(contract.ID())
		Expect(err).NotTo(HaveOccurred())
		expectedContract, err := contractBefore.Add(cost)
		Expect(err).NotTo(HaveOccurred())
		Expect(contractAfter.String()).To(Equal(expectedContract.String()))
	})

	It("rejects a duplicate token id minted in an earlier call", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())

		_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone_else.testnet"), withDeposit(attachedDeposit))
		Expect(errors.Is(err, ledger.ErrDuplicateTokenID)).To(BeTrue())

		value, err := worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "1"})
		Expect(err).NotTo(HaveOccurred())
		var token ledger.TokenRecord
		Expect(json.Unmarshal(value, &token)).To(Succeed())
		Expect(token.OwnerID).To(Equal(ledger.AccountID("someone.testnet")))
	})

	It("lists the tokens of an owner", func() {
		_, err := contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		for _, id := range []string{"2", "1"} {
			_, err := contract.Call(ctx, contract.ID(), "nft_mint", mintArgs(id, "alice.near"), withDeposit(attachedDeposit))
			Expect(err).NotTo(HaveOccurred())
		}

		value, err := worker.View(ctx, contract.ID(), "nft_tokens_for_owner", map[string]string{"account_id": "alice.near"})
		Expect(err).NotTo(HaveOccurred())
		var tokens []ledger.TokenRecord
		Expect(json.Unmarshal(value, &tokens)).To(Succeed())
		Expect(tokens).To(HaveLen(2))
		Expect(tokens[0].TokenID).To(Equal("1"))
	})

	Describe("transaction rejections", func() {
		It("rejects unknown accounts", func() {
			_, err := worker.Account("nobody.test.near")
			Expect(errors.Is(err, sandbox.ErrUnknownAccount)).To(BeTrue())

			_, err = root.CallRaw(ctx, "nobody.test.near", "nft_metadata", nil, sandbox.CallOptions{})
			Expect(errors.Is(err, sandbox.ErrUnknownAccount)).To(BeTrue())
			Expect(err).To(MatchError("account 'nobody.test.near': unknown account"))
		})

		It("rejects calls to accounts without a contract", func() {
			_, err := contract.Call(ctx, root.ID(), "new", newArgs(root.ID()), sandbox.CallOptions{})
			Expect(errors.Is(err, sandbox.ErrNoContract)).To(BeTrue())
		})

		It("rejects deposits above the caller balance", func() {
			_, err := contract.CallRaw(ctx, contract.ID(), "new", newArgs(contract.ID()), withDeposit(sandbox.DefaultRootBalance))
			Expect(errors.Is(err, sandbox.ErrInsufficientBalance)).To(BeTrue())
		})

		It("rejects cancelled contexts before executing", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := contract.CallRaw(cancelled, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
			Expect(err).To(MatchError(context.Canceled))

			value, err := worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal("null"))
			_, err = worker.View(ctx, contract.ID(), "nft_metadata", nil)
			Expect(errors.Is(err, ledger.ErrNotInitialized)).To(BeTrue())
		})

		It("rejects unknown code", func() {
			err := contract.Deploy(ctx, "wasm")
			Expect(err).To(MatchError("code 'wasm': unknown contract code"))
			Expect(errors.Is(err, sandbox.ErrUnknownCode)).To(BeTrue())
		})

		It("rejects duplicate and malformed sub-accounts", func() {
			_, err := root.CreateSubAccount(ctx, "test-account", sandbox.SubAccountOptions{})
			Expect(errors.Is(err, sandbox.ErrAccountExists)).To(BeTrue())

			_, err = root.CreateSubAccount(ctx, "Bad Name", sandbox.SubAccountOptions{})
			Expect(errors.Is(err, ledger.ErrInvalidArgument)).To(BeTrue())

			huge := ledger.MustParseAmount(sandbox.DefaultRootBalance)
			_, err = contract.CreateSubAccount(ctx, "child", sandbox.SubAccountOptions{InitialBalance: &huge})
			Expect(errors.Is(err, sandbox.ErrInsufficientBalance)).To(BeTrue())
		})

		It("rejects use after tear down", func() {
			Expect(worker.TearDown()).To(Succeed())
			_, err := contract.CallRaw(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
			Expect(err).To(Equal(sandbox.ErrWorkerClosed))
			Expect(worker.HealthCheck(ctx)).To(Equal(sandbox.ErrWorkerClosed))
			Expect(worker.ReadinessCheck(ctx)).To(Equal(sandbox.ErrWorkerClosed))
		})
	})

	It("is ready while open", func() {
		Expect(worker.ReadinessCheck(ctx)).To(Succeed())
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		Expect(worker.ReadinessCheck(cancelled)).To(MatchError(context.Canceled))
	})

	It("fails views that write state", func() {
		_, err := worker.View(ctx, contract.ID(), "new", newArgs(contract.ID()))
		Expect(err).To(MatchError("view of 'new' on 'test-account.test.near' attempted to modify state"))

		_, err = worker.View(ctx, contract.ID(), "nft_metadata", nil)
		Expect(errors.Is(err, ledger.ErrNotInitialized)).To(BeTrue())
	})

	It("reports unknown methods", func() {
		_, err := contract.Call(ctx, contract.ID(), "nft_burn", nil, sandbox.CallOptions{})
		Expect(errors.Is(err, ledger.ErrUnknownMethod)).To(BeTrue())
	})
})

type panickingContract struct{}

func (panickingContract) Dispatch(chaincode.Stub) pb.Response {
	panic("boom")
}

var _ = Describe("Worker with a panicking contract", func() {
	It("fails the call and keeps serving", func() {
		ctx := context.Background()
		worker, err := sandbox.NewWorker(sandbox.Options{
			Contracts: map[string]sandbox.Contract{
				sandbox.DefaultCodeID: chaincode.New(ledger.New()),
				"broken":              panickingContract{},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		defer worker.TearDown()

		root := worker.RootAccount()
		broken, err := root.CreateSubAccount(ctx, "broken", sandbox.SubAccountOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(broken.Deploy(ctx, "broken")).To(Succeed())
		before, err := worker.Balance(root.ID())
		Expect(err).NotTo(HaveOccurred())

		outcome, err := root.CallRaw(ctx, broken.ID(), "anything", nil, withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Failed).To(BeTrue())
		Expect(outcome.Failure).To(Equal("contract panicked: boom"))

		after, err := worker.Balance(root.ID())
		Expect(err).NotTo(HaveOccurred())
		Expect(after.String()).To(Equal(before.String()))

		_, err = worker.View(ctx, broken.ID(), "anything", nil)
		Expect(err).To(MatchError("contract panicked: boom"))

		sbt, err := root.CreateSubAccount(ctx, "sbt", sandbox.SubAccountOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(sbt.Deploy(ctx, sandbox.DefaultCodeID)).To(Succeed())
		_, err = sbt.Call(ctx, sbt.ID(), "new", newArgs(sbt.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Worker on a persistent state database", func() {
	It("runs the certificate scenarios across reopened workers", func() {
		ctx := context.Background()
		opts := sandbox.Options{StateDB: sandbox.StateDBConfig{Backend: sandbox.BackendLevelDB, Path: GinkgoT().TempDir()}}
		open := func() *sandbox.Worker {
			worker, err := sandbox.NewWorker(opts)
			Expect(err).NotTo(HaveOccurred())
			return worker
		}

		worker := open()
		contract, err := worker.RootAccount().CreateSubAccount(ctx, "test-account", sandbox.SubAccountOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(contract.Deploy(ctx, sandbox.DefaultCodeID)).To(Succeed())
		_, err = contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(worker.TearDown()).To(Succeed())

		worker = open()
		contract, err = worker.Account(contract.ID())
		Expect(err).NotTo(HaveOccurred())
		_, err = contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(errors.Is(err, ledger.ErrAlreadyInitialized)).To(BeTrue())
		outcome, err := contract.CallRaw(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Failed).To(BeFalse(), outcome.Failure)
		Expect(outcome.Refund.String()).To(Equal("790000000000000000000"))
		_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("2", "someone.testnet"), withDeposit("1"))
		Expect(errors.Is(err, ledger.ErrInsufficientDeposit)).To(BeTrue())
		Expect(worker.TearDown()).To(Succeed())

		worker = open()
		defer worker.TearDown()
		contract, err = worker.Account(contract.ID())
		Expect(err).NotTo(HaveOccurred())
		_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone_else.testnet"), withDeposit(attachedDeposit))
		Expect(errors.Is(err, ledger.ErrDuplicateTokenID)).To(BeTrue())
		_, err = contract.Call(ctx, contract.ID(), "nft_transfer", map[string]string{"receiver_id": "someone_else.testnet", "token_id": "1"}, sandbox.CallOptions{})
		Expect(errors.Is(err, ledger.ErrTransferNotSupported)).To(BeTrue())

		value, err := worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(MatchJSON(`{"token_id":"1","owner_id":"someone.testnet","metadata":{"title":"Certificate","description":"Successfully completed the course"}}`))
		value, err = worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(value)).To(Equal("null"))
	})
})

var _ = Describe("Worker metrics", func() {
	It("counts calls and minted tokens", func() {
		provider := &metricsfakes.Provider{}
		calls := &metricsfakes.Counter{}
		calls.WithReturns(calls)
		minted := &metricsfakes.Counter{}
		duration := &metricsfakes.Histogram{}
		duration.WithReturns(duration)
		accounts := &metricsfakes.Gauge{}
		provider.NewCounterStub = func(o metrics.CounterOpts) metrics.Counter {
			if o.Name == "tokens_minted" {
				return minted
			}
			return calls
		}
		provider.NewHistogramReturns(duration)
		provider.NewGaugeReturns(accounts)

		ctx := context.Background()
		worker, err := sandbox.NewWorker(sandbox.Options{MetricsProvider: provider})
		Expect(err).NotTo(HaveOccurred())
		defer worker.TearDown()

		contract, err := worker.RootAccount().CreateSubAccount(ctx, "test-account", sandbox.SubAccountOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(accounts.AddCallCount()).To(Equal(1))
		Expect(contract.Deploy(ctx, sandbox.DefaultCodeID)).To(Succeed())

		_, err = contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())
		_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit(attachedDeposit))
		Expect(err).NotTo(HaveOccurred())
		_, err = contract.CallRaw(ctx, contract.ID(), "nft_transfer", map[string]string{"receiver_id": "x.near", "token_id": "1"}, sandbox.CallOptions{})
		Expect(err).NotTo(HaveOccurred())

		Expect(calls.WithCallCount()).To(Equal(3))
		Expect(calls.WithArgsForCall(0)).To(Equal([]string{"method", "new", "result", "success"}))
		Expect(calls.WithArgsForCall(1)).To(Equal([]string{"method", "nft_mint", "result", "success"}))
		Expect(calls.WithArgsForCall(2)).To(Equal([]string{"method", "nft_transfer", "result", "failure"}))
		Expect(duration.ObserveCallCount()).To(Equal(3))
		Expect(minted.AddCallCount()).To(Equal(1))
		Expect(minted.AddArgsForCall(0)).To(Equal(float64(1)))
	})
})
