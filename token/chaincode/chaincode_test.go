/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chaincode_test

import (
	"encoding/json"
	"errors"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/hyperledger/fabric-sbt/token/chaincode/mock"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	newArgs  = `{"owner_id":"contract","metadata":{"spec":"nft-1.0.0","name":"test certificate","symbol":"NCD"}}`
	mintArgs = `{"token_id":"1","token_owner_id":"someone.testnet","token_metadata":{"title":"Certificate","description":"Successfully completed the course"}}`
	deposit  = "2490000000000000000000"
)

var _ = Describe("Chaincode", func() {
	var (
		cc       *chaincode.Chaincode
		fakeStub *mock.Stub
		state    worldState
		caller   string
		attached string
	)

	invoke := func(fn string, args ...string) (int32, string, []byte) {
		fakeStub.GetFunctionAndParametersReturns(fn, args)
		resp := cc.Dispatch(fakeStub)
		return resp.Status, resp.Message, resp.Payload
	}

	BeforeEach(func() {
		cc = chaincode.New(ledger.New())
		fakeStub = &mock.Stub{}
		state = worldState{}
		state.wire(fakeStub)
		caller = "contract"
		attached = deposit

		fakeStub.GetTxIDReturns("0123456789abcdef")
		fakeStub.GetCreatorStub = func() ([]byte, error) {
			return serializedIdentity("Org1MSP", []byte(caller)), nil
		}
		fakeStub.GetTransientStub = func() (map[string][]byte, error) {
			return map[string][]byte{chaincode.TransientDepositField: []byte(attached)}, nil
		}
	})

	Describe("new", func() {
		It("initializes the ledger once", func() {
			status, _, _ := invoke("new", newArgs)
			Expect(status).To(Equal(int32(shim.OK)))
			Expect(state).To(HaveKey(ledger.StateKey))

			st, err := ledger.LoadState(state[ledger.StateKey])
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Initialized).To(BeTrue())
			Expect(st.Owner).To(Equal(ledger.AccountID("contract")))

			status, msg, _ := invoke("new", newArgs)
			Expect(status).To(Equal(int32(shim.ERROR)))
			Expect(msg).To(Equal("AlreadyInitialized: contract is already initialized"))
			Expect(fakeStub.PutStateCallCount()).To(Equal(1))
		})

		It("reports AlreadyInitialized even for undecodable arguments", func() {
			invoke("new", newArgs)
			_, msg, _ := invoke("new", "not json")
			Expect(msg).To(HavePrefix("AlreadyInitialized"))
		})

		It("rejects invalid metadata", func() {
			_, msg, _ := invoke("new", `{"owner_id":"contract","metadata":{"spec":"nft-2.0.0","name":"n","symbol":"s"}}`)
			Expect(msg).To(Equal("InvalidArgument: metadata spec must be 'nft-1.0.0', got 'nft-2.0.0'"))
			Expect(state).To(BeEmpty())
		})

		It("rejects more than one argument", func() {
			_, msg, _ := invoke("new", newArgs, newArgs)
			Expect(msg).To(Equal("InvalidArgument: expected one JSON argument, got 2"))
		})
	})

	Describe("nft_mint", func() {
		It("fails before initialization", func() {
			status, msg, _ := invoke("nft_mint", mintArgs)
			Expect(status).To(Equal(int32(shim.ERROR)))
			Expect(msg).To(Equal("NotInitialized: contract is not initialized"))
			Expect(fakeStub.PutStateCallCount()).To(Equal(0))
			Expect(fakeStub.SetEventCallCount()).To(Equal(0))
		})

		Context("when initialized", func() {
			BeforeEach(func() {
				status, _, _ := invoke("new", newArgs)
				Expect(status).To(Equal(int32(shim.OK)))
			})

			It("mints, emits the event and returns the record", func() {
				Expect(string(state[ledger.StateKey])).NotTo(ContainSubstring(`"tokens"`))

				status, msg, payload := invoke("nft_mint", mintArgs)
				Expect(status).To(Equal(int32(shim.OK)), msg)
				Expect(payload).To(MatchJSON(`{"token_id":"1","owner_id":"someone.testnet","metadata":{"title":"Certificate","description":"Successfully completed the course"}}`))

				Expect(fakeStub.SetEventCallCount()).To(Equal(1))
				name, event := fakeStub.SetEventArgsForCall(0)
				Expect(name).To(Equal("nft_mint"))
				Expect(event).To(MatchJSON(`{"standard":"nep171","version":"1.0.0","event":"nft_mint","data":[{"owner_id":"someone.testnet","token_ids":["1"]}]}`))

				_, _, payload = invoke("nft_token", `{"token_id":"1"}`)
				Expect(payload).To(MatchJSON(`{"token_id":"1","owner_id":"someone.testnet","metadata":{"title":"Certificate","description":"Successfully completed the course"}}`))
			})

			It("rejects callers other than the owner", func() {
				caller = "someone.testnet"
				_, msg, _ := invoke("nft_mint", "garbage")
				Expect(msg).To(Equal("Unauthorized: 'someone.testnet' may not mint, only 'contract' can"))
			})

			It("rejects undecodable arguments", func() {
				_, msg, _ := invoke("nft_mint", "garbage")
				Expect(msg).To(HavePrefix("InvalidArgument: failed to decode arguments"))
			})

			It("rejects a malformed deposit", func() {
				attached = "lots"
				_, msg, _ := invoke("nft_mint", mintArgs)
				Expect(msg).To(Equal("InvalidArgument: attached_deposit: invalid amount 'lots'"))
			})

			It("rejects duplicates without touching the stored record", func() {
				invoke("nft_mint", mintArgs)
				before := state[ledger.StateKey]

				_, msg, _ := invoke("nft_mint", `{"token_id":"1","token_owner_id":"other.testnet","token_metadata":{"title":"x","description":"y"}}`)
				Expect(msg).To(Equal("DuplicateTokenId: token '1' already exists"))
				Expect(state[ledger.StateKey]).To(Equal(before))
			})

			It("rejects an insufficient deposit", func() {
				attached = ""
				_, msg, _ := invoke("nft_mint", mintArgs)
				Expect(msg).To(Equal("InsufficientDeposit: attached deposit 0 is below the storage cost 1700000000000000000000"))

				_, _, payload := invoke("nft_token", `{"token_id":"1"}`)
				Expect(string(payload)).To(Equal("null"))
			})

			It("refunds through hosts that support it", func() {
				refunder := &mock.Refunder{}
				stub := refundingStub{Stub: fakeStub, Refunder: refunder}
				fakeStub.GetFunctionAndParametersReturns("nft_mint", []string{mintArgs})

				resp := cc.Dispatch(stub)
				Expect(resp.Status).To(Equal(int32(shim.OK)), resp.Message)
				Expect(refunder.RefundCallCount()).To(Equal(1))
				to, amount := refunder.RefundArgsForCall(0)
				Expect(to).To(Equal(ledger.AccountID("contract")))
				Expect(amount.String()).To(Equal("790000000000000000000"))
			})

			It("fails when the refund fails", func() {
				refunder := &mock.Refunder{}
				refunder.RefundReturns(errors.New("no such account"))
				fakeStub.GetFunctionAndParametersReturns("nft_mint", []string{mintArgs})

				resp := cc.Dispatch(refundingStub{Stub: fakeStub, Refunder: refunder})
				Expect(resp.Status).To(Equal(int32(shim.ERROR)))
				Expect(resp.Message).To(Equal("failed to refund 'contract': no such account"))
			})

			It("surfaces state write failures", func() {
				fakeStub.PutStateStub = nil
				fakeStub.PutStateReturns(errors.New("disk full"))
				_, msg, _ := invoke("nft_mint", mintArgs)
				Expect(msg).To(Equal("failed to write ledger state: disk full"))
				Expect(fakeStub.SetEventCallCount()).To(Equal(0))
			})
		})
	})

	Describe("queries", func() {
		It("returns null and empty results before initialization", func() {
			status, _, payload := invoke("nft_token", `{"token_id":"1"}`)
			Expect(status).To(Equal(int32(shim.OK)))
			Expect(string(payload)).To(Equal("null"))

			_, _, payload = invoke("nft_tokens_for_owner", `{"account_id":"someone.testnet"}`)
			Expect(string(payload)).To(Equal("[]"))

			_, msg, _ := invoke("nft_metadata")
			Expect(msg).To(Equal("NotInitialized: contract is not initialized"))
		})

		It("lists tokens of an owner in token id order", func() {
			invoke("new", newArgs)
			for _, id := range []string{"b", "a", "c"} {
				args, err := json.Marshal(ledger.MintRequest{TokenID: id, TokenOwnerID: "alice.near"})
				Expect(err).NotTo(HaveOccurred())
				status, msg, _ := invoke("nft_mint", string(args))
				Expect(status).To(Equal(int32(shim.OK)), msg)
			}

			_, _, payload := invoke("nft_tokens_for_owner", `{"account_id":"alice.near"}`)
			var records []ledger.TokenRecord
			Expect(json.Unmarshal(payload, &records)).To(Succeed())
			Expect(records).To(HaveLen(3))
			Expect(records[0].TokenID).To(Equal("a"))
			Expect(records[2].TokenID).To(Equal("c"))

			_, _, payload = invoke("nft_metadata")
			Expect(payload).To(MatchJSON(`{"spec":"nft-1.0.0","name":"test certificate","symbol":"NCD"}`))
		})

		It("surfaces state read failures", func() {
			fakeStub.GetStateStub = nil
			fakeStub.GetStateReturns(nil, errors.New("peer unavailable"))
			_, msg, _ := invoke("nft_token", `{"token_id":"1"}`)
			Expect(msg).To(Equal("failed to read ledger state: peer unavailable"))
		})
	})

	DescribeTable("transfers are always rejected",
		func(fn string, args ...string) {
			status, msg, _ := invoke(fn, args...)
			Expect(status).To(Equal(int32(shim.ERROR)))
			Expect(msg).To(HavePrefix("TransferNotSupported"))
			Expect(fakeStub.GetStateCallCount()).To(Equal(0))
			Expect(fakeStub.PutStateCallCount()).To(Equal(0))
		},
		Entry("existing looking token", "nft_transfer", `{"receiver_id":"someone_else.testnet","token_id":"1"}`),
		Entry("unknown token", "nft_transfer", `{"receiver_id":"someone_else.testnet","token_id":"nope"}`),
		Entry("no arguments", "nft_transfer"),
		Entry("garbage arguments", "nft_transfer", "garbage"),
		Entry("transfer call", "nft_transfer_call", `{"receiver_id":"someone_else.testnet","token_id":"1","msg":"hi"}`),
	)

	It("keeps minted tokens with their owner after transfer attempts", func() {
		invoke("new", newArgs)
		invoke("nft_mint", `{"token_id":"1","token_owner_id":"root.near","token_metadata":{"title":"Certificate","description":"done"}}`)

		caller = "root.near"
		_, msg, _ := invoke("nft_transfer", `{"receiver_id":"someone_else.testnet","token_id":"1"}`)
		Expect(msg).To(Equal("TransferNotSupported: token '1' is bound to its owner"))

		_, _, payload := invoke("nft_token", `{"token_id":"1"}`)
		var rec ledger.TokenRecord
		Expect(json.Unmarshal(payload, &rec)).To(Succeed())
		Expect(rec.OwnerID).To(Equal(ledger.AccountID("root.near")))
	})

	It("rejects unknown functions", func() {
		status, msg, _ := invoke("nft_burn", `{}`)
		Expect(status).To(Equal(int32(shim.ERROR)))
		Expect(msg).To(Equal("UnknownMethod: function 'nft_burn' is not supported"))

		kerr, ok := ledger.ParseError(msg)
		Expect(ok).To(BeTrue())
		Expect(kerr.Kind).To(Equal(ledger.KindUnknownMethod))
	})
})
