/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sandbox_test

import (
	"context"
	"path/filepath"

	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateDB", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	DescribeTable("commits batches atomically",
		func(backend string) {
			db, err := sandbox.OpenStateDB(sandbox.StateDBConfig{Backend: backend, Path: filepath.Join(dir, backend)})
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()
			Expect(db.HealthCheck(context.Background())).To(Succeed())

			batch := &sandbox.Batch{}
			batch.Put([]byte("a"), []byte("1"))
			batch.Put([]byte("b"), []byte("2"))
			batch.Put([]byte("a"), []byte("3"))
			Expect(db.Commit(context.Background(), batch)).To(Succeed())

			v, err := db.Get([]byte("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(v)).To(Equal("3"))

			batch = &sandbox.Batch{}
			batch.Delete([]byte("b"))
			Expect(batch.Len()).To(Equal(1))
			Expect(db.Commit(context.Background(), batch)).To(Succeed())
			v, err = db.Get([]byte("b"))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNil())

			cancelled, cancel := context.WithCancel(context.Background())
			cancel()
			batch = &sandbox.Batch{}
			batch.Put([]byte("c"), []byte("4"))
			Expect(db.Commit(cancelled, batch)).NotTo(Succeed())
			v, err = db.Get([]byte("c"))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNil())
		},
		Entry("memory", sandbox.BackendMemory),
		Entry("leveldb", sandbox.BackendLevelDB),
		Entry("sqlite", sandbox.BackendSQLite),
	)

	DescribeTable("keeps certificates across workers",
		func(backend string) {
			ctx := context.Background()
			conf := sandbox.Options{StateDB: sandbox.StateDBConfig{Backend: backend, Path: filepath.Join(dir, backend)}}

			worker, err := sandbox.NewWorker(conf)
			Expect(err).NotTo(HaveOccurred())
			contract, err := worker.RootAccount().CreateSubAccount(ctx, "test-account", sandbox.SubAccountOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(contract.Deploy(ctx, sandbox.DefaultCodeID)).To(Succeed())
			_, err = contract.Call(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
			Expect(err).NotTo(HaveOccurred())
			_, err = contract.Call(ctx, contract.ID(), "nft_mint", mintArgs("1", "someone.testnet"), withDeposit(attachedDeposit))
			Expect(err).NotTo(HaveOccurred())
			rootBalance, err := worker.Balance(worker.RootAccount().ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(worker.TearDown()).To(Succeed())

			worker, err = sandbox.NewWorker(conf)
			Expect(err).NotTo(HaveOccurred())
			defer worker.TearDown()

			again, err := worker.Balance(worker.RootAccount().ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(again.String()).To(Equal(rootBalance.String()), "the root account is not recreated")

			contract, err = worker.Account("test-account.test.near")
			Expect(err).NotTo(HaveOccurred())
			result, err := contract.CallRaw(ctx, contract.ID(), "new", newArgs(contract.ID()), sandbox.CallOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Failed).To(BeTrue())

			value, err := worker.View(ctx, contract.ID(), "nft_token", map[string]string{"token_id": "1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(MatchJSON(`{"token_id":"1","owner_id":"someone.testnet","metadata":{"title":"Certificate","description":"Successfully completed the course"}}`))
		},
		Entry("leveldb", sandbox.BackendLevelDB),
		Entry("sqlite", sandbox.BackendSQLite),
	)

	It("locks sqlite databases against a second worker", func() {
		conf := sandbox.StateDBConfig{Backend: sandbox.BackendSQLite, Path: filepath.Join(dir, "locked")}
		db, err := sandbox.OpenStateDB(conf)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		_, err = sandbox.OpenStateDB(conf)
		Expect(err).To(MatchError(ContainSubstring("lock is already acquired")))
	})

	It("rejects unknown backends", func() {
		_, err := sandbox.OpenStateDB(sandbox.StateDBConfig{Backend: "couchdb"})
		Expect(err).To(MatchError("unknown state database backend 'couchdb'"))

		_, err = sandbox.NewWorker(sandbox.Options{StateDB: sandbox.StateDBConfig{Backend: "couchdb"}})
		Expect(err).To(MatchError("failed to open state database: unknown state database backend 'couchdb'"))
	})

	It("validates the root account", func() {
		_, err := sandbox.NewWorker(sandbox.Options{RootAccount: ledger.AccountID("ROOT")})
		Expect(err).To(MatchError("invalid root account: InvalidArgument: account id 'ROOT' is malformed"))
	})
})
