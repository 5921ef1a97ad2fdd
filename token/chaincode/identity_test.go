/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chaincode_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"time"

	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/hyperledger/fabric-sbt/token/chaincode/mock"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func selfSignedPEM(cn string) []byte {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn, Organization: []string{"Org1"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

var _ = Describe("Identity", func() {
	Describe("CallerFromCreator", func() {
		It("uses the certificate common name", func() {
			caller, err := chaincode.CallerFromCreator(serializedIdentity("Org1MSP", selfSignedPEM("alice.near")))
			Expect(err).NotTo(HaveOccurred())
			Expect(caller).To(Equal(ledger.AccountID("alice.near")))
		})

		It("uses non certificate identities verbatim", func() {
			caller, err := chaincode.CallerFromCreator(serializedIdentity("SandboxMSP", []byte("test-account.test.near")))
			Expect(err).NotTo(HaveOccurred())
			Expect(caller).To(Equal(ledger.AccountID("test-account.test.near")))
		})

		It("rejects certificates without a common name", func() {
			_, err := chaincode.CallerFromCreator(serializedIdentity("Org1MSP", selfSignedPEM("")))
			Expect(err).To(MatchError("creator certificate of msp 'Org1MSP' has no common name"))
		})

		It("rejects broken certificates", func() {
			broken := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")})
			_, err := chaincode.CallerFromCreator(serializedIdentity("Org1MSP", broken))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(HavePrefix("failed to parse creator certificate"))
		})

		It("rejects empty identities", func() {
			_, err := chaincode.CallerFromCreator(serializedIdentity("Org1MSP", nil))
			Expect(err).To(MatchError("creator identity of msp 'Org1MSP' is empty"))
		})

		It("rejects bytes that are not a serialized identity", func() {
			_, err := chaincode.CallerFromCreator([]byte{0xff, 0xff})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(HavePrefix("failed to unmarshal creator identity"))
		})
	})

	Describe("Caller", func() {
		It("wraps creator lookup failures", func() {
			stub := &mock.Stub{}
			stub.GetCreatorReturns(nil, errors.New("no creator"))
			_, err := chaincode.Caller(stub)
			Expect(err).To(MatchError("failed to get creator: no creator"))
		})
	})

	Describe("Deposit", func() {
		It("defaults to zero", func() {
			stub := &mock.Stub{}
			amount, err := chaincode.Deposit(stub)
			Expect(err).NotTo(HaveOccurred())
			Expect(amount.IsZero()).To(BeTrue())
		})

		It("parses the transient field", func() {
			stub := &mock.Stub{}
			stub.GetTransientReturns(map[string][]byte{"attached_deposit": []byte("42")}, nil)
			amount, err := chaincode.Deposit(stub)
			Expect(err).NotTo(HaveOccurred())
			Expect(amount.String()).To(Equal("42"))
		})

		It("wraps transient lookup failures", func() {
			stub := &mock.Stub{}
			stub.GetTransientReturns(nil, errors.New("no transient"))
			_, err := chaincode.Deposit(stub)
			Expect(err).To(MatchError("failed to get transient map: no transient"))
		})
	})
})
