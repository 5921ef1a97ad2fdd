/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chaincode

import (
	"crypto/x509"
	"encoding/pem"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
)

// Caller returns the account of the transaction creator. For X.509
// identities the account is the certificate's subject common name, for any
// other identity it is the raw identity bytes.
func Caller(stub Stub) (ledger.AccountID, error) {
	creator, err := stub.GetCreator()
	if err != nil {
		return "", errors.WithMessage(err, "failed to get creator")
	}
	return CallerFromCreator(creator)
}

// CallerFromCreator decodes a serialized msp identity into an account id.
func CallerFromCreator(creator []byte) (ledger.AccountID, error) {
	sid := &msp.SerializedIdentity{}
	if err := proto.Unmarshal(creator, sid); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal creator identity")
	}
	if len(sid.IdBytes) == 0 {
		return "", errors.Errorf("creator identity of msp '%s' is empty", sid.Mspid)
	}

	block, _ := pem.Decode(sid.IdBytes)
	if block == nil || block.Type != "CERTIFICATE" {
		return ledger.AccountID(sid.IdBytes), nil
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse creator certificate")
	}
	if cert.Subject.CommonName == "" {
		return "", errors.Errorf("creator certificate of msp '%s' has no common name", sid.Mspid)
	}
	return ledger.AccountID(cert.Subject.CommonName), nil
}

// Deposit returns the payment attached to the transaction through the
// transient map. A missing field is a zero deposit.
func Deposit(stub Stub) (ledger.Amount, error) {
	transient, err := stub.GetTransient()
	if err != nil {
		return ledger.Amount{}, errors.WithMessage(err, "failed to get transient map")
	}
	raw, ok := transient[TransientDepositField]
	if !ok || len(raw) == 0 {
		return ledger.Amount{}, nil
	}
	amount, err := ledger.ParseAmount(string(raw))
	if err != nil {
		return ledger.Amount{}, ledger.Errorf(ledger.KindInvalidArgument, "%s: %s", TransientDepositField, err)
	}
	return amount, nil
}
