/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("sbt.ledger")

// MintPolicy decides who may mint.
type MintPolicy string

const (
	// MintPolicyOwnerOnly restricts minting to the account recorded at initialization.
	MintPolicyOwnerOnly MintPolicy = "owner-only"
	// MintPolicyOpen lets any caller mint.
	MintPolicyOpen MintPolicy = "open"
)

// ParseMintPolicy validates s. The empty string selects MintPolicyOwnerOnly.
func ParseMintPolicy(s string) (MintPolicy, error) {
	switch MintPolicy(s) {
	case "", MintPolicyOwnerOnly:
		return MintPolicyOwnerOnly, nil
	case MintPolicyOpen:
		return MintPolicyOpen, nil
	default:
		return "", errors.Errorf("unknown mint policy '%s'", s)
	}
}

func (p MintPolicy) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

func (p *MintPolicy) UnmarshalText(text []byte) error {
	policy, err := ParseMintPolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// Ledger applies the certificate ledger rules to a State. It holds no state
// of its own and is safe for concurrent use on distinct States.
type Ledger struct {
	Pricing StoragePricing
	Policy  MintPolicy
}

// New returns a Ledger with the default pricing and the owner-only policy.
func New() *Ledger {
	return &Ledger{Pricing: DefaultStoragePricing(), Policy: MintPolicyOwnerOnly}
}

// Initialize records the owner and collection metadata. It succeeds at most
// once per State; any later call fails with KindAlreadyInitialized whatever
// its arguments.
func (l *Ledger) Initialize(st *State, owner AccountID, md CollectionMetadata) error {
	if st.Initialized {
		return Errorf(KindAlreadyInitialized, "contract is already initialized")
	}
	if err := owner.Validate(); err != nil {
		return err
	}
	if err := md.validate(); err != nil {
		return err
	}

	st.Initialized = true
	st.Owner = owner
	st.Collection = &md
	st.Tokens = map[string]*TokenRecord{}
	logger.Debugf("initialized ledger owned by '%s'", owner)
	return nil
}

// Mint issues a new certificate. All checks run before the state is touched,
// so a failed mint leaves st exactly as it was.
func (l *Ledger) Mint(st *State, cc CallContext, req MintRequest) (*MintResult, error) {
	rec, cost, err := l.checkMint(st, cc, req)
	if err != nil {
		logger.Debugf("rejected mint of '%s' by '%s': %s", req.TokenID, cc.Caller, err)
		return nil, err
	}

	refund, err := cc.Deposit.Sub(cost)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to compute refund")
	}

	if st.Tokens == nil {
		st.Tokens = map[string]*TokenRecord{}
	}
	st.Tokens[rec.TokenID] = &rec
	logger.Debugf("minted token '%s' to '%s' with storage cost %s", rec.TokenID, rec.OwnerID, cost)

	return &MintResult{
		Token:       rec,
		StorageCost: cost,
		Refund:      refund,
		Event:       newMintEvent(rec.OwnerID, rec.TokenID),
	}, nil
}

// Authorize runs the checks of Mint that precede argument validation: the
// ledger must be initialized and caller must satisfy the mint policy.
func (l *Ledger) Authorize(st *State, caller AccountID) error {
	if !st.Initialized {
		return Errorf(KindNotInitialized, "contract is not initialized")
	}
	return l.checkMintPolicy(st, caller)
}

func (l *Ledger) checkMint(st *State, cc CallContext, req MintRequest) (TokenRecord, Amount, error) {
	if err := l.Authorize(st, cc.Caller); err != nil {
		return TokenRecord{}, Amount{}, err
	}
	if req.TokenID == "" {
		return TokenRecord{}, Amount{}, Errorf(KindInvalidArgument, "token id is required")
	}
	if err := req.TokenOwnerID.Validate(); err != nil {
		return TokenRecord{}, Amount{}, err
	}
	if _, exists := st.Tokens[req.TokenID]; exists {
		return TokenRecord{}, Amount{}, Errorf(KindDuplicateTokenID, "token '%s' already exists", req.TokenID)
	}

	rec := TokenRecord{
		TokenID:  req.TokenID,
		OwnerID:  req.TokenOwnerID,
		Metadata: req.TokenMetadata,
	}
	cost, err := l.Pricing.Cost(rec)
	if err != nil {
		return TokenRecord{}, Amount{}, err
	}
	if cc.Deposit.Cmp(cost) < 0 {
		return TokenRecord{}, Amount{}, Errorf(KindInsufficientDeposit, "attached deposit %s is below the storage cost %s", cc.Deposit, cost)
	}
	return rec, cost, nil
}

func (l *Ledger) checkMintPolicy(st *State, caller AccountID) error {
	switch l.Policy {
	case MintPolicyOpen:
		return nil
	case "", MintPolicyOwnerOnly:
		if caller != st.Owner {
			return Errorf(KindUnauthorized, "'%s' may not mint, only '%s' can", caller, st.Owner)
		}
		return nil
	default:
		return errors.Errorf("unknown mint policy '%s'", l.Policy)
	}
}

// Transfer always fails. Certificates are bound to the account they were
// issued to.
func (l *Ledger) Transfer(st *State, cc CallContext, receiver AccountID, tokenID string) error {
	return Errorf(KindTransferNotSupported, "token '%s' is bound to its owner", tokenID)
}

// TransferCall always fails, exactly as Transfer.
func (l *Ledger) TransferCall(st *State, cc CallContext, receiver AccountID, tokenID string, msg string) error {
	return l.Transfer(st, cc, receiver, tokenID)
}
