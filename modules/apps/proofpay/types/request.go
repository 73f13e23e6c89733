package types

import (
	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RequestKind distinguishes a plain request for money from a request for help, which is only
// paid out once the requester proves the help was delivered.
type RequestKind string

const (
	RequestKindPayment RequestKind = "REQUEST_KIND_PAYMENT"
	RequestKindHelp    RequestKind = "REQUEST_KIND_HELP"
)

// RequestStatus is the state of a payment request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "REQUEST_STATUS_PENDING"
	RequestStatusPaid      RequestStatus = "REQUEST_STATUS_PAID"
	RequestStatusCancelled RequestStatus = "REQUEST_STATUS_CANCELLED"
)

const (
	// DefaultHistoryLimit is the page size of the payment history query when none is given
	DefaultHistoryLimit = 30

	// MaxHistoryLimit bounds the page size of the payment history query
	MaxHistoryLimit = 100

	// MaxSearchResults bounds the number of users returned by a search
	MaxSearchResults = 20
)

// PaymentRequest asks a registered user to pay the requester. The payer settles it with a
// send_payment carrying the request id, which creates a regular payment.
type PaymentRequest struct {
	ID                uint64        `json:"id"`
	Kind              RequestKind   `json:"kind"`
	Requester         string        `json:"requester"`
	RequesterUsername string        `json:"requester_username"`
	PayerUsername     string        `json:"payer_username"`
	Amount            sdk.Coin      `json:"amount"`
	Description       string        `json:"description,omitempty"`
	ProofType         ProofType     `json:"proof_type"`
	Status            RequestStatus `json:"status"`
	PaymentID         uint64        `json:"payment_id,omitempty"`
	CreatedAt         uint64        `json:"created_at"`
	UpdatedAt         uint64        `json:"updated_at"`
}

// IsPending returns true if the request can still be paid or cancelled.
func (r PaymentRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// RequestProofType returns the proof type a request of the given kind settles with. Help
// requests always require proof and default to text.
func RequestProofType(kind RequestKind, proofType ProofType) (ProofType, error) {
	if err := proofType.Validate(); err != nil {
		return "", err
	}

	switch kind {
	case RequestKindPayment:
		if proofType == "" {
			return ProofTypeNone, nil
		}
		return proofType, nil
	case RequestKindHelp:
		switch proofType {
		case "":
			return ProofTypeText, nil
		case ProofTypeNone:
			return "", errorsmod.Wrap(ErrInvalidProof, "help requests require proof")
		default:
			return proofType, nil
		}
	default:
		return "", errorsmod.Wrapf(ErrInvalidMsg, "unknown request kind %q", string(kind))
	}
}
