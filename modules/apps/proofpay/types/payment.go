package types

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"
)

// PaymentStatus is the state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PAYMENT_STATUS_PENDING"
	PaymentStatusCompleted PaymentStatus = "PAYMENT_STATUS_COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "PAYMENT_STATUS_REFUNDED"
	PaymentStatusCancelled PaymentStatus = "PAYMENT_STATUS_CANCELLED"
)

// PaymentKind distinguishes local payments from the two sides of a cross-chain payment.
type PaymentKind string

const (
	PaymentKindLocal    PaymentKind = "PAYMENT_KIND_LOCAL"
	PaymentKindOutgoing PaymentKind = "PAYMENT_KIND_OUTGOING"
	PaymentKindIncoming PaymentKind = "PAYMENT_KIND_INCOMING"
)

// ProofType is the kind of proof a recipient must submit to release a payment.
type ProofType string

const (
	ProofTypeNone   ProofType = "none"
	ProofTypeText   ProofType = "text"
	ProofTypePhoto  ProofType = "photo"
	ProofTypeZKTLS  ProofType = "zktls"
	ProofTypeHybrid ProofType = "hybrid"
)

// Validate returns an error if the proof type is unknown. An empty proof type is treated as none.
func (p ProofType) Validate() error {
	switch p {
	case "", ProofTypeNone, ProofTypeText, ProofTypePhoto, ProofTypeZKTLS, ProofTypeHybrid:
		return nil
	default:
		return errorsmod.Wrapf(ErrInvalidProof, "unknown proof type %q", string(p))
	}
}

// RequiresProof returns true if the payment is held until proof is submitted.
func (p ProofType) RequiresProof() bool {
	return p != "" && p != ProofTypeNone
}

// User is a registered ProofPay account.
type User struct {
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Wallet         string `json:"wallet"`
	RegisteredAt   uint64 `json:"registered_at"`
}

// Payment is a transfer between two users, local or cross-chain.
type Payment struct {
	ID                uint64        `json:"id"`
	Kind              PaymentKind   `json:"kind"`
	Sender            string        `json:"sender"`
	SenderUsername    string        `json:"sender_username,omitempty"`
	Recipient         string        `json:"recipient,omitempty"`
	RecipientUsername string        `json:"recipient_username"`
	Amount            sdk.Coin      `json:"amount"`
	Description       string        `json:"description,omitempty"`
	ProofType         ProofType     `json:"proof_type,omitempty"`
	ProofData         string        `json:"proof_data,omitempty"`
	Status            PaymentStatus `json:"status"`
	ChannelID         string        `json:"channel_id,omitempty"`
	Sequence          uint64        `json:"sequence,omitempty"`
	RemotePaymentID   uint64        `json:"remote_payment_id,omitempty"`
	RequestID         uint64        `json:"request_id,omitempty"`
	CreatedAt         uint64        `json:"created_at"`
	UpdatedAt         uint64        `json:"updated_at"`
}

// NormalizeUsername lowercases and trims a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks that a normalized username is 3-32 characters of [a-z0-9_].
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return errorsmod.Wrapf(ErrInvalidUsername, "username must be %d-%d characters, got %d", MinUsernameLength, MaxUsernameLength, len(username))
	}

	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return errorsmod.Wrapf(ErrInvalidUsername, "invalid character %q in %s", r, username)
		}
	}

	return nil
}

// ParseAmount parses a decimal amount string and requires it to be positive.
func ParseAmount(amount string) (sdkmath.Int, error) {
	amt, ok := sdkmath.NewIntFromString(amount)
	if !ok {
		return sdkmath.Int{}, errorsmod.Wrapf(ErrInvalidAmount, "unable to parse amount (%s) into math.Int", amount)
	}

	if !amt.IsPositive() {
		return sdkmath.Int{}, errorsmod.Wrapf(ErrInvalidAmount, "amount must be positive: %s", amount)
	}

	return amt, nil
}

// ParseCoin builds a coin from a denom and a decimal amount string and requires it to be positive.
func ParseCoin(denom, amount string) (sdk.Coin, error) {
	amt, err := ParseAmount(amount)
	if err != nil {
		return sdk.Coin{}, err
	}

	coin := sdk.Coin{Denom: denom, Amount: amt}
	if err := coin.Validate(); err != nil {
		return sdk.Coin{}, errorsmod.Wrap(ibcerrors.ErrInvalidCoins, err.Error())
	}

	return coin, nil
}
