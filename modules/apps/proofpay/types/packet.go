package types

import (
	"bytes"
	"encoding/json"
	"strings"

	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"
)

// PaymentPacketData is the payload of a cross-chain payment packet. The denom carries the full
// ICS-20 style trace path of the token as seen by the sending chain.
type PaymentPacketData struct {
	PaymentID         uint64 `json:"payment_id"`
	Denom             string `json:"denom"`
	Amount            string `json:"amount"`
	Sender            string `json:"sender"`
	SenderUsername    string `json:"sender_username,omitempty"`
	RecipientUsername string `json:"recipient_username"`
	Description       string `json:"description,omitempty"`
}

// NewPaymentPacketData constructs a new PaymentPacketData instance.
func NewPaymentPacketData(
	paymentID uint64, denom, amount, sender, senderUsername, recipientUsername, description string,
) PaymentPacketData {
	return PaymentPacketData{
		PaymentID:         paymentID,
		Denom:             denom,
		Amount:            amount,
		Sender:            sender,
		SenderUsername:    senderUsername,
		RecipientUsername: recipientUsername,
		Description:       description,
	}
}

// ValidateBasic is used for validating the payment packet data.
// NOTE: The addresses formats are not validated as the sender and recipient can have different
// formats defined by their corresponding chains that are not known to the contract.
func (d PaymentPacketData) ValidateBasic() error {
	if d.PaymentID == 0 {
		return errorsmod.Wrap(ErrInvalidPacketData, "payment id cannot be zero")
	}

	if _, err := ParseAmount(d.Amount); err != nil {
		return err
	}

	if strings.TrimSpace(d.Sender) == "" {
		return errorsmod.Wrap(ibcerrors.ErrInvalidAddress, "sender address cannot be blank")
	}

	if d.RecipientUsername != NormalizeUsername(d.RecipientUsername) {
		return errorsmod.Wrapf(ErrInvalidUsername, "recipient username %q is not normalized", d.RecipientUsername)
	}

	if err := ValidateUsername(d.RecipientUsername); err != nil {
		return err
	}

	return d.Token().Validate()
}

// Token returns the denomination trace of the transferred token.
func (d PaymentPacketData) Token() transfertypes.Denom {
	return transfertypes.ExtractDenomFromPath(d.Denom)
}

// GetBytes is a helper for serialising the packet data.
func (d PaymentPacketData) GetBytes() []byte {
	bz, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}

	return sdk.MustSortJSON(bz)
}

// UnmarshalPacketData decodes packet bytes into PaymentPacketData. Unknown fields are rejected.
func UnmarshalPacketData(bz []byte) (PaymentPacketData, error) {
	var data PaymentPacketData

	decoder := json.NewDecoder(bytes.NewReader(bz))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&data); err != nil {
		return PaymentPacketData{}, errorsmod.Wrapf(ibcerrors.ErrInvalidType, "cannot unmarshal ProofPay packet data: %s", err)
	}

	return data, nil
}
