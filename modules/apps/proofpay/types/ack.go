package types

import (
	"bytes"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"
)

// PaymentResult is the result carried by a success acknowledgement. It identifies the payment
// recorded by the receiving contract.
type PaymentResult struct {
	PaymentID uint64 `json:"payment_id"`
}

// NewSuccessAcknowledgement returns a result acknowledgement for the receiving side payment.
func NewSuccessAcknowledgement(paymentID uint64) channeltypes.Acknowledgement {
	bz, err := json.Marshal(PaymentResult{PaymentID: paymentID})
	if err != nil {
		panic(err)
	}

	return channeltypes.NewResultAcknowledgement(bz)
}

// NewErrorAcknowledgement returns an error acknowledgement for a rejected packet. Only the
// codespace and code of the error are included so the bytes are deterministic.
func NewErrorAcknowledgement(err error) channeltypes.Acknowledgement {
	return channeltypes.NewErrorAcknowledgementWithCodespace(err)
}

// UnmarshalAcknowledgement decodes acknowledgement bytes and requires them to be in the
// canonical ICS-04 JSON encoding.
func UnmarshalAcknowledgement(bz []byte) (channeltypes.Acknowledgement, error) {
	var ack channeltypes.Acknowledgement
	if err := ModuleCdc.UnmarshalJSON(bz, &ack); err != nil {
		return channeltypes.Acknowledgement{}, errorsmod.Wrapf(ibcerrors.ErrUnknownRequest, "cannot unmarshal ProofPay packet acknowledgement: %v", err)
	}

	if !bytes.Equal(ModuleCdc.MustMarshalJSON(&ack), bz) {
		return channeltypes.Acknowledgement{}, errorsmod.Wrapf(channeltypes.ErrInvalidAcknowledgement, "acknowledgement did not marshal to expected bytes: %X ≠ %X", ModuleCdc.MustMarshalJSON(&ack), bz)
	}

	if err := ack.ValidateBasic(); err != nil {
		return channeltypes.Acknowledgement{}, err
	}

	return ack, nil
}

// UnmarshalPaymentResult decodes the result of a success acknowledgement. Counterparties
// returning an opaque result are tolerated and yield an empty PaymentResult.
func UnmarshalPaymentResult(ack channeltypes.Acknowledgement) PaymentResult {
	var result PaymentResult
	if err := json.Unmarshal(ack.GetResult(), &result); err != nil {
		return PaymentResult{}
	}

	return result
}
