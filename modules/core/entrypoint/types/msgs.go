package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	internalerrors "github.com/proofpay/proofpay-ibc/internal/errors"
)

// ValidateChannelOpenMsg ensures exactly one of open_init and open_try is set.
func ValidateChannelOpenMsg(msg wasmvmtypes.IBCChannelOpenMsg) error {
	if (msg.OpenInit == nil) == (msg.OpenTry == nil) {
		return errorsmod.Wrap(internalerrors.ErrInvalidPayload, "exactly one of open_init and open_try must be set")
	}

	return nil
}

// ValidateChannelConnectMsg ensures exactly one of open_ack and open_confirm is set.
func ValidateChannelConnectMsg(msg wasmvmtypes.IBCChannelConnectMsg) error {
	if (msg.OpenAck == nil) == (msg.OpenConfirm == nil) {
		return errorsmod.Wrap(internalerrors.ErrInvalidPayload, "exactly one of open_ack and open_confirm must be set")
	}

	return nil
}

// ValidateChannelCloseMsg ensures exactly one of close_init and close_confirm is set.
func ValidateChannelCloseMsg(msg wasmvmtypes.IBCChannelCloseMsg) error {
	if (msg.CloseInit == nil) == (msg.CloseConfirm == nil) {
		return errorsmod.Wrap(internalerrors.ErrInvalidPayload, "exactly one of close_init and close_confirm must be set")
	}

	return nil
}

// ChannelOpenParams returns the channel and the counterparty version carried by a validated
// channel open message. The counterparty version is empty for open_init.
func ChannelOpenParams(msg wasmvmtypes.IBCChannelOpenMsg) (wasmvmtypes.IBCChannel, string) {
	if msg.OpenTry != nil {
		return msg.OpenTry.Channel, msg.OpenTry.CounterpartyVersion
	}

	return msg.OpenInit.Channel, ""
}

// ChannelConnectParams returns the channel and the final version carried by a validated
// channel connect message. On open_confirm the final version is the channel version.
func ChannelConnectParams(msg wasmvmtypes.IBCChannelConnectMsg) (wasmvmtypes.IBCChannel, string) {
	if msg.OpenAck != nil {
		return msg.OpenAck.Channel, msg.OpenAck.CounterpartyVersion
	}

	return msg.OpenConfirm.Channel, msg.OpenConfirm.Channel.Version
}

// ChannelCloseParams returns the channel carried by a validated channel close message.
func ChannelCloseParams(msg wasmvmtypes.IBCChannelCloseMsg) wasmvmtypes.IBCChannel {
	if msg.CloseConfirm != nil {
		return msg.CloseConfirm.Channel
	}

	return msg.CloseInit.Channel
}
