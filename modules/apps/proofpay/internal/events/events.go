package events

import (
	"encoding/json"
	"strconv"
	"strings"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// EmitRegisterUserEvent emits an event when a wallet registers a username.
func EmitRegisterUserEvent(ctx entrypointtypes.Context, user types.User) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeRegisterUser,
			sdk.NewAttribute(types.AttributeKeyUsername, user.Username),
			sdk.NewAttribute(types.AttributeKeyWallet, user.Wallet),
		),
		moduleEvent(),
	})
}

// EmitBalanceEvent emits a deposit or withdraw event.
func EmitBalanceEvent(ctx entrypointtypes.Context, eventType, address string, coin sdk.Coin) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeySender, address),
			sdk.NewAttribute(types.AttributeKeyDenom, coin.Denom),
			sdk.NewAttribute(types.AttributeKeyAmount, coin.Amount.String()),
		),
		moduleEvent(),
	})
}

// EmitPaymentEvent emits an event describing the current state of a payment.
func EmitPaymentEvent(ctx entrypointtypes.Context, eventType string, payment types.Payment) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyPaymentID, strconv.FormatUint(payment.ID, 10)),
			sdk.NewAttribute(types.AttributeKeySender, payment.Sender),
			sdk.NewAttribute(types.AttributeKeyReceiver, payment.RecipientUsername),
			sdk.NewAttribute(types.AttributeKeyDenom, payment.Amount.Denom),
			sdk.NewAttribute(types.AttributeKeyAmount, payment.Amount.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyProofType, string(payment.ProofType)),
			sdk.NewAttribute(types.AttributeKeyStatus, string(payment.Status)),
		),
		moduleEvent(),
	})
}

// EmitRequestEvent emits an event describing the current state of a payment request.
func EmitRequestEvent(ctx entrypointtypes.Context, eventType string, request types.PaymentRequest) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyRequestID, strconv.FormatUint(request.ID, 10)),
			sdk.NewAttribute(types.AttributeKeyRequestKind, string(request.Kind)),
			sdk.NewAttribute(types.AttributeKeySender, request.RequesterUsername),
			sdk.NewAttribute(types.AttributeKeyReceiver, request.PayerUsername),
			sdk.NewAttribute(types.AttributeKeyDenom, request.Amount.Denom),
			sdk.NewAttribute(types.AttributeKeyAmount, request.Amount.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyProofType, string(request.ProofType)),
			sdk.NewAttribute(types.AttributeKeyStatus, string(request.Status)),
		),
		moduleEvent(),
	})
}

// EmitFriendEvent emits a friend request lifecycle event between two usernames.
func EmitFriendEvent(ctx entrypointtypes.Context, eventType, from, to string) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeySender, from),
			sdk.NewAttribute(types.AttributeKeyReceiver, to),
		),
		moduleEvent(),
	})
}

// EmitConfigUpdatedEvent emits an event when the admin updates the params.
func EmitConfigUpdatedEvent(ctx entrypointtypes.Context, params types.Params) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeConfigUpdated,
			sdk.NewAttribute(types.AttributeKeyAdmin, params.Admin),
			sdk.NewAttribute(types.AttributeKeyPacketTimeout, strconv.FormatUint(params.PacketTimeoutSeconds, 10)),
			sdk.NewAttribute(types.AttributeKeyAllowedOrders, strings.Join(params.AllowedOrders, ",")),
		),
		moduleEvent(),
	})
}

// EmitChannelEvent emits a channel lifecycle event.
func EmitChannelEvent(ctx entrypointtypes.Context, eventType string, channel types.Channel) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyChannelID, channel.ChannelID),
			sdk.NewAttribute(types.AttributeKeyCounterpartyPortID, channel.CounterpartyPortID),
			sdk.NewAttribute(types.AttributeKeyCounterpartyChannelID, channel.CounterpartyChannelID),
			sdk.NewAttribute(types.AttributeKeyVersion, channel.Version),
			sdk.NewAttribute(types.AttributeKeyOrder, channel.Ordering.String()),
		),
		moduleEvent(),
	})
}

// EmitSendPacketEvent emits an event when a payment packet is handed to the host.
func EmitSendPacketEvent(ctx entrypointtypes.Context, record types.PacketRecord) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeSendPacket,
			sdk.NewAttribute(types.AttributeKeyPacketSequence, strconv.FormatUint(record.Sequence, 10)),
			sdk.NewAttribute(types.AttributeKeyPacketSrcChannel, record.ChannelID),
			sdk.NewAttribute(types.AttributeKeyPaymentID, strconv.FormatUint(record.PaymentID, 10)),
			sdk.NewAttribute(types.AttributeKeySender, record.Data.Sender),
			sdk.NewAttribute(types.AttributeKeyReceiver, record.Data.RecipientUsername),
			sdk.NewAttribute(types.AttributeKeyDenom, record.Data.Denom),
			sdk.NewAttribute(types.AttributeKeyAmount, record.Data.Amount),
			sdk.NewAttribute(types.AttributeKeyTimeoutTimestamp, strconv.FormatUint(record.TimeoutTimestamp, 10)),
		),
		moduleEvent(),
	})
}

// EmitOnRecvPacketEvent emits a payment packet event in the packet receive callback
func EmitOnRecvPacketEvent(ctx entrypointtypes.Context, packet wasmvmtypes.IBCPacket, data types.PaymentPacketData, success bool, ackErr error) {
	eventAttributes := []sdk.Attribute{
		sdk.NewAttribute(types.AttributeKeyPacketSequence, strconv.FormatUint(packet.Sequence, 10)),
		sdk.NewAttribute(types.AttributeKeyPacketSrcChannel, packet.Src.ChannelID),
		sdk.NewAttribute(types.AttributeKeyPacketDstChannel, packet.Dest.ChannelID),
		sdk.NewAttribute(types.AttributeKeySender, data.Sender),
		sdk.NewAttribute(types.AttributeKeyReceiver, data.RecipientUsername),
		sdk.NewAttribute(types.AttributeKeyDenom, data.Denom),
		sdk.NewAttribute(types.AttributeKeyAmount, data.Amount),
		sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(success)),
	}

	if ackErr != nil {
		eventAttributes = append(eventAttributes, sdk.NewAttribute(types.AttributeKeyAckError, ackErr.Error()))
	}

	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypePacket,
			eventAttributes...,
		),
		moduleEvent(),
	})
}

// EmitPacketRedeliveredEvent emits an event when an already received packet is delivered again.
func EmitPacketRedeliveredEvent(ctx entrypointtypes.Context, packet wasmvmtypes.IBCPacket, success bool) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePacketRedelivered,
			sdk.NewAttribute(types.AttributeKeyPacketSequence, strconv.FormatUint(packet.Sequence, 10)),
			sdk.NewAttribute(types.AttributeKeyPacketDstChannel, packet.Dest.ChannelID),
			sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(success)),
		),
	)
}

// EmitOnAcknowledgementPacketEvent emits a payment packet event in the packet ack callback
func EmitOnAcknowledgementPacketEvent(ctx entrypointtypes.Context, record types.PacketRecord, ack channeltypes.Acknowledgement) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypePacket,
			sdk.NewAttribute(types.AttributeKeyPacketSequence, strconv.FormatUint(record.Sequence, 10)),
			sdk.NewAttribute(types.AttributeKeyPacketSrcChannel, record.ChannelID),
			sdk.NewAttribute(types.AttributeKeyPaymentID, strconv.FormatUint(record.PaymentID, 10)),
			sdk.NewAttribute(types.AttributeKeySender, record.Data.Sender),
			sdk.NewAttribute(types.AttributeKeyReceiver, record.Data.RecipientUsername),
			sdk.NewAttribute(types.AttributeKeyDenom, record.Data.Denom),
			sdk.NewAttribute(types.AttributeKeyAmount, record.Data.Amount),
			sdk.NewAttribute(types.AttributeKeyAck, ack.String()),
		),
		moduleEvent(),
	})

	switch resp := ack.Response.(type) {
	case *channeltypes.Acknowledgement_Result:
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePacket,
				sdk.NewAttribute(types.AttributeKeyAckSuccess, string(resp.Result)),
			),
		)
	case *channeltypes.Acknowledgement_Error:
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePacket,
				sdk.NewAttribute(types.AttributeKeyAckError, resp.Error),
			),
		)
	}
}

// EmitOnTimeoutEvent emits a timeout event in the packet timeout callback
func EmitOnTimeoutEvent(ctx entrypointtypes.Context, record types.PacketRecord) {
	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeTimeout,
			sdk.NewAttribute(types.AttributeKeyPacketSequence, strconv.FormatUint(record.Sequence, 10)),
			sdk.NewAttribute(types.AttributeKeyPacketSrcChannel, record.ChannelID),
			sdk.NewAttribute(types.AttributeKeyPaymentID, strconv.FormatUint(record.PaymentID, 10)),
			sdk.NewAttribute(types.AttributeKeyRefundReceiver, record.Data.Sender),
			sdk.NewAttribute(types.AttributeKeyRefundAmount, record.Data.Amount),
			sdk.NewAttribute(types.AttributeKeyDenom, record.Data.Denom),
		),
		moduleEvent(),
	})
}

// EmitDenomEvent emits a denomination event when a voucher denomination is first minted.
func EmitDenomEvent(ctx entrypointtypes.Context, denom transfertypes.Denom) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDenom,
			sdk.NewAttribute(types.AttributeKeyDenomHash, denom.Hash().String()),
			sdk.NewAttribute(types.AttributeKeyDenom, mustMarshalJSON(denom)),
		),
	)
}

func moduleEvent() sdk.Event {
	return sdk.NewEvent(
		sdk.EventTypeMessage,
		sdk.NewAttribute(sdk.AttributeKeyModule, types.ModuleName),
	)
}

// mustMarshalJSON json marshals the given type and panics on failure.
func mustMarshalJSON(v any) string {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return string(bz)
}
