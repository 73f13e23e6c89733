package keeper

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/internal/events"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/internal/telemetry"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

const attributeKeyAction = "action"

// Instantiate stores the instance params. Unset fields default to the sender and the build
// config. A contract is instantiated once.
func (k Keeper) Instantiate(ctx entrypointtypes.Context, msg types.InstantiateMsg) (*wasmvmtypes.Response, error) {
	has, err := k.Params.Has(ctx)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, types.ErrAlreadyInstantiated
	}

	params := types.DefaultParams(k.config, ctx.Sender())
	if msg.Admin != "" {
		params.Admin = msg.Admin
	}
	if msg.Denom != "" {
		params.Denom = msg.Denom
	}
	if msg.PacketTimeoutSeconds != 0 {
		params.PacketTimeoutSeconds = msg.PacketTimeoutSeconds
	}

	if err := k.SetParams(ctx, params); err != nil {
		return nil, err
	}

	events.EmitConfigUpdatedEvent(ctx, params)
	k.Logger(ctx).Info("contract instantiated", "admin", params.Admin, "denom", params.Denom)

	return newResponse("instantiate"), nil
}

// Execute dispatches an execute message to the business logic.
func (k Keeper) Execute(ctx entrypointtypes.Context, msg types.ExecuteMsg) (*wasmvmtypes.Response, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case msg.Deposit != nil:
		return k.deposit(ctx)
	case msg.SendPayment != nil:
		if err := k.depositAttached(ctx); err != nil {
			return nil, err
		}
		return k.sendPayment(ctx, *msg.SendPayment)
	case msg.SendCrossChainPayment != nil:
		if err := k.depositAttached(ctx); err != nil {
			return nil, err
		}
		return k.sendCrossChainPayment(ctx, *msg.SendCrossChainPayment)
	}

	if len(ctx.Funds()) != 0 {
		return nil, errorsmod.Wrap(ibcerrors.ErrInvalidCoins, "message does not accept funds")
	}

	switch {
	case msg.RegisterUser != nil:
		return k.registerUser(ctx, *msg.RegisterUser)
	case msg.Withdraw != nil:
		return k.withdraw(ctx, *msg.Withdraw)
	case msg.SubmitProof != nil:
		return k.submitProof(ctx, *msg.SubmitProof)
	case msg.CancelPayment != nil:
		return k.cancelPayment(ctx, *msg.CancelPayment)
	case msg.CreatePaymentRequest != nil:
		return k.createRequest(ctx, types.RequestKindPayment, *msg.CreatePaymentRequest)
	case msg.CreateHelpRequest != nil:
		return k.createRequest(ctx, types.RequestKindHelp, *msg.CreateHelpRequest)
	case msg.CancelRequest != nil:
		return k.cancelRequest(ctx, *msg.CancelRequest)
	case msg.SendFriendRequest != nil:
		return k.sendFriendRequest(ctx, *msg.SendFriendRequest)
	case msg.AcceptFriendRequest != nil:
		return k.acceptFriendRequest(ctx, *msg.AcceptFriendRequest)
	case msg.DeclineFriendRequest != nil:
		return k.declineFriendRequest(ctx, *msg.DeclineFriendRequest)
	case msg.CloseChannel != nil:
		return k.closeChannel(ctx, params, *msg.CloseChannel)
	case msg.UpdateConfig != nil:
		return k.updateConfig(ctx, params, *msg.UpdateConfig)
	default:
		return nil, errorsmod.Wrap(types.ErrInvalidMsg, "unknown execute variant")
	}
}

func (k Keeper) registerUser(ctx entrypointtypes.Context, msg types.RegisterUserMsg) (*wasmvmtypes.Response, error) {
	user, err := k.RegisterUser(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitRegisterUserEvent(ctx, user)

	return newResponse("register_user"), nil
}

func (k Keeper) deposit(ctx entrypointtypes.Context) (*wasmvmtypes.Response, error) {
	coins, err := k.Deposit(ctx, ctx.Sender(), ctx.Funds())
	if err != nil {
		return nil, err
	}

	for _, coin := range coins {
		events.EmitBalanceEvent(ctx, types.EventTypeDeposit, ctx.Sender(), coin)
	}

	return newResponse("deposit"), nil
}

// depositAttached credits funds attached to a payment so it can be paid in a single call.
func (k Keeper) depositAttached(ctx entrypointtypes.Context) error {
	if len(ctx.Funds()) == 0 {
		return nil
	}

	_, err := k.deposit(ctx)
	return err
}

func (k Keeper) withdraw(ctx entrypointtypes.Context, msg types.WithdrawMsg) (*wasmvmtypes.Response, error) {
	coin, bankMsg, err := k.Withdraw(ctx, ctx.Sender(), msg.Amount)
	if err != nil {
		return nil, err
	}

	events.EmitBalanceEvent(ctx, types.EventTypeWithdraw, ctx.Sender(), coin)

	return newResponse("withdraw", bankMsg), nil
}

func (k Keeper) sendPayment(ctx entrypointtypes.Context, msg types.SendPaymentMsg) (*wasmvmtypes.Response, error) {
	payment, err := k.SendPayment(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitPaymentEvent(ctx, types.EventTypePayment, payment)

	if payment.RequestID != 0 {
		request, err := k.GetRequest(ctx, payment.RequestID)
		if err != nil {
			return nil, err
		}

		events.EmitRequestEvent(ctx, types.EventTypeRequestPaid, request)
	}

	return newResponse("send_payment"), nil
}

func (k Keeper) submitProof(ctx entrypointtypes.Context, msg types.SubmitProofMsg) (*wasmvmtypes.Response, error) {
	payment, err := k.SubmitProof(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitPaymentEvent(ctx, types.EventTypeProofSubmitted, payment)

	return newResponse("submit_proof"), nil
}

func (k Keeper) cancelPayment(ctx entrypointtypes.Context, msg types.CancelPaymentMsg) (*wasmvmtypes.Response, error) {
	payment, err := k.CancelPayment(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitPaymentEvent(ctx, types.EventTypePaymentCancelled, payment)

	return newResponse("cancel_payment"), nil
}

func (k Keeper) createRequest(ctx entrypointtypes.Context, kind types.RequestKind, msg types.CreateRequestMsg) (*wasmvmtypes.Response, error) {
	request, err := k.CreateRequest(ctx, ctx.Sender(), kind, msg)
	if err != nil {
		return nil, err
	}

	events.EmitRequestEvent(ctx, types.EventTypePaymentRequest, request)

	if kind == types.RequestKindHelp {
		return newResponse("create_help_request"), nil
	}

	return newResponse("create_payment_request"), nil
}

func (k Keeper) cancelRequest(ctx entrypointtypes.Context, msg types.CancelRequestMsg) (*wasmvmtypes.Response, error) {
	request, err := k.CancelRequest(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitRequestEvent(ctx, types.EventTypeRequestCancelled, request)

	return newResponse("cancel_request"), nil
}

func (k Keeper) sendFriendRequest(ctx entrypointtypes.Context, msg types.SendFriendRequestMsg) (*wasmvmtypes.Response, error) {
	from, to, accepted, err := k.SendFriendRequest(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	if accepted {
		// the recipient had already asked the sender
		events.EmitFriendEvent(ctx, types.EventTypeFriendAccepted, to.Username, from.Username)
	} else {
		events.EmitFriendEvent(ctx, types.EventTypeFriendRequest, from.Username, to.Username)
	}

	return newResponse("send_friend_request"), nil
}

func (k Keeper) acceptFriendRequest(ctx entrypointtypes.Context, msg types.FriendRequestReplyMsg) (*wasmvmtypes.Response, error) {
	user, requester, err := k.AcceptFriendRequest(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitFriendEvent(ctx, types.EventTypeFriendAccepted, requester, user.Username)

	return newResponse("accept_friend_request"), nil
}

func (k Keeper) declineFriendRequest(ctx entrypointtypes.Context, msg types.FriendRequestReplyMsg) (*wasmvmtypes.Response, error) {
	user, requester, err := k.DeclineFriendRequest(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	events.EmitFriendEvent(ctx, types.EventTypeFriendDeclined, requester, user.Username)

	return newResponse("decline_friend_request"), nil
}

func (k Keeper) sendCrossChainPayment(ctx entrypointtypes.Context, msg types.SendCrossChainPaymentMsg) (*wasmvmtypes.Response, error) {
	payment, record, packetMsg, err := k.SendCrossChainPayment(ctx, ctx.Sender(), msg)
	if err != nil {
		return nil, err
	}

	channel, err := k.GetChannel(ctx, record.ChannelID)
	if err != nil {
		return nil, err
	}

	events.EmitPaymentEvent(ctx, types.EventTypePayment, payment)
	events.EmitSendPacketEvent(ctx, record)

	telemetry.ReportSendPacket(channel.PortID, channel.ChannelID, channel.CounterpartyPortID, channel.CounterpartyChannelID, record.Data)

	k.Logger(ctx).Info("ProofPay packet sent", "channel", record.ChannelID, "sequence", record.Sequence, "payment_id", payment.ID)

	return newResponse("send_cross_chain_payment", packetMsg), nil
}

// closeChannel asks the host to close a channel. The channel is recorded as CLOSED when the
// host calls back with close_init.
func (k Keeper) closeChannel(ctx entrypointtypes.Context, params types.Params, msg types.CloseChannelMsg) (*wasmvmtypes.Response, error) {
	if ctx.Sender() != params.Admin {
		return nil, errorsmod.Wrapf(ibcerrors.ErrUnauthorized, "expected %s, got %s", params.Admin, ctx.Sender())
	}

	channel, err := k.GetChannel(ctx, msg.ChannelID)
	if err != nil {
		return nil, err
	}

	if channel.IsClosed() {
		return nil, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel %s is already closed", channel.ChannelID)
	}

	closeMsg := wasmvmtypes.CosmosMsg{
		IBC: &wasmvmtypes.IBCMsg{
			CloseChannel: &wasmvmtypes.CloseChannelMsg{ChannelID: channel.ChannelID},
		},
	}

	return newResponse("close_channel", closeMsg), nil
}

func (k Keeper) updateConfig(ctx entrypointtypes.Context, params types.Params, msg types.UpdateConfigMsg) (*wasmvmtypes.Response, error) {
	if ctx.Sender() != params.Admin {
		return nil, errorsmod.Wrapf(ibcerrors.ErrUnauthorized, "expected %s, got %s", params.Admin, ctx.Sender())
	}

	if msg.Admin != "" {
		params.Admin = msg.Admin
	}
	if msg.PacketTimeoutSeconds != 0 {
		params.PacketTimeoutSeconds = msg.PacketTimeoutSeconds
	}
	if len(msg.AllowedOrders) != 0 {
		params.AllowedOrders = msg.AllowedOrders
	}

	if err := k.SetParams(ctx, params); err != nil {
		return nil, err
	}

	events.EmitConfigUpdatedEvent(ctx, params)

	return newResponse("update_config"), nil
}

func newResponse(action string, msgs ...wasmvmtypes.CosmosMsg) *wasmvmtypes.Response {
	resp := &wasmvmtypes.Response{
		Attributes: []wasmvmtypes.EventAttribute{{Key: attributeKeyAction, Value: action}},
	}

	for _, msg := range msgs {
		resp.Messages = append(resp.Messages, wasmvmtypes.SubMsg{Msg: msg, ReplyOn: wasmvmtypes.ReplyNever})
	}

	return resp
}
