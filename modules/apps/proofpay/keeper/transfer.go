package keeper

import (
	"errors"
	"strings"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	internalerrors "github.com/proofpay/proofpay-ibc/internal/errors"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/internal/events"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// SendCrossChainPayment debits the sender and sends a payment packet to the contract at the
// other end of the channel. Tokens native to this chain, or arriving over another channel, are
// escrowed for the channel; vouchers returning to their origin over the channel they arrived
// on are burned. The returned message must be dispatched by the host.
func (k Keeper) SendCrossChainPayment(
	ctx entrypointtypes.Context,
	sender string,
	msg types.SendCrossChainPaymentMsg,
) (types.Payment, types.PacketRecord, wasmvmtypes.CosmosMsg, error) {
	if !k.config.IBCEnabled {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, errorsmod.Wrap(internalerrors.ErrIBCNotSupported, "cross-chain payments are disabled")
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	channel, err := k.GetChannel(ctx, msg.ChannelID)
	if err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	if err := k.validateDescription(msg.Description); err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	recipient := types.NormalizeUsername(msg.ToUsername)
	if err := types.ValidateUsername(recipient); err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	coin, err := types.ToCoin(msg.Amount)
	if err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	denom, err := k.GetDenom(ctx, coin.Denom)
	if err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	var senderUsername string
	if user, err := k.GetUserByWallet(ctx, sender); err == nil {
		senderUsername = user.Username
	} else if !errors.Is(err, types.ErrUserNotFound) {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	if err := k.SubBalance(ctx, sender, coin); err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	// vouchers returning over the channel they arrived on are burned, the counterparty
	// releases the original tokens from its escrow
	if !denom.HasPrefix(channel.PortID, channel.ChannelID) {
		if err := k.escrowToken(ctx, channel.ChannelID, coin); err != nil {
			return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
		}
	}

	id, err := k.nextPaymentID(ctx)
	if err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	data := types.NewPaymentPacketData(id, denom.Path(), coin.Amount.String(), sender, senderUsername, recipient, msg.Description)

	timeout := params.PacketTimeout()
	if msg.TimeoutSeconds != 0 {
		timeout = types.PacketTimeoutDuration(msg.TimeoutSeconds)
	}

	record, packetMsg, err := k.SendPacket(ctx, channel.ChannelID, data, uint64(ctx.BlockTime().Add(timeout).UnixNano()))
	if err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	payment := types.Payment{
		ID:                id,
		Kind:              types.PaymentKindOutgoing,
		Sender:            sender,
		SenderUsername:    senderUsername,
		RecipientUsername: recipient,
		Amount:            coin,
		Description:       msg.Description,
		ProofType:         types.ProofTypeNone,
		Status:            types.PaymentStatusPending,
		ChannelID:         channel.ChannelID,
		Sequence:          record.Sequence,
		CreatedAt:         blockTime(ctx),
		UpdatedAt:         blockTime(ctx),
	}

	if err := k.setPayment(ctx, payment); err != nil {
		return types.Payment{}, types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	return payment, record, packetMsg, nil
}

// receivePayment applies a validated payment packet: the recipient must be registered, the
// token is released from escrow if it returns to its origin or minted as a voucher otherwise,
// and a completed incoming payment is recorded. It returns the id of the recorded payment.
func (k Keeper) receivePayment(ctx entrypointtypes.Context, packet wasmvmtypes.IBCPacket, data types.PaymentPacketData) (uint64, error) {
	recipient, err := k.GetUser(ctx, data.RecipientUsername)
	if err != nil {
		return 0, err
	}

	amount, err := types.ParseAmount(data.Amount)
	if err != nil {
		return 0, err
	}

	denom := data.Token()

	var coin sdk.Coin
	if denom.HasPrefix(packet.Src.PortID, packet.Src.ChannelID) {
		// the token returns to this chain, remove the hop added when it left
		denom.Trace = denom.Trace[1:]

		coin = sdk.NewCoin(denom.IBCDenom(), amount)
		if err := k.unescrowToken(ctx, packet.Dest.ChannelID, coin); err != nil {
			return 0, err
		}
	} else {
		trace := []transfertypes.Hop{transfertypes.NewHop(packet.Dest.PortID, packet.Dest.ChannelID)}
		denom.Trace = append(trace, denom.Trace...)

		if err := k.setDenom(ctx, denom); err != nil {
			return 0, err
		}

		coin = sdk.NewCoin(denom.IBCDenom(), amount)
	}

	if err := k.AddBalance(ctx, recipient.Wallet, coin); err != nil {
		return 0, err
	}

	id, err := k.nextPaymentID(ctx)
	if err != nil {
		return 0, err
	}

	payment := types.Payment{
		ID:                id,
		Kind:              types.PaymentKindIncoming,
		Sender:            data.Sender,
		SenderUsername:    data.SenderUsername,
		Recipient:         recipient.Wallet,
		RecipientUsername: recipient.Username,
		Amount:            coin,
		Description:       data.Description,
		ProofType:         types.ProofTypeNone,
		Status:            types.PaymentStatusCompleted,
		ChannelID:         packet.Dest.ChannelID,
		Sequence:          packet.Sequence,
		RemotePaymentID:   data.PaymentID,
		CreatedAt:         blockTime(ctx),
		UpdatedAt:         blockTime(ctx),
	}

	if err := k.setPayment(ctx, payment); err != nil {
		return 0, err
	}

	return id, nil
}

// finalizePayment marks the outgoing payment of an acknowledged packet as completed.
func (k Keeper) finalizePayment(ctx entrypointtypes.Context, record types.PacketRecord, result types.PaymentResult) error {
	payment, err := k.GetPayment(ctx, record.PaymentID)
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrLogic, "payment of packet %d on %s: %v", record.Sequence, record.ChannelID, err)
	}

	payment.Status = types.PaymentStatusCompleted
	payment.RemotePaymentID = result.PaymentID
	payment.UpdatedAt = blockTime(ctx)

	return k.Payments.Set(ctx, payment.ID, payment)
}

// refundPayment reverses the send of a failed or timed out packet: escrowed tokens are
// released, burned vouchers are minted back, and the sender is credited.
func (k Keeper) refundPayment(ctx entrypointtypes.Context, channel types.Channel, record types.PacketRecord) error {
	payment, err := k.GetPayment(ctx, record.PaymentID)
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrLogic, "payment of packet %d on %s: %v", record.Sequence, record.ChannelID, err)
	}

	if !record.Data.Token().HasPrefix(channel.PortID, channel.ChannelID) {
		if err := k.unescrowToken(ctx, channel.ChannelID, payment.Amount); err != nil {
			return errorsmod.Wrapf(ibcerrors.ErrLogic, "escrow of packet %d on %s: %v", record.Sequence, record.ChannelID, err)
		}
	}

	if err := k.AddBalance(ctx, payment.Sender, payment.Amount); err != nil {
		return err
	}

	payment.Status = types.PaymentStatusRefunded
	payment.UpdatedAt = blockTime(ctx)

	return k.Payments.Set(ctx, payment.ID, payment)
}

// GetDenom returns the full trace of a balance denomination. Voucher denominations are
// resolved through the recorded traces, any other denomination is native.
func (k Keeper) GetDenom(ctx entrypointtypes.Context, denom string) (transfertypes.Denom, error) {
	if !strings.HasPrefix(denom, transfertypes.DenomPrefix+"/") {
		return transfertypes.NewDenom(denom), nil
	}

	hash, err := transfertypes.ParseHexHash(strings.TrimPrefix(denom, transfertypes.DenomPrefix+"/"))
	if err != nil {
		return transfertypes.Denom{}, errorsmod.Wrap(transfertypes.ErrInvalidDenomForTransfer, err.Error())
	}

	return k.GetDenomByHash(ctx, hash.String())
}

// GetDenomByHash returns the voucher denomination recorded under the hex hash.
func (k Keeper) GetDenomByHash(ctx entrypointtypes.Context, hash string) (transfertypes.Denom, error) {
	denom, err := k.Denoms.Get(ctx, strings.ToUpper(hash))
	if errors.Is(err, collections.ErrNotFound) {
		return transfertypes.Denom{}, errorsmod.Wrapf(types.ErrDenomNotFound, "denomination with hash %s", hash)
	}

	return denom, err
}

// setDenom records a voucher denomination the first time it is minted.
func (k Keeper) setDenom(ctx entrypointtypes.Context, denom transfertypes.Denom) error {
	hash := denom.Hash().String()

	has, err := k.Denoms.Has(ctx, hash)
	if err != nil || has {
		return err
	}

	if err := k.Denoms.Set(ctx, hash, denom); err != nil {
		return err
	}

	events.EmitDenomEvent(ctx, denom)

	return nil
}
