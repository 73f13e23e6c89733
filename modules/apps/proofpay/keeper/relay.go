package keeper

import (
	"errors"
	"fmt"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// RecvResult is the outcome of a delivered packet.
type RecvResult struct {
	// Acknowledgement holds the encoded acknowledgement written for the packet.
	Acknowledgement []byte
	Success         bool
	// Redelivered is true if the packet was received before, Acknowledgement is then the
	// acknowledgement stored on first receipt and nothing else was executed.
	Redelivered bool
	Data        types.PaymentPacketData
	PaymentID   uint64
	// Err is the reason the packet was rejected, nil on success and redelivery.
	Err error
}

// SendPacket records an outbound payment packet on an OPEN channel and returns the message the
// host dispatches to send it. The contract mirrors the host send sequence of the channel.
func (k Keeper) SendPacket(
	ctx entrypointtypes.Context,
	channelID string,
	data types.PaymentPacketData,
	timeoutTimestamp uint64,
) (types.PacketRecord, wasmvmtypes.CosmosMsg, error) {
	channel, err := k.GetChannel(ctx, channelID)
	if err != nil {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	if !channel.IsOpen() {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	if err := data.ValidateBasic(); err != nil {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	if timeoutTimestamp <= uint64(ctx.BlockTime().UnixNano()) {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, errorsmod.Wrapf(types.ErrInvalidPacketTimeout, "timeout %d is not after the block time", timeoutTimestamp)
	}

	sequence, err := k.GetNextSequenceSend(ctx, channelID)
	if err != nil {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	record := types.PacketRecord{
		ChannelID:        channelID,
		Sequence:         sequence,
		PaymentID:        data.PaymentID,
		Data:             data,
		TimeoutTimestamp: timeoutTimestamp,
		Status:           types.PacketStatusPending,
		SentHeight:       ctx.BlockHeight(),
	}

	if err := k.setPacket(ctx, record); err != nil {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	if err := k.NextSequenceSend.Set(ctx, channelID, sequence+1); err != nil {
		return types.PacketRecord{}, wasmvmtypes.CosmosMsg{}, err
	}

	msg := wasmvmtypes.CosmosMsg{
		IBC: &wasmvmtypes.IBCMsg{
			SendPacket: &wasmvmtypes.SendPacketMsg{
				ChannelID: channelID,
				Data:      data.GetBytes(),
				Timeout:   wasmvmtypes.IBCTimeout{Timestamp: timeoutTimestamp},
			},
		},
	}

	return record, msg, nil
}

// OnRecvPacket processes a delivered payment packet. Identity mismatches and ordering
// violations are returned as errors; a packet that cannot be decoded or is rejected by the
// payment logic yields an error acknowledgement instead. The receipt is stored in both cases
// and returned unchanged on redelivery.
func (k Keeper) OnRecvPacket(ctx entrypointtypes.Context, packet wasmvmtypes.IBCPacket) (RecvResult, error) {
	channel, err := k.GetChannel(ctx, packet.Dest.ChannelID)
	if err != nil {
		return RecvResult{}, err
	}

	if !channel.IsOpen() {
		return RecvResult{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	if portID := types.PortIDForContract(ctx.ContractAddress()); packet.Dest.PortID != portID || channel.PortID != portID {
		return RecvResult{}, errorsmod.Wrapf(types.ErrChannelMismatch, "packet destination port %s does not match contract port %s", packet.Dest.PortID, portID)
	}

	if packet.Src != channel.Counterparty() {
		return RecvResult{}, errorsmod.Wrapf(
			types.ErrChannelMismatch, "packet source (%s, %s) does not match counterparty (%s, %s)",
			packet.Src.PortID, packet.Src.ChannelID, channel.CounterpartyPortID, channel.CounterpartyChannelID,
		)
	}

	key := collections.Join(channel.ChannelID, packet.Sequence)
	receipt, err := k.Receipts.Get(ctx, key)
	found := err == nil
	if err != nil && !errors.Is(err, collections.ErrNotFound) {
		return RecvResult{}, err
	}

	lastSequence, err := k.GetLastSequenceRecv(ctx, channel.ChannelID)
	if err != nil {
		return RecvResult{}, err
	}

	if channel.Ordering == channeltypes.ORDERED {
		switch {
		case packet.Sequence <= lastSequence && !found:
			return RecvResult{}, errorsmod.Wrapf(ibcerrors.ErrLogic, "no receipt for delivered sequence %d on %s", packet.Sequence, channel.ChannelID)
		case packet.Sequence > lastSequence+1:
			return RecvResult{}, errorsmod.Wrapf(channeltypes.ErrPacketSequenceOutOfOrder, "packet sequence ≠ next receive sequence (%d ≠ %d)", packet.Sequence, lastSequence+1)
		}
	}

	if found {
		k.Logger(ctx).Debug("packet redelivered", "channel", channel.ChannelID, "sequence", packet.Sequence)

		return RecvResult{
			Acknowledgement: receipt.Acknowledgement,
			Success:         receipt.Success,
			Redelivered:     true,
		}, nil
	}

	result := RecvResult{}
	result.Data, result.Err = types.UnmarshalPacketData(packet.Data)
	if result.Err == nil {
		result.Err = result.Data.ValidateBasic()
	}

	if result.Err == nil {
		// payment writes are discarded if the payment is rejected, the receipt is kept
		cacheCtx, writeCache := ctx.CacheContext()
		result.PaymentID, result.Err = k.receivePayment(cacheCtx, packet, result.Data)
		if result.Err == nil {
			writeCache()
		}
	}

	var ack channeltypes.Acknowledgement
	if result.Err != nil {
		ack = types.NewErrorAcknowledgement(result.Err)
		k.Logger(ctx).Error(fmt.Sprintf("%s receive packet failed", types.ModuleName), "channel", channel.ChannelID, "sequence", packet.Sequence, "error", result.Err.Error())
	} else {
		ack = types.NewSuccessAcknowledgement(result.PaymentID)
		k.Logger(ctx).Info("successfully handled ProofPay packet", "channel", channel.ChannelID, "sequence", packet.Sequence, "payment_id", result.PaymentID)
	}

	result.Acknowledgement = ack.Acknowledgement()
	result.Success = ack.Success()

	receipt = types.PacketReceipt{
		ChannelID:       channel.ChannelID,
		Sequence:        packet.Sequence,
		Acknowledgement: result.Acknowledgement,
		Success:         result.Success,
		ReceivedHeight:  ctx.BlockHeight(),
	}

	if err := k.Receipts.Set(ctx, key, receipt); err != nil {
		return RecvResult{}, err
	}

	if packet.Sequence > lastSequence {
		if err := k.LastSequenceRecv.Set(ctx, channel.ChannelID, packet.Sequence); err != nil {
			return RecvResult{}, err
		}
	}

	return result, nil
}

// OnAcknowledgementPacket resolves an outbound packet with the counterparty acknowledgement.
// A success acknowledgement completes the payment, an error acknowledgement refunds it. The
// returned bool is false if the packet was already resolved, in which case nothing changes.
func (k Keeper) OnAcknowledgementPacket(
	ctx entrypointtypes.Context,
	packet wasmvmtypes.IBCPacket,
	acknowledgement []byte,
) (types.PacketRecord, channeltypes.Acknowledgement, bool, error) {
	channel, record, err := k.lookupPacket(ctx, packet)
	if err != nil {
		return types.PacketRecord{}, channeltypes.Acknowledgement{}, false, err
	}

	if record.Status.IsResolved() {
		k.Logger(ctx).Debug("packet already resolved", "channel", record.ChannelID, "sequence", record.Sequence, "status", record.Status)
		return record, channeltypes.Acknowledgement{}, false, nil
	}

	ack, err := types.UnmarshalAcknowledgement(acknowledgement)
	if err != nil {
		return types.PacketRecord{}, channeltypes.Acknowledgement{}, false, err
	}

	if ack.Success() {
		if err := k.finalizePayment(ctx, record, types.UnmarshalPaymentResult(ack)); err != nil {
			return types.PacketRecord{}, channeltypes.Acknowledgement{}, false, err
		}

		record.Status = types.PacketStatusAcknowledged
	} else {
		if err := k.refundPayment(ctx, channel, record); err != nil {
			return types.PacketRecord{}, channeltypes.Acknowledgement{}, false, err
		}

		record.Status = types.PacketStatusFailed
	}

	if err := k.resolvePacket(ctx, &record); err != nil {
		return types.PacketRecord{}, channeltypes.Acknowledgement{}, false, err
	}

	k.Logger(ctx).Info("packet acknowledged", "channel", record.ChannelID, "sequence", record.Sequence, "status", record.Status)

	return record, ack, true, nil
}

// OnTimeoutPacket refunds the payment of a timed out outbound packet. The returned bool is
// false if the packet was already resolved, a packet is never reversed twice.
func (k Keeper) OnTimeoutPacket(ctx entrypointtypes.Context, packet wasmvmtypes.IBCPacket) (types.PacketRecord, bool, error) {
	channel, record, err := k.lookupPacket(ctx, packet)
	if err != nil {
		return types.PacketRecord{}, false, err
	}

	if record.Status.IsResolved() {
		k.Logger(ctx).Debug("packet already resolved", "channel", record.ChannelID, "sequence", record.Sequence, "status", record.Status)
		return record, false, nil
	}

	if err := k.refundPayment(ctx, channel, record); err != nil {
		return types.PacketRecord{}, false, err
	}

	record.Status = types.PacketStatusTimedOut
	if err := k.resolvePacket(ctx, &record); err != nil {
		return types.PacketRecord{}, false, err
	}

	k.Logger(ctx).Info("packet timed out", "channel", record.ChannelID, "sequence", record.Sequence)

	return record, true, nil
}

// GetPacket returns the record of the outbound packet (channelID, sequence).
func (k Keeper) GetPacket(ctx entrypointtypes.Context, channelID string, sequence uint64) (types.PacketRecord, error) {
	record, err := k.Packets.Get(ctx, collections.Join(channelID, sequence))
	if errors.Is(err, collections.ErrNotFound) {
		return types.PacketRecord{}, errorsmod.Wrapf(types.ErrUnknownPacket, "channel %s sequence %d", channelID, sequence)
	}

	return record, err
}

// GetPendingPackets returns the unresolved outbound packets of channelID in sequence order.
func (k Keeper) GetPendingPackets(ctx entrypointtypes.Context, channelID string) ([]types.PacketRecord, error) {
	var records []types.PacketRecord
	rng := collections.NewPrefixedPairRange[string, uint64](channelID)
	err := k.Packets.Walk(ctx, rng, func(_ collections.Pair[string, uint64], record types.PacketRecord) (bool, error) {
		if !record.Status.IsResolved() {
			records = append(records, record)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetReceipt returns the receipt of the inbound packet (channelID, sequence).
func (k Keeper) GetReceipt(ctx entrypointtypes.Context, channelID string, sequence uint64) (types.PacketReceipt, error) {
	receipt, err := k.Receipts.Get(ctx, collections.Join(channelID, sequence))
	if errors.Is(err, collections.ErrNotFound) {
		return types.PacketReceipt{}, errorsmod.Wrapf(ibcerrors.ErrNotFound, "receipt for channel %s sequence %d", channelID, sequence)
	}

	return receipt, err
}

// lookupPacket cross checks an acknowledged or timed out packet against the channel and the
// outbound record. The channel may have been closed since the packet was sent.
func (k Keeper) lookupPacket(ctx entrypointtypes.Context, packet wasmvmtypes.IBCPacket) (types.Channel, types.PacketRecord, error) {
	channel, err := k.GetChannel(ctx, packet.Src.ChannelID)
	if err != nil {
		return types.Channel{}, types.PacketRecord{}, err
	}

	if !channel.IsOpen() && !channel.IsClosed() {
		return types.Channel{}, types.PacketRecord{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel %s is %s", channel.ChannelID, channel.State)
	}

	if packet.Src.PortID != channel.PortID || packet.Dest != channel.Counterparty() {
		return types.Channel{}, types.PacketRecord{}, errorsmod.Wrapf(
			types.ErrChannelMismatch, "packet destination (%s, %s) does not match counterparty (%s, %s)",
			packet.Dest.PortID, packet.Dest.ChannelID, channel.CounterpartyPortID, channel.CounterpartyChannelID,
		)
	}

	record, err := k.GetPacket(ctx, channel.ChannelID, packet.Sequence)
	if err != nil {
		return types.Channel{}, types.PacketRecord{}, err
	}

	data, err := types.UnmarshalPacketData(packet.Data)
	if err != nil {
		return types.Channel{}, types.PacketRecord{}, err
	}

	if data != record.Data {
		return types.Channel{}, types.PacketRecord{}, errorsmod.Wrapf(types.ErrPacketDataMismatch, "packet %d on %s carries payment %d, recorded payment %d", packet.Sequence, channel.ChannelID, data.PaymentID, record.PaymentID)
	}

	return channel, record, nil
}

func (k Keeper) resolvePacket(ctx entrypointtypes.Context, record *types.PacketRecord) error {
	record.ResolvedHeight = ctx.BlockHeight()
	return k.setPacket(ctx, *record)
}
