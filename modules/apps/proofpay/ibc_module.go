package proofpay

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/internal/events"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/internal/telemetry"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/keeper"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

var _ entrypointtypes.IBCContract = (*IBCContract)(nil)

// IBCContract is the ProofPay build exporting the channel handshake and packet relay entry
// points in addition to those of Contract.
type IBCContract struct {
	Contract
}

// NewIBCContract creates a new IBCContract given the keeper
func NewIBCContract(k keeper.Keeper) IBCContract {
	return IBCContract{
		Contract: NewContract(k),
	}
}

// IBCChannelOpen implements the IBCContract interface. The channel must be bound to the
// contract port, use an allowed ordering and a supported version.
func (im IBCContract) IBCChannelOpen(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelOpenMsg) (*wasmvmtypes.IBC3ChannelOpenResponse, error) {
	channel, counterpartyVersion := entrypointtypes.ChannelOpenParams(msg)

	record, err := im.keeper.OnChanOpen(ctx, channel, counterpartyVersion, msg.OpenTry != nil)
	if err != nil {
		return nil, err
	}

	events.EmitChannelEvent(ctx, types.EventTypeChannelOpen, record)

	return &wasmvmtypes.IBC3ChannelOpenResponse{Version: record.Version}, nil
}

// IBCChannelConnect implements the IBCContract interface
func (im IBCContract) IBCChannelConnect(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelConnectMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	channel, version := entrypointtypes.ChannelConnectParams(msg)

	record, changed, err := im.keeper.OnChanConnect(ctx, channel, version, msg.OpenAck != nil)
	if err != nil {
		return nil, err
	}

	if changed {
		events.EmitChannelEvent(ctx, types.EventTypeChannelConnect, record)
		im.keeper.Logger(ctx).Info("channel opened", "channel", record.ChannelID, "counterparty_channel", record.CounterpartyChannelID, "order", record.Ordering)
	}

	return newBasicResponse("ibc_channel_connect"), nil
}

// IBCChannelClose implements the IBCContract interface. Packets in flight stay pending and
// are resolved by their acknowledgement or timeout.
func (im IBCContract) IBCChannelClose(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelCloseMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	record, changed, err := im.keeper.OnChanClose(ctx, entrypointtypes.ChannelCloseParams(msg))
	if err != nil {
		return nil, err
	}

	if changed {
		events.EmitChannelEvent(ctx, types.EventTypeChannelClose, record)
		im.keeper.Logger(ctx).Info("channel closed", "channel", record.ChannelID)
	}

	return newBasicResponse("ibc_channel_close"), nil
}

// IBCPacketReceive implements the IBCContract interface. A successful acknowledgement
// is returned if the packet data is successfully decoded and the receive application
// logic returns without error. Rejected packets are acknowledged with an error, only an
// identity or ordering violation fails the call.
func (im IBCContract) IBCPacketReceive(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketReceiveMsg) (*wasmvmtypes.IBCReceiveResponse, error) {
	packet := msg.Packet

	result, err := im.keeper.OnRecvPacket(ctx, packet)
	if err != nil {
		return nil, err
	}

	if result.Redelivered {
		events.EmitPacketRedeliveredEvent(ctx, packet, result.Success)
		telemetry.ReportRedelivered(packet.Dest.PortID, packet.Dest.ChannelID)
	} else {
		events.EmitOnRecvPacketEvent(ctx, packet, result.Data, result.Success, result.Err)
		telemetry.ReportOnRecvPacket(packet.Src.PortID, packet.Src.ChannelID, packet.Dest.PortID, packet.Dest.ChannelID, result.Data, result.Success)
	}

	return &wasmvmtypes.IBCReceiveResponse{
		Acknowledgement: result.Acknowledgement,
		Attributes:      []wasmvmtypes.EventAttribute{{Key: "action", Value: "ibc_packet_receive"}},
	}, nil
}

// IBCPacketAck implements the IBCContract interface
func (im IBCContract) IBCPacketAck(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketAckMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	record, ack, resolved, err := im.keeper.OnAcknowledgementPacket(ctx, msg.OriginalPacket, msg.Acknowledgement.Data)
	if err != nil {
		return nil, err
	}

	if resolved {
		events.EmitOnAcknowledgementPacketEvent(ctx, record, ack)
		telemetry.ReportOnAcknowledgement(msg.OriginalPacket.Src.PortID, msg.OriginalPacket.Src.ChannelID, ack.Success())
	}

	return newBasicResponse("ibc_packet_ack"), nil
}

// IBCPacketTimeout implements the IBCContract interface
func (im IBCContract) IBCPacketTimeout(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketTimeoutMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	record, resolved, err := im.keeper.OnTimeoutPacket(ctx, msg.Packet)
	if err != nil {
		return nil, err
	}

	if resolved {
		events.EmitOnTimeoutEvent(ctx, record)
		telemetry.ReportOnTimeout(msg.Packet.Src.PortID, msg.Packet.Src.ChannelID)
	}

	return newBasicResponse("ibc_packet_timeout"), nil
}

func newBasicResponse(action string) *wasmvmtypes.IBCBasicResponse {
	return &wasmvmtypes.IBCBasicResponse{
		Attributes: []wasmvmtypes.EventAttribute{{Key: "action", Value: action}},
	}
}
