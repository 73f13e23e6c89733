package types

import (
	errorsmod "cosmossdk.io/errors"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"
)

// PacketStatus is the resolution state of an outbound packet.
type PacketStatus string

const (
	// PacketStatusPending is set when the packet is sent, until an ack or timeout resolves it.
	PacketStatusPending PacketStatus = "PACKET_STATUS_PENDING"
	// PacketStatusAcknowledged is set when a success acknowledgement was received.
	PacketStatusAcknowledged PacketStatus = "PACKET_STATUS_ACKNOWLEDGED"
	// PacketStatusFailed is set when an error acknowledgement was received and the effect reversed.
	PacketStatusFailed PacketStatus = "PACKET_STATUS_FAILED"
	// PacketStatusTimedOut is set when the packet timed out and the effect was reversed.
	PacketStatusTimedOut PacketStatus = "PACKET_STATUS_TIMED_OUT"
)

// IsResolved returns true once an ack or timeout has been processed for the packet.
func (s PacketStatus) IsResolved() bool {
	return s != PacketStatusPending
}

// Validate returns an error if the status is not one of the known packet statuses.
func (s PacketStatus) Validate() error {
	switch s {
	case PacketStatusPending, PacketStatusAcknowledged, PacketStatusFailed, PacketStatusTimedOut:
		return nil
	default:
		return errorsmod.Wrapf(ibcerrors.ErrInvalidType, "unknown packet status %q", string(s))
	}
}

// PacketRecord tracks an outbound packet from send until its terminal callback.
type PacketRecord struct {
	ChannelID        string            `json:"channel_id"`
	Sequence         uint64            `json:"sequence"`
	PaymentID        uint64            `json:"payment_id"`
	Data             PaymentPacketData `json:"data"`
	TimeoutTimestamp uint64            `json:"timeout_timestamp"`
	Status           PacketStatus      `json:"status"`
	SentHeight       uint64            `json:"sent_height"`
	ResolvedHeight   uint64            `json:"resolved_height,omitempty"`
}

// PacketReceipt records the acknowledgement written for an inbound packet. It is returned
// unchanged when the same packet is delivered again.
type PacketReceipt struct {
	ChannelID       string `json:"channel_id"`
	Sequence        uint64 `json:"sequence"`
	Acknowledgement []byte `json:"acknowledgement"`
	Success         bool   `json:"success"`
	ReceivedHeight  uint64 `json:"received_height"`
}
