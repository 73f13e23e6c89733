package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/proofpay/proofpay-ibc/internal/validate"
)

// Channel is the contract's record of a channel end bound to its port. The state is persisted
// explicitly and advances UNINITIALIZED -> INIT | TRYOPEN -> OPEN -> CLOSED.
type Channel struct {
	PortID                string             `json:"port_id"`
	ChannelID             string             `json:"channel_id"`
	CounterpartyPortID    string             `json:"counterparty_port_id"`
	CounterpartyChannelID string             `json:"counterparty_channel_id"`
	ConnectionID          string             `json:"connection_id"`
	Ordering              channeltypes.Order `json:"ordering"`
	Version               string             `json:"version"`
	State                 channeltypes.State `json:"state"`
}

// NewChannel creates a channel record from the channel end supplied by the host.
func NewChannel(channel wasmvmtypes.IBCChannel, version string, state channeltypes.State) Channel {
	return Channel{
		PortID:                channel.Endpoint.PortID,
		ChannelID:             channel.Endpoint.ChannelID,
		CounterpartyPortID:    channel.CounterpartyEndpoint.PortID,
		CounterpartyChannelID: channel.CounterpartyEndpoint.ChannelID,
		ConnectionID:          channel.ConnectionID,
		Ordering:              OrderFromIBC(channel.Order),
		Version:               version,
		State:                 state,
	}
}

// Counterparty returns the counterparty endpoint of the channel.
func (c Channel) Counterparty() wasmvmtypes.IBCEndpoint {
	return wasmvmtypes.IBCEndpoint{PortID: c.CounterpartyPortID, ChannelID: c.CounterpartyChannelID}
}

// Endpoint returns the local endpoint of the channel.
func (c Channel) Endpoint() wasmvmtypes.IBCEndpoint {
	return wasmvmtypes.IBCEndpoint{PortID: c.PortID, ChannelID: c.ChannelID}
}

// IsOpen returns true if the channel is in the OPEN state.
func (c Channel) IsOpen() bool {
	return c.State == channeltypes.OPEN
}

// IsClosed returns true if the channel is in the CLOSED state.
func (c Channel) IsClosed() bool {
	return c.State == channeltypes.CLOSED
}

// Matches reports whether the host supplied channel end carries the same identity and
// ordering as the record. The counterparty channel id is only compared once both sides
// know it, open_init is delivered before the counterparty has chosen one.
func (c Channel) Matches(channel wasmvmtypes.IBCChannel) bool {
	if c.PortID != channel.Endpoint.PortID || c.ChannelID != channel.Endpoint.ChannelID {
		return false
	}

	if c.CounterpartyPortID != channel.CounterpartyEndpoint.PortID {
		return false
	}

	if c.CounterpartyChannelID != "" && channel.CounterpartyEndpoint.ChannelID != "" &&
		c.CounterpartyChannelID != channel.CounterpartyEndpoint.ChannelID {
		return false
	}

	return c.ConnectionID == channel.ConnectionID && c.Ordering == OrderFromIBC(channel.Order)
}

// ValidateBasic performs a basic validation of the channel record.
func (c Channel) ValidateBasic() error {
	if err := validate.Endpoint(c.PortID, c.ChannelID); err != nil {
		return err
	}

	if c.Ordering != channeltypes.ORDERED && c.Ordering != channeltypes.UNORDERED {
		return errorsmod.Wrapf(channeltypes.ErrInvalidChannelOrdering, "invalid ordering %s", c.Ordering)
	}

	if c.State == channeltypes.UNINITIALIZED {
		return errorsmod.Wrap(channeltypes.ErrInvalidChannelState, "channel state cannot be uninitialized")
	}

	return nil
}

// OrderFromIBC converts the host channel ordering into the channel Order enum. Unknown
// orderings map to NONE.
func OrderFromIBC(order wasmvmtypes.IBCOrder) channeltypes.Order {
	return channeltypes.Order(channeltypes.Order_value[string(order)])
}

// OrderToIBC converts a channel Order into the host channel ordering.
func OrderToIBC(order channeltypes.Order) wasmvmtypes.IBCOrder {
	return wasmvmtypes.IBCOrder(order.String())
}
