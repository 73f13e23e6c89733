package ibctesting

import (
	"fmt"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// Endpoint is a which represents a channel endpoint and its associated
// client and connections. It contains client, connection, and channel
// configuration parameters. Endpoint functions will utilize the parameters
// set in the configuration structs when executing IBC messages.
type Endpoint struct {
	Chain        *TestChain
	Counterparty *Endpoint
	ConnectionID string
	ChannelID    string

	ChannelConfig *ChannelConfig
}

// NewEndpoint constructs a new endpoint without the counterparty.
// CONTRACT: the counterparty endpoint must be set by the caller.
func NewEndpoint(chain *TestChain, channelConfig *ChannelConfig) *Endpoint {
	return &Endpoint{
		Chain:         chain,
		ConnectionID:  DefaultConnectionID,
		ChannelConfig: channelConfig,
	}
}

// NewDefaultEndpoint constructs a new endpoint using default values.
// CONTRACT: the counterparty endpoint must be set by the caller.
func NewDefaultEndpoint(chain *TestChain) *Endpoint {
	return NewEndpoint(chain, NewChannelConfig())
}

// PortID returns the port of the contract hosted by the endpoint chain.
func (endpoint *Endpoint) PortID() string {
	return endpoint.Chain.PortID
}

// IBCEndpoint returns the channel endpoint as seen by the host.
func (endpoint *Endpoint) IBCEndpoint() wasmvmtypes.IBCEndpoint {
	return wasmvmtypes.IBCEndpoint{PortID: endpoint.PortID(), ChannelID: endpoint.ChannelID}
}

// IBCChannel returns the channel end handed to the contract with the given version.
func (endpoint *Endpoint) IBCChannel(version string) wasmvmtypes.IBCChannel {
	return wasmvmtypes.IBCChannel{
		Endpoint:             endpoint.IBCEndpoint(),
		CounterpartyEndpoint: endpoint.Counterparty.IBCEndpoint(),
		Order:                types.OrderToIBC(endpoint.ChannelConfig.Order),
		Version:              version,
		ConnectionID:         endpoint.ConnectionID,
	}
}

// GetChannel retrieves the host record of the endpoint channel. The channel must exist.
func (endpoint *Endpoint) GetChannel() HostChannel {
	channel, found := endpoint.Chain.GetChannel(endpoint.ChannelID)
	if !found {
		endpoint.Chain.Fatalf("channel %s not found on %s", endpoint.ChannelID, endpoint.Chain.ChainID)
	}
	return channel
}

// ChanOpenInit starts the handshake on the endpoint chain. The channel identifier is
// generated by the host, the contract may replace the proposed version.
func (endpoint *Endpoint) ChanOpenInit() error {
	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		endpoint.ChannelID = endpoint.Chain.newChannelID()

		channel := endpoint.IBCChannel(endpoint.ChannelConfig.Version)
		channel.CounterpartyEndpoint.ChannelID = ""

		resp, err := endpoint.Chain.Dispatcher.IBCChannelOpen(ctx, store, wasmvmtypes.IBCChannelOpenMsg{
			OpenInit: &wasmvmtypes.IBCOpenInit{Channel: channel},
		})
		if err != nil {
			return err
		}

		if resp != nil && resp.Version != "" {
			endpoint.ChannelConfig.Version = resp.Version
		}

		endpoint.Chain.channels[endpoint.ChannelID] = newHostChannel(channel, endpoint.ChannelConfig.Version, channeltypes.INIT)
		return nil
	})
}

// ChanOpenTry continues the handshake on the endpoint chain. The counterparty must be in INIT.
func (endpoint *Endpoint) ChanOpenTry() error {
	counterparty, err := endpoint.counterpartyChannel(channeltypes.INIT)
	if err != nil {
		return err
	}

	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		endpoint.ChannelID = endpoint.Chain.newChannelID()
		endpoint.ChannelConfig.Order = counterparty.Order

		channel := endpoint.IBCChannel(counterparty.Version)
		resp, err := endpoint.Chain.Dispatcher.IBCChannelOpen(ctx, store, wasmvmtypes.IBCChannelOpenMsg{
			OpenTry: &wasmvmtypes.IBCOpenTry{Channel: channel, CounterpartyVersion: counterparty.Version},
		})
		if err != nil {
			return err
		}

		endpoint.ChannelConfig.Version = counterparty.Version
		if resp != nil && resp.Version != "" {
			endpoint.ChannelConfig.Version = resp.Version
		}

		endpoint.Chain.channels[endpoint.ChannelID] = newHostChannel(channel, endpoint.ChannelConfig.Version, channeltypes.TRYOPEN)
		return nil
	})
}

// ChanOpenAck opens the channel on the chain that started the handshake. The counterparty
// must be in TRYOPEN.
func (endpoint *Endpoint) ChanOpenAck() error {
	counterparty, err := endpoint.counterpartyChannel(channeltypes.TRYOPEN)
	if err != nil {
		return err
	}

	channel, err := endpoint.hostChannel(channeltypes.INIT)
	if err != nil {
		return err
	}

	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		if _, err := endpoint.Chain.Dispatcher.IBCChannelConnect(ctx, store, wasmvmtypes.IBCChannelConnectMsg{
			OpenAck: &wasmvmtypes.IBCOpenAck{Channel: endpoint.IBCChannel(channel.Version), CounterpartyVersion: counterparty.Version},
		}); err != nil {
			return err
		}

		opened := endpoint.Chain.channels[endpoint.ChannelID]
		opened.Counterparty = endpoint.Counterparty.IBCEndpoint()
		opened.Version = counterparty.Version
		opened.State = channeltypes.OPEN
		endpoint.ChannelConfig.Version = counterparty.Version
		return nil
	})
}

// ChanOpenConfirm opens the channel on the chain that answered the handshake. The
// counterparty must be OPEN.
func (endpoint *Endpoint) ChanOpenConfirm() error {
	if _, err := endpoint.counterpartyChannel(channeltypes.OPEN); err != nil {
		return err
	}

	channel, err := endpoint.hostChannel(channeltypes.TRYOPEN)
	if err != nil {
		return err
	}

	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		if _, err := endpoint.Chain.Dispatcher.IBCChannelConnect(ctx, store, wasmvmtypes.IBCChannelConnectMsg{
			OpenConfirm: &wasmvmtypes.IBCOpenConfirm{Channel: endpoint.IBCChannel(channel.Version)},
		}); err != nil {
			return err
		}

		endpoint.Chain.channels[endpoint.ChannelID].State = channeltypes.OPEN
		return nil
	})
}

// ChanCloseInit closes the channel on the endpoint chain.
func (endpoint *Endpoint) ChanCloseInit() error {
	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		return endpoint.Chain.closeChannel(ctx, store, endpoint.ChannelID)
	})
}

// ChanCloseConfirm closes the channel on the endpoint chain after the counterparty closed it.
func (endpoint *Endpoint) ChanCloseConfirm() error {
	if _, err := endpoint.counterpartyChannel(channeltypes.CLOSED); err != nil {
		return err
	}

	channel, ok := endpoint.Chain.channels[endpoint.ChannelID]
	if !ok {
		return errorsmod.Wrap(channeltypes.ErrChannelNotFound, endpoint.ChannelID)
	}

	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		if _, err := endpoint.Chain.Dispatcher.IBCChannelClose(ctx, store, wasmvmtypes.IBCChannelCloseMsg{
			CloseConfirm: &wasmvmtypes.IBCCloseConfirm{Channel: channel.IBCChannel()},
		}); err != nil {
			return err
		}

		endpoint.Chain.channels[endpoint.ChannelID].State = channeltypes.CLOSED
		return nil
	})
}

// RecvPacket delivers a packet sent by the counterparty to the endpoint contract and returns
// the acknowledgement it wrote. The host checks the channel identity and the timeout but does
// not filter duplicates: the same packet may be delivered any number of times.
func (endpoint *Endpoint) RecvPacket(packet wasmvmtypes.IBCPacket) ([]byte, error) {
	channel, err := endpoint.hostChannel(channeltypes.OPEN)
	if err != nil {
		return nil, err
	}

	if packet.Dest != channel.Endpoint || packet.Src != channel.Counterparty {
		return nil, errorsmod.Wrapf(channeltypes.ErrInvalidPacket, "packet (%v -> %v) does not travel on %s", packet.Src, packet.Dest, endpoint.ChannelID)
	}

	timeout := packet.Timeout.Timestamp
	if timeout != 0 && uint64(endpoint.Chain.CurrentTime.UnixNano()) >= timeout {
		return nil, errorsmod.Wrapf(channeltypes.ErrTimeoutElapsed, "block time >= packet timeout timestamp (%s >= %d)", endpoint.Chain.CurrentTime, timeout)
	}

	var ack []byte
	err = endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		resp, err := endpoint.Chain.Dispatcher.IBCPacketReceive(ctx, store, wasmvmtypes.IBCPacketReceiveMsg{
			Packet:  packet,
			Relayer: endpoint.Chain.Relayer.String(),
		})
		if err != nil {
			return err
		}

		ack = resp.Acknowledgement
		endpoint.Chain.channels[endpoint.ChannelID].Acknowledgements[packet.Sequence] = ack
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ack, nil
}

// AcknowledgePacket delivers the acknowledgement of a packet sent by the endpoint contract.
// The commitment is removed once the contract accepted it.
func (endpoint *Endpoint) AcknowledgePacket(packet wasmvmtypes.IBCPacket, ack []byte) error {
	if packet.Src.ChannelID != endpoint.ChannelID {
		return errorsmod.Wrapf(channeltypes.ErrInvalidPacket, "packet was not sent on %s", endpoint.ChannelID)
	}

	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		if _, err := endpoint.Chain.Dispatcher.IBCPacketAck(ctx, store, wasmvmtypes.IBCPacketAckMsg{
			Acknowledgement: wasmvmtypes.IBCAcknowledgement{Data: ack},
			OriginalPacket:  packet,
			Relayer:         endpoint.Chain.Relayer.String(),
		}); err != nil {
			return err
		}

		endpoint.deleteCommitment(packet.Sequence)
		return nil
	})
}

// TimeoutPacket delivers the timeout of a packet sent by the endpoint contract. The counterparty
// clock must have passed the packet timeout.
func (endpoint *Endpoint) TimeoutPacket(packet wasmvmtypes.IBCPacket) error {
	if packet.Src.ChannelID != endpoint.ChannelID {
		return errorsmod.Wrapf(channeltypes.ErrInvalidPacket, "packet was not sent on %s", endpoint.ChannelID)
	}

	timeout := packet.Timeout.Timestamp
	if counterpartyTime := uint64(endpoint.Counterparty.Chain.CurrentTime.UnixNano()); counterpartyTime < timeout {
		return errorsmod.Wrapf(channeltypes.ErrTimeoutNotReached, "counterparty time %d < packet timeout %d", counterpartyTime, timeout)
	}

	return endpoint.Chain.runTx("", nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		if _, err := endpoint.Chain.Dispatcher.IBCPacketTimeout(ctx, store, wasmvmtypes.IBCPacketTimeoutMsg{
			Packet:  packet,
			Relayer: endpoint.Chain.Relayer.String(),
		}); err != nil {
			return err
		}

		endpoint.deleteCommitment(packet.Sequence)
		return nil
	})
}

// SendCrossChainPayment executes a cross-chain payment on the endpoint channel and returns the
// packet committed by the host.
func (endpoint *Endpoint) SendCrossChainPayment(sender, toUsername string, amount wasmvmtypes.Coin) (wasmvmtypes.IBCPacket, error) {
	channel, ok := endpoint.Chain.channels[endpoint.ChannelID]
	if !ok {
		return wasmvmtypes.IBCPacket{}, errorsmod.Wrap(channeltypes.ErrChannelNotFound, endpoint.ChannelID)
	}
	sequence := channel.NextSequenceSend

	if _, err := endpoint.Chain.Execute(sender, types.ExecuteMsg{
		SendCrossChainPayment: &types.SendCrossChainPaymentMsg{
			ChannelID:  endpoint.ChannelID,
			ToUsername: toUsername,
			Amount:     amount,
		},
	}); err != nil {
		return wasmvmtypes.IBCPacket{}, err
	}

	packet, ok := endpoint.Chain.channels[endpoint.ChannelID].Commitments[sequence]
	if !ok {
		return wasmvmtypes.IBCPacket{}, fmt.Errorf("no packet committed at sequence %d on %s", sequence, endpoint.ChannelID)
	}

	return packet, nil
}

func (endpoint *Endpoint) deleteCommitment(sequence uint64) {
	if channel, ok := endpoint.Chain.channels[endpoint.ChannelID]; ok {
		delete(channel.Commitments, sequence)
	}
}

func (endpoint *Endpoint) hostChannel(state channeltypes.State) (HostChannel, error) {
	channel, ok := endpoint.Chain.GetChannel(endpoint.ChannelID)
	if !ok {
		return HostChannel{}, errorsmod.Wrap(channeltypes.ErrChannelNotFound, endpoint.ChannelID)
	}

	if channel.State != state {
		return HostChannel{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel state is not %s (got %s)", state, channel.State)
	}

	return channel, nil
}

func (endpoint *Endpoint) counterpartyChannel(state channeltypes.State) (HostChannel, error) {
	channel, ok := endpoint.Counterparty.Chain.GetChannel(endpoint.Counterparty.ChannelID)
	if !ok {
		return HostChannel{}, errorsmod.Wrapf(channeltypes.ErrChannelNotFound, "counterparty channel %s", endpoint.Counterparty.ChannelID)
	}

	if channel.State != state {
		return HostChannel{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "counterparty channel state is not %s (got %s)", state, channel.State)
	}

	return channel, nil
}

func newHostChannel(channel wasmvmtypes.IBCChannel, version string, state channeltypes.State) *HostChannel {
	return &HostChannel{
		Endpoint:         channel.Endpoint,
		Counterparty:     channel.CounterpartyEndpoint,
		ConnectionID:     channel.ConnectionID,
		Order:            types.OrderFromIBC(channel.Order),
		Version:          version,
		State:            state,
		NextSequenceSend: 1,
		Commitments:      make(map[uint64]wasmvmtypes.IBCPacket),
		Acknowledgements: make(map[uint64][]byte),
	}
}
