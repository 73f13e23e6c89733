package keeper

import (
	"errors"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v10/modules/core/05-port/types"

	internalcollections "github.com/proofpay/proofpay-ibc/internal/collections"
	"github.com/proofpay/proofpay-ibc/internal/validate"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// OnChanOpen validates the first handshake step seen by the contract and records the channel
// in INIT (open_init) or TRYOPEN (open_try). It returns the accepted version. Replaying the
// step with identical parameters overwrites the same record.
func (k Keeper) OnChanOpen(
	ctx entrypointtypes.Context,
	channel wasmvmtypes.IBCChannel,
	counterpartyVersion string,
	try bool,
) (types.Channel, error) {
	if err := k.validateChannelEnd(ctx, channel); err != nil {
		return types.Channel{}, err
	}

	var (
		version string
		state   channeltypes.State
		err     error
	)
	if try {
		// the counterparty chose the version, no downgrade is negotiated
		version, err = k.config.ParseVersion(counterpartyVersion)
		state = channeltypes.TRYOPEN
	} else {
		version = channel.Version
		if version == "" {
			version = types.Version
		}
		version, err = k.config.ParseVersion(version)
		state = channeltypes.INIT
	}
	if err != nil {
		return types.Channel{}, err
	}

	record := types.NewChannel(channel, version, state)

	existing, found, err := k.getChannel(ctx, channel.Endpoint.ChannelID)
	if err != nil {
		return types.Channel{}, err
	}

	if found {
		if existing.IsOpen() || existing.IsClosed() {
			return types.Channel{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel %s is already %s", existing.ChannelID, existing.State)
		}

		if existing.State != state || existing.Version != version || !existing.Matches(channel) {
			return types.Channel{}, errorsmod.Wrapf(types.ErrChannelMismatch, "channel %s was recorded as %s with version %s", existing.ChannelID, existing.State, existing.Version)
		}
	}

	if err := k.setChannel(ctx, record); err != nil {
		return types.Channel{}, err
	}

	return record, nil
}

// OnChanConnect completes the handshake on open_ack or open_confirm and moves the channel to
// OPEN. The returned bool is false when the channel was already OPEN with the same parameters.
func (k Keeper) OnChanConnect(
	ctx entrypointtypes.Context,
	channel wasmvmtypes.IBCChannel,
	finalVersion string,
	ack bool,
) (types.Channel, bool, error) {
	existing, found, err := k.getChannel(ctx, channel.Endpoint.ChannelID)
	if err != nil {
		return types.Channel{}, false, err
	}

	if !found {
		return types.Channel{}, false, errorsmod.Wrapf(channeltypes.ErrChannelNotFound, "port ID (%s) channel ID (%s)", channel.Endpoint.PortID, channel.Endpoint.ChannelID)
	}

	if existing.IsClosed() {
		return types.Channel{}, false, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel %s is closed", existing.ChannelID)
	}

	if _, err := k.config.ParseVersion(finalVersion); err != nil {
		return types.Channel{}, false, err
	}

	if finalVersion != existing.Version || !existing.Matches(channel) {
		return types.Channel{}, false, errorsmod.Wrapf(types.ErrChannelMismatch, "channel %s was recorded with version %s", existing.ChannelID, existing.Version)
	}

	if existing.IsOpen() {
		if existing.CounterpartyChannelID != channel.CounterpartyEndpoint.ChannelID {
			return types.Channel{}, false, errorsmod.Wrapf(types.ErrChannelMismatch, "channel %s is open with counterparty channel %s", existing.ChannelID, existing.CounterpartyChannelID)
		}

		return existing, false, nil
	}

	expectedState := channeltypes.TRYOPEN
	if ack {
		expectedState = channeltypes.INIT
	}

	if existing.State != expectedState {
		return types.Channel{}, false, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel state is not %s (got %s)", expectedState, existing.State)
	}

	if err := validate.ChannelID(channel.CounterpartyEndpoint.ChannelID); err != nil {
		return types.Channel{}, false, errorsmod.Wrap(err, "invalid counterparty channel")
	}

	existing.CounterpartyChannelID = channel.CounterpartyEndpoint.ChannelID
	existing.State = channeltypes.OPEN

	if err := k.setChannel(ctx, existing); err != nil {
		return types.Channel{}, false, err
	}

	if err := k.initSequences(ctx, existing.ChannelID); err != nil {
		return types.Channel{}, false, err
	}

	return existing, true, nil
}

// OnChanClose moves the channel to CLOSED. Both close_init and close_confirm converge on the
// same terminal state; closing a CLOSED channel is a no-op and the returned bool is false.
func (k Keeper) OnChanClose(ctx entrypointtypes.Context, channel wasmvmtypes.IBCChannel) (types.Channel, bool, error) {
	existing, found, err := k.getChannel(ctx, channel.Endpoint.ChannelID)
	if err != nil {
		return types.Channel{}, false, err
	}

	if !found {
		return types.Channel{}, false, errorsmod.Wrapf(channeltypes.ErrChannelNotFound, "port ID (%s) channel ID (%s)", channel.Endpoint.PortID, channel.Endpoint.ChannelID)
	}

	if existing.PortID != channel.Endpoint.PortID {
		return types.Channel{}, false, errorsmod.Wrapf(types.ErrChannelMismatch, "channel %s is bound to port %s", existing.ChannelID, existing.PortID)
	}

	if existing.IsClosed() {
		return existing, false, nil
	}

	existing.State = channeltypes.CLOSED
	if err := k.setChannel(ctx, existing); err != nil {
		return types.Channel{}, false, err
	}

	return existing, true, nil
}

// GetChannel returns the channel recorded under channelID.
func (k Keeper) GetChannel(ctx entrypointtypes.Context, channelID string) (types.Channel, error) {
	channel, found, err := k.getChannel(ctx, channelID)
	if err != nil {
		return types.Channel{}, err
	}

	if !found {
		return types.Channel{}, errorsmod.Wrapf(channeltypes.ErrChannelNotFound, "channel ID (%s)", channelID)
	}

	return channel, nil
}

// GetAllChannels returns every channel recorded by the contract.
func (k Keeper) GetAllChannels(ctx entrypointtypes.Context) ([]types.Channel, error) {
	var channels []types.Channel
	err := k.Channels.Walk(ctx, nil, func(_ string, channel types.Channel) (bool, error) {
		channels = append(channels, channel)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return channels, nil
}

// GetNextSequenceSend returns the sequence the next outbound packet on channelID will carry.
func (k Keeper) GetNextSequenceSend(ctx entrypointtypes.Context, channelID string) (uint64, error) {
	seq, err := k.NextSequenceSend.Get(ctx, channelID)
	if errors.Is(err, collections.ErrNotFound) {
		return 1, nil
	}

	return seq, err
}

// GetLastSequenceRecv returns the highest sequence delivered on channelID, zero if none.
func (k Keeper) GetLastSequenceRecv(ctx entrypointtypes.Context, channelID string) (uint64, error) {
	seq, err := k.LastSequenceRecv.Get(ctx, channelID)
	if errors.Is(err, collections.ErrNotFound) {
		return 0, nil
	}

	return seq, err
}

// validateChannelEnd checks the host supplied channel end of a new channel against the
// contract port and the allowed orderings.
func (k Keeper) validateChannelEnd(ctx entrypointtypes.Context, channel wasmvmtypes.IBCChannel) error {
	if portID := types.PortIDForContract(ctx.ContractAddress()); channel.Endpoint.PortID != portID {
		return errorsmod.Wrapf(porttypes.ErrInvalidPort, "invalid port: %s, expected %s", channel.Endpoint.PortID, portID)
	}

	if err := validate.ChannelID(channel.Endpoint.ChannelID); err != nil {
		return err
	}

	allowedOrders, err := k.allowedOrders(ctx)
	if err != nil {
		return err
	}

	if !internalcollections.Contains(string(channel.Order), allowedOrders) {
		return errorsmod.Wrapf(channeltypes.ErrInvalidChannelOrdering, "expected one of %v channel, got %s", allowedOrders, channel.Order)
	}

	return nil
}

func (k Keeper) getChannel(ctx entrypointtypes.Context, channelID string) (types.Channel, bool, error) {
	channel, err := k.Channels.Get(ctx, channelID)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Channel{}, false, nil
	} else if err != nil {
		return types.Channel{}, false, err
	}

	return channel, true, nil
}

// initSequences sets the cursors of a newly opened channel, sequences start at 1.
func (k Keeper) initSequences(ctx entrypointtypes.Context, channelID string) error {
	if has, err := k.NextSequenceSend.Has(ctx, channelID); err != nil || has {
		return err
	}

	if err := k.NextSequenceSend.Set(ctx, channelID, 1); err != nil {
		return err
	}

	return k.LastSequenceRecv.Set(ctx, channelID, 0)
}
