package keeper

import (
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// SetChannel is a wrapper around setChannel for testing purposes.
func (k Keeper) SetChannel(ctx entrypointtypes.Context, channel types.Channel) error {
	return k.setChannel(ctx, channel)
}

// SetPacket is a wrapper around setPacket for testing purposes.
func (k Keeper) SetPacket(ctx entrypointtypes.Context, record types.PacketRecord) error {
	return k.setPacket(ctx, record)
}
