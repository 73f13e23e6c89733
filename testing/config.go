package ibctesting

import (
	"time"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
)

const (
	// DefaultGasLimit is the gas budget of every entry point call made by a TestChain.
	DefaultGasLimit uint64 = 10_000_000

	// DefaultConnectionID is the connection every test channel is built on.
	DefaultConnectionID = "connection-0"

	// DefaultDenom is the native token attached to calls in tests.
	DefaultDenom = types.DefaultDenom
)

type ChannelConfig struct {
	Version string
	Order   channeltypes.Order
}

func NewChannelConfig() *ChannelConfig {
	return &ChannelConfig{
		Version: types.Version,
		Order:   channeltypes.UNORDERED,
	}
}

// ContractConfig returns the contract build settings used by the default coordinator.
func ContractConfig() types.Config {
	cfg := types.DefaultConfig()
	cfg.DefaultPacketTimeout = 10 * time.Minute
	return cfg
}
