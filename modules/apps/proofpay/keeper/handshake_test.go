package keeper_test

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v10/modules/core/05-port/types"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	ibctesting "github.com/proofpay/proofpay-ibc/testing"
)

// newChannelEnd returns the channel-0 end of chainA as handed to the contract on open_init.
func (suite *KeeperTestSuite) newChannelEnd() wasmvmtypes.IBCChannel {
	return wasmvmtypes.IBCChannel{
		Endpoint:             wasmvmtypes.IBCEndpoint{PortID: suite.chainA.PortID, ChannelID: "channel-0"},
		CounterpartyEndpoint: wasmvmtypes.IBCEndpoint{PortID: suite.chainB.PortID},
		Order:                wasmvmtypes.Unordered,
		Version:              types.Version,
		ConnectionID:         ibctesting.DefaultConnectionID,
	}
}

func (suite *KeeperTestSuite) TestOnChanOpenInit() {
	var channel wasmvmtypes.IBCChannel

	testCases := []struct {
		name       string
		malleate   func()
		expVersion string
		expErr     error
	}{
		{
			"success", func() {}, types.Version, nil,
		},
		{
			"success: empty version proposes the default", func() {
				channel.Version = ""
			}, types.Version, nil,
		},
		{
			"success: ordered channel", func() {
				channel.Order = wasmvmtypes.Ordered
			}, types.Version, nil,
		},
		{
			"success: identical replay", func() {
				_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, "", false)
				suite.Require().NoError(err)
			}, types.Version, nil,
		},
		{
			"failure: invalid port", func() {
				channel.Endpoint.PortID = "transfer"
			}, "", porttypes.ErrInvalidPort,
		},
		{
			"failure: invalid channel identifier", func() {
				channel.Endpoint.ChannelID = "ch"
			}, "", channeltypes.ErrInvalidChannelIdentifier,
		},
		{
			"failure: ordering not allowed", func() {
				params, err := suite.chainA.Keeper.GetParams(suite.chainA.GetContext())
				suite.Require().NoError(err)

				params.AllowedOrders = []string{channeltypes.ORDERED.String()}
				suite.Require().NoError(suite.chainA.Keeper.SetParams(suite.chainA.GetContext(), params))
			}, "", channeltypes.ErrInvalidChannelOrdering,
		},
		{
			"failure: unknown ordering", func() {
				channel.Order = "ORDER_NONE_UNSPECIFIED"
			}, "", channeltypes.ErrInvalidChannelOrdering,
		},
		{
			"failure: unsupported version", func() {
				channel.Version = "ics20-1"
			}, "", types.ErrInvalidVersion,
		},
		{
			"failure: replay with different parameters", func() {
				_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, "", false)
				suite.Require().NoError(err)

				channel.ConnectionID = "connection-1"
			}, "", types.ErrChannelMismatch,
		},
		{
			"failure: channel already open", func() {
				suite.openChannel(channel)
			}, "", channeltypes.ErrInvalidChannelState,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			channel = suite.newChannelEnd()

			tc.malleate()

			record, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, "", false)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(tc.expVersion, record.Version)
				suite.Require().Equal(channeltypes.INIT, record.State)

				stored, err := suite.chainA.Keeper.GetChannel(suite.chainA.GetContext(), channel.Endpoint.ChannelID)
				suite.Require().NoError(err)
				suite.Require().Equal(record, stored)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestOnChanOpenTry() {
	var (
		channel             wasmvmtypes.IBCChannel
		counterpartyVersion string
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success", func() {}, nil,
		},
		{
			"success: proposed version is ignored", func() {
				channel.Version = "ics20-1"
			}, nil,
		},
		{
			"failure: unsupported counterparty version", func() {
				counterpartyVersion = "proofpay-2"
			}, types.ErrInvalidVersion,
		},
		{
			"failure: empty counterparty version", func() {
				counterpartyVersion = ""
			}, types.ErrInvalidVersion,
		},
		{
			"failure: recorded in INIT", func() {
				_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, "", false)
				suite.Require().NoError(err)
			}, types.ErrChannelMismatch,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			channel = suite.newChannelEnd()
			channel.CounterpartyEndpoint.ChannelID = "channel-3"
			counterpartyVersion = types.Version

			tc.malleate()

			record, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, counterpartyVersion, true)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(types.Version, record.Version)
				suite.Require().Equal(channeltypes.TRYOPEN, record.State)
				suite.Require().Equal("channel-3", record.CounterpartyChannelID)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestOnChanConnect() {
	var (
		channel wasmvmtypes.IBCChannel
		version string
		ack     bool
	)

	testCases := []struct {
		name       string
		malleate   func()
		expChanged bool
		expErr     error
	}{
		{
			"success: open_ack", func() {}, true, nil,
		},
		{
			"success: open_confirm", func() {
				suite.Require().NoError(suite.chainA.Keeper.Channels.Remove(suite.chainA.GetContext(), "channel-0"))

				_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, types.Version, true)
				suite.Require().NoError(err)

				ack = false
			}, true, nil,
		},
		{
			"success: replay on an open channel is a no-op", func() {
				_, _, err := suite.chainA.Keeper.OnChanConnect(suite.chainA.GetContext(), channel, version, ack)
				suite.Require().NoError(err)
			}, false, nil,
		},
		{
			"failure: channel not found", func() {
				channel.Endpoint.ChannelID = "channel-9"
			}, false, channeltypes.ErrChannelNotFound,
		},
		{
			"failure: open_confirm on a channel in INIT", func() {
				ack = false
			}, false, channeltypes.ErrInvalidChannelState,
		},
		{
			"failure: unsupported final version", func() {
				version = "proofpay-2"
			}, false, types.ErrInvalidVersion,
		},
		{
			"failure: ordering changed during the handshake", func() {
				channel.Order = wasmvmtypes.Ordered
			}, false, types.ErrChannelMismatch,
		},
		{
			"failure: invalid counterparty channel", func() {
				channel.CounterpartyEndpoint.ChannelID = ""
			}, false, channeltypes.ErrInvalidChannelIdentifier,
		},
		{
			"failure: replay with another counterparty channel", func() {
				_, _, err := suite.chainA.Keeper.OnChanConnect(suite.chainA.GetContext(), channel, version, ack)
				suite.Require().NoError(err)

				channel.CounterpartyEndpoint.ChannelID = "channel-4"
			}, false, types.ErrChannelMismatch,
		},
		{
			"failure: channel closed", func() {
				_, _, err := suite.chainA.Keeper.OnChanClose(suite.chainA.GetContext(), channel)
				suite.Require().NoError(err)
			}, false, channeltypes.ErrInvalidChannelState,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			channel = suite.newChannelEnd()
			_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), channel, "", false)
			suite.Require().NoError(err)

			channel.CounterpartyEndpoint.ChannelID = "channel-3"
			version = types.Version
			ack = true

			tc.malleate()

			record, changed, err := suite.chainA.Keeper.OnChanConnect(suite.chainA.GetContext(), channel, version, ack)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(tc.expChanged, changed)
				suite.Require().True(record.IsOpen())
				suite.Require().Equal("channel-3", record.CounterpartyChannelID)

				nextSequenceSend, err := suite.chainA.Keeper.GetNextSequenceSend(suite.chainA.GetContext(), "channel-0")
				suite.Require().NoError(err)
				suite.Require().Equal(uint64(1), nextSequenceSend)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestOnChanClose() {
	var channel wasmvmtypes.IBCChannel

	testCases := []struct {
		name       string
		malleate   func()
		expChanged bool
		expErr     error
	}{
		{
			"success: close open channel", func() {}, true, nil,
		},
		{
			"success: close channel during the handshake", func() {
				suite.Require().NoError(suite.chainA.Keeper.Channels.Remove(suite.chainA.GetContext(), "channel-0"))

				_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), suite.newChannelEnd(), "", false)
				suite.Require().NoError(err)
			}, true, nil,
		},
		{
			"success: closing a closed channel is a no-op", func() {
				_, _, err := suite.chainA.Keeper.OnChanClose(suite.chainA.GetContext(), channel)
				suite.Require().NoError(err)
			}, false, nil,
		},
		{
			"failure: channel not found", func() {
				channel.Endpoint.ChannelID = "channel-9"
			}, false, channeltypes.ErrChannelNotFound,
		},
		{
			"failure: port mismatch", func() {
				channel.Endpoint.PortID = "wasm.other"
			}, false, types.ErrChannelMismatch,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			channel = suite.newChannelEnd()
			channel.CounterpartyEndpoint.ChannelID = "channel-3"
			suite.openChannel(channel)

			tc.malleate()

			record, changed, err := suite.chainA.Keeper.OnChanClose(suite.chainA.GetContext(), channel)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(tc.expChanged, changed)
				suite.Require().True(record.IsClosed())
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestHandshakeBeforeInstantiate() {
	cfg := ibctesting.ContractConfig()
	cfg.AllowedOrders = []string{channeltypes.ORDERED.String()}

	chain := ibctesting.NewUninstantiatedTestChain(suite.T(), suite.coordinator, "uninstantiated-1", cfg)

	channel := wasmvmtypes.IBCChannel{
		Endpoint:             wasmvmtypes.IBCEndpoint{PortID: chain.PortID, ChannelID: "channel-0"},
		CounterpartyEndpoint: wasmvmtypes.IBCEndpoint{PortID: suite.chainB.PortID},
		Order:                wasmvmtypes.Unordered,
		Version:              types.Version,
		ConnectionID:         ibctesting.DefaultConnectionID,
	}

	// the build config decides the orderings until the contract is instantiated
	_, err := chain.Keeper.OnChanOpen(chain.GetContext(), channel, "", false)
	suite.Require().ErrorIs(err, channeltypes.ErrInvalidChannelOrdering)

	channel.Order = wasmvmtypes.Ordered
	_, err = chain.Keeper.OnChanOpen(chain.GetContext(), channel, "", false)
	suite.Require().NoError(err)
}

// openChannel records channel as OPEN on chainA through open_init and open_ack.
func (suite *KeeperTestSuite) openChannel(channel wasmvmtypes.IBCChannel) {
	if channel.CounterpartyEndpoint.ChannelID == "" {
		channel.CounterpartyEndpoint.ChannelID = "channel-3"
	}

	initChannel := channel
	initChannel.CounterpartyEndpoint.ChannelID = ""

	_, err := suite.chainA.Keeper.OnChanOpen(suite.chainA.GetContext(), initChannel, "", false)
	suite.Require().NoError(err)

	_, _, err = suite.chainA.Keeper.OnChanConnect(suite.chainA.GetContext(), channel, types.Version, true)
	suite.Require().NoError(err)
}
