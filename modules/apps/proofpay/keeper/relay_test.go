package keeper_test

import (
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	ibctesting "github.com/proofpay/proofpay-ibc/testing"
)

// setupPath opens a channel between chainA and chainB, registers alice on chainA with a
// balance of 1000 and bob on chainB.
func (suite *KeeperTestSuite) setupPath() *ibctesting.Path {
	path := ibctesting.NewPath(suite.chainA, suite.chainB)
	path.Setup()

	suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
	suite.chainA.Deposit(suite.chainA.SenderAccounts[1].SenderAccount, 1000)
	suite.chainB.RegisterUser(suite.chainB.SenderAccounts[1].SenderAccount, "bob")

	return path
}

func (suite *KeeperTestSuite) timeoutTimestamp(chain *ibctesting.TestChain) uint64 {
	return uint64(chain.CurrentTime.Add(time.Hour).UnixNano())
}

func (suite *KeeperTestSuite) TestSendPacket() {
	var (
		path      *ibctesting.Path
		channelID string
		data      types.PaymentPacketData
		timeout   uint64
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
			"failure: channel not found", func() {
				channelID = "channel-9"
			}, channeltypes.ErrChannelNotFound,
		},
		{
			"failure: channel closed", func() {
				suite.Require().NoError(path.Close())
			}, channeltypes.ErrInvalidChannelState,
		},
		{
			"failure: invalid packet data", func() {
				data.RecipientUsername = "Bob"
			}, types.ErrInvalidUsername,
		},
		{
			"failure: timeout not after block time", func() {
				timeout = uint64(suite.chainA.CurrentTime.UnixNano())
			}, types.ErrInvalidPacketTimeout,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			path = ibctesting.NewPath(suite.chainA, suite.chainB)
			path.Setup()

			channelID = path.EndpointA.ChannelID
			data = types.NewPaymentPacketData(1, ibctesting.DefaultDenom, "100", account(suite.chainA, 1), "alice", "bob", "")
			timeout = suite.timeoutTimestamp(suite.chainA)

			tc.malleate()

			ctx := suite.chainA.GetContext()
			record, msg, err := suite.chainA.Keeper.SendPacket(ctx, channelID, data, timeout)
			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(uint64(1), record.Sequence)
			suite.Require().Equal(types.PacketStatusPending, record.Status)
			suite.Require().Equal(data.GetBytes(), msg.IBC.SendPacket.Data)
			suite.Require().Equal(channelID, msg.IBC.SendPacket.ChannelID)

			suite.Require().Nil(msg.IBC.SendPacket.Timeout.Block)
			suite.Require().Equal(timeout, msg.IBC.SendPacket.Timeout.Timestamp)

			// the next packet gets the next sequence
			record, _, err = suite.chainA.Keeper.SendPacket(ctx, channelID, data, timeout)
			suite.Require().NoError(err)
			suite.Require().Equal(uint64(2), record.Sequence)

			pending, err := suite.chainA.Keeper.GetPendingPackets(ctx, channelID)
			suite.Require().NoError(err)
			suite.Require().Len(pending, 2)
		})
	}
}

func (suite *KeeperTestSuite) TestOnRecvPacket() {
	var (
		path   *ibctesting.Path
		packet wasmvmtypes.IBCPacket
		data   types.PaymentPacketData
	)

	testCases := []struct {
		name       string
		malleate   func()
		expSuccess bool
		expAckErr  error
		expErr     error
	}{
		{
			"success", func() {}, true, nil, nil,
		},
		{
			"success: empty description", func() {
				data.Description = ""
			}, true, nil, nil,
		},
		{
			"error ack: recipient not registered", func() {
				data.RecipientUsername = "carol"
			}, false, types.ErrUserNotFound, nil,
		},
		{
			"error ack: undecodable packet data", func() {
				packet.Data = []byte("mock packet data")
			}, false, ibcerrors.ErrInvalidType, nil,
		},
		{
			"error ack: invalid packet data", func() {
				data.PaymentID = 0
			}, false, types.ErrInvalidPacketData, nil,
		},
		{
			"error ack: returning token was never escrowed", func() {
				data.Denom = transfertypes.NewDenom(ibctesting.DefaultDenom, transfertypes.NewHop(path.EndpointA.PortID(), path.EndpointA.ChannelID)).Path()
			}, false, ibcerrors.ErrInsufficientFunds, nil,
		},
		{
			"failure: channel not found", func() {
				packet.Dest.ChannelID = "channel-9"
			}, false, nil, channeltypes.ErrChannelNotFound,
		},
		{
			"failure: packet source is not the counterparty", func() {
				packet.Src.ChannelID = "channel-5"
			}, false, nil, types.ErrChannelMismatch,
		},
		{
			"failure: packet destination port is not the contract port", func() {
				packet.Dest.PortID = "wasm.other"
			}, false, nil, types.ErrChannelMismatch,
		},
		{
			"failure: channel closed", func() {
				suite.Require().NoError(path.Close())
			}, false, nil, channeltypes.ErrInvalidChannelState,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			path = suite.setupPath()
			data = types.NewPaymentPacketData(1, ibctesting.DefaultDenom, "100", account(suite.chainA, 1), "alice", "bob", "thanks")
			packet = wasmvmtypes.IBCPacket{
				Src:      path.EndpointA.IBCEndpoint(),
				Dest:     path.EndpointB.IBCEndpoint(),
				Sequence: 1,
			}

			tc.malleate()

			if packet.Data == nil {
				packet.Data = data.GetBytes()
			}

			ctx := suite.chainB.GetContext()
			result, err := suite.chainB.Keeper.OnRecvPacket(ctx, packet)

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)

				_, err := suite.chainB.Keeper.GetReceipt(ctx, path.EndpointB.ChannelID, packet.Sequence)
				suite.Require().ErrorIs(err, ibcerrors.ErrNotFound)
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(tc.expSuccess, result.Success)
			suite.Require().False(result.Redelivered)

			receipt, err := suite.chainB.Keeper.GetReceipt(ctx, path.EndpointB.ChannelID, packet.Sequence)
			suite.Require().NoError(err)
			suite.Require().Equal(result.Acknowledgement, receipt.Acknowledgement)

			lastSequence, err := suite.chainB.Keeper.GetLastSequenceRecv(ctx, path.EndpointB.ChannelID)
			suite.Require().NoError(err)
			suite.Require().Equal(uint64(1), lastSequence)

			bob := account(suite.chainB, 1)
			voucher := transfertypes.NewDenom(ibctesting.DefaultDenom, transfertypes.NewHop(path.EndpointB.PortID(), path.EndpointB.ChannelID))

			if tc.expSuccess {
				suite.Require().Equal(types.NewSuccessAcknowledgement(1).Acknowledgement(), result.Acknowledgement)

				payment, err := suite.chainB.Keeper.GetPayment(ctx, result.PaymentID)
				suite.Require().NoError(err)
				suite.Require().Equal(types.PaymentKindIncoming, payment.Kind)
				suite.Require().Equal(types.PaymentStatusCompleted, payment.Status)
				suite.Require().Equal(uint64(1), payment.RemotePaymentID)
				suite.Require().Equal(bob, payment.Recipient)

				suite.Require().Equal(int64(100), suite.chainB.GetBalance(bob, voucher.IBCDenom()).Amount.Int64())

				denom, err := suite.chainB.Keeper.GetDenom(ctx, voucher.IBCDenom())
				suite.Require().NoError(err)
				suite.Require().Equal(voucher.Path(), denom.Path())
			} else {
				suite.Require().ErrorIs(result.Err, tc.expAckErr)
				suite.Require().Equal(types.NewErrorAcknowledgement(result.Err).Acknowledgement(), result.Acknowledgement)

				// a rejected packet leaves no business state behind
				_, err := suite.chainB.Keeper.GetPayment(ctx, 1)
				suite.Require().ErrorIs(err, types.ErrPaymentNotFound)
				suite.Require().True(suite.chainB.GetBalance(bob, voucher.IBCDenom()).IsZero())
			}

			// redelivery returns the stored acknowledgement and changes nothing
			redelivered, err := suite.chainB.Keeper.OnRecvPacket(ctx, packet)
			suite.Require().NoError(err)
			suite.Require().True(redelivered.Redelivered)
			suite.Require().Equal(result.Acknowledgement, redelivered.Acknowledgement)
			suite.Require().Equal(result.Success, redelivered.Success)

			payments, err := suite.chainB.Keeper.GetPaymentsByUser(ctx, "bob")
			suite.Require().NoError(err)
			if tc.expSuccess {
				suite.Require().Len(payments, 1)
			} else {
				suite.Require().Empty(payments)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestOnRecvPacketOrdered() {
	path := ibctesting.NewPath(suite.chainA, suite.chainB)
	path.SetChannelOrdered()
	path.Setup()

	suite.chainB.RegisterUser(suite.chainB.SenderAccounts[1].SenderAccount, "bob")

	newPacket := func(sequence uint64) wasmvmtypes.IBCPacket {
		data := types.NewPaymentPacketData(sequence, ibctesting.DefaultDenom, "1", account(suite.chainA, 1), "", "bob", "")
		return wasmvmtypes.IBCPacket{
			Data:     data.GetBytes(),
			Src:      path.EndpointA.IBCEndpoint(),
			Dest:     path.EndpointB.IBCEndpoint(),
			Sequence: sequence,
		}
	}

	ctx := suite.chainB.GetContext()

	_, err := suite.chainB.Keeper.OnRecvPacket(ctx, newPacket(2))
	suite.Require().ErrorIs(err, channeltypes.ErrPacketSequenceOutOfOrder)

	for _, sequence := range []uint64{1, 2} {
		result, err := suite.chainB.Keeper.OnRecvPacket(ctx, newPacket(sequence))
		suite.Require().NoError(err)
		suite.Require().True(result.Success)
	}

	// delivered sequences are answered from their receipt
	result, err := suite.chainB.Keeper.OnRecvPacket(ctx, newPacket(1))
	suite.Require().NoError(err)
	suite.Require().True(result.Redelivered)

	_, err = suite.chainB.Keeper.OnRecvPacket(ctx, newPacket(4))
	suite.Require().ErrorIs(err, channeltypes.ErrPacketSequenceOutOfOrder)
}

func (suite *KeeperTestSuite) TestOnAcknowledgementPacket() {
	var (
		path   *ibctesting.Path
		packet wasmvmtypes.IBCPacket
		ack    []byte
	)

	testCases := []struct {
		name       string
		malleate   func()
		expStatus  types.PaymentStatus
		expBalance int64
		expErr     error
	}{
		{
			"success: success acknowledgement", func() {}, types.PaymentStatusCompleted, 900, nil,
		},
		{
			"success: error acknowledgement refunds the sender", func() {
				ack = types.NewErrorAcknowledgement(types.ErrUserNotFound).Acknowledgement()
			}, types.PaymentStatusRefunded, 1000, nil,
		},
		{
			"success: opaque result completes the payment", func() {
				ack = channeltypes.NewResultAcknowledgement([]byte{0x01}).Acknowledgement()
			}, types.PaymentStatusCompleted, 900, nil,
		},
		{
			"success: acknowledgement after the channel closed", func() {
				suite.Require().NoError(path.Close())
			}, types.PaymentStatusCompleted, 900, nil,
		},
		{
			"failure: unknown packet", func() {
				packet.Sequence = 2
			}, types.PaymentStatusPending, 900, types.ErrUnknownPacket,
		},
		{
			"failure: packet data does not match the record", func() {
				data, err := types.UnmarshalPacketData(packet.Data)
				suite.Require().NoError(err)

				data.Amount = "1000"
				packet.Data = data.GetBytes()
			}, types.PaymentStatusPending, 900, types.ErrPacketDataMismatch,
		},
		{
			"failure: packet destination is not the counterparty", func() {
				packet.Dest.ChannelID = "channel-5"
			}, types.PaymentStatusPending, 900, types.ErrChannelMismatch,
		},
		{
			"failure: invalid acknowledgement", func() {
				ack = []byte("ack")
			}, types.PaymentStatusPending, 900, ibcerrors.ErrUnknownRequest,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			path = suite.setupPath()

			var err error
			packet, err = path.EndpointA.SendCrossChainPayment(account(suite.chainA, 1), "bob", wasmvmtypes.NewCoin(100, ibctesting.DefaultDenom))
			suite.Require().NoError(err)

			ack = types.NewSuccessAcknowledgement(7).Acknowledgement()

			tc.malleate()

			ctx := suite.chainA.GetContext()
			record, _, resolved, err := suite.chainA.Keeper.OnAcknowledgementPacket(ctx, packet, ack)

			alice := account(suite.chainA, 1)
			payment, perr := suite.chainA.Keeper.GetPayment(ctx, 1)
			suite.Require().NoError(perr)
			suite.Require().Equal(tc.expStatus, payment.Status)
			suite.Require().Equal(tc.expBalance, suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				return
			}

			suite.Require().NoError(err)
			suite.Require().True(resolved)
			suite.Require().True(record.Status.IsResolved())

			escrow, err := suite.chainA.Keeper.GetEscrow(ctx, path.EndpointA.ChannelID, ibctesting.DefaultDenom)
			suite.Require().NoError(err)
			if tc.expStatus == types.PaymentStatusRefunded {
				suite.Require().True(escrow.IsZero())
			} else {
				suite.Require().Equal(int64(100), escrow.Amount.Int64())
			}

			// the packet is resolved once, later deliveries change nothing
			_, _, resolved, err = suite.chainA.Keeper.OnAcknowledgementPacket(ctx, packet, types.NewErrorAcknowledgement(types.ErrUserNotFound).Acknowledgement())
			suite.Require().NoError(err)
			suite.Require().False(resolved)

			_, resolved, err = suite.chainA.Keeper.OnTimeoutPacket(ctx, packet)
			suite.Require().NoError(err)
			suite.Require().False(resolved)

			suite.Require().Equal(tc.expBalance, suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())
		})
	}
}

func (suite *KeeperTestSuite) TestOnTimeoutPacket() {
	path := suite.setupPath()
	alice := account(suite.chainA, 1)

	packet, err := path.EndpointA.SendCrossChainPayment(alice, "bob", wasmvmtypes.NewCoin(100, ibctesting.DefaultDenom))
	suite.Require().NoError(err)

	ctx := suite.chainA.GetContext()
	suite.Require().Equal(int64(900), suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())

	record, resolved, err := suite.chainA.Keeper.OnTimeoutPacket(ctx, packet)
	suite.Require().NoError(err)
	suite.Require().True(resolved)
	suite.Require().Equal(types.PacketStatusTimedOut, record.Status)

	payment, err := suite.chainA.Keeper.GetPayment(ctx, 1)
	suite.Require().NoError(err)
	suite.Require().Equal(types.PaymentStatusRefunded, payment.Status)
	suite.Require().Equal(int64(1000), suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())

	// a packet is never reversed twice
	_, resolved, err = suite.chainA.Keeper.OnTimeoutPacket(ctx, packet)
	suite.Require().NoError(err)
	suite.Require().False(resolved)

	_, _, resolved, err = suite.chainA.Keeper.OnAcknowledgementPacket(ctx, packet, types.NewSuccessAcknowledgement(1).Acknowledgement())
	suite.Require().NoError(err)
	suite.Require().False(resolved)

	suite.Require().Equal(int64(1000), suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())

	pending, err := suite.chainA.Keeper.GetPendingPackets(ctx, path.EndpointA.ChannelID)
	suite.Require().NoError(err)
	suite.Require().Empty(pending)
}
