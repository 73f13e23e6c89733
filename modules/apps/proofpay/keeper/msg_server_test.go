package keeper_test

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	internalerrors "github.com/proofpay/proofpay-ibc/internal/errors"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	ibctesting "github.com/proofpay/proofpay-ibc/testing"
)

func (suite *KeeperTestSuite) TestInstantiate() {
	var msg types.InstantiateMsg

	testCases := []struct {
		name      string
		malleate  func()
		expParams func(sender string) types.Params
	}{
		{
			"success: defaults",
			func() {},
			func(sender string) types.Params {
				return types.DefaultParams(ibctesting.ContractConfig(), sender)
			},
		},
		{
			"success: custom params",
			func() {
				msg = types.InstantiateMsg{
					Admin:                account(suite.chainA, 3),
					Denom:                "uatom",
					PacketTimeoutSeconds: 60,
				}
			},
			func(string) types.Params {
				return types.NewParams(account(suite.chainA, 3), "uatom", 60, ibctesting.ContractConfig().AllowedOrders)
			},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			msg = types.InstantiateMsg{}
			chain := ibctesting.NewUninstantiatedTestChain(suite.T(), suite.coordinator, "uninstantiated-1", ibctesting.ContractConfig())

			tc.malleate()

			sender := chain.SenderAccount.String()
			_, err := chain.Instantiate(sender, msg)
			suite.Require().NoError(err)

			params, err := chain.Keeper.GetParams(chain.GetContext())
			suite.Require().NoError(err)
			suite.Require().Equal(tc.expParams(sender), params)

			// a contract is instantiated once
			_, err = chain.Instantiate(sender, types.InstantiateMsg{Denom: "uosmo"})
			suite.Require().ErrorIs(err, types.ErrAlreadyInstantiated)

			params, err = chain.Keeper.GetParams(chain.GetContext())
			suite.Require().NoError(err)
			suite.Require().Equal(tc.expParams(sender), params)
		})
	}
}

func (suite *KeeperTestSuite) TestInstantiateInvalidParams() {
	chain := ibctesting.NewUninstantiatedTestChain(suite.T(), suite.coordinator, "uninstantiated-1", ibctesting.ContractConfig())

	_, err := chain.Instantiate(chain.SenderAccount.String(), types.InstantiateMsg{Denom: "!"})
	suite.Require().ErrorIs(err, ibcerrors.ErrInvalidCoins)

	_, err = chain.Instantiate(chain.SenderAccount.String(), types.InstantiateMsg{PacketTimeoutSeconds: types.MaxPacketTimeoutSeconds + 1})
	suite.Require().ErrorIs(err, types.ErrInvalidPacketTimeout)

	_, err = chain.Keeper.GetParams(chain.GetContext())
	suite.Require().ErrorIs(err, types.ErrNotInstantiated)
}

func (suite *KeeperTestSuite) TestExecute() {
	var (
		sender string
		msg    types.ExecuteMsg
		funds  []wasmvmtypes.Coin
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: register user",
			func() {},
			nil,
		},
		{
			"success: deposit",
			func() {
				msg = types.ExecuteMsg{Deposit: &types.DepositMsg{}}
				funds = []wasmvmtypes.Coin{wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}
			},
			nil,
		},
		{
			"success: send payment with attached funds",
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[2].SenderAccount, "bob")

				msg = types.ExecuteMsg{SendPayment: &types.SendPaymentMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}}
				funds = []wasmvmtypes.Coin{wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}
			},
			nil,
		},
		{
			"success: create payment request",
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[2].SenderAccount, "bob")

				msg = types.ExecuteMsg{CreatePaymentRequest: &types.CreateRequestMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}}
			},
			nil,
		},
		{
			"success: pay a request with attached funds",
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[2].SenderAccount, "bob")

				_, err := suite.chainA.Execute(account(suite.chainA, 2), types.ExecuteMsg{CreateHelpRequest: &types.CreateRequestMsg{ToUsername: "alice", Amount: wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}})
				suite.Require().NoError(err)

				msg = types.ExecuteMsg{SendPayment: &types.SendPaymentMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom), RequestID: 1}}
				funds = []wasmvmtypes.Coin{wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}
			},
			nil,
		},
		{
			"success: send friend request",
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[2].SenderAccount, "bob")

				msg = types.ExecuteMsg{SendFriendRequest: &types.SendFriendRequestMsg{ToUsername: "bob"}}
			},
			nil,
		},
		{
			"failure: funds attached to a payment request",
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[2].SenderAccount, "bob")

				msg = types.ExecuteMsg{CreatePaymentRequest: &types.CreateRequestMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}}
				funds = []wasmvmtypes.Coin{wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}
			},
			ibcerrors.ErrInvalidCoins,
		},
		{
			"failure: funds attached to register user",
			func() {
				funds = []wasmvmtypes.Coin{wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}
			},
			ibcerrors.ErrInvalidCoins,
		},
		{
			"failure: deposit without funds",
			func() {
				msg = types.ExecuteMsg{Deposit: &types.DepositMsg{}}
			},
			types.ErrInvalidAmount,
		},
		{
			"failure: no variant",
			func() {
				msg = types.ExecuteMsg{}
			},
			types.ErrInvalidMsg,
		},
		{
			"failure: two variants",
			func() {
				msg.Deposit = &types.DepositMsg{}
			},
			types.ErrInvalidMsg,
		},
		{
			"failure: attached funds do not cover the payment",
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[2].SenderAccount, "bob")

				msg = types.ExecuteMsg{SendPayment: &types.SendPaymentMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(11, ibctesting.DefaultDenom)}}
				funds = []wasmvmtypes.Coin{wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom)}
			},
			ibcerrors.ErrInsufficientFunds,
		},
		{
			"failure: cross-chain timeout overflows",
			func() {
				msg = types.ExecuteMsg{SendCrossChainPayment: &types.SendCrossChainPaymentMsg{
					ChannelID:      "channel-0",
					ToUsername:     "bob",
					Amount:         wasmvmtypes.NewCoin(10, ibctesting.DefaultDenom),
					TimeoutSeconds: 18_446_744_074,
				}}
			},
			types.ErrInvalidPacketTimeout,
		},
		{
			"failure: update config by non admin",
			func() {
				msg = types.ExecuteMsg{UpdateConfig: &types.UpdateConfigMsg{PacketTimeoutSeconds: 5}}
			},
			ibcerrors.ErrUnauthorized,
		},
		{
			"failure: close channel by non admin",
			func() {
				path := ibctesting.NewPath(suite.chainA, suite.chainB)
				path.Setup()

				msg = types.ExecuteMsg{CloseChannel: &types.CloseChannelMsg{ChannelID: path.EndpointA.ChannelID}}
			},
			ibcerrors.ErrUnauthorized,
		},
		{
			"failure: contract not instantiated",
			func() {
				chain := ibctesting.NewUninstantiatedTestChain(suite.T(), suite.coordinator, "uninstantiated-1", ibctesting.ContractConfig())
				suite.chainA = chain
			},
			types.ErrNotInstantiated,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			sender = account(suite.chainA, 1)
			msg = types.ExecuteMsg{RegisterUser: &types.RegisterUserMsg{Username: "alice", DisplayName: "Alice"}}
			funds = nil

			tc.malleate()

			resp, err := suite.chainA.Execute(sender, msg, funds...)
			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Nil(resp)

				// a failed call leaves no state behind
				balances, err := suite.chainA.Keeper.GetAllBalances(suite.chainA.GetContext(), sender)
				suite.Require().NoError(err)
				suite.Require().Empty(balances)
				return
			}

			suite.Require().NoError(err)
			suite.Require().NotEmpty(resp.Attributes)
			suite.Require().NotEmpty(resp.Events)
		})
	}
}

func (suite *KeeperTestSuite) TestExecuteRaw() {
	testCases := []struct {
		name   string
		msg    []byte
		expErr error
	}{
		{"invalid json", []byte("{"), internalerrors.ErrInvalidPayload},
		{"unknown variant", []byte(`{"mint":{}}`), types.ErrInvalidMsg},
		{"unknown field", []byte(`{"deposit":{"amount":"1"}}`), types.ErrInvalidMsg},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.chainA.ExecuteRaw(account(suite.chainA, 1), tc.msg)
			suite.Require().ErrorIs(err, tc.expErr)
		})
	}
}

func (suite *KeeperTestSuite) TestExecuteWithdraw() {
	sender := account(suite.chainA, 1)
	suite.chainA.Deposit(suite.chainA.SenderAccounts[1].SenderAccount, 100)

	_, err := suite.chainA.Execute(sender, types.ExecuteMsg{Withdraw: &types.WithdrawMsg{Amount: wasmvmtypes.NewCoin(40, ibctesting.DefaultDenom)}})
	suite.Require().NoError(err)

	suite.Require().Equal([]wasmvmtypes.SendMsg{{
		ToAddress: sender,
		Amount:    []wasmvmtypes.Coin{wasmvmtypes.NewCoin(40, ibctesting.DefaultDenom)},
	}}, suite.chainA.BankSends)
	suite.Require().Equal(int64(60), suite.chainA.GetBalance(sender, ibctesting.DefaultDenom).Amount.Int64())

	// nothing is paid out when the withdrawal fails
	_, err = suite.chainA.Execute(sender, types.ExecuteMsg{Withdraw: &types.WithdrawMsg{Amount: wasmvmtypes.NewCoin(61, ibctesting.DefaultDenom)}})
	suite.Require().ErrorIs(err, ibcerrors.ErrInsufficientFunds)
	suite.Require().Len(suite.chainA.BankSends, 1)
}

func (suite *KeeperTestSuite) TestExecuteUpdateConfig() {
	admin := suite.chainA.SenderAccount.String()
	newAdmin := account(suite.chainA, 3)

	_, err := suite.chainA.Execute(admin, types.ExecuteMsg{UpdateConfig: &types.UpdateConfigMsg{
		Admin:                newAdmin,
		PacketTimeoutSeconds: 30,
		AllowedOrders:        []string{channeltypes.ORDERED.String()},
	}})
	suite.Require().NoError(err)

	params, err := suite.chainA.Keeper.GetParams(suite.chainA.GetContext())
	suite.Require().NoError(err)
	suite.Require().Equal(types.NewParams(newAdmin, ibctesting.DefaultDenom, 30, []string{channeltypes.ORDERED.String()}), params)

	// the previous admin lost its rights
	_, err = suite.chainA.Execute(admin, types.ExecuteMsg{UpdateConfig: &types.UpdateConfigMsg{PacketTimeoutSeconds: 5}})
	suite.Require().ErrorIs(err, ibcerrors.ErrUnauthorized)

	// invalid params are rejected
	_, err = suite.chainA.Execute(newAdmin, types.ExecuteMsg{UpdateConfig: &types.UpdateConfigMsg{AllowedOrders: []string{"ORDER_NONE_UNSPECIFIED"}}})
	suite.Require().Error(err)

	_, err = suite.chainA.Execute(newAdmin, types.ExecuteMsg{UpdateConfig: &types.UpdateConfigMsg{PacketTimeoutSeconds: 18_446_744_074}})
	suite.Require().ErrorIs(err, types.ErrInvalidPacketTimeout)

	params, err = suite.chainA.Keeper.GetParams(suite.chainA.GetContext())
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(30), params.PacketTimeoutSeconds)

	// new channels must use the updated orderings
	path := ibctesting.NewPath(suite.chainA, suite.chainB)
	suite.Require().ErrorIs(path.EndpointA.ChanOpenInit(), channeltypes.ErrInvalidChannelOrdering)

	path.SetChannelOrdered()
	suite.Require().NoError(path.EndpointA.ChanOpenInit())
}

func (suite *KeeperTestSuite) TestExecuteCloseChannel() {
	path := ibctesting.NewPath(suite.chainA, suite.chainB)
	path.Setup()

	admin := suite.chainA.SenderAccount.String()
	msg := types.ExecuteMsg{CloseChannel: &types.CloseChannelMsg{ChannelID: path.EndpointA.ChannelID}}

	_, err := suite.chainA.Execute(admin, types.ExecuteMsg{CloseChannel: &types.CloseChannelMsg{ChannelID: "channel-9"}})
	suite.Require().ErrorIs(err, channeltypes.ErrChannelNotFound)

	_, err = suite.chainA.Execute(admin, msg)
	suite.Require().NoError(err)

	hostChannel, ok := suite.chainA.GetChannel(path.EndpointA.ChannelID)
	suite.Require().True(ok)
	suite.Require().Equal(channeltypes.CLOSED, hostChannel.State)

	channel, err := suite.chainA.Keeper.GetChannel(suite.chainA.GetContext(), path.EndpointA.ChannelID)
	suite.Require().NoError(err)
	suite.Require().True(channel.IsClosed())

	_, err = suite.chainA.Execute(admin, msg)
	suite.Require().ErrorIs(err, channeltypes.ErrInvalidChannelState)

	// the counterparty follows with close_confirm
	suite.Require().NoError(path.EndpointB.ChanCloseConfirm())
}
