package keeper_test

import (
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
)

func (suite *KeeperTestSuite) TestRegisterUser() {
	var (
		wallet string
		msg    types.RegisterUserMsg
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"success: username is normalized",
			func() {
				msg.Username = "  Alice_1 "
			},
			nil,
		},
		{
			"failure: invalid username",
			func() {
				msg.Username = "al"
			},
			types.ErrInvalidUsername,
		},
		{
			"failure: username taken",
			func() {
				_, err := suite.chainA.Keeper.RegisterUser(suite.chainA.GetContext(), account(suite.chainA, 2), types.RegisterUserMsg{Username: "ALICE_1", DisplayName: "Other"})
				suite.Require().NoError(err)
			},
			types.ErrUsernameTaken,
		},
		{
			"failure: wallet already registered",
			func() {
				_, err := suite.chainA.Keeper.RegisterUser(suite.chainA.GetContext(), wallet, types.RegisterUserMsg{Username: "other", DisplayName: "Other"})
				suite.Require().NoError(err)
			},
			types.ErrWalletRegistered,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			wallet = account(suite.chainA, 1)
			msg = types.RegisterUserMsg{Username: "alice_1", DisplayName: "Alice", ProfilePicture: "ipfs://alice"}

			tc.malleate()

			ctx := suite.chainA.GetContext()
			user, err := suite.chainA.Keeper.RegisterUser(ctx, wallet, msg)

			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(types.User{
					Username:       "alice_1",
					DisplayName:    "Alice",
					ProfilePicture: "ipfs://alice",
					Wallet:         wallet,
					RegisteredAt:   uint64(suite.chainA.CurrentTime.Unix()),
				}, user)

				stored, err := suite.chainA.Keeper.GetUser(ctx, "ALICE_1")
				suite.Require().NoError(err)
				suite.Require().Equal(user, stored)

				byWallet, err := suite.chainA.Keeper.GetUserByWallet(ctx, wallet)
				suite.Require().NoError(err)
				suite.Require().Equal(user, byWallet)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestGetUser() {
	ctx := suite.chainA.GetContext()

	_, err := suite.chainA.Keeper.GetUser(ctx, "nobody")
	suite.Require().ErrorIs(err, types.ErrUserNotFound)

	_, err = suite.chainA.Keeper.GetUserByWallet(ctx, account(suite.chainA, 1))
	suite.Require().ErrorIs(err, types.ErrUserNotFound)
}

func (suite *KeeperTestSuite) TestIsUsernameAvailable() {
	suite.chainA.RegisterUser(suite.chainA.SenderAccounts[1].SenderAccount, "alice")

	testCases := []struct {
		username     string
		expAvailable bool
	}{
		{"bob", true},
		{"alice", false},
		{"ALICE", false},
		{"al", false},
		{"bob!", false},
	}

	for _, tc := range testCases {
		available, err := suite.chainA.Keeper.IsUsernameAvailable(suite.chainA.GetContext(), tc.username)
		suite.Require().NoError(err)
		suite.Require().Equal(tc.expAvailable, available, tc.username)
	}
}
