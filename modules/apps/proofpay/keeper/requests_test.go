package keeper_test

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	ibctesting "github.com/proofpay/proofpay-ibc/testing"
)

func (suite *KeeperTestSuite) TestCreateRequest() {
	var (
		sender string
		kind   types.RequestKind
		msg    types.CreateRequestMsg
	)

	testCases := []struct {
		name         string
		malleate     func()
		expProofType types.ProofType
		expErr       error
	}{
		{
			"success: payment request",
			func() {},
			types.ProofTypeNone,
			nil,
		},
		{
			"success: help request requires proof",
			func() {
				kind = types.RequestKindHelp
			},
			types.ProofTypeText,
			nil,
		},
		{
			"failure: requester not registered",
			func() {
				sender = account(suite.chainA, 3)
			},
			"",
			types.ErrUserNotFound,
		},
		{
			"failure: payer not registered",
			func() {
				msg.ToUsername = "carol"
			},
			"",
			types.ErrUserNotFound,
		},
		{
			"failure: request to self",
			func() {
				msg.ToUsername = "bob"
			},
			"",
			types.ErrSelfPayment,
		},
		{
			"failure: help request without proof",
			func() {
				kind = types.RequestKindHelp
				msg.ProofType = types.ProofTypeNone
			},
			"",
			types.ErrInvalidProof,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			_, bob := suite.setupUsers()
			sender = bob
			kind = types.RequestKindPayment
			msg = types.CreateRequestMsg{ToUsername: "Alice", Amount: wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom), Description: "rent"}

			tc.malleate()

			ctx := suite.chainA.GetContext()
			request, err := suite.chainA.Keeper.CreateRequest(ctx, sender, kind, msg)

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)

				pending, err := suite.chainA.Keeper.GetPendingRequests(ctx, "alice")
				suite.Require().NoError(err)
				suite.Require().Empty(pending)
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(uint64(1), request.ID)
			suite.Require().Equal(kind, request.Kind)
			suite.Require().Equal("bob", request.RequesterUsername)
			suite.Require().Equal("alice", request.PayerUsername)
			suite.Require().Equal(tc.expProofType, request.ProofType)
			suite.Require().True(request.IsPending())

			// nothing moves until the request is paid
			suite.Require().Equal(int64(1000), suite.chainA.GetBalance(account(suite.chainA, 1), ibctesting.DefaultDenom).Amount.Int64())

			pending, err := suite.chainA.Keeper.GetPendingRequests(ctx, "ALICE")
			suite.Require().NoError(err)
			suite.Require().Equal([]types.PaymentRequest{request}, pending)

			pending, err = suite.chainA.Keeper.GetPendingRequests(ctx, "bob")
			suite.Require().NoError(err)
			suite.Require().Empty(pending)
		})
	}
}

func (suite *KeeperTestSuite) TestPayRequest() {
	var msg types.SendPaymentMsg

	testCases := []struct {
		name     string
		kind     types.RequestKind
		malleate func()
		expErr   error
	}{
		{
			"success: payment request settles immediately",
			types.RequestKindPayment,
			func() {},
			nil,
		},
		{
			"success: help request is held until proof",
			types.RequestKindHelp,
			func() {},
			nil,
		},
		{
			"failure: request not found",
			types.RequestKindPayment,
			func() {
				msg.RequestID = 2
			},
			types.ErrRequestNotFound,
		},
		{
			"failure: amount does not match",
			types.RequestKindPayment,
			func() {
				msg.Amount = wasmvmtypes.NewCoin(299, ibctesting.DefaultDenom)
			},
			types.ErrRequestMismatch,
		},
		{
			"failure: denom does not match",
			types.RequestKindPayment,
			func() {
				msg.Amount = wasmvmtypes.NewCoin(300, "uatom")
			},
			types.ErrRequestMismatch,
		},
		{
			"failure: proof type does not match",
			types.RequestKindHelp,
			func() {
				msg.ProofType = types.ProofTypeNone
			},
			types.ErrRequestMismatch,
		},
		{
			"failure: recipient is not the requester",
			types.RequestKindPayment,
			func() {
				suite.chainA.RegisterUser(suite.chainA.SenderAccounts[3].SenderAccount, "carol")
				msg.ToUsername = "carol"
			},
			types.ErrRequestMismatch,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			alice, bob := suite.setupUsers()

			request, err := suite.chainA.Keeper.CreateRequest(suite.chainA.GetContext(), bob, tc.kind, types.CreateRequestMsg{
				ToUsername:  "alice",
				Amount:      wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom),
				Description: "rent",
			})
			suite.Require().NoError(err)

			msg = types.SendPaymentMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom), RequestID: request.ID}

			tc.malleate()

			ctx := suite.chainA.GetContext()
			payment, err := suite.chainA.Keeper.SendPayment(ctx, alice, msg)

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Equal(int64(1000), suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())

				stored, err := suite.chainA.Keeper.GetRequest(ctx, request.ID)
				suite.Require().NoError(err)
				suite.Require().True(stored.IsPending())
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(request.ID, payment.RequestID)
			suite.Require().Equal(request.ProofType, payment.ProofType)
			suite.Require().Equal("rent", payment.Description)
			suite.Require().Equal(int64(700), suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())

			stored, err := suite.chainA.Keeper.GetRequest(ctx, request.ID)
			suite.Require().NoError(err)
			suite.Require().Equal(types.RequestStatusPaid, stored.Status)
			suite.Require().Equal(payment.ID, stored.PaymentID)

			pending, err := suite.chainA.Keeper.GetPendingRequests(ctx, "alice")
			suite.Require().NoError(err)
			suite.Require().Empty(pending)

			if tc.kind == types.RequestKindPayment {
				suite.Require().Equal(types.PaymentStatusCompleted, payment.Status)
				suite.Require().Equal(int64(300), suite.chainA.GetBalance(bob, ibctesting.DefaultDenom).Amount.Int64())
			} else {
				// the proof flow of a regular payment releases the funds
				suite.Require().Equal(types.PaymentStatusPending, payment.Status)
				suite.Require().Equal(int64(0), suite.chainA.GetBalance(bob, ibctesting.DefaultDenom).Amount.Int64())

				_, err = suite.chainA.Keeper.SubmitProof(ctx, bob, types.SubmitProofMsg{PaymentID: payment.ID, ProofData: "done"})
				suite.Require().NoError(err)
				suite.Require().Equal(int64(300), suite.chainA.GetBalance(bob, ibctesting.DefaultDenom).Amount.Int64())
			}

			// a paid request cannot be paid twice
			_, err = suite.chainA.Keeper.SendPayment(ctx, alice, msg)
			suite.Require().ErrorIs(err, types.ErrInvalidPaymentStatus)
		})
	}
}

func (suite *KeeperTestSuite) TestPayRequestOnlyByPayer() {
	alice, bob := suite.setupUsers()
	carol := account(suite.chainA, 3)
	suite.chainA.RegisterUser(suite.chainA.SenderAccounts[3].SenderAccount, "carol")
	suite.chainA.Deposit(suite.chainA.SenderAccounts[3].SenderAccount, 1000)

	ctx := suite.chainA.GetContext()
	request, err := suite.chainA.Keeper.CreateRequest(ctx, bob, types.RequestKindPayment, types.CreateRequestMsg{
		ToUsername: "alice",
		Amount:     wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom),
	})
	suite.Require().NoError(err)

	_, err = suite.chainA.Keeper.SendPayment(ctx, carol, types.SendPaymentMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom), RequestID: request.ID})
	suite.Require().ErrorIs(err, ibcerrors.ErrUnauthorized)
	suite.Require().Equal(int64(1000), suite.chainA.GetBalance(carol, ibctesting.DefaultDenom).Amount.Int64())
	suite.Require().Equal(int64(1000), suite.chainA.GetBalance(alice, ibctesting.DefaultDenom).Amount.Int64())
}

func (suite *KeeperTestSuite) TestCancelRequest() {
	var (
		sender string
		msg    types.CancelRequestMsg
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: requester cancels",
			func() {
				sender = account(suite.chainA, 2)
			},
			nil,
		},
		{
			"success: payer declines",
			func() {},
			nil,
		},
		{
			"failure: request not found",
			func() {
				msg.RequestID = 2
			},
			types.ErrRequestNotFound,
		},
		{
			"failure: not a party",
			func() {
				sender = account(suite.chainA, 3)
			},
			ibcerrors.ErrUnauthorized,
		},
		{
			"failure: already cancelled",
			func() {
				_, err := suite.chainA.Keeper.CancelRequest(suite.chainA.GetContext(), sender, msg)
				suite.Require().NoError(err)
			},
			types.ErrInvalidPaymentStatus,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset

			alice, bob := suite.setupUsers()

			request, err := suite.chainA.Keeper.CreateRequest(suite.chainA.GetContext(), bob, types.RequestKindHelp, types.CreateRequestMsg{
				ToUsername: "alice",
				Amount:     wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom),
			})
			suite.Require().NoError(err)

			sender = alice
			msg = types.CancelRequestMsg{RequestID: request.ID}

			tc.malleate()

			ctx := suite.chainA.GetContext()
			cancelled, err := suite.chainA.Keeper.CancelRequest(ctx, sender, msg)

			if tc.expErr != nil {
				suite.Require().ErrorIs(err, tc.expErr)
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(types.RequestStatusCancelled, cancelled.Status)

			pending, err := suite.chainA.Keeper.GetPendingRequests(ctx, "alice")
			suite.Require().NoError(err)
			suite.Require().Empty(pending)

			_, err = suite.chainA.Keeper.SendPayment(ctx, alice, types.SendPaymentMsg{ToUsername: "bob", Amount: wasmvmtypes.NewCoin(300, ibctesting.DefaultDenom), RequestID: request.ID})
			suite.Require().ErrorIs(err, types.ErrInvalidPaymentStatus)
		})
	}
}
