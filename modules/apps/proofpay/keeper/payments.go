package keeper

import (
	"errors"
	"strings"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// Deposit credits the funds attached to the call to the internal balance of sender.
func (k Keeper) Deposit(ctx entrypointtypes.Context, sender string, funds []wasmvmtypes.Coin) (sdk.Coins, error) {
	if len(funds) == 0 {
		return nil, errorsmod.Wrap(types.ErrInvalidAmount, "no funds attached")
	}

	var deposited sdk.Coins
	for _, fund := range funds {
		coin, err := types.ToCoin(fund)
		if err != nil {
			return nil, err
		}

		if err := k.AddBalance(ctx, sender, coin); err != nil {
			return nil, err
		}

		deposited = deposited.Add(coin)
	}

	return deposited, nil
}

// Withdraw debits the internal balance of sender and returns the bank message paying the
// tokens out of the contract account. Vouchers only exist inside the contract and cannot be
// withdrawn.
func (k Keeper) Withdraw(ctx entrypointtypes.Context, sender string, amount wasmvmtypes.Coin) (sdk.Coin, wasmvmtypes.CosmosMsg, error) {
	coin, err := types.ToCoin(amount)
	if err != nil {
		return sdk.Coin{}, wasmvmtypes.CosmosMsg{}, err
	}

	if strings.HasPrefix(coin.Denom, transfertypes.DenomPrefix+"/") {
		return sdk.Coin{}, wasmvmtypes.CosmosMsg{}, errorsmod.Wrapf(ibcerrors.ErrInvalidCoins, "voucher %s cannot be withdrawn", coin.Denom)
	}

	if err := k.SubBalance(ctx, sender, coin); err != nil {
		return sdk.Coin{}, wasmvmtypes.CosmosMsg{}, err
	}

	msg := wasmvmtypes.CosmosMsg{
		Bank: &wasmvmtypes.BankMsg{
			Send: &wasmvmtypes.SendMsg{
				ToAddress: sender,
				Amount:    []wasmvmtypes.Coin{types.FromCoin(coin)},
			},
		},
	}

	return coin, msg, nil
}

// SendPayment pays a registered user of this contract out of the sender's balance. Payments
// without a proof requirement settle immediately, others are held in the payment until the
// recipient submits proof. A payment settling a request inherits the proof type and
// description of the request and marks it paid.
func (k Keeper) SendPayment(ctx entrypointtypes.Context, sender string, msg types.SendPaymentMsg) (types.Payment, error) {
	from, err := k.GetUserByWallet(ctx, sender)
	if err != nil {
		return types.Payment{}, err
	}

	to, err := k.GetUser(ctx, msg.ToUsername)
	if err != nil {
		return types.Payment{}, err
	}

	if to.Wallet == sender {
		return types.Payment{}, types.ErrSelfPayment
	}

	if err := msg.ProofType.Validate(); err != nil {
		return types.Payment{}, err
	}

	if err := k.validateDescription(msg.Description); err != nil {
		return types.Payment{}, err
	}

	coin, err := types.ToCoin(msg.Amount)
	if err != nil {
		return types.Payment{}, err
	}

	proofType := msg.ProofType
	if proofType == "" {
		proofType = types.ProofTypeNone
	}

	description := msg.Description

	var request types.PaymentRequest
	if msg.RequestID != 0 {
		request, err = k.requestForPayment(ctx, from, to, coin, msg)
		if err != nil {
			return types.Payment{}, err
		}

		proofType = request.ProofType
		if description == "" {
			description = request.Description
		}
	}

	if err := k.SubBalance(ctx, sender, coin); err != nil {
		return types.Payment{}, err
	}

	id, err := k.nextPaymentID(ctx)
	if err != nil {
		return types.Payment{}, err
	}

	payment := types.Payment{
		ID:                id,
		Kind:              types.PaymentKindLocal,
		Sender:            sender,
		SenderUsername:    from.Username,
		Recipient:         to.Wallet,
		RecipientUsername: to.Username,
		Amount:            coin,
		Description:       description,
		ProofType:         proofType,
		Status:            types.PaymentStatusPending,
		RequestID:         msg.RequestID,
		CreatedAt:         blockTime(ctx),
		UpdatedAt:         blockTime(ctx),
	}

	if !proofType.RequiresProof() {
		if err := k.AddBalance(ctx, to.Wallet, coin); err != nil {
			return types.Payment{}, err
		}

		payment.Status = types.PaymentStatusCompleted
	}

	if err := k.setPayment(ctx, payment); err != nil {
		return types.Payment{}, err
	}

	if msg.RequestID != 0 {
		request.Status = types.RequestStatusPaid
		request.PaymentID = payment.ID
		request.UpdatedAt = blockTime(ctx)

		if err := k.setRequest(ctx, request); err != nil {
			return types.Payment{}, err
		}
	}

	return payment, nil
}

// SubmitProof releases a pending local payment to its recipient.
func (k Keeper) SubmitProof(ctx entrypointtypes.Context, sender string, msg types.SubmitProofMsg) (types.Payment, error) {
	payment, err := k.GetPayment(ctx, msg.PaymentID)
	if err != nil {
		return types.Payment{}, err
	}

	if payment.Recipient != sender {
		return types.Payment{}, errorsmod.Wrapf(ibcerrors.ErrUnauthorized, "only the recipient can submit proof for payment %d", payment.ID)
	}

	if payment.Kind != types.PaymentKindLocal || payment.Status != types.PaymentStatusPending {
		return types.Payment{}, errorsmod.Wrapf(types.ErrInvalidPaymentStatus, "payment %d is %s", payment.ID, payment.Status)
	}

	if strings.TrimSpace(msg.ProofData) == "" {
		return types.Payment{}, errorsmod.Wrap(types.ErrInvalidProof, "proof data cannot be empty")
	}

	if err := k.validateDescription(msg.ProofData); err != nil {
		return types.Payment{}, err
	}

	if err := k.AddBalance(ctx, payment.Recipient, payment.Amount); err != nil {
		return types.Payment{}, err
	}

	payment.ProofData = msg.ProofData
	payment.Status = types.PaymentStatusCompleted
	payment.UpdatedAt = blockTime(ctx)

	if err := k.setPayment(ctx, payment); err != nil {
		return types.Payment{}, err
	}

	return payment, nil
}

// CancelPayment returns a pending local payment to its sender.
func (k Keeper) CancelPayment(ctx entrypointtypes.Context, sender string, msg types.CancelPaymentMsg) (types.Payment, error) {
	payment, err := k.GetPayment(ctx, msg.PaymentID)
	if err != nil {
		return types.Payment{}, err
	}

	if payment.Sender != sender {
		return types.Payment{}, errorsmod.Wrapf(ibcerrors.ErrUnauthorized, "only the sender can cancel payment %d", payment.ID)
	}

	if payment.Kind != types.PaymentKindLocal || payment.Status != types.PaymentStatusPending {
		return types.Payment{}, errorsmod.Wrapf(types.ErrInvalidPaymentStatus, "payment %d is %s", payment.ID, payment.Status)
	}

	if err := k.AddBalance(ctx, payment.Sender, payment.Amount); err != nil {
		return types.Payment{}, err
	}

	payment.Status = types.PaymentStatusCancelled
	payment.UpdatedAt = blockTime(ctx)

	if err := k.setPayment(ctx, payment); err != nil {
		return types.Payment{}, err
	}

	return payment, nil
}

// GetPayment returns the payment with the given id.
func (k Keeper) GetPayment(ctx entrypointtypes.Context, id uint64) (types.Payment, error) {
	payment, err := k.Payments.Get(ctx, id)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Payment{}, errorsmod.Wrapf(types.ErrPaymentNotFound, "payment %d", id)
	}

	return payment, err
}

// GetPaymentsByUser returns the payments sent or received by username, in id order.
func (k Keeper) GetPaymentsByUser(ctx entrypointtypes.Context, username string) ([]types.Payment, error) {
	var payments []types.Payment
	rng := collections.NewPrefixedPairRange[string, uint64](types.NormalizeUsername(username))
	err := k.PaymentsByUser.Walk(ctx, rng, func(key collections.Pair[string, uint64]) (bool, error) {
		payment, err := k.Payments.Get(ctx, key.K2())
		if err != nil {
			return true, err
		}

		payments = append(payments, payment)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return payments, nil
}

// GetPaymentHistory returns a page of the payments of username, newest first. startAfter is
// the id of the last payment of the previous page, zero for the first page. The returned
// cursor is zero once no payments remain.
func (k Keeper) GetPaymentHistory(ctx entrypointtypes.Context, username string, startAfter uint64, limit uint32) ([]types.Payment, uint64, error) {
	switch {
	case limit == 0:
		limit = types.DefaultHistoryLimit
	case limit > types.MaxHistoryLimit:
		limit = types.MaxHistoryLimit
	}

	rng := collections.NewPrefixedPairRange[string, uint64](types.NormalizeUsername(username)).Descending()
	if startAfter != 0 {
		rng = rng.EndExclusive(startAfter)
	}

	var (
		payments []types.Payment
		more     bool
	)
	err := k.PaymentsByUser.Walk(ctx, rng, func(key collections.Pair[string, uint64]) (bool, error) {
		if len(payments) == int(limit) {
			more = true
			return true, nil
		}

		payment, err := k.Payments.Get(ctx, key.K2())
		if err != nil {
			return true, err
		}

		payments = append(payments, payment)
		return false, nil
	})
	if err != nil {
		return nil, 0, err
	}

	var next uint64
	if more {
		next = payments[len(payments)-1].ID
	}

	return payments, next, nil
}

// setPayment stores the payment and indexes it under the usernames of the parties registered
// with this contract. The remote party of a cross-chain payment is not indexed.
func (k Keeper) setPayment(ctx entrypointtypes.Context, payment types.Payment) error {
	if err := k.Payments.Set(ctx, payment.ID, payment); err != nil {
		return err
	}

	var usernames []string
	switch payment.Kind {
	case types.PaymentKindOutgoing:
		usernames = []string{payment.SenderUsername}
	case types.PaymentKindIncoming:
		usernames = []string{payment.RecipientUsername}
	default:
		usernames = []string{payment.SenderUsername, payment.RecipientUsername}
	}

	for _, username := range usernames {
		if username == "" {
			continue
		}

		if err := k.PaymentsByUser.Set(ctx, collections.Join(username, payment.ID)); err != nil {
			return err
		}
	}

	return nil
}

// nextPaymentID returns the next payment id. Ids start at 1.
func (k Keeper) nextPaymentID(ctx entrypointtypes.Context) (uint64, error) {
	seq, err := k.PaymentSeq.Next(ctx)
	if err != nil {
		return 0, err
	}

	return seq + 1, nil
}

func (k Keeper) validateDescription(description string) error {
	if len(description) > k.config.MaxDescriptionLength {
		return errorsmod.Wrapf(types.ErrDescriptionTooLong, "length %d exceeds %d", len(description), k.config.MaxDescriptionLength)
	}

	return nil
}

// blockTime returns the block time in unix seconds.
func blockTime(ctx entrypointtypes.Context) uint64 {
	return uint64(ctx.BlockTime().Unix())
}
