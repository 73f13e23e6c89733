package keeper

import (
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// CreateRequest records a request asking the user registered as msg.ToUsername to pay sender.
// Nothing is debited until the payer settles the request with a payment.
func (k Keeper) CreateRequest(ctx entrypointtypes.Context, sender string, kind types.RequestKind, msg types.CreateRequestMsg) (types.PaymentRequest, error) {
	requester, err := k.GetUserByWallet(ctx, sender)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	payer, err := k.GetUser(ctx, msg.ToUsername)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	if payer.Wallet == sender {
		return types.PaymentRequest{}, types.ErrSelfPayment
	}

	proofType, err := types.RequestProofType(kind, msg.ProofType)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	if err := k.validateDescription(msg.Description); err != nil {
		return types.PaymentRequest{}, err
	}

	coin, err := types.ToCoin(msg.Amount)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	seq, err := k.RequestSeq.Next(ctx)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	request := types.PaymentRequest{
		ID:                seq + 1,
		Kind:              kind,
		Requester:         sender,
		RequesterUsername: requester.Username,
		PayerUsername:     payer.Username,
		Amount:            coin,
		Description:       msg.Description,
		ProofType:         proofType,
		Status:            types.RequestStatusPending,
		CreatedAt:         blockTime(ctx),
		UpdatedAt:         blockTime(ctx),
	}

	if err := k.setRequest(ctx, request); err != nil {
		return types.PaymentRequest{}, err
	}

	return request, nil
}

// CancelRequest withdraws a pending request. Either party may cancel it.
func (k Keeper) CancelRequest(ctx entrypointtypes.Context, sender string, msg types.CancelRequestMsg) (types.PaymentRequest, error) {
	request, err := k.GetRequest(ctx, msg.RequestID)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	if request.Requester != sender {
		payer, err := k.GetUser(ctx, request.PayerUsername)
		if err != nil {
			return types.PaymentRequest{}, err
		}

		if payer.Wallet != sender {
			return types.PaymentRequest{}, errorsmod.Wrapf(ibcerrors.ErrUnauthorized, "only the parties can cancel request %d", request.ID)
		}
	}

	if !request.IsPending() {
		return types.PaymentRequest{}, errorsmod.Wrapf(types.ErrInvalidPaymentStatus, "request %d is %s", request.ID, request.Status)
	}

	request.Status = types.RequestStatusCancelled
	request.UpdatedAt = blockTime(ctx)

	if err := k.setRequest(ctx, request); err != nil {
		return types.PaymentRequest{}, err
	}

	return request, nil
}

// GetRequest returns the payment request with the given id.
func (k Keeper) GetRequest(ctx entrypointtypes.Context, id uint64) (types.PaymentRequest, error) {
	request, err := k.Requests.Get(ctx, id)
	if errors.Is(err, collections.ErrNotFound) {
		return types.PaymentRequest{}, errorsmod.Wrapf(types.ErrRequestNotFound, "request %d", id)
	}

	return request, err
}

// GetPendingRequests returns the pending requests username is asked to pay, in id order.
func (k Keeper) GetPendingRequests(ctx entrypointtypes.Context, username string) ([]types.PaymentRequest, error) {
	var requests []types.PaymentRequest
	rng := collections.NewPrefixedPairRange[string, uint64](types.NormalizeUsername(username))
	err := k.PendingRequests.Walk(ctx, rng, func(key collections.Pair[string, uint64]) (bool, error) {
		request, err := k.Requests.Get(ctx, key.K2())
		if err != nil {
			return true, err
		}

		requests = append(requests, request)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// requestForPayment returns the pending request msg settles. The payment must come from the
// payer and match the requester and the requested amount.
func (k Keeper) requestForPayment(ctx entrypointtypes.Context, from, to types.User, coin sdk.Coin, msg types.SendPaymentMsg) (types.PaymentRequest, error) {
	request, err := k.GetRequest(ctx, msg.RequestID)
	if err != nil {
		return types.PaymentRequest{}, err
	}

	if request.PayerUsername != from.Username {
		return types.PaymentRequest{}, errorsmod.Wrapf(ibcerrors.ErrUnauthorized, "request %d is addressed to %s", request.ID, request.PayerUsername)
	}

	if !request.IsPending() {
		return types.PaymentRequest{}, errorsmod.Wrapf(types.ErrInvalidPaymentStatus, "request %d is %s", request.ID, request.Status)
	}

	switch {
	case request.RequesterUsername != to.Username:
		return types.PaymentRequest{}, errorsmod.Wrapf(types.ErrRequestMismatch, "request %d was made by %s", request.ID, request.RequesterUsername)
	case coin.Denom != request.Amount.Denom || !coin.Amount.Equal(request.Amount.Amount):
		return types.PaymentRequest{}, errorsmod.Wrapf(types.ErrRequestMismatch, "request %d is for %s, got %s", request.ID, request.Amount, coin)
	case msg.ProofType != "" && msg.ProofType != request.ProofType:
		return types.PaymentRequest{}, errorsmod.Wrapf(types.ErrRequestMismatch, "request %d requires proof type %s", request.ID, request.ProofType)
	}

	return request, nil
}

// setRequest stores the request and keeps the pending index of the payer in sync.
func (k Keeper) setRequest(ctx entrypointtypes.Context, request types.PaymentRequest) error {
	if err := k.Requests.Set(ctx, request.ID, request); err != nil {
		return err
	}

	key := collections.Join(request.PayerUsername, request.ID)
	if request.IsPending() {
		return k.PendingRequests.Set(ctx, key)
	}

	return k.PendingRequests.Remove(ctx, key)
}
