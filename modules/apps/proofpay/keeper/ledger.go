package keeper

import (
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// GetBalance returns the internal balance of address in denom.
func (k Keeper) GetBalance(ctx entrypointtypes.Context, address, denom string) (sdk.Coin, error) {
	amount, err := k.Balances.Get(ctx, collections.Join(address, denom))
	if errors.Is(err, collections.ErrNotFound) {
		return sdk.NewCoin(denom, sdkmath.ZeroInt()), nil
	} else if err != nil {
		return sdk.Coin{}, err
	}

	return sdk.NewCoin(denom, amount), nil
}

// GetAllBalances returns every non-zero internal balance of address, sorted by denom.
func (k Keeper) GetAllBalances(ctx entrypointtypes.Context, address string) (sdk.Coins, error) {
	var balances sdk.Coins
	rng := collections.NewPrefixedPairRange[string, string](address)
	err := k.Balances.Walk(ctx, rng, func(key collections.Pair[string, string], amount sdkmath.Int) (bool, error) {
		balances = append(balances, sdk.NewCoin(key.K2(), amount))
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return balances.Sort(), nil
}

// AddBalance credits coin to the internal balance of address.
func (k Keeper) AddBalance(ctx entrypointtypes.Context, address string, coin sdk.Coin) error {
	balance, err := k.GetBalance(ctx, address, coin.Denom)
	if err != nil {
		return err
	}

	return k.Balances.Set(ctx, collections.Join(address, coin.Denom), balance.Amount.Add(coin.Amount))
}

// SubBalance debits coin from the internal balance of address. Zero balances are removed.
func (k Keeper) SubBalance(ctx entrypointtypes.Context, address string, coin sdk.Coin) error {
	balance, err := k.GetBalance(ctx, address, coin.Denom)
	if err != nil {
		return err
	}

	if balance.Amount.LT(coin.Amount) {
		return errorsmod.Wrapf(ibcerrors.ErrInsufficientFunds, "%s is smaller than %s", balance, coin)
	}

	remaining := balance.Amount.Sub(coin.Amount)
	if remaining.IsZero() {
		return k.Balances.Remove(ctx, collections.Join(address, coin.Denom))
	}

	return k.Balances.Set(ctx, collections.Join(address, coin.Denom), remaining)
}

// GetEscrow returns the amount of denom escrowed for tokens sent out on channelID.
func (k Keeper) GetEscrow(ctx entrypointtypes.Context, channelID, denom string) (sdk.Coin, error) {
	amount, err := k.Escrows.Get(ctx, collections.Join(channelID, denom))
	if errors.Is(err, collections.ErrNotFound) {
		return sdk.NewCoin(denom, sdkmath.ZeroInt()), nil
	} else if err != nil {
		return sdk.Coin{}, err
	}

	return sdk.NewCoin(denom, amount), nil
}

// escrowToken moves token out of the sender's balance into the channel escrow.
func (k Keeper) escrowToken(ctx entrypointtypes.Context, channelID string, token sdk.Coin) error {
	escrow, err := k.GetEscrow(ctx, channelID, token.Denom)
	if err != nil {
		return err
	}

	return k.Escrows.Set(ctx, collections.Join(channelID, token.Denom), escrow.Amount.Add(token.Amount))
}

// unescrowToken releases token from the channel escrow. The escrow can never go negative: a
// counterparty returning more than was sent out is rejected.
func (k Keeper) unescrowToken(ctx entrypointtypes.Context, channelID string, token sdk.Coin) error {
	escrow, err := k.GetEscrow(ctx, channelID, token.Denom)
	if err != nil {
		return err
	}

	if escrow.Amount.LT(token.Amount) {
		return errorsmod.Wrapf(ibcerrors.ErrInsufficientFunds, "unable to unescrow %s: channel %s escrows %s", token, channelID, escrow)
	}

	remaining := escrow.Amount.Sub(token.Amount)
	if remaining.IsZero() {
		return k.Escrows.Remove(ctx, collections.Join(channelID, token.Denom))
	}

	return k.Escrows.Set(ctx, collections.Join(channelID, token.Denom), remaining)
}
