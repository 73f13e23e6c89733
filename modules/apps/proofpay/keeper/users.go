package keeper

import (
	"errors"
	"strings"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// RegisterUser registers wallet under the requested username. A wallet holds a single
// username and usernames are unique.
func (k Keeper) RegisterUser(ctx entrypointtypes.Context, wallet string, msg types.RegisterUserMsg) (types.User, error) {
	username := types.NormalizeUsername(msg.Username)
	if err := types.ValidateUsername(username); err != nil {
		return types.User{}, err
	}

	if existing, err := k.UsernameByWallet.Get(ctx, wallet); err == nil {
		return types.User{}, errorsmod.Wrapf(types.ErrWalletRegistered, "%s is registered as %s", wallet, existing)
	} else if !errors.Is(err, collections.ErrNotFound) {
		return types.User{}, err
	}

	taken, err := k.Users.Has(ctx, username)
	if err != nil {
		return types.User{}, err
	}
	if taken {
		return types.User{}, errorsmod.Wrap(types.ErrUsernameTaken, username)
	}

	user := types.User{
		Username:       username,
		DisplayName:    msg.DisplayName,
		ProfilePicture: msg.ProfilePicture,
		Wallet:         wallet,
		RegisteredAt:   blockTime(ctx),
	}

	if err := k.Users.Set(ctx, username, user); err != nil {
		return types.User{}, err
	}

	if err := k.UsernameByWallet.Set(ctx, wallet, username); err != nil {
		return types.User{}, err
	}

	return user, nil
}

// GetUser returns the user registered under username.
func (k Keeper) GetUser(ctx entrypointtypes.Context, username string) (types.User, error) {
	username = types.NormalizeUsername(username)

	user, err := k.Users.Get(ctx, username)
	if errors.Is(err, collections.ErrNotFound) {
		return types.User{}, errorsmod.Wrap(types.ErrUserNotFound, username)
	}

	return user, err
}

// GetUserByWallet returns the user registered by wallet.
func (k Keeper) GetUserByWallet(ctx entrypointtypes.Context, wallet string) (types.User, error) {
	username, err := k.UsernameByWallet.Get(ctx, wallet)
	if errors.Is(err, collections.ErrNotFound) {
		return types.User{}, errorsmod.Wrapf(types.ErrUserNotFound, "no user registered by %s", wallet)
	} else if err != nil {
		return types.User{}, err
	}

	return k.GetUser(ctx, username)
}

// IsUsernameAvailable returns true if username is valid and not yet registered.
func (k Keeper) IsUsernameAvailable(ctx entrypointtypes.Context, username string) (bool, error) {
	username = types.NormalizeUsername(username)
	if types.ValidateUsername(username) != nil {
		return false, nil
	}

	taken, err := k.Users.Has(ctx, username)
	if err != nil {
		return false, err
	}

	return !taken, nil
}

// SearchUsers returns the users whose username starts with query, in username order. A zero
// limit or one above MaxSearchResults returns at most MaxSearchResults users.
func (k Keeper) SearchUsers(ctx entrypointtypes.Context, query string, limit uint32) ([]types.User, error) {
	prefix := types.NormalizeUsername(query)
	if prefix == "" {
		return nil, errorsmod.Wrap(ibcerrors.ErrInvalidRequest, "search query cannot be empty")
	}

	if limit == 0 || limit > types.MaxSearchResults {
		limit = types.MaxSearchResults
	}

	var users []types.User
	rng := new(collections.Range[string]).StartInclusive(prefix)
	err := k.Users.Walk(ctx, rng, func(username string, user types.User) (bool, error) {
		if !strings.HasPrefix(username, prefix) {
			return true, nil
		}

		users = append(users, user)
		return len(users) == int(limit), nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}
