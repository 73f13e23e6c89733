package keeper

import (
	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// SendFriendRequest asks the user registered as msg.ToUsername to befriend the sender. If that
// user already asked the sender, the two become friends and accepted is true.
func (k Keeper) SendFriendRequest(ctx entrypointtypes.Context, sender string, msg types.SendFriendRequestMsg) (from, to types.User, accepted bool, err error) {
	from, err = k.GetUserByWallet(ctx, sender)
	if err != nil {
		return types.User{}, types.User{}, false, err
	}

	to, err = k.GetUser(ctx, msg.ToUsername)
	if err != nil {
		return types.User{}, types.User{}, false, err
	}

	if from.Username == to.Username {
		return types.User{}, types.User{}, false, types.ErrSelfFriendRequest
	}

	friends, err := k.AreFriends(ctx, from.Username, to.Username)
	if err != nil {
		return types.User{}, types.User{}, false, err
	}
	if friends {
		return types.User{}, types.User{}, false, errorsmod.Wrapf(types.ErrAlreadyFriends, "%s and %s", from.Username, to.Username)
	}

	sent, err := k.FriendRequests.Has(ctx, collections.Join(to.Username, from.Username))
	if err != nil {
		return types.User{}, types.User{}, false, err
	}
	if sent {
		return types.User{}, types.User{}, false, errorsmod.Wrapf(types.ErrFriendRequestExists, "%s already asked %s", from.Username, to.Username)
	}

	received, err := k.FriendRequests.Has(ctx, collections.Join(from.Username, to.Username))
	if err != nil {
		return types.User{}, types.User{}, false, err
	}
	if received {
		if err := k.addFriends(ctx, from.Username, to.Username); err != nil {
			return types.User{}, types.User{}, false, err
		}

		return from, to, true, nil
	}

	if err := k.FriendRequests.Set(ctx, collections.Join(to.Username, from.Username)); err != nil {
		return types.User{}, types.User{}, false, err
	}

	return from, to, false, nil
}

// AcceptFriendRequest accepts the friend request msg.FromUsername sent to the sender.
func (k Keeper) AcceptFriendRequest(ctx entrypointtypes.Context, sender string, msg types.FriendRequestReplyMsg) (types.User, string, error) {
	user, requester, err := k.pendingFriendRequest(ctx, sender, msg)
	if err != nil {
		return types.User{}, "", err
	}

	if err := k.addFriends(ctx, user.Username, requester); err != nil {
		return types.User{}, "", err
	}

	return user, requester, nil
}

// DeclineFriendRequest drops the friend request msg.FromUsername sent to the sender.
func (k Keeper) DeclineFriendRequest(ctx entrypointtypes.Context, sender string, msg types.FriendRequestReplyMsg) (types.User, string, error) {
	user, requester, err := k.pendingFriendRequest(ctx, sender, msg)
	if err != nil {
		return types.User{}, "", err
	}

	if err := k.FriendRequests.Remove(ctx, collections.Join(user.Username, requester)); err != nil {
		return types.User{}, "", err
	}

	return user, requester, nil
}

// AreFriends returns true if the two users are friends.
func (k Keeper) AreFriends(ctx entrypointtypes.Context, usernameA, usernameB string) (bool, error) {
	return k.Friends.Has(ctx, collections.Join(types.NormalizeUsername(usernameA), types.NormalizeUsername(usernameB)))
}

// GetFriends returns the usernames of the friends of username in lexicographic order.
func (k Keeper) GetFriends(ctx entrypointtypes.Context, username string) ([]string, error) {
	return walkUsernames(ctx, k.Friends, username)
}

// GetPendingFriendRequests returns the usernames of the users waiting for username to answer
// their friend request.
func (k Keeper) GetPendingFriendRequests(ctx entrypointtypes.Context, username string) ([]string, error) {
	return walkUsernames(ctx, k.FriendRequests, username)
}

func (k Keeper) pendingFriendRequest(ctx entrypointtypes.Context, sender string, msg types.FriendRequestReplyMsg) (types.User, string, error) {
	user, err := k.GetUserByWallet(ctx, sender)
	if err != nil {
		return types.User{}, "", err
	}

	requester := types.NormalizeUsername(msg.FromUsername)
	has, err := k.FriendRequests.Has(ctx, collections.Join(user.Username, requester))
	if err != nil {
		return types.User{}, "", err
	}
	if !has {
		return types.User{}, "", errorsmod.Wrapf(types.ErrNoFriendRequest, "from %s to %s", requester, user.Username)
	}

	return user, requester, nil
}

// addFriends records the friendship in both directions and drops any request between the two.
func (k Keeper) addFriends(ctx entrypointtypes.Context, usernameA, usernameB string) error {
	for _, pair := range []collections.Pair[string, string]{
		collections.Join(usernameA, usernameB),
		collections.Join(usernameB, usernameA),
	} {
		if err := k.Friends.Set(ctx, pair); err != nil {
			return err
		}

		if err := k.FriendRequests.Remove(ctx, pair); err != nil {
			return err
		}
	}

	return nil
}

func walkUsernames(ctx entrypointtypes.Context, set collections.KeySet[collections.Pair[string, string]], username string) ([]string, error) {
	var usernames []string
	rng := collections.NewPrefixedPairRange[string, string](types.NormalizeUsername(username))
	err := set.Walk(ctx, rng, func(key collections.Pair[string, string]) (bool, error) {
		usernames = append(usernames, key.K2())
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	return usernames, nil
}
