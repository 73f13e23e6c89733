package keeper

import (
	"encoding/json"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/internal/validate"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// Query answers a query message with its JSON encoded response.
func (k Keeper) Query(ctx entrypointtypes.Context, msg types.QueryMsg) ([]byte, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	var (
		resp any
		err  error
	)
	switch {
	case msg.Config != nil:
		resp, err = k.queryConfig(ctx)
	case msg.User != nil:
		resp, err = k.queryUser(ctx, msg.User.Username)
	case msg.UserByWallet != nil:
		resp, err = k.queryUserByWallet(ctx, msg.UserByWallet.Wallet)
	case msg.IsUsernameAvailable != nil:
		resp, err = k.queryIsUsernameAvailable(ctx, msg.IsUsernameAvailable.Username)
	case msg.Balance != nil:
		resp, err = k.queryBalance(ctx, *msg.Balance)
	case msg.Balances != nil:
		resp, err = k.queryBalances(ctx, msg.Balances.Address)
	case msg.Payment != nil:
		resp, err = k.queryPayment(ctx, msg.Payment.PaymentID)
	case msg.PaymentsByUser != nil:
		resp, err = k.queryPaymentsByUser(ctx, msg.PaymentsByUser.Username)
	case msg.PaymentRequest != nil:
		resp, err = k.queryPaymentRequest(ctx, msg.PaymentRequest.RequestID)
	case msg.PendingRequests != nil:
		resp, err = k.queryPendingRequests(ctx, msg.PendingRequests.Username)
	case msg.PaymentHistory != nil:
		resp, err = k.queryPaymentHistory(ctx, *msg.PaymentHistory)
	case msg.SearchUsers != nil:
		resp, err = k.querySearchUsers(ctx, *msg.SearchUsers)
	case msg.AreFriends != nil:
		resp, err = k.queryAreFriends(ctx, *msg.AreFriends)
	case msg.UserFriends != nil:
		resp, err = k.queryUserFriends(ctx, msg.UserFriends.Username)
	case msg.PendingFriendRequests != nil:
		resp, err = k.queryPendingFriendRequests(ctx, msg.PendingFriendRequests.Username)
	case msg.Channel != nil:
		resp, err = k.queryChannel(ctx, msg.Channel.ChannelID)
	case msg.Channels != nil:
		resp, err = k.queryChannels(ctx)
	case msg.Packet != nil:
		resp, err = k.queryPacket(ctx, *msg.Packet)
	case msg.PendingPackets != nil:
		resp, err = k.queryPendingPackets(ctx, msg.PendingPackets.ChannelID)
	case msg.Receipt != nil:
		resp, err = k.queryReceipt(ctx, *msg.Receipt)
	case msg.Denom != nil:
		resp, err = k.queryDenom(ctx, msg.Denom.Hash)
	}
	if err != nil {
		return nil, err
	}

	bz, err := json.Marshal(resp)
	if err != nil {
		return nil, errorsmod.Wrapf(ibcerrors.ErrLogic, "failed to marshal query response: %v", err)
	}

	return bz, nil
}

func (k Keeper) queryConfig(ctx entrypointtypes.Context) (*types.ConfigResponse, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	return &types.ConfigResponse{
		Params:            params,
		IBCEnabled:        k.config.IBCEnabled,
		SupportedVersions: k.config.SupportedVersions,
	}, nil
}

func (k Keeper) queryUser(ctx entrypointtypes.Context, username string) (*types.UserResponse, error) {
	user, err := k.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	return &types.UserResponse{User: user}, nil
}

func (k Keeper) queryUserByWallet(ctx entrypointtypes.Context, wallet string) (*types.UserResponse, error) {
	user, err := k.GetUserByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	return &types.UserResponse{User: user}, nil
}

func (k Keeper) queryIsUsernameAvailable(ctx entrypointtypes.Context, username string) (*types.IsUsernameAvailableResponse, error) {
	available, err := k.IsUsernameAvailable(ctx, username)
	if err != nil {
		return nil, err
	}

	return &types.IsUsernameAvailableResponse{Available: available}, nil
}

func (k Keeper) queryBalance(ctx entrypointtypes.Context, req types.BalanceQuery) (*types.BalanceResponse, error) {
	balance, err := k.GetBalance(ctx, req.Address, req.Denom)
	if err != nil {
		return nil, err
	}

	return &types.BalanceResponse{Balance: types.FromCoin(balance)}, nil
}

func (k Keeper) queryBalances(ctx entrypointtypes.Context, address string) (*types.BalancesResponse, error) {
	balances, err := k.GetAllBalances(ctx, address)
	if err != nil {
		return nil, err
	}

	resp := &types.BalancesResponse{Balances: []wasmvmtypes.Coin{}}
	for _, balance := range balances {
		resp.Balances = append(resp.Balances, types.FromCoin(balance))
	}

	return resp, nil
}

func (k Keeper) queryPayment(ctx entrypointtypes.Context, id uint64) (*types.PaymentResponse, error) {
	payment, err := k.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	return &types.PaymentResponse{Payment: payment}, nil
}

func (k Keeper) queryPaymentsByUser(ctx entrypointtypes.Context, username string) (*types.PaymentsResponse, error) {
	payments, err := k.GetPaymentsByUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if payments == nil {
		payments = []types.Payment{}
	}

	return &types.PaymentsResponse{Payments: payments}, nil
}

func (k Keeper) queryPaymentRequest(ctx entrypointtypes.Context, id uint64) (*types.PaymentRequestResponse, error) {
	request, err := k.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	return &types.PaymentRequestResponse{Request: request}, nil
}

func (k Keeper) queryPendingRequests(ctx entrypointtypes.Context, username string) (*types.PaymentRequestsResponse, error) {
	requests, err := k.GetPendingRequests(ctx, username)
	if err != nil {
		return nil, err
	}

	if requests == nil {
		requests = []types.PaymentRequest{}
	}

	return &types.PaymentRequestsResponse{Requests: requests}, nil
}

func (k Keeper) queryPaymentHistory(ctx entrypointtypes.Context, req types.PaymentHistoryQuery) (*types.PaymentsResponse, error) {
	payments, next, err := k.GetPaymentHistory(ctx, req.Username, req.StartAfter, req.Limit)
	if err != nil {
		return nil, err
	}

	if payments == nil {
		payments = []types.Payment{}
	}

	return &types.PaymentsResponse{Payments: payments, NextStartAfter: next}, nil
}

func (k Keeper) querySearchUsers(ctx entrypointtypes.Context, req types.SearchUsersQuery) (*types.UsersResponse, error) {
	users, err := k.SearchUsers(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}

	if users == nil {
		users = []types.User{}
	}

	return &types.UsersResponse{Users: users}, nil
}

func (k Keeper) queryAreFriends(ctx entrypointtypes.Context, req types.AreFriendsQuery) (*types.AreFriendsResponse, error) {
	friends, err := k.AreFriends(ctx, req.UsernameA, req.UsernameB)
	if err != nil {
		return nil, err
	}

	return &types.AreFriendsResponse{AreFriends: friends}, nil
}

func (k Keeper) queryUserFriends(ctx entrypointtypes.Context, username string) (*types.FriendsResponse, error) {
	friends, err := k.GetFriends(ctx, username)
	if err != nil {
		return nil, err
	}

	if friends == nil {
		friends = []string{}
	}

	return &types.FriendsResponse{Friends: friends}, nil
}

func (k Keeper) queryPendingFriendRequests(ctx entrypointtypes.Context, username string) (*types.FriendRequestsResponse, error) {
	requesters, err := k.GetPendingFriendRequests(ctx, username)
	if err != nil {
		return nil, err
	}

	if requesters == nil {
		requesters = []string{}
	}

	return &types.FriendRequestsResponse{Requesters: requesters}, nil
}

func (k Keeper) queryChannel(ctx entrypointtypes.Context, channelID string) (*types.ChannelResponse, error) {
	if err := validate.ChannelID(channelID); err != nil {
		return nil, err
	}

	channel, err := k.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	nextSequenceSend, err := k.GetNextSequenceSend(ctx, channelID)
	if err != nil {
		return nil, err
	}

	lastSequenceRecv, err := k.GetLastSequenceRecv(ctx, channelID)
	if err != nil {
		return nil, err
	}

	return &types.ChannelResponse{
		Channel:          channel,
		NextSequenceSend: nextSequenceSend,
		LastSequenceRecv: lastSequenceRecv,
	}, nil
}

func (k Keeper) queryChannels(ctx entrypointtypes.Context) (*types.ChannelsResponse, error) {
	channels, err := k.GetAllChannels(ctx)
	if err != nil {
		return nil, err
	}

	if channels == nil {
		channels = []types.Channel{}
	}

	return &types.ChannelsResponse{Channels: channels}, nil
}

func (k Keeper) queryPacket(ctx entrypointtypes.Context, req types.PacketQuery) (*types.PacketResponse, error) {
	record, err := k.GetPacket(ctx, req.ChannelID, req.Sequence)
	if err != nil {
		return nil, err
	}

	return &types.PacketResponse{Packet: record}, nil
}

func (k Keeper) queryPendingPackets(ctx entrypointtypes.Context, channelID string) (*types.PacketsResponse, error) {
	if err := validate.ChannelID(channelID); err != nil {
		return nil, err
	}

	records, err := k.GetPendingPackets(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []types.PacketRecord{}
	}

	return &types.PacketsResponse{Packets: records}, nil
}

func (k Keeper) queryReceipt(ctx entrypointtypes.Context, req types.ReceiptQuery) (*types.ReceiptResponse, error) {
	receipt, err := k.GetReceipt(ctx, req.ChannelID, req.Sequence)
	if err != nil {
		return nil, err
	}

	return &types.ReceiptResponse{Receipt: receipt}, nil
}

func (k Keeper) queryDenom(ctx entrypointtypes.Context, hash string) (*types.DenomResponse, error) {
	denom, err := k.GetDenomByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	return &types.DenomResponse{
		Denom:    denom,
		Path:     denom.Path(),
		IBCDenom: denom.IBCDenom(),
	}, nil
}
