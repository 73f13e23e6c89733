package keeper

import (
	"errors"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"

	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	internalcollections "github.com/proofpay/proofpay-ibc/internal/collections"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// Keeper defines the ProofPay contract state and the business logic operating on it.
type Keeper struct {
	storeService corestore.KVStoreService
	config       types.Config
	logger       log.Logger

	// state management
	Schema collections.Schema
	Params collections.Item[types.Params]

	// Users maps a username to the registered user
	Users collections.Map[string, types.User]
	// UsernameByWallet is the reverse index of Users
	UsernameByWallet collections.Map[string, string]

	// Balances is a map of (address, denom) to the internal balance
	Balances collections.Map[collections.Pair[string, string], sdkmath.Int]
	// Escrows is a map of (channel, denom) to the amount escrowed for tokens sent out on the channel
	Escrows collections.Map[collections.Pair[string, string], sdkmath.Int]

	Payments   collections.Map[uint64, types.Payment]
	PaymentSeq collections.Sequence
	// PaymentsByUser indexes payments by the usernames of both parties
	PaymentsByUser collections.KeySet[collections.Pair[string, uint64]]
	// Denoms maps a voucher denom hash to its full trace
	Denoms collections.Map[string, transfertypes.Denom]

	// Requests holds payment and help requests, keyed by request id
	Requests   collections.Map[uint64, types.PaymentRequest]
	RequestSeq collections.Sequence
	// PendingRequests indexes the pending requests by the username of the payer
	PendingRequests collections.KeySet[collections.Pair[string, uint64]]
	// FriendRequests holds the pending friend requests, keyed by (recipient, requester)
	FriendRequests collections.KeySet[collections.Pair[string, string]]
	// Friends holds every friendship in both directions
	Friends collections.KeySet[collections.Pair[string, string]]

	Channels         collections.Map[string, types.Channel]
	NextSequenceSend collections.Map[string, uint64]
	LastSequenceRecv collections.Map[string, uint64]
	// Packets holds the outbound packet records, keyed by (channel, sequence)
	Packets collections.Map[collections.Pair[string, uint64], types.PacketRecord]
	// Receipts holds the inbound packet receipts, keyed by (channel, sequence)
	Receipts collections.Map[collections.Pair[string, uint64], types.PacketReceipt]
}

// NewKeeper creates a new ProofPay Keeper instance
func NewKeeper(storeService corestore.KVStoreService, config types.Config, logger log.Logger) Keeper {
	if storeService == nil {
		panic(errors.New("store service must not be nil"))
	}

	if err := config.Validate(); err != nil {
		panic(err)
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		storeService:     storeService,
		config:           config,
		logger:           logger.With(log.ModuleKey, "x/"+types.ModuleName),
		Params:           collections.NewItem(sb, types.ParamsKey, "params", internalcollections.JSONValue[types.Params]()),
		Users:            collections.NewMap(sb, types.UsersKey, "users", collections.StringKey, internalcollections.JSONValue[types.User]()),
		UsernameByWallet: collections.NewMap(sb, types.UsernameByWalletKey, "username_by_wallet", collections.StringKey, collections.StringValue),
		Balances:         collections.NewMap(sb, types.BalancesKey, "balances", collections.PairKeyCodec(collections.StringKey, collections.StringKey), sdk.IntValue),
		Escrows:          collections.NewMap(sb, types.EscrowsKey, "escrows", collections.PairKeyCodec(collections.StringKey, collections.StringKey), sdk.IntValue),
		Payments:         collections.NewMap(sb, types.PaymentsKey, "payments", collections.Uint64Key, internalcollections.JSONValue[types.Payment]()),
		PaymentSeq:       collections.NewSequence(sb, types.PaymentSequenceKey, "payment_sequence"),
		PaymentsByUser:   collections.NewKeySet(sb, types.PaymentsByUserKey, "payments_by_user", collections.PairKeyCodec(collections.StringKey, collections.Uint64Key)),
		Denoms:           collections.NewMap(sb, types.DenomsKey, "denoms", collections.StringKey, codec.CollValue[transfertypes.Denom](types.ModuleCdc)),
		Requests:         collections.NewMap(sb, types.RequestsKey, "requests", collections.Uint64Key, internalcollections.JSONValue[types.PaymentRequest]()),
		RequestSeq:       collections.NewSequence(sb, types.RequestSequenceKey, "request_sequence"),
		PendingRequests:  collections.NewKeySet(sb, types.PendingRequestsKey, "pending_requests", collections.PairKeyCodec(collections.StringKey, collections.Uint64Key)),
		FriendRequests:   collections.NewKeySet(sb, types.FriendRequestsKey, "friend_requests", collections.PairKeyCodec(collections.StringKey, collections.StringKey)),
		Friends:          collections.NewKeySet(sb, types.FriendsKey, "friends", collections.PairKeyCodec(collections.StringKey, collections.StringKey)),
		Channels:         collections.NewMap(sb, types.ChannelsKey, "channels", collections.StringKey, internalcollections.JSONValue[types.Channel]()),
		NextSequenceSend: collections.NewMap(sb, types.NextSequenceSendKey, "next_sequence_send", collections.StringKey, collections.Uint64Value),
		LastSequenceRecv: collections.NewMap(sb, types.LastSequenceRecvKey, "last_sequence_recv", collections.StringKey, collections.Uint64Value),
		Packets:          collections.NewMap(sb, types.PacketsKey, "packets", collections.PairKeyCodec(collections.StringKey, collections.Uint64Key), internalcollections.JSONValue[types.PacketRecord]()),
		Receipts:         collections.NewMap(sb, types.ReceiptsKey, "receipts", collections.PairKeyCodec(collections.StringKey, collections.Uint64Key), internalcollections.JSONValue[types.PacketReceipt]()),
	}

	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}

	k.Schema = schema

	return k
}

// Config returns the build config of the contract.
func (k Keeper) Config() types.Config {
	return k.config
}

// Logger returns a contract-specific logger.
func (k Keeper) Logger(ctx entrypointtypes.Context) log.Logger {
	return k.logger.With("height", ctx.BlockHeight(), "contract", ctx.ContractAddress())
}

// GetParams returns the instance params. It fails if the contract was not instantiated.
func (k Keeper) GetParams(ctx entrypointtypes.Context) (types.Params, error) {
	params, err := k.Params.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Params{}, types.ErrNotInstantiated
	}

	return params, err
}

// SetParams sets the instance params.
func (k Keeper) SetParams(ctx entrypointtypes.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	return k.Params.Set(ctx, params)
}

// setChannel stores a channel record. Malformed records are an invariant violation.
func (k Keeper) setChannel(ctx entrypointtypes.Context, channel types.Channel) error {
	if err := channel.ValidateBasic(); err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrLogic, "invalid channel record %s: %v", channel.ChannelID, err)
	}

	return k.Channels.Set(ctx, channel.ChannelID, channel)
}

// setPacket stores an outbound packet record.
func (k Keeper) setPacket(ctx entrypointtypes.Context, record types.PacketRecord) error {
	if err := record.Status.Validate(); err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrLogic, "invalid packet record %s/%d: %v", record.ChannelID, record.Sequence, err)
	}

	return k.Packets.Set(ctx, collections.Join(record.ChannelID, record.Sequence), record)
}

// allowedOrders returns the channel orderings a new channel may use. Before instantiation the
// build config applies.
func (k Keeper) allowedOrders(ctx entrypointtypes.Context) ([]string, error) {
	params, err := k.GetParams(ctx)
	switch {
	case err == nil:
		return params.AllowedOrders, nil
	case errors.Is(err, types.ErrNotInstantiated):
		return k.config.AllowedOrders, nil
	default:
		return nil, errorsmod.Wrap(err, "failed to read params")
	}
}
