package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
)

// QueryMsg is used to encode messages that are sent to the contract's query entry point.
// Exactly one variant is expected in the encoded JSON.
type QueryMsg struct {
	Config                *ConfigQuery                `json:"config,omitempty"`
	User                  *UserQuery                  `json:"user,omitempty"`
	UserByWallet          *UserByWalletQuery          `json:"user_by_wallet,omitempty"`
	IsUsernameAvailable   *IsUsernameAvailableQuery   `json:"is_username_available,omitempty"`
	Balance               *BalanceQuery               `json:"balance,omitempty"`
	Balances              *BalancesQuery              `json:"balances,omitempty"`
	Payment               *PaymentQuery               `json:"payment,omitempty"`
	PaymentsByUser        *PaymentsByUserQuery        `json:"payments_by_user,omitempty"`
	PaymentRequest        *PaymentRequestQuery        `json:"payment_request,omitempty"`
	PendingRequests       *PendingRequestsQuery       `json:"pending_requests,omitempty"`
	PaymentHistory        *PaymentHistoryQuery        `json:"payment_history,omitempty"`
	SearchUsers           *SearchUsersQuery           `json:"search_users,omitempty"`
	AreFriends            *AreFriendsQuery            `json:"are_friends,omitempty"`
	UserFriends           *UserFriendsQuery           `json:"user_friends,omitempty"`
	PendingFriendRequests *PendingFriendRequestsQuery `json:"pending_friend_requests,omitempty"`
	Channel               *ChannelQuery               `json:"channel,omitempty"`
	Channels              *ChannelsQuery              `json:"channels,omitempty"`
	Packet                *PacketQuery                `json:"packet,omitempty"`
	PendingPackets        *PendingPacketsQuery        `json:"pending_packets,omitempty"`
	Receipt               *ReceiptQuery               `json:"receipt,omitempty"`
	Denom                 *DenomQuery                 `json:"denom,omitempty"`
}

type ConfigQuery struct{}

type UserQuery struct {
	Username string `json:"username"`
}

type UserByWalletQuery struct {
	Wallet string `json:"wallet"`
}

type IsUsernameAvailableQuery struct {
	Username string `json:"username"`
}

type BalancesQuery struct {
	Address string `json:"address"`
}

type PaymentQuery struct {
	PaymentID uint64 `json:"payment_id"`
}

type PaymentsByUserQuery struct {
	Username string `json:"username"`
}

// PaymentRequestQuery requests a payment request by id.
type PaymentRequestQuery struct {
	RequestID uint64 `json:"request_id"`
}

// PendingRequestsQuery requests the pending payment and help requests addressed to a user.
type PendingRequestsQuery struct {
	Username string `json:"username"`
}

// PaymentHistoryQuery requests a page of the payments of a user, newest first. StartAfter is
// the id of the last payment of the previous page.
type PaymentHistoryQuery struct {
	Username   string `json:"username"`
	StartAfter uint64 `json:"start_after,omitempty"`
	Limit      uint32 `json:"limit,omitempty"`
}

// SearchUsersQuery requests the users whose username starts with Query.
type SearchUsersQuery struct {
	Query string `json:"query"`
	Limit uint32 `json:"limit,omitempty"`
}

type AreFriendsQuery struct {
	UsernameA string `json:"username_a"`
	UsernameB string `json:"username_b"`
}

type UserFriendsQuery struct {
	Username string `json:"username"`
}

type PendingFriendRequestsQuery struct {
	Username string `json:"username"`
}

type ChannelQuery struct {
	ChannelID string `json:"channel_id"`
}

type ChannelsQuery struct{}

type PendingPacketsQuery struct {
	ChannelID string `json:"channel_id"`
}

type DenomQuery struct {
	Hash string `json:"hash"`
}

// BalanceQuery requests the internal balance of an address in one denomination.
type BalanceQuery struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

// PacketQuery requests the record of an outbound packet.
type PacketQuery struct {
	ChannelID string `json:"channel_id"`
	Sequence  uint64 `json:"sequence"`
}

// ReceiptQuery requests the receipt of an inbound packet.
type ReceiptQuery struct {
	ChannelID string `json:"channel_id"`
	Sequence  uint64 `json:"sequence"`
}

// ValidateBasic checks that exactly one variant is set.
func (m QueryMsg) ValidateBasic() error {
	if n := countSet(
		m.Config != nil, m.User != nil, m.UserByWallet != nil, m.IsUsernameAvailable != nil,
		m.Balance != nil, m.Balances != nil, m.Payment != nil, m.PaymentsByUser != nil,
		m.PaymentRequest != nil, m.PendingRequests != nil, m.PaymentHistory != nil,
		m.SearchUsers != nil, m.AreFriends != nil, m.UserFriends != nil, m.PendingFriendRequests != nil,
		m.Channel != nil, m.Channels != nil, m.Packet != nil, m.PendingPackets != nil,
		m.Receipt != nil, m.Denom != nil,
	); n != 1 {
		return errorsmod.Wrapf(ErrInvalidMsg, "exactly one query variant must be set, got %d", n)
	}

	return nil
}

// ConfigResponse is the response to the config query.
type ConfigResponse struct {
	Params            Params   `json:"params"`
	IBCEnabled        bool     `json:"ibc_enabled"`
	SupportedVersions []string `json:"supported_versions"`
}

// UserResponse is the response to the user and user_by_wallet queries.
type UserResponse struct {
	User User `json:"user"`
}

// IsUsernameAvailableResponse is the response to the is_username_available query.
type IsUsernameAvailableResponse struct {
	Available bool `json:"available"`
}

// BalanceResponse is the response to the balance query.
type BalanceResponse struct {
	Balance wasmvmtypes.Coin `json:"balance"`
}

// BalancesResponse is the response to the balances query.
type BalancesResponse struct {
	Balances []wasmvmtypes.Coin `json:"balances"`
}

// PaymentResponse is the response to the payment query.
type PaymentResponse struct {
	Payment Payment `json:"payment"`
}

// PaymentsResponse is the response to the payments_by_user and payment_history queries. The
// history query sets NextStartAfter when more payments remain.
type PaymentsResponse struct {
	Payments       []Payment `json:"payments"`
	NextStartAfter uint64    `json:"next_start_after,omitempty"`
}

// UsersResponse is the response to the search_users query.
type UsersResponse struct {
	Users []User `json:"users"`
}

// PaymentRequestResponse is the response to the payment_request query.
type PaymentRequestResponse struct {
	Request PaymentRequest `json:"request"`
}

// PaymentRequestsResponse is the response to the pending_requests query.
type PaymentRequestsResponse struct {
	Requests []PaymentRequest `json:"requests"`
}

// AreFriendsResponse is the response to the are_friends query.
type AreFriendsResponse struct {
	AreFriends bool `json:"are_friends"`
}

// FriendsResponse is the response to the user_friends query.
type FriendsResponse struct {
	Friends []string `json:"friends"`
}

// FriendRequestsResponse is the response to the pending_friend_requests query. It lists the
// usernames of the requesters.
type FriendRequestsResponse struct {
	Requesters []string `json:"requesters"`
}

// ChannelResponse is the response to the channel query.
type ChannelResponse struct {
	Channel          Channel `json:"channel"`
	NextSequenceSend uint64  `json:"next_sequence_send"`
	LastSequenceRecv uint64  `json:"last_sequence_recv"`
}

// ChannelsResponse is the response to the channels query.
type ChannelsResponse struct {
	Channels []Channel `json:"channels"`
}

// PacketResponse is the response to the packet query.
type PacketResponse struct {
	Packet PacketRecord `json:"packet"`
}

// PacketsResponse is the response to the pending_packets query.
type PacketsResponse struct {
	Packets []PacketRecord `json:"packets"`
}

// ReceiptResponse is the response to the receipt query.
type ReceiptResponse struct {
	Receipt PacketReceipt `json:"receipt"`
}

// DenomResponse is the response to the denom query.
type DenomResponse struct {
	Denom    transfertypes.Denom `json:"denom"`
	Path     string              `json:"path"`
	IBCDenom string              `json:"ibc_denom"`
}
