package types

import (
	"cosmossdk.io/collections"
)

const (
	// ModuleName defines the ProofPay contract name
	ModuleName = "proofpay"

	// Version defines the current version the ProofPay packet protocol supports
	Version = "proofpay-1"

	// PortPrefix is the prefix the host prepends to a contract address to form its port identifier
	PortPrefix = "wasm."

	// DefaultDenom is the native denomination payments default to
	DefaultDenom = "uxion"

	// MinUsernameLength is the minimum username length
	MinUsernameLength = 3

	// MaxUsernameLength is the maximum username length
	MaxUsernameLength = 32
)

var (
	// ParamsKey defines the key to store the contract params in store
	ParamsKey = collections.NewPrefix(0)
	// UsersKey defines the key prefix for registered users, keyed by username
	UsersKey = collections.NewPrefix(1)
	// UsernameByWalletKey defines the key prefix for the wallet to username index
	UsernameByWalletKey = collections.NewPrefix(2)
	// BalancesKey defines the key prefix for internal balances, keyed by (address, denom)
	BalancesKey = collections.NewPrefix(3)
	// EscrowsKey defines the key prefix for per channel escrowed amounts, keyed by (channel, denom)
	EscrowsKey = collections.NewPrefix(4)
	// PaymentsKey defines the key prefix for payments, keyed by payment id
	PaymentsKey = collections.NewPrefix(5)
	// PaymentSequenceKey defines the key for the next payment id
	PaymentSequenceKey = collections.NewPrefix(6)
	// PaymentsByUserKey defines the key prefix for the (username, payment id) index
	PaymentsByUserKey = collections.NewPrefix(7)
	// DenomsKey defines the key prefix for voucher denominations, keyed by denom hash
	DenomsKey = collections.NewPrefix(8)
	// ChannelsKey defines the key prefix for channel ends, keyed by local channel id
	ChannelsKey = collections.NewPrefix(9)
	// NextSequenceSendKey defines the key prefix for the outbound sequence cursor of each channel
	NextSequenceSendKey = collections.NewPrefix(10)
	// LastSequenceRecvKey defines the key prefix for the inbound sequence cursor of each channel
	LastSequenceRecvKey = collections.NewPrefix(11)
	// PacketsKey defines the key prefix for outbound packet records, keyed by (channel, sequence)
	PacketsKey = collections.NewPrefix(12)
	// ReceiptsKey defines the key prefix for inbound packet receipts, keyed by (channel, sequence)
	ReceiptsKey = collections.NewPrefix(13)
	// RequestsKey defines the key prefix for payment requests, keyed by request id
	RequestsKey = collections.NewPrefix(14)
	// RequestSequenceKey defines the key for the next payment request id
	RequestSequenceKey = collections.NewPrefix(15)
	// PendingRequestsKey defines the key prefix for the (payer username, request id) index of pending requests
	PendingRequestsKey = collections.NewPrefix(16)
	// FriendRequestsKey defines the key prefix for pending friend requests, keyed by (recipient, requester)
	FriendRequestsKey = collections.NewPrefix(17)
	// FriendsKey defines the key prefix for friendships, stored in both directions
	FriendsKey = collections.NewPrefix(18)
)

// PortIDForContract returns the port identifier the host binds for a contract address.
func PortIDForContract(contractAddr string) string {
	return PortPrefix + contractAddr
}
