package types

import (
	"strings"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/proofpay/proofpay-ibc/internal/validate"
)

// InstantiateMsg is the message sent to the contract's instantiate entry point. Empty fields
// fall back to the sender and the build config.
type InstantiateMsg struct {
	Admin                string `json:"admin,omitempty"`
	Denom                string `json:"denom,omitempty"`
	PacketTimeoutSeconds uint64 `json:"packet_timeout_seconds,omitempty"`
}

// ExecuteMsg is used to encode messages that are sent to the contract's execute entry point.
// The json omitempty tag is mandatory since exactly one variant is expected in the encoded JSON.
type ExecuteMsg struct {
	RegisterUser          *RegisterUserMsg          `json:"register_user,omitempty"`
	Deposit               *DepositMsg               `json:"deposit,omitempty"`
	Withdraw              *WithdrawMsg              `json:"withdraw,omitempty"`
	SendPayment           *SendPaymentMsg           `json:"send_payment,omitempty"`
	SubmitProof           *SubmitProofMsg           `json:"submit_proof,omitempty"`
	CancelPayment         *CancelPaymentMsg         `json:"cancel_payment,omitempty"`
	SendCrossChainPayment *SendCrossChainPaymentMsg `json:"send_cross_chain_payment,omitempty"`
	CreatePaymentRequest  *CreateRequestMsg         `json:"create_payment_request,omitempty"`
	CreateHelpRequest     *CreateRequestMsg         `json:"create_help_request,omitempty"`
	CancelRequest         *CancelRequestMsg         `json:"cancel_request,omitempty"`
	SendFriendRequest     *SendFriendRequestMsg     `json:"send_friend_request,omitempty"`
	AcceptFriendRequest   *FriendRequestReplyMsg    `json:"accept_friend_request,omitempty"`
	DeclineFriendRequest  *FriendRequestReplyMsg    `json:"decline_friend_request,omitempty"`
	CloseChannel          *CloseChannelMsg          `json:"close_channel,omitempty"`
	UpdateConfig          *UpdateConfigMsg          `json:"update_config,omitempty"`
}

// RegisterUserMsg registers the sender's wallet under a username.
type RegisterUserMsg struct {
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// DepositMsg credits the funds attached to the call to the sender's balance.
type DepositMsg struct{}

// WithdrawMsg debits the sender's balance and sends the tokens to the sender's wallet.
type WithdrawMsg struct {
	Amount wasmvmtypes.Coin `json:"amount"`
}

// SendPaymentMsg pays a registered user of this contract. A non-zero RequestID settles the
// pending payment request with that id.
type SendPaymentMsg struct {
	ToUsername  string           `json:"to_username"`
	Amount      wasmvmtypes.Coin `json:"amount"`
	Description string           `json:"description,omitempty"`
	ProofType   ProofType        `json:"proof_type,omitempty"`
	RequestID   uint64           `json:"request_id,omitempty"`
}

// SubmitProofMsg is sent by the recipient of a pending payment to release it.
type SubmitProofMsg struct {
	PaymentID uint64 `json:"payment_id"`
	ProofData string `json:"proof_data"`
}

// CancelPaymentMsg is sent by the sender of a pending payment to reclaim it.
type CancelPaymentMsg struct {
	PaymentID uint64 `json:"payment_id"`
}

// SendCrossChainPaymentMsg pays a user registered on the contract at the other end of a channel.
type SendCrossChainPaymentMsg struct {
	ChannelID      string           `json:"channel_id"`
	ToUsername     string           `json:"to_username"`
	Amount         wasmvmtypes.Coin `json:"amount"`
	Description    string           `json:"description,omitempty"`
	TimeoutSeconds uint64           `json:"timeout_seconds,omitempty"`
}

// CreateRequestMsg asks the user registered as ToUsername to pay the sender. It is used for
// both payment and help requests.
type CreateRequestMsg struct {
	ToUsername  string           `json:"to_username"`
	Amount      wasmvmtypes.Coin `json:"amount"`
	Description string           `json:"description,omitempty"`
	ProofType   ProofType        `json:"proof_type,omitempty"`
}

// CancelRequestMsg withdraws a pending request. The requester cancels it, the payer declines it.
type CancelRequestMsg struct {
	RequestID uint64 `json:"request_id"`
}

// SendFriendRequestMsg asks the user registered as ToUsername to become friends.
type SendFriendRequestMsg struct {
	ToUsername string `json:"to_username"`
}

// FriendRequestReplyMsg accepts or declines the friend request sent by FromUsername.
type FriendRequestReplyMsg struct {
	FromUsername string `json:"from_username"`
}

// CloseChannelMsg asks the host to close a channel bound to the contract.
type CloseChannelMsg struct {
	ChannelID string `json:"channel_id"`
}

// UpdateConfigMsg updates the instance params. Zero values leave the param unchanged.
type UpdateConfigMsg struct {
	Admin                string   `json:"admin,omitempty"`
	PacketTimeoutSeconds uint64   `json:"packet_timeout_seconds,omitempty"`
	AllowedOrders        []string `json:"allowed_orders,omitempty"`
}

// ValidateBasic checks that exactly one variant is set and validates it.
func (m ExecuteMsg) ValidateBasic() error {
	if n := countSet(
		m.RegisterUser != nil, m.Deposit != nil, m.Withdraw != nil, m.SendPayment != nil,
		m.SubmitProof != nil, m.CancelPayment != nil, m.SendCrossChainPayment != nil,
		m.CreatePaymentRequest != nil, m.CreateHelpRequest != nil, m.CancelRequest != nil,
		m.SendFriendRequest != nil, m.AcceptFriendRequest != nil, m.DeclineFriendRequest != nil,
		m.CloseChannel != nil, m.UpdateConfig != nil,
	); n != 1 {
		return errorsmod.Wrapf(ErrInvalidMsg, "exactly one execute variant must be set, got %d", n)
	}

	switch {
	case m.RegisterUser != nil:
		return m.RegisterUser.ValidateBasic()
	case m.Withdraw != nil:
		return validateCoin(m.Withdraw.Amount)
	case m.SendPayment != nil:
		return m.SendPayment.ValidateBasic()
	case m.SubmitProof != nil:
		if m.SubmitProof.PaymentID == 0 {
			return errorsmod.Wrap(ErrPaymentNotFound, "payment id cannot be zero")
		}
		if strings.TrimSpace(m.SubmitProof.ProofData) == "" {
			return errorsmod.Wrap(ErrInvalidProof, "proof data cannot be empty")
		}
	case m.CancelPayment != nil:
		if m.CancelPayment.PaymentID == 0 {
			return errorsmod.Wrap(ErrPaymentNotFound, "payment id cannot be zero")
		}
	case m.SendCrossChainPayment != nil:
		return m.SendCrossChainPayment.ValidateBasic()
	case m.CreatePaymentRequest != nil:
		return m.CreatePaymentRequest.ValidateBasic()
	case m.CreateHelpRequest != nil:
		return m.CreateHelpRequest.ValidateBasic()
	case m.CancelRequest != nil:
		if m.CancelRequest.RequestID == 0 {
			return errorsmod.Wrap(ErrRequestNotFound, "request id cannot be zero")
		}
	case m.SendFriendRequest != nil:
		return ValidateUsername(NormalizeUsername(m.SendFriendRequest.ToUsername))
	case m.AcceptFriendRequest != nil:
		return ValidateUsername(NormalizeUsername(m.AcceptFriendRequest.FromUsername))
	case m.DeclineFriendRequest != nil:
		return ValidateUsername(NormalizeUsername(m.DeclineFriendRequest.FromUsername))
	case m.CloseChannel != nil:
		return validate.ChannelID(m.CloseChannel.ChannelID)
	case m.UpdateConfig != nil:
		if len(m.UpdateConfig.AllowedOrders) > 0 {
			if err := ValidateOrders(m.UpdateConfig.AllowedOrders); err != nil {
				return err
			}
		}
		if m.UpdateConfig.PacketTimeoutSeconds != 0 {
			return ValidatePacketTimeoutSeconds(m.UpdateConfig.PacketTimeoutSeconds)
		}
	}

	return nil
}

// ValidateBasic performs a basic validation of the register user message.
func (m RegisterUserMsg) ValidateBasic() error {
	if err := ValidateUsername(NormalizeUsername(m.Username)); err != nil {
		return err
	}

	if strings.TrimSpace(m.DisplayName) == "" {
		return errorsmod.Wrap(ErrInvalidMsg, "display name cannot be empty")
	}

	return nil
}

// ValidateBasic performs a basic validation of the send payment message.
func (m SendPaymentMsg) ValidateBasic() error {
	if err := ValidateUsername(NormalizeUsername(m.ToUsername)); err != nil {
		return err
	}

	if err := m.ProofType.Validate(); err != nil {
		return err
	}

	return validateCoin(m.Amount)
}

// ValidateBasic performs a basic validation of the create request message.
func (m CreateRequestMsg) ValidateBasic() error {
	if err := ValidateUsername(NormalizeUsername(m.ToUsername)); err != nil {
		return err
	}

	if err := m.ProofType.Validate(); err != nil {
		return err
	}

	return validateCoin(m.Amount)
}

// ValidateBasic performs a basic validation of the cross-chain payment message.
func (m SendCrossChainPaymentMsg) ValidateBasic() error {
	if err := validate.ChannelID(m.ChannelID); err != nil {
		return err
	}

	if err := ValidateUsername(NormalizeUsername(m.ToUsername)); err != nil {
		return err
	}

	if m.TimeoutSeconds != 0 {
		if err := ValidatePacketTimeoutSeconds(m.TimeoutSeconds); err != nil {
			return err
		}
	}

	return validateCoin(m.Amount)
}

// ToCoin converts a host coin into an SDK coin, requiring a positive amount.
func ToCoin(coin wasmvmtypes.Coin) (sdk.Coin, error) {
	return ParseCoin(coin.Denom, coin.Amount)
}

// FromCoin converts an SDK coin into a host coin.
func FromCoin(coin sdk.Coin) wasmvmtypes.Coin {
	return wasmvmtypes.Coin{Denom: coin.Denom, Amount: coin.Amount.String()}
}

func validateCoin(coin wasmvmtypes.Coin) error {
	if _, err := ToCoin(coin); err != nil {
		return err
	}

	return nil
}

func countSet(set ...bool) int {
	n := 0
	for _, ok := range set {
		if ok {
			n++
		}
	}

	return n
}
