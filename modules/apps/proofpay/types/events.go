package types

// ProofPay events
const (
	EventTypeRegisterUser      = "register_user"
	EventTypeDeposit           = "deposit"
	EventTypeWithdraw          = "withdraw"
	EventTypePayment           = "payment"
	EventTypeProofSubmitted    = "proof_submitted"
	EventTypePaymentCancelled  = "payment_cancelled"
	EventTypeConfigUpdated     = "config_updated"
	EventTypeChannelOpen       = "channel_open"
	EventTypeChannelConnect    = "channel_connect"
	EventTypeChannelClose      = "channel_closed"
	EventTypeSendPacket        = "send_payment_packet"
	EventTypePacket            = "payment_packet"
	EventTypePacketRedelivered = "payment_packet_redelivered"
	EventTypeTimeout           = "timeout"
	EventTypeDenom             = "denomination"
	EventTypePaymentRequest    = "payment_request"
	EventTypeRequestPaid       = "payment_request_paid"
	EventTypeRequestCancelled  = "payment_request_cancelled"
	EventTypeFriendRequest     = "friend_request"
	EventTypeFriendAccepted    = "friend_request_accepted"
	EventTypeFriendDeclined    = "friend_request_declined"

	AttributeKeyUsername              = "username"
	AttributeKeyWallet                = "wallet"
	AttributeKeySender                = "sender"
	AttributeKeyReceiver              = "receiver"
	AttributeKeyAmount                = "amount"
	AttributeKeyDenom                 = "denom"
	AttributeKeyDenomHash             = "denom_hash"
	AttributeKeyPaymentID             = "payment_id"
	AttributeKeyRequestID             = "request_id"
	AttributeKeyRequestKind           = "request_kind"
	AttributeKeyStatus                = "status"
	AttributeKeyProofType             = "proof_type"
	AttributeKeyAdmin                 = "admin"
	AttributeKeyPacketTimeout         = "packet_timeout_seconds"
	AttributeKeyAllowedOrders         = "allowed_orders"
	AttributeKeyChannelID             = "channel_id"
	AttributeKeyCounterpartyPortID    = "counterparty_port_id"
	AttributeKeyCounterpartyChannelID = "counterparty_channel_id"
	AttributeKeyVersion               = "version"
	AttributeKeyOrder                 = "order"
	AttributeKeyPacketSequence        = "packet_sequence"
	AttributeKeyPacketSrcChannel      = "packet_src_channel"
	AttributeKeyPacketDstChannel      = "packet_dst_channel"
	AttributeKeyTimeoutTimestamp      = "timeout_timestamp"
	AttributeKeyAckSuccess            = "success"
	AttributeKeyAckError              = "error"
	AttributeKeyAck                   = "acknowledgement"
	AttributeKeyRefundReceiver        = "refund_receiver"
	AttributeKeyRefundAmount          = "refund_amount"
)
