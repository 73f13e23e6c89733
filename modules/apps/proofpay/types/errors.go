package types

import (
	errorsmod "cosmossdk.io/errors"
)

// ProofPay sentinel errors
var (
	ErrInvalidVersion       = errorsmod.Register(ModuleName, 2, "invalid ProofPay version")
	ErrChannelMismatch      = errorsmod.Register(ModuleName, 3, "channel parameters do not match the recorded channel")
	ErrUnknownPacket        = errorsmod.Register(ModuleName, 4, "packet was never sent by this contract")
	ErrPacketDataMismatch   = errorsmod.Register(ModuleName, 5, "packet data does not match the recorded packet")
	ErrInvalidPacketTimeout = errorsmod.Register(ModuleName, 6, "invalid packet timeout")
	ErrInvalidPacketData    = errorsmod.Register(ModuleName, 7, "invalid packet data")
	ErrUserNotFound         = errorsmod.Register(ModuleName, 8, "user not found")
	ErrUsernameTaken        = errorsmod.Register(ModuleName, 9, "username already taken")
	ErrInvalidUsername      = errorsmod.Register(ModuleName, 10, "invalid username")
	ErrWalletRegistered     = errorsmod.Register(ModuleName, 11, "wallet already registered")
	ErrPaymentNotFound      = errorsmod.Register(ModuleName, 12, "payment not found")
	ErrInvalidPaymentStatus = errorsmod.Register(ModuleName, 13, "invalid payment status")
	ErrAlreadyInstantiated  = errorsmod.Register(ModuleName, 14, "contract already instantiated")
	ErrNotInstantiated      = errorsmod.Register(ModuleName, 15, "contract not instantiated")
	ErrInvalidAmount        = errorsmod.Register(ModuleName, 16, "invalid amount")
	ErrInvalidProof         = errorsmod.Register(ModuleName, 17, "invalid proof")
	ErrDescriptionTooLong   = errorsmod.Register(ModuleName, 18, "description too long")
	ErrSelfPayment          = errorsmod.Register(ModuleName, 19, "cannot pay yourself")
	ErrInvalidConfig        = errorsmod.Register(ModuleName, 20, "invalid config")
	ErrDenomNotFound        = errorsmod.Register(ModuleName, 21, "denomination not found")
	ErrInvalidMsg           = errorsmod.Register(ModuleName, 22, "invalid message")
	ErrRequestNotFound      = errorsmod.Register(ModuleName, 23, "payment request not found")
	ErrRequestMismatch      = errorsmod.Register(ModuleName, 24, "payment does not match the request")
	ErrFriendRequestExists  = errorsmod.Register(ModuleName, 25, "friend request already sent")
	ErrNoFriendRequest      = errorsmod.Register(ModuleName, 26, "friend request not found")
	ErrAlreadyFriends       = errorsmod.Register(ModuleName, 27, "users are already friends")
	ErrSelfFriendRequest    = errorsmod.Register(ModuleName, 28, "cannot befriend yourself")
)
