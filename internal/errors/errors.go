package errors

import (
	errorsmod "cosmossdk.io/errors"
)

const codespace = "entrypoint"

var (
	// ErrContractPanic is returned when a contract entry point panics.
	ErrContractPanic = errorsmod.Register(codespace, 2, "contract panicked")

	// ErrOutOfGas is returned when an entry point exhausts its gas budget.
	ErrOutOfGas = errorsmod.Register(codespace, 3, "out of gas")

	// ErrUnknownEntryPoint is returned when the host invokes an entry point the contract does not export.
	ErrUnknownEntryPoint = errorsmod.Register(codespace, 4, "unknown entry point")

	// ErrInvalidPayload is used when the payload does not match the invoked entry point.
	ErrInvalidPayload = errorsmod.Register(codespace, 5, "invalid payload")

	// ErrIBCNotSupported is returned when a relay callback reaches a contract built without IBC support.
	ErrIBCNotSupported = errorsmod.Register(codespace, 6, "contract does not support ibc entry points")
)
