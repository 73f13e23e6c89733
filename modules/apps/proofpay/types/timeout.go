package types

import (
	"time"

	errorsmod "cosmossdk.io/errors"
)

// MaxPacketTimeoutSeconds bounds relative packet timeouts to 100 years. Block times plus the
// timeout stay within the range of unix nanoseconds.
const MaxPacketTimeoutSeconds uint64 = 100 * 365 * 24 * 60 * 60

// ValidatePacketTimeoutSeconds checks that a relative packet timeout is positive and no larger
// than MaxPacketTimeoutSeconds.
func ValidatePacketTimeoutSeconds(seconds uint64) error {
	if seconds == 0 {
		return errorsmod.Wrap(ErrInvalidPacketTimeout, "packet timeout must be positive")
	}

	if seconds > MaxPacketTimeoutSeconds {
		return errorsmod.Wrapf(ErrInvalidPacketTimeout, "packet timeout %ds exceeds the maximum of %ds", seconds, MaxPacketTimeoutSeconds)
	}

	return nil
}

// PacketTimeoutDuration converts validated timeout seconds into a duration.
func PacketTimeoutDuration(seconds uint64) time.Duration {
	return time.Duration(seconds) * time.Second
}
