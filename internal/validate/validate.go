package validate

import (
	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v10/modules/core/24-host"
)

// Endpoint validates that the portID and channelID of a channel end are valid identifiers.
func Endpoint(portID, channelID string) error {
	if err := host.PortIdentifierValidator(portID); err != nil {
		return err
	}

	return ChannelID(channelID)
}

// ChannelID validates that channelID is a valid channel identifier.
func ChannelID(channelID string) error {
	if err := host.ChannelIdentifierValidator(channelID); err != nil {
		return errorsmod.Wrapf(channeltypes.ErrInvalidChannelIdentifier, "%s: %s", channelID, err)
	}

	return nil
}
