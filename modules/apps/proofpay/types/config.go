package types

import (
	"time"

	errorsmod "cosmossdk.io/errors"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
)

const (
	defaultIBCEnabled           = true
	defaultPacketTimeout        = 10 * time.Minute
	defaultMaxDescriptionLength = 256
)

// Config holds the build time settings of a ProofPay contract. It is supplied when the
// contract is constructed and is identical on every node running the contract.
type Config struct {
	// IBCEnabled selects the build exporting the packet relay entry points.
	IBCEnabled bool `mapstructure:"ibc_enabled"`
	// AllowedOrders are the channel orderings a new instance accepts until an admin changes them.
	AllowedOrders []string `mapstructure:"allowed_orders"`
	// SupportedVersions lists the packet protocol versions the contract can honor.
	SupportedVersions []string `mapstructure:"supported_versions"`
	// DefaultPacketTimeout is the relative packet timeout used when an instance does not set one.
	DefaultPacketTimeout time.Duration `mapstructure:"default_packet_timeout"`
	// MaxDescriptionLength bounds payment descriptions and proof data.
	MaxDescriptionLength int `mapstructure:"max_description_length"`
}

// DefaultConfig returns the default settings for Config.
func DefaultConfig() Config {
	return Config{
		IBCEnabled:           defaultIBCEnabled,
		AllowedOrders:        []string{channeltypes.UNORDERED.String(), channeltypes.ORDERED.String()},
		SupportedVersions:    []string{Version},
		DefaultPacketTimeout: defaultPacketTimeout,
		MaxDescriptionLength: defaultMaxDescriptionLength,
	}
}

// Validate performs a basic validation of the config fields.
func (c Config) Validate() error {
	if err := ValidateOrders(c.AllowedOrders); err != nil {
		return err
	}

	if len(c.SupportedVersions) == 0 {
		return errorsmod.Wrap(ErrInvalidConfig, "at least one supported version is required")
	}

	for _, version := range c.SupportedVersions {
		if version == "" {
			return errorsmod.Wrap(ErrInvalidConfig, "supported version cannot be empty")
		}
	}

	if c.DefaultPacketTimeout < time.Second || c.DefaultPacketTimeout > PacketTimeoutDuration(MaxPacketTimeoutSeconds) {
		return errorsmod.Wrapf(ErrInvalidConfig, "default packet timeout must be between one second and %ds, got %s", MaxPacketTimeoutSeconds, c.DefaultPacketTimeout)
	}

	if c.MaxDescriptionLength <= 0 {
		return errorsmod.Wrapf(ErrInvalidConfig, "max description length must be positive, got %d", c.MaxDescriptionLength)
	}

	return nil
}

// ValidateOrders checks that orders is a non-empty list of channel orderings.
func ValidateOrders(orders []string) error {
	if len(orders) == 0 {
		return errorsmod.Wrap(ErrInvalidConfig, "at least one channel ordering must be allowed")
	}

	for _, order := range orders {
		switch order {
		case channeltypes.ORDERED.String(), channeltypes.UNORDERED.String():
		default:
			return errorsmod.Wrapf(channeltypes.ErrInvalidChannelOrdering, "%q is not a channel ordering", order)
		}
	}

	return nil
}

// ParseVersion returns the version if it is supported, otherwise an error.
func (c Config) ParseVersion(version string) (string, error) {
	for _, supported := range c.SupportedVersions {
		if version == supported {
			return version, nil
		}
	}

	return "", errorsmod.Wrapf(ErrInvalidVersion, "expected one of %v, got %q", c.SupportedVersions, version)
}
