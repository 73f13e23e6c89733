package types

import (
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"
)

// Params defines the instance settings of a ProofPay contract, set on instantiate and
// updatable by the admin.
type Params struct {
	Admin                string   `json:"admin"`
	Denom                string   `json:"denom"`
	PacketTimeoutSeconds uint64   `json:"packet_timeout_seconds"`
	AllowedOrders        []string `json:"allowed_orders"`
}

// NewParams creates a new Params instance.
func NewParams(admin, denom string, packetTimeoutSeconds uint64, allowedOrders []string) Params {
	return Params{
		Admin:                admin,
		Denom:                denom,
		PacketTimeoutSeconds: packetTimeoutSeconds,
		AllowedOrders:        allowedOrders,
	}
}

// DefaultParams returns the instance settings derived from the build config.
func DefaultParams(cfg Config, admin string) Params {
	return NewParams(admin, DefaultDenom, uint64(cfg.DefaultPacketTimeout/time.Second), cfg.AllowedOrders)
}

// Validate performs a basic validation of the params fields.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Admin) == "" {
		return errorsmod.Wrap(ibcerrors.ErrInvalidAddress, "admin cannot be empty")
	}

	if err := sdk.ValidateDenom(p.Denom); err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrInvalidCoins, "invalid denom %q: %s", p.Denom, err)
	}

	if err := ValidatePacketTimeoutSeconds(p.PacketTimeoutSeconds); err != nil {
		return err
	}

	return ValidateOrders(p.AllowedOrders)
}

// PacketTimeout returns the relative packet timeout.
func (p Params) PacketTimeout() time.Duration {
	return PacketTimeoutDuration(p.PacketTimeoutSeconds)
}
