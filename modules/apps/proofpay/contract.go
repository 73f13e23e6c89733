package proofpay

import (
	"bytes"
	"encoding/json"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/keeper"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

var _ entrypointtypes.Contract = (*Contract)(nil)

// Contract implements the instantiate, execute and query entry points of ProofPay given the
// ProofPay keeper.
type Contract struct {
	keeper keeper.Keeper
}

// NewContract creates a new Contract given the keeper. The returned build does not export the
// packet relay entry points.
func NewContract(k keeper.Keeper) Contract {
	return Contract{
		keeper: k,
	}
}

// New returns the contract build selected by the keeper config: an IBCContract if the packet
// relay capability is enabled, a Contract otherwise.
func New(k keeper.Keeper) entrypointtypes.Contract {
	if k.Config().IBCEnabled {
		return NewIBCContract(k)
	}

	return NewContract(k)
}

// Instantiate implements the Contract interface
func (c Contract) Instantiate(ctx entrypointtypes.Context, msg []byte) (*wasmvmtypes.Response, error) {
	instantiateMsg, err := unmarshalMsg[types.InstantiateMsg](msg)
	if err != nil {
		return nil, err
	}

	return c.keeper.Instantiate(ctx, instantiateMsg)
}

// Execute implements the Contract interface
func (c Contract) Execute(ctx entrypointtypes.Context, msg []byte) (*wasmvmtypes.Response, error) {
	executeMsg, err := unmarshalMsg[types.ExecuteMsg](msg)
	if err != nil {
		return nil, err
	}

	return c.keeper.Execute(ctx, executeMsg)
}

// Query implements the Contract interface
func (c Contract) Query(ctx entrypointtypes.Context, msg []byte) ([]byte, error) {
	queryMsg, err := unmarshalMsg[types.QueryMsg](msg)
	if err != nil {
		return nil, err
	}

	return c.keeper.Query(ctx, queryMsg)
}

// unmarshalMsg decodes a contract message, unknown fields are rejected.
func unmarshalMsg[T any](bz []byte) (T, error) {
	var msg T

	decoder := json.NewDecoder(bytes.NewReader(bz))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&msg); err != nil {
		return msg, errorsmod.Wrapf(types.ErrInvalidMsg, "failed to unmarshal %T: %v", msg, err)
	}

	return msg, nil
}
