package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
)

// ModuleCdc references the global ProofPay codec. It is used to encode and decode the
// ICS-04 acknowledgements exchanged with the counterparty contract.
var ModuleCdc = codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
