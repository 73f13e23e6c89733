package types

import (
	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
)

// Contract defines the entry points exported by every contract build. Instantiate and Execute
// receive the raw JSON message, the contract owns its message schema.
type Contract interface {
	Instantiate(ctx Context, msg []byte) (*wasmvmtypes.Response, error)
	Execute(ctx Context, msg []byte) (*wasmvmtypes.Response, error)
	Query(ctx Context, msg []byte) ([]byte, error)
}

// IBCContract is implemented by contract builds that enable the packet relay capability. The
// dispatcher serves the channel and packet callbacks only for contracts implementing it.
type IBCContract interface {
	Contract

	IBCChannelOpen(ctx Context, msg wasmvmtypes.IBCChannelOpenMsg) (*wasmvmtypes.IBC3ChannelOpenResponse, error)
	IBCChannelConnect(ctx Context, msg wasmvmtypes.IBCChannelConnectMsg) (*wasmvmtypes.IBCBasicResponse, error)
	IBCChannelClose(ctx Context, msg wasmvmtypes.IBCChannelCloseMsg) (*wasmvmtypes.IBCBasicResponse, error)

	IBCPacketReceive(ctx Context, msg wasmvmtypes.IBCPacketReceiveMsg) (*wasmvmtypes.IBCReceiveResponse, error)
	IBCPacketAck(ctx Context, msg wasmvmtypes.IBCPacketAckMsg) (*wasmvmtypes.IBCBasicResponse, error)
	IBCPacketTimeout(ctx Context, msg wasmvmtypes.IBCPacketTimeoutMsg) (*wasmvmtypes.IBCBasicResponse, error)
}

// CapabilityProvider may be implemented by contracts requiring host capabilities beyond the
// default set.
type CapabilityProvider interface {
	RequiredCapabilities() []string
}
