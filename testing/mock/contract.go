package mock

import (
	"errors"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"

	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

const (
	Version = "mock-version"

	EventTypeMock = "mock"
)

var (
	TestKey   = []byte("mock-key")
	TestValue = []byte("mock-value")

	MockAcknowledgement = channeltypes.NewResultAcknowledgement([]byte("mock acknowledgement"))
	MockPacketData      = []byte("mock packet data")
	MockFailPacketData  = []byte("mock failed packet data")

	ErrMock = errors.New("mock error")
)

var (
	_ entrypointtypes.Contract           = (*Contract)(nil)
	_ entrypointtypes.IBCContract        = (*IBCContract)(nil)
	_ entrypointtypes.CapabilityProvider = (*IBCContract)(nil)
)

// Contract is a mock contract exporting only the instantiate, execute and query entry points.
// Each entry point writes TestKey and emits a mock event unless its callback is overridden.
type Contract struct {
	OnInstantiate func(ctx entrypointtypes.Context, msg []byte) (*wasmvmtypes.Response, error)
	OnExecute     func(ctx entrypointtypes.Context, msg []byte) (*wasmvmtypes.Response, error)
	OnQuery       func(ctx entrypointtypes.Context, msg []byte) ([]byte, error)
}

// NewContract returns a mock contract with the default callbacks.
func NewContract() *Contract {
	return &Contract{}
}

func (c *Contract) Instantiate(ctx entrypointtypes.Context, msg []byte) (*wasmvmtypes.Response, error) {
	if c.OnInstantiate != nil {
		return c.OnInstantiate(ctx, msg)
	}

	write(ctx, "instantiate")
	return &wasmvmtypes.Response{}, nil
}

func (c *Contract) Execute(ctx entrypointtypes.Context, msg []byte) (*wasmvmtypes.Response, error) {
	if c.OnExecute != nil {
		return c.OnExecute(ctx, msg)
	}

	write(ctx, "execute")
	return &wasmvmtypes.Response{Data: msg}, nil
}

func (c *Contract) Query(ctx entrypointtypes.Context, msg []byte) ([]byte, error) {
	if c.OnQuery != nil {
		return c.OnQuery(ctx, msg)
	}

	// queries may write, the dispatcher must discard it
	write(ctx, "query")
	return ctx.KVStore().Get(TestKey), nil
}

// IBCContract is a mock contract exporting every entry point.
type IBCContract struct {
	*Contract

	OnChanOpen    func(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelOpenMsg) (*wasmvmtypes.IBC3ChannelOpenResponse, error)
	OnChanConnect func(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelConnectMsg) (*wasmvmtypes.IBCBasicResponse, error)
	OnChanClose   func(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelCloseMsg) (*wasmvmtypes.IBCBasicResponse, error)
	OnRecvPacket  func(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketReceiveMsg) (*wasmvmtypes.IBCReceiveResponse, error)
	OnAckPacket   func(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketAckMsg) (*wasmvmtypes.IBCBasicResponse, error)
	OnTimeout     func(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketTimeoutMsg) (*wasmvmtypes.IBCBasicResponse, error)

	Capabilities []string
}

// NewIBCContract returns a mock IBC contract with the default callbacks.
func NewIBCContract() *IBCContract {
	return &IBCContract{Contract: NewContract()}
}

// RequiredCapabilities implements the CapabilityProvider interface.
func (c *IBCContract) RequiredCapabilities() []string {
	return c.Capabilities
}

func (c *IBCContract) IBCChannelOpen(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelOpenMsg) (*wasmvmtypes.IBC3ChannelOpenResponse, error) {
	if c.OnChanOpen != nil {
		return c.OnChanOpen(ctx, msg)
	}

	write(ctx, "channel_open")
	return &wasmvmtypes.IBC3ChannelOpenResponse{Version: Version}, nil
}

func (c *IBCContract) IBCChannelConnect(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelConnectMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	if c.OnChanConnect != nil {
		return c.OnChanConnect(ctx, msg)
	}

	write(ctx, "channel_connect")
	return &wasmvmtypes.IBCBasicResponse{}, nil
}

func (c *IBCContract) IBCChannelClose(ctx entrypointtypes.Context, msg wasmvmtypes.IBCChannelCloseMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	if c.OnChanClose != nil {
		return c.OnChanClose(ctx, msg)
	}

	write(ctx, "channel_close")
	return &wasmvmtypes.IBCBasicResponse{}, nil
}

// IBCPacketReceive acknowledges MockFailPacketData with an error and any other data with
// MockAcknowledgement. State is written only for a successful acknowledgement.
func (c *IBCContract) IBCPacketReceive(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketReceiveMsg) (*wasmvmtypes.IBCReceiveResponse, error) {
	if c.OnRecvPacket != nil {
		return c.OnRecvPacket(ctx, msg)
	}

	if string(msg.Packet.Data) == string(MockFailPacketData) {
		return &wasmvmtypes.IBCReceiveResponse{
			Acknowledgement: channeltypes.NewErrorAcknowledgement(ErrMock).Acknowledgement(),
		}, nil
	}

	write(ctx, "recv_packet")
	return &wasmvmtypes.IBCReceiveResponse{Acknowledgement: MockAcknowledgement.Acknowledgement()}, nil
}

func (c *IBCContract) IBCPacketAck(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketAckMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	if c.OnAckPacket != nil {
		return c.OnAckPacket(ctx, msg)
	}

	write(ctx, "ack_packet")
	return &wasmvmtypes.IBCBasicResponse{}, nil
}

func (c *IBCContract) IBCPacketTimeout(ctx entrypointtypes.Context, msg wasmvmtypes.IBCPacketTimeoutMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	if c.OnTimeout != nil {
		return c.OnTimeout(ctx, msg)
	}

	write(ctx, "timeout_packet")
	return &wasmvmtypes.IBCBasicResponse{}, nil
}

// write stores TestValue under TestKey and emits a mock event for the entry point.
func write(ctx entrypointtypes.Context, entryPoint string) {
	ctx.KVStore().Set(TestKey, TestValue)
	ctx.EventManager().EmitEvent(sdk.NewEvent(EventTypeMock, sdk.NewAttribute("entry_point", entryPoint)))
}
