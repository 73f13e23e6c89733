package ibctesting

import (
	"bytes"
	"errors"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
)

// Path contains two endpoints representing two chains connected over IBC
type Path struct {
	EndpointA *Endpoint
	EndpointB *Endpoint
}

// NewPath constructs an endpoint for each chain using the default values
// for the endpoints. Each endpoint is updated to have a pointer to the
// counterparty endpoint.
func NewPath(chainA, chainB *TestChain) *Path {
	endpointA := NewDefaultEndpoint(chainA)
	endpointB := NewDefaultEndpoint(chainB)

	endpointA.Counterparty = endpointB
	endpointB.Counterparty = endpointA

	return &Path{
		EndpointA: endpointA,
		EndpointB: endpointB,
	}
}

// SetChannelOrdered sets the channel order for both endpoints to ORDERED.
func (path *Path) SetChannelOrdered() {
	path.EndpointA.ChannelConfig.Order = channeltypes.ORDERED
	path.EndpointB.ChannelConfig.Order = channeltypes.ORDERED
}

// Setup opens a channel between the two chains. The handshake must succeed.
func (path *Path) Setup() {
	path.EndpointA.Chain.Coordinator.Setup(path)
}

// RelayPacket attempts to relay the packet first on EndpointA and then on EndpointB
// if EndpointA does not contain a packet commitment for that packet. An error is returned
// if a relay step fails or the packet commitment does not exist on either endpoint.
// The acknowledgement written by the receiving contract is returned.
func (path *Path) RelayPacket(packet wasmvmtypes.IBCPacket) ([]byte, error) {
	for _, endpoint := range []*Endpoint{path.EndpointA, path.EndpointB} {
		channel, ok := endpoint.Chain.GetChannel(endpoint.ChannelID)
		if !ok || packet.Src != channel.Endpoint {
			continue
		}

		commitment, ok := channel.Commitments[packet.Sequence]
		if !ok || !bytes.Equal(commitment.Data, packet.Data) {
			continue
		}

		ack, err := endpoint.Counterparty.RecvPacket(packet)
		if err != nil {
			return nil, err
		}

		if err := endpoint.AcknowledgePacket(packet, ack); err != nil {
			return nil, err
		}

		return ack, nil
	}

	return nil, errors.New("packet commitment does not exist on either endpoint for provided packet")
}

// Close closes the channel on both chains, EndpointA initiating.
func (path *Path) Close() error {
	if err := path.EndpointA.ChanCloseInit(); err != nil {
		return err
	}

	return path.EndpointB.ChanCloseConfirm()
}
