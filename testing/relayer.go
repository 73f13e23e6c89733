package ibctesting

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/avast/retry-go/v4"
	"go.uber.org/multierr"

	"cosmossdk.io/log"
)

// DefaultRelayAttempts is the number of passes a Relayer makes over the pending packets.
const DefaultRelayAttempts uint = 3

// Relayer relays the packets committed on both ends of a path. Faults of an unreliable relayer
// can be injected: deliveries may be duplicated, made in reverse order or stop before the
// acknowledgement is relayed back.
type Relayer struct {
	Path *Path

	// Duplicate delivers every packet, acknowledgement and timeout twice.
	Duplicate bool
	// Reverse relays the pending packets of a channel in descending sequence order.
	Reverse bool
	// DropAcks delivers packets without relaying their acknowledgement.
	DropAcks bool
	// Attempts bounds the passes made over the pending packets, a failed delivery is retried
	// on the next pass.
	Attempts uint

	logger log.Logger
}

// NewRelayer returns a reliable Relayer for the path.
func NewRelayer(path *Path) *Relayer {
	return &Relayer{
		Path:     path,
		Attempts: DefaultRelayAttempts,
		logger:   log.NewNopLogger(),
	}
}

// WithLogger sets the logger used to report retried passes.
func (r *Relayer) WithLogger(logger log.Logger) *Relayer {
	r.logger = logger
	return r
}

// RelayPending relays every pending packet of the path and, unless DropAcks is set, its
// acknowledgement. Each pass attempts all pending packets; the errors of a pass are combined
// and the pass is retried until no packet fails or the attempts are exhausted.
func (r *Relayer) RelayPending(ctx context.Context) error {
	attempts := r.Attempts
	if attempts == 0 {
		attempts = DefaultRelayAttempts
	}

	return retry.Do(
		func() error {
			var errs error
			for _, endpoint := range r.endpoints() {
				for _, packet := range r.pending(endpoint) {
					errs = multierr.Append(errs, r.relay(endpoint, packet))
				}
			}
			return errs
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Info("retrying packet relay", "attempt", n+1, "max_attempts", attempts, "error", err.Error())
		}),
	)
}

// TimeoutPending delivers the timeout of every pending packet whose timeout the counterparty
// clock has passed. Packets that have not timed out are left pending.
func (r *Relayer) TimeoutPending() error {
	var errs error
	for _, endpoint := range r.endpoints() {
		counterpartyTime := uint64(endpoint.Counterparty.Chain.CurrentTime.UnixNano())

		for _, packet := range r.pending(endpoint) {
			timeout := packet.Timeout.Timestamp
			if timeout == 0 || counterpartyTime < timeout {
				continue
			}

			errs = multierr.Append(errs, r.deliver(func() error { return endpoint.TimeoutPacket(packet) }))
		}
	}

	return errs
}

func (r *Relayer) relay(endpoint *Endpoint, packet wasmvmtypes.IBCPacket) error {
	ack, err := endpoint.Counterparty.RecvPacket(packet)
	if err != nil {
		return fmt.Errorf("recv packet %d on %s: %w", packet.Sequence, packet.Dest.ChannelID, err)
	}

	if r.Duplicate {
		again, err := endpoint.Counterparty.RecvPacket(packet)
		if err != nil {
			return fmt.Errorf("redeliver packet %d on %s: %w", packet.Sequence, packet.Dest.ChannelID, err)
		}

		if !bytes.Equal(ack, again) {
			return fmt.Errorf("redelivered packet %d on %s was acknowledged differently: %s != %s", packet.Sequence, packet.Dest.ChannelID, ack, again)
		}
	}

	if r.DropAcks {
		return nil
	}

	if err := r.deliver(func() error { return endpoint.AcknowledgePacket(packet, ack) }); err != nil {
		return fmt.Errorf("acknowledge packet %d on %s: %w", packet.Sequence, packet.Src.ChannelID, err)
	}

	return nil
}

// deliver runs a delivery once, or twice if deliveries are duplicated. The commitment is gone
// after the first delivery, the duplicate goes to the contract directly.
func (r *Relayer) deliver(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}

	if r.Duplicate {
		return fn()
	}

	return nil
}

func (r *Relayer) pending(endpoint *Endpoint) []wasmvmtypes.IBCPacket {
	packets := endpoint.Chain.PendingPackets(endpoint.ChannelID)
	if r.Reverse {
		slices.Reverse(packets)
	}
	return packets
}

func (r *Relayer) endpoints() []*Endpoint {
	return []*Endpoint{r.Path.EndpointA, r.Path.EndpointB}
}
