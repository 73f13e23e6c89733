package entrypoint

import (
	"encoding/json"
	"errors"
	"strings"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/gaskv"
	storetypes "cosmossdk.io/store/types"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	internalerrors "github.com/proofpay/proofpay-ibc/internal/errors"
	"github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// Entry point names recognised by the host.
const (
	EntryPointInstantiate       = "instantiate"
	EntryPointExecute           = "execute"
	EntryPointQuery             = "query"
	EntryPointIBCChannelOpen    = "ibc_channel_open"
	EntryPointIBCChannelConnect = "ibc_channel_connect"
	EntryPointIBCChannelClose   = "ibc_channel_close"
	EntryPointIBCPacketReceive  = "ibc_packet_receive"
	EntryPointIBCPacketAck      = "ibc_packet_ack"
	EntryPointIBCPacketTimeout  = "ibc_packet_timeout"
)

// CapabilityIterator is required by every contract, state is iterated through collections.
const CapabilityIterator = "iterator"

// Dispatcher is the single seam through which the host invokes a contract. Every entry point
// runs the contract against a gas metered cache of the host store, recovers any panic into an
// error and flushes the cached writes only when the contract returned without error.
type Dispatcher struct {
	contract types.Contract
	logger   log.Logger
}

// NewDispatcher creates a Dispatcher for the given contract build.
func NewDispatcher(contract types.Contract, logger log.Logger) *Dispatcher {
	if contract == nil {
		panic(errors.New("contract must not be nil"))
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Dispatcher{
		contract: contract,
		logger:   logger.With(log.ModuleKey, "entrypoint"),
	}
}

// Contract returns the contract served by the dispatcher.
func (d *Dispatcher) Contract() types.Contract {
	return d.contract
}

// HasIBCEntryPoints reports whether the contract build exports the relay callbacks.
func (d *Dispatcher) HasIBCEntryPoints() bool {
	_, ok := d.contract.(types.IBCContract)
	return ok
}

// EntryPoints returns the names of the entry points exported by the contract build.
func (d *Dispatcher) EntryPoints() []string {
	entryPoints := []string{EntryPointInstantiate, EntryPointExecute, EntryPointQuery}
	if d.HasIBCEntryPoints() {
		entryPoints = append(entryPoints,
			EntryPointIBCChannelOpen, EntryPointIBCChannelConnect, EntryPointIBCChannelClose,
			EntryPointIBCPacketReceive, EntryPointIBCPacketAck, EntryPointIBCPacketTimeout,
		)
	}

	return entryPoints
}

// Analyze reports the static properties of the contract build the host checks on upload.
func (d *Dispatcher) Analyze() wasmvmtypes.AnalysisReport {
	capabilities := []string{CapabilityIterator}
	if provider, ok := d.contract.(types.CapabilityProvider); ok {
		capabilities = append(capabilities, provider.RequiredCapabilities()...)
	}

	return wasmvmtypes.AnalysisReport{
		HasIBCEntryPoints:    d.HasIBCEntryPoints(),
		RequiredCapabilities: strings.Join(capabilities, ","),
	}
}

// Instantiate dispatches the instantiate entry point.
func (d *Dispatcher) Instantiate(ctx types.Context, store wasmvmtypes.KVStore, msg []byte) (*wasmvmtypes.Response, error) {
	if err := validateJSON(msg); err != nil {
		return nil, err
	}

	var resp *wasmvmtypes.Response
	events, err := d.process(ctx, store, EntryPointInstantiate, true, func(cachedCtx types.Context) error {
		var err error
		resp, err = d.contract.Instantiate(cachedCtx, msg)
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil {
		resp = &wasmvmtypes.Response{}
	}
	resp.Events = append(resp.Events, events...)

	return resp, nil
}

// Execute dispatches the execute entry point.
func (d *Dispatcher) Execute(ctx types.Context, store wasmvmtypes.KVStore, msg []byte) (*wasmvmtypes.Response, error) {
	if err := validateJSON(msg); err != nil {
		return nil, err
	}

	var resp *wasmvmtypes.Response
	events, err := d.process(ctx, store, EntryPointExecute, true, func(cachedCtx types.Context) error {
		var err error
		resp, err = d.contract.Execute(cachedCtx, msg)
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil {
		resp = &wasmvmtypes.Response{}
	}
	resp.Events = append(resp.Events, events...)

	return resp, nil
}

// Query dispatches the query entry point. Queries never write: the cache is always discarded.
func (d *Dispatcher) Query(ctx types.Context, store wasmvmtypes.KVStore, msg []byte) ([]byte, error) {
	if err := validateJSON(msg); err != nil {
		return nil, err
	}

	var resp []byte
	if _, err := d.process(ctx, store, EntryPointQuery, false, func(cachedCtx types.Context) error {
		var err error
		resp, err = d.contract.Query(cachedCtx, msg)
		return err
	}); err != nil {
		return nil, err
	}

	return resp, nil
}

// IBCChannelOpen dispatches the ibc_channel_open entry point.
func (d *Dispatcher) IBCChannelOpen(ctx types.Context, store wasmvmtypes.KVStore, msg wasmvmtypes.IBCChannelOpenMsg) (*wasmvmtypes.IBC3ChannelOpenResponse, error) {
	contract, err := d.ibcContract(EntryPointIBCChannelOpen)
	if err != nil {
		return nil, err
	}

	if err := types.ValidateChannelOpenMsg(msg); err != nil {
		return nil, err
	}

	var resp *wasmvmtypes.IBC3ChannelOpenResponse
	if _, err := d.process(ctx, store, EntryPointIBCChannelOpen, true, func(cachedCtx types.Context) error {
		var err error
		resp, err = contract.IBCChannelOpen(cachedCtx, msg)
		return err
	}); err != nil {
		return nil, err
	}

	return resp, nil
}

// IBCChannelConnect dispatches the ibc_channel_connect entry point.
func (d *Dispatcher) IBCChannelConnect(ctx types.Context, store wasmvmtypes.KVStore, msg wasmvmtypes.IBCChannelConnectMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	contract, err := d.ibcContract(EntryPointIBCChannelConnect)
	if err != nil {
		return nil, err
	}

	if err := types.ValidateChannelConnectMsg(msg); err != nil {
		return nil, err
	}

	return d.processBasic(ctx, store, EntryPointIBCChannelConnect, func(cachedCtx types.Context) (*wasmvmtypes.IBCBasicResponse, error) {
		return contract.IBCChannelConnect(cachedCtx, msg)
	})
}

// IBCChannelClose dispatches the ibc_channel_close entry point.
func (d *Dispatcher) IBCChannelClose(ctx types.Context, store wasmvmtypes.KVStore, msg wasmvmtypes.IBCChannelCloseMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	contract, err := d.ibcContract(EntryPointIBCChannelClose)
	if err != nil {
		return nil, err
	}

	if err := types.ValidateChannelCloseMsg(msg); err != nil {
		return nil, err
	}

	return d.processBasic(ctx, store, EntryPointIBCChannelClose, func(cachedCtx types.Context) (*wasmvmtypes.IBCBasicResponse, error) {
		return contract.IBCChannelClose(cachedCtx, msg)
	})
}

// IBCPacketReceive dispatches the ibc_packet_receive entry point.
func (d *Dispatcher) IBCPacketReceive(ctx types.Context, store wasmvmtypes.KVStore, msg wasmvmtypes.IBCPacketReceiveMsg) (*wasmvmtypes.IBCReceiveResponse, error) {
	contract, err := d.ibcContract(EntryPointIBCPacketReceive)
	if err != nil {
		return nil, err
	}

	var resp *wasmvmtypes.IBCReceiveResponse
	events, err := d.process(ctx, store, EntryPointIBCPacketReceive, true, func(cachedCtx types.Context) error {
		var err error
		resp, err = contract.IBCPacketReceive(cachedCtx, msg)
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, errorsmod.Wrap(ibcerrors.ErrLogic, "contract returned no receive response")
	}
	resp.Events = append(resp.Events, events...)

	return resp, nil
}

// IBCPacketAck dispatches the ibc_packet_ack entry point.
func (d *Dispatcher) IBCPacketAck(ctx types.Context, store wasmvmtypes.KVStore, msg wasmvmtypes.IBCPacketAckMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	contract, err := d.ibcContract(EntryPointIBCPacketAck)
	if err != nil {
		return nil, err
	}

	return d.processBasic(ctx, store, EntryPointIBCPacketAck, func(cachedCtx types.Context) (*wasmvmtypes.IBCBasicResponse, error) {
		return contract.IBCPacketAck(cachedCtx, msg)
	})
}

// IBCPacketTimeout dispatches the ibc_packet_timeout entry point.
func (d *Dispatcher) IBCPacketTimeout(ctx types.Context, store wasmvmtypes.KVStore, msg wasmvmtypes.IBCPacketTimeoutMsg) (*wasmvmtypes.IBCBasicResponse, error) {
	contract, err := d.ibcContract(EntryPointIBCPacketTimeout)
	if err != nil {
		return nil, err
	}

	return d.processBasic(ctx, store, EntryPointIBCPacketTimeout, func(cachedCtx types.Context) (*wasmvmtypes.IBCBasicResponse, error) {
		return contract.IBCPacketTimeout(cachedCtx, msg)
	})
}

// Call decodes the JSON payload of the named entry point, dispatches it and returns the JSON
// encoded response. It is the boundary used by hosts exchanging JSON with the contract.
func (d *Dispatcher) Call(ctx types.Context, store wasmvmtypes.KVStore, entryPoint string, payload []byte) ([]byte, error) {
	switch entryPoint {
	case EntryPointInstantiate:
		resp, err := d.Instantiate(ctx, store, payload)
		return marshalResponse(resp, err)
	case EntryPointExecute:
		resp, err := d.Execute(ctx, store, payload)
		return marshalResponse(resp, err)
	case EntryPointQuery:
		return d.Query(ctx, store, payload)
	case EntryPointIBCChannelOpen:
		return callJSON(payload, func(msg wasmvmtypes.IBCChannelOpenMsg) (*wasmvmtypes.IBC3ChannelOpenResponse, error) {
			return d.IBCChannelOpen(ctx, store, msg)
		})
	case EntryPointIBCChannelConnect:
		return callJSON(payload, func(msg wasmvmtypes.IBCChannelConnectMsg) (*wasmvmtypes.IBCBasicResponse, error) {
			return d.IBCChannelConnect(ctx, store, msg)
		})
	case EntryPointIBCChannelClose:
		return callJSON(payload, func(msg wasmvmtypes.IBCChannelCloseMsg) (*wasmvmtypes.IBCBasicResponse, error) {
			return d.IBCChannelClose(ctx, store, msg)
		})
	case EntryPointIBCPacketReceive:
		return callJSON(payload, func(msg wasmvmtypes.IBCPacketReceiveMsg) (*wasmvmtypes.IBCReceiveResponse, error) {
			return d.IBCPacketReceive(ctx, store, msg)
		})
	case EntryPointIBCPacketAck:
		return callJSON(payload, func(msg wasmvmtypes.IBCPacketAckMsg) (*wasmvmtypes.IBCBasicResponse, error) {
			return d.IBCPacketAck(ctx, store, msg)
		})
	case EntryPointIBCPacketTimeout:
		return callJSON(payload, func(msg wasmvmtypes.IBCPacketTimeoutMsg) (*wasmvmtypes.IBCBasicResponse, error) {
			return d.IBCPacketTimeout(ctx, store, msg)
		})
	default:
		return nil, errorsmod.Wrapf(internalerrors.ErrUnknownEntryPoint, "%q", entryPoint)
	}
}

// process executes the entry point against a gas metered cache of the host store.
//
// Error Precedence and Returns:
//   - oogErr: if the gas meter is exhausted, an error wrapped with ErrOutOfGas is returned.
//   - panicErr: any other panic is returned wrapped with ErrContractPanic.
//   - executorErr: returned as-is, the cached writes are discarded.
func (d *Dispatcher) process(
	ctx types.Context, store wasmvmtypes.KVStore, entryPoint string, commit bool,
	executor func(types.Context) error,
) (events []wasmvmtypes.Event, err error) {
	if store == nil {
		return nil, errorsmod.Wrapf(ibcerrors.ErrInvalidRequest, "%s: store must not be nil", entryPoint)
	}

	if ctx.GasMeter() == nil {
		return nil, errorsmod.Wrapf(ibcerrors.ErrInvalidRequest, "%s: gas meter must not be nil", entryPoint)
	}

	cache := cachekv.NewStore(types.NewHostStore(store))
	metered := gaskv.NewStore(cache, ctx.GasMeter(), storetypes.KVGasConfig())
	cachedCtx := ctx.WithKVStore(types.NewStoreAdapter(metered)).WithEventManager(sdk.NewEventManager())

	defer func() {
		if r := recover(); r != nil {
			events = nil
			if oog, ok := r.(storetypes.ErrorOutOfGas); ok {
				err = errorsmod.Wrapf(
					internalerrors.ErrOutOfGas, "%s: out of gas in location: %v; gasLimit: %d, gasUsed: %d",
					entryPoint, oog.Descriptor, ctx.GasMeter().Limit(), ctx.GasMeter().GasConsumed(),
				)
			} else {
				err = errorsmod.Wrapf(internalerrors.ErrContractPanic, "%s panicked with: %v", entryPoint, r)
			}
		}

		d.logger.Debug(
			"entry point executed",
			"entry_point", entryPoint,
			"height", ctx.BlockHeight(),
			"gas_used", ctx.GasMeter().GasConsumed(),
			"success", err == nil,
			"error", errString(err),
		)
	}()

	if err := executor(cachedCtx); err != nil {
		return nil, err
	}

	if commit {
		cache.Write()
	}

	return types.ConvertEvents(cachedCtx.EventManager().Events()), nil
}

// processBasic runs an entry point returning an IBCBasicResponse and attaches the emitted events.
func (d *Dispatcher) processBasic(
	ctx types.Context, store wasmvmtypes.KVStore, entryPoint string,
	handler func(types.Context) (*wasmvmtypes.IBCBasicResponse, error),
) (*wasmvmtypes.IBCBasicResponse, error) {
	var resp *wasmvmtypes.IBCBasicResponse
	events, err := d.process(ctx, store, entryPoint, true, func(cachedCtx types.Context) error {
		var err error
		resp, err = handler(cachedCtx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil {
		resp = &wasmvmtypes.IBCBasicResponse{}
	}
	resp.Events = append(resp.Events, events...)

	return resp, nil
}

func (d *Dispatcher) ibcContract(entryPoint string) (types.IBCContract, error) {
	contract, ok := d.contract.(types.IBCContract)
	if !ok {
		return nil, errorsmod.Wrapf(internalerrors.ErrIBCNotSupported, "cannot dispatch %s", entryPoint)
	}

	return contract, nil
}

func validateJSON(msg []byte) error {
	if !json.Valid(msg) {
		return errorsmod.Wrap(internalerrors.ErrInvalidPayload, "message is not valid JSON")
	}

	return nil
}

func callJSON[M, R any](payload []byte, handler func(M) (R, error)) ([]byte, error) {
	var msg M
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, errorsmod.Wrapf(internalerrors.ErrInvalidPayload, "failed to unmarshal %T: %v", msg, err)
	}

	resp, err := handler(msg)
	return marshalResponse(resp, err)
}

func marshalResponse[R any](resp R, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	bz, err := json.Marshal(resp)
	if err != nil {
		return nil, errorsmod.Wrapf(ibcerrors.ErrLogic, "failed to marshal response: %v", err)
	}

	return bz, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
