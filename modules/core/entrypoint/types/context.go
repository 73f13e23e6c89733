package types

import (
	"context"
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	"cosmossdk.io/store/cachekv"
	storetypes "cosmossdk.io/store/types"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

var _ context.Context = Context{}

type contextKey struct{}

// Context carries everything the host supplies to a single entry point call: the block and
// contract environment, the caller, the gas budget and the contract's store handle. Contracts
// only read it; state changes go through the store handle and events through the EventManager.
//
// Context implements context.Context so it can be passed to cosmossdk.io/collections.
type Context struct {
	baseCtx      context.Context
	env          wasmvmtypes.Env
	info         wasmvmtypes.MessageInfo
	store        wasmvmtypes.KVStore
	gasMeter     storetypes.GasMeter
	eventManager *sdk.EventManager
}

// NewContext creates a Context for the given environment. The gas meter bounds every store
// access made during the call.
func NewContext(env wasmvmtypes.Env, gasMeter storetypes.GasMeter) Context {
	if gasMeter == nil {
		gasMeter = storetypes.NewInfiniteGasMeter()
	}

	return Context{
		baseCtx:      context.Background(),
		env:          env,
		gasMeter:     gasMeter,
		eventManager: sdk.NewEventManager(),
	}
}

// Env returns the block and contract environment.
func (c Context) Env() wasmvmtypes.Env {
	return c.env
}

// Info returns the caller and attached funds, empty outside instantiate and execute.
func (c Context) Info() wasmvmtypes.MessageInfo {
	return c.info
}

func (c Context) KVStore() wasmvmtypes.KVStore {
	return c.store
}

func (c Context) GasMeter() storetypes.GasMeter {
	return c.gasMeter
}

func (c Context) EventManager() *sdk.EventManager {
	return c.eventManager
}

func (c Context) BlockHeight() uint64 {
	return c.env.Block.Height
}

func (c Context) ChainID() string {
	return c.env.Block.ChainID
}

func (c Context) ContractAddress() string {
	return c.env.Contract.Address
}

// Sender returns the address of the caller.
func (c Context) Sender() string {
	return c.info.Sender
}

func (c Context) Funds() []wasmvmtypes.Coin {
	return c.info.Funds
}

// BlockTime returns the block time supplied by the host.
func (c Context) BlockTime() time.Time {
	return time.Unix(0, int64(c.env.Block.Time)).UTC()
}

// WithInfo returns a Context with an updated caller and attached funds.
func (c Context) WithInfo(info wasmvmtypes.MessageInfo) Context {
	c.info = info
	return c
}

// WithKVStore returns a Context with an updated store handle.
func (c Context) WithKVStore(store wasmvmtypes.KVStore) Context {
	c.store = store
	return c
}

// WithEventManager returns a Context with an updated event manager.
func (c Context) WithEventManager(em *sdk.EventManager) Context {
	c.eventManager = em
	return c
}

// CacheContext returns a new Context with the store cache-wrapped and a fresh event manager.
// The returned writeCache function flushes the cached writes into the parent store and emits
// the cached events on the parent event manager. Nothing is written if it is never called.
func (c Context) CacheContext() (cc Context, writeCache func()) {
	cms := cachekv.NewStore(NewHostStore(c.store))
	cc = c.WithKVStore(NewStoreAdapter(cms)).WithEventManager(sdk.NewEventManager())

	writeCache = func() {
		c.EventManager().EmitEvents(cc.EventManager().Events())
		cms.Write()
	}

	return cc, writeCache
}

// Deadline implements context.Context.
func (c Context) Deadline() (deadline time.Time, ok bool) {
	return c.base().Deadline()
}

// Done implements context.Context.
func (c Context) Done() <-chan struct{} {
	return c.base().Done()
}

// Err implements context.Context.
func (c Context) Err() error {
	return c.base().Err()
}

// Value implements context.Context. The Context itself is returned for the package key so that
// UnwrapContext works on derived contexts.
func (c Context) Value(key any) any {
	if key == (contextKey{}) {
		return c
	}

	return c.base().Value(key)
}

// base returns the base context.Context, a zero Context has none.
func (c Context) base() context.Context {
	if c.baseCtx == nil {
		return context.Background()
	}

	return c.baseCtx
}

// UnwrapContext retrieves a Context from a context.Context instance attached with one.
func UnwrapContext(ctx context.Context) Context {
	if c, ok := ctx.(Context); ok {
		return c
	}

	return ctx.Value(contextKey{}).(Context)
}
