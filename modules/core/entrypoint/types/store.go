package types

import (
	"context"
	"errors"
	"io"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"

	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/tracekv"
	storetypes "cosmossdk.io/store/types"
)

var (
	_ wasmvmtypes.KVStore      = &StoreAdapter{}
	_ storetypes.KVStore       = &HostStore{}
	_ corestore.KVStoreService = KVStoreService{}
	_ corestore.KVStore        = coreStore{}
)

// HostStore bridges the host's wasmvm store handle to the SDK store implementation so it can
// be wrapped by cachekv and gaskv. It implements the storetypes.KVStore interface.
type HostStore struct {
	parent wasmvmtypes.KVStore
}

// NewHostStore constructor
func NewHostStore(s wasmvmtypes.KVStore) *HostStore {
	if s == nil {
		panic(errors.New("store must not be nil"))
	}

	return &HostStore{parent: s}
}

// Get implements the storetypes.KVStore interface.
func (s HostStore) Get(key []byte) []byte {
	return s.parent.Get(key)
}

// Has implements the storetypes.KVStore interface.
//
// Note: the host handle has no Has method, a nil value is treated as absent.
func (s HostStore) Has(key []byte) bool {
	return s.parent.Get(key) != nil
}

// Set implements the storetypes.KVStore interface.
func (s HostStore) Set(key, value []byte) {
	s.parent.Set(key, value)
}

// Delete implements the storetypes.KVStore interface.
func (s HostStore) Delete(key []byte) {
	s.parent.Delete(key)
}

// Iterator implements the storetypes.KVStore interface.
func (s HostStore) Iterator(start, end []byte) storetypes.Iterator {
	return s.parent.Iterator(start, end)
}

// ReverseIterator implements the storetypes.KVStore interface.
func (s HostStore) ReverseIterator(start, end []byte) storetypes.Iterator {
	return s.parent.ReverseIterator(start, end)
}

// GetStoreType implements the storetypes.KVStore interface, it is implemented solely to satisfy the interface.
func (s HostStore) GetStoreType() storetypes.StoreType {
	return storetypes.StoreTypeDB
}

// CacheWrap implements the storetypes.KVStore interface.
func (s HostStore) CacheWrap() storetypes.CacheWrap {
	return cachekv.NewStore(s)
}

// CacheWrapWithTrace implements the storetypes.KVStore interface.
func (s HostStore) CacheWrapWithTrace(w io.Writer, tc storetypes.TraceContext) storetypes.CacheWrap {
	return cachekv.NewStore(tracekv.NewStore(s, w, tc))
}

// StoreAdapter bridges the SDK store implementation to the wasmvm one. It implements the wasmvmtypes.KVStore interface.
type StoreAdapter struct {
	parent storetypes.KVStore
}

// NewStoreAdapter constructor
func NewStoreAdapter(s storetypes.KVStore) *StoreAdapter {
	if s == nil {
		panic(errors.New("store must not be nil"))
	}

	return &StoreAdapter{parent: s}
}

// Get implements the wasmvmtypes.KVStore interface.
func (s StoreAdapter) Get(key []byte) []byte {
	return s.parent.Get(key)
}

// Set implements the wasmvmtypes.KVStore interface.
func (s StoreAdapter) Set(key, value []byte) {
	s.parent.Set(key, value)
}

// Delete implements the wasmvmtypes.KVStore interface.
func (s StoreAdapter) Delete(key []byte) {
	s.parent.Delete(key)
}

// Iterator implements the wasmvmtypes.KVStore interface.
func (s StoreAdapter) Iterator(start, end []byte) wasmvmtypes.Iterator {
	return s.parent.Iterator(start, end)
}

// ReverseIterator implements the wasmvmtypes.KVStore interface.
func (s StoreAdapter) ReverseIterator(start, end []byte) wasmvmtypes.Iterator {
	return s.parent.ReverseIterator(start, end)
}

// KVStoreService opens the store handle carried by the entry point Context. It lets
// cosmossdk.io/collections operate on the contract's storage.
type KVStoreService struct{}

// NewKVStoreService returns a store service reading the store from the call context.
func NewKVStoreService() KVStoreService {
	return KVStoreService{}
}

// OpenKVStore implements the corestore.KVStoreService interface.
func (KVStoreService) OpenKVStore(ctx context.Context) corestore.KVStore {
	return coreStore{parent: UnwrapContext(ctx).KVStore()}
}

// coreStore exposes a wasmvm store through the error returning core store API.
type coreStore struct {
	parent wasmvmtypes.KVStore
}

func (s coreStore) Get(key []byte) ([]byte, error) {
	return s.parent.Get(key), nil
}

func (s coreStore) Has(key []byte) (bool, error) {
	return s.parent.Get(key) != nil, nil
}

func (s coreStore) Set(key, value []byte) error {
	s.parent.Set(key, value)
	return nil
}

func (s coreStore) Delete(key []byte) error {
	s.parent.Delete(key)
	return nil
}

func (s coreStore) Iterator(start, end []byte) (corestore.Iterator, error) {
	return s.parent.Iterator(start, end), nil
}

func (s coreStore) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return s.parent.ReverseIterator(start, end), nil
}
