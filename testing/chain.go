package ibctesting

import (
	"encoding/json"
	"maps"
	"strings"
	"testing"
	"time"

	wasmvmtypes "github.com/CosmWasm/wasmvm/v2/types"
	"github.com/stretchr/testify/require"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/dbadapter"
	storetypes "cosmossdk.io/store/types"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	channeltypes "github.com/cosmos/ibc-go/v10/modules/core/04-channel/types"
	ibcerrors "github.com/cosmos/ibc-go/v10/modules/core/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/keeper"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
	"github.com/proofpay/proofpay-ibc/modules/core/entrypoint"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// MaxAccounts is the number of sender accounts generated for every TestChain.
const MaxAccounts = 10

type SenderAccount struct {
	SenderPrivKey cryptotypes.PrivKey
	SenderAccount sdk.AccAddress
}

// TestChain is a testing struct that hosts a single ProofPay contract. It plays the part of the
// chain runtime: it owns the contract store, builds the environment of every call, keeps its
// own record of the channel ends bound to the contract port and dispatches the messages the
// contract returns. Every call runs in its own transaction, a failing call leaves neither the
// store nor the host channel state modified.
type TestChain struct {
	testing.TB

	Coordinator *Coordinator
	ChainID     string
	Height      uint64
	CurrentTime time.Time
	GasLimit    uint64

	Config     types.Config
	Keeper     keeper.Keeper
	Dispatcher *entrypoint.Dispatcher
	DB         dbm.DB
	Store      storetypes.KVStore

	ContractAddress string
	PortID          string

	// SenderAccount instantiated the contract and is its admin
	SenderPrivKey  cryptotypes.PrivKey
	SenderAccount  sdk.AccAddress
	SenderAccounts []SenderAccount
	Relayer        sdk.AccAddress

	// BankSends records the bank transfers requested by the contract
	BankSends []wasmvmtypes.SendMsg

	channels      map[string]*HostChannel
	nextChannelID uint64
}

// HostChannel is the host's own record of a channel end bound to the contract port.
type HostChannel struct {
	Endpoint         wasmvmtypes.IBCEndpoint
	Counterparty     wasmvmtypes.IBCEndpoint
	ConnectionID     string
	Order            channeltypes.Order
	Version          string
	State            channeltypes.State
	NextSequenceSend uint64

	// Commitments holds the packets sent and not yet acknowledged or timed out
	Commitments map[uint64]wasmvmtypes.IBCPacket
	// Acknowledgements holds the acknowledgements written for received packets
	Acknowledgements map[uint64][]byte
}

// IBCChannel returns the channel end as it is handed to the contract.
func (c HostChannel) IBCChannel() wasmvmtypes.IBCChannel {
	return wasmvmtypes.IBCChannel{
		Endpoint:             c.Endpoint,
		CounterpartyEndpoint: c.Counterparty,
		Order:                types.OrderToIBC(c.Order),
		Version:              c.Version,
		ConnectionID:         c.ConnectionID,
	}
}

func (c *HostChannel) clone() *HostChannel {
	cpy := *c
	cpy.Commitments = maps.Clone(c.Commitments)
	cpy.Acknowledgements = maps.Clone(c.Acknowledgements)
	return &cpy
}

// NewTestChain initializes a new test chain hosting an instantiated ProofPay contract built
// with the given config. The first sender account is the contract admin.
func NewTestChain(tb testing.TB, coord *Coordinator, chainID string, cfg types.Config) *TestChain {
	tb.Helper()
	chain := NewUninstantiatedTestChain(tb, coord, chainID, cfg)

	_, err := chain.Instantiate(chain.SenderAccount.String(), types.InstantiateMsg{})
	require.NoError(tb, err)

	return chain
}

// NewUninstantiatedTestChain initializes a new test chain with the contract stored but not
// instantiated.
func NewUninstantiatedTestChain(tb testing.TB, coord *Coordinator, chainID string, cfg types.Config) *TestChain {
	tb.Helper()

	senderAccs := make([]SenderAccount, 0, MaxAccounts)
	for range MaxAccounts {
		privKey := secp256k1.GenPrivKey()
		senderAccs = append(senderAccs, SenderAccount{
			SenderPrivKey: privKey,
			SenderAccount: sdk.AccAddress(privKey.PubKey().Address()),
		})
	}

	db := dbm.NewMemDB()
	logger := log.NewNopLogger()

	k := keeper.NewKeeper(entrypointtypes.NewKVStoreService(), cfg, logger)
	contractAddr := sdk.AccAddress(address.Module(types.ModuleName, []byte(chainID))).String()

	currentTime := globalStartTime
	if coord != nil {
		currentTime = coord.CurrentTime
	}

	return &TestChain{
		TB:              tb,
		Coordinator:     coord,
		ChainID:         chainID,
		Height:          1,
		CurrentTime:     currentTime,
		GasLimit:        DefaultGasLimit,
		Config:          cfg,
		Keeper:          k,
		Dispatcher:      entrypoint.NewDispatcher(proofpay.New(k), logger),
		DB:              db,
		Store:           dbadapter.Store{DB: db},
		ContractAddress: contractAddr,
		PortID:          types.PortIDForContract(contractAddr),
		SenderPrivKey:   senderAccs[0].SenderPrivKey,
		SenderAccount:   senderAccs[0].SenderAccount,
		SenderAccounts:  senderAccs,
		Relayer:         senderAccs[MaxAccounts-1].SenderAccount,
		channels:        make(map[string]*HostChannel),
	}
}

// GetContext returns the context of a query made at the current height. The contract store is
// attached unwrapped: keeper writes made with it are committed.
func (chain *TestChain) GetContext() entrypointtypes.Context {
	return chain.newContext("", nil).WithKVStore(entrypointtypes.NewStoreAdapter(chain.Store))
}

func (chain *TestChain) newContext(sender string, funds []wasmvmtypes.Coin) entrypointtypes.Context {
	env := wasmvmtypes.Env{
		Block: wasmvmtypes.BlockInfo{
			Height:  chain.Height,
			Time:    wasmvmtypes.Uint64(chain.CurrentTime.UnixNano()),
			ChainID: chain.ChainID,
		},
		Contract: wasmvmtypes.ContractInfo{Address: chain.ContractAddress},
	}

	return entrypointtypes.NewContext(env, storetypes.NewGasMeter(chain.GasLimit)).
		WithInfo(wasmvmtypes.MessageInfo{Sender: sender, Funds: funds})
}

// NextBlock advances the chain height. The block time follows the coordinator clock.
func (chain *TestChain) NextBlock() {
	chain.Height++
	if chain.Coordinator != nil {
		chain.CurrentTime = chain.Coordinator.CurrentTime.UTC()
	}
}

// Instantiate calls the instantiate entry point of the contract.
func (chain *TestChain) Instantiate(sender string, msg types.InstantiateMsg) (*wasmvmtypes.Response, error) {
	bz, err := json.Marshal(msg)
	require.NoError(chain.TB, err)

	var resp *wasmvmtypes.Response
	err = chain.runTx(sender, nil, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		var err error
		resp, err = chain.Dispatcher.Instantiate(ctx, store, bz)
		if err != nil {
			return err
		}
		return chain.dispatchMessages(ctx, store, resp.Messages)
	})

	return resp, err
}

// Execute calls the execute entry point of the contract with funds attached and dispatches
// the returned messages in the same transaction.
func (chain *TestChain) Execute(sender string, msg types.ExecuteMsg, funds ...wasmvmtypes.Coin) (*wasmvmtypes.Response, error) {
	bz, err := json.Marshal(msg)
	require.NoError(chain.TB, err)

	return chain.ExecuteRaw(sender, bz, funds...)
}

// ExecuteRaw is like Execute for an already encoded message.
func (chain *TestChain) ExecuteRaw(sender string, msg []byte, funds ...wasmvmtypes.Coin) (*wasmvmtypes.Response, error) {
	var resp *wasmvmtypes.Response
	err := chain.runTx(sender, funds, func(ctx entrypointtypes.Context, store wasmvmtypes.KVStore) error {
		var err error
		resp, err = chain.Dispatcher.Execute(ctx, store, msg)
		if err != nil {
			return err
		}
		return chain.dispatchMessages(ctx, store, resp.Messages)
	})

	return resp, err
}

// Query calls the query entry point of the contract and decodes the response into resp.
func (chain *TestChain) Query(msg types.QueryMsg, resp any) error {
	bz, err := json.Marshal(msg)
	require.NoError(chain.TB, err)

	res, err := chain.Dispatcher.Query(chain.newContext("", nil), entrypointtypes.NewStoreAdapter(chain.Store), bz)
	if err != nil {
		return err
	}

	return json.Unmarshal(res, resp)
}

// RegisterUser registers the given account under username. Registration must succeed.
func (chain *TestChain) RegisterUser(account sdk.AccAddress, username string) {
	_, err := chain.Execute(account.String(), types.ExecuteMsg{
		RegisterUser: &types.RegisterUserMsg{Username: username, DisplayName: strings.ToUpper(username)},
	})
	require.NoError(chain.TB, err)
}

// Deposit credits the given amount of the default denom to the internal balance of account.
func (chain *TestChain) Deposit(account sdk.AccAddress, amount uint64) {
	_, err := chain.Execute(account.String(), types.ExecuteMsg{Deposit: &types.DepositMsg{}}, wasmvmtypes.NewCoin(amount, DefaultDenom))
	require.NoError(chain.TB, err)
}

// GetBalance returns the internal balance of address in denom.
func (chain *TestChain) GetBalance(address, denom string) sdk.Coin {
	balance, err := chain.Keeper.GetBalance(chain.GetContext(), address, denom)
	require.NoError(chain.TB, err)
	return balance
}

// GetChannel returns the host record of a channel end bound to the contract port.
func (chain *TestChain) GetChannel(channelID string) (HostChannel, bool) {
	channel, ok := chain.channels[channelID]
	if !ok {
		return HostChannel{}, false
	}
	return *channel, true
}

// PendingPackets returns the packets sent on channelID awaiting acknowledgement or timeout,
// in sequence order.
func (chain *TestChain) PendingPackets(channelID string) []wasmvmtypes.IBCPacket {
	channel, ok := chain.channels[channelID]
	if !ok {
		return nil
	}

	var packets []wasmvmtypes.IBCPacket
	for seq := uint64(1); seq < channel.NextSequenceSend; seq++ {
		if packet, ok := channel.Commitments[seq]; ok {
			packets = append(packets, packet)
		}
	}

	return packets
}

// runTx executes fn against a cache of the contract store and a copy of the host channel
// state. Both are committed only if fn succeeds.
func (chain *TestChain) runTx(sender string, funds []wasmvmtypes.Coin, fn func(entrypointtypes.Context, wasmvmtypes.KVStore) error) error {
	cache := cachekv.NewStore(chain.Store)

	snapshot := make(map[string]*HostChannel, len(chain.channels))
	for id, channel := range chain.channels {
		snapshot[id] = channel.clone()
	}
	nextChannelID := chain.nextChannelID
	bankSends := len(chain.BankSends)

	if err := fn(chain.newContext(sender, funds), entrypointtypes.NewStoreAdapter(cache)); err != nil {
		chain.channels = snapshot
		chain.nextChannelID = nextChannelID
		chain.BankSends = chain.BankSends[:bankSends]
		return err
	}

	cache.Write()
	return nil
}

// dispatchMessages executes the messages returned by the contract.
func (chain *TestChain) dispatchMessages(ctx entrypointtypes.Context, store wasmvmtypes.KVStore, msgs []wasmvmtypes.SubMsg) error {
	for _, sub := range msgs {
		msg := sub.Msg

		switch {
		case msg.Bank != nil && msg.Bank.Send != nil:
			chain.BankSends = append(chain.BankSends, *msg.Bank.Send)
		case msg.IBC != nil && msg.IBC.SendPacket != nil:
			if _, err := chain.sendPacket(*msg.IBC.SendPacket); err != nil {
				return err
			}
		case msg.IBC != nil && msg.IBC.CloseChannel != nil:
			if err := chain.closeChannel(ctx, store, msg.IBC.CloseChannel.ChannelID); err != nil {
				return err
			}
		default:
			return errorsmod.Wrapf(ibcerrors.ErrInvalidType, "unsupported contract message %+v", msg)
		}
	}

	return nil
}

// sendPacket commits a packet sent by the contract on one of its channels.
func (chain *TestChain) sendPacket(msg wasmvmtypes.SendPacketMsg) (wasmvmtypes.IBCPacket, error) {
	channel, ok := chain.channels[msg.ChannelID]
	if !ok {
		return wasmvmtypes.IBCPacket{}, errorsmod.Wrap(channeltypes.ErrChannelNotFound, msg.ChannelID)
	}

	if channel.State != channeltypes.OPEN {
		return wasmvmtypes.IBCPacket{}, errorsmod.Wrapf(channeltypes.ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	timeout := msg.Timeout.Timestamp
	if timeout != 0 && timeout <= uint64(chain.CurrentTime.UnixNano()) {
		return wasmvmtypes.IBCPacket{}, errorsmod.Wrapf(channeltypes.ErrTimeoutElapsed, "timeout %d is not after block time", timeout)
	}

	packet := wasmvmtypes.IBCPacket{
		Data:     msg.Data,
		Src:      channel.Endpoint,
		Dest:     channel.Counterparty,
		Sequence: channel.NextSequenceSend,
		Timeout:  msg.Timeout,
	}

	channel.Commitments[packet.Sequence] = packet
	channel.NextSequenceSend++

	return packet, nil
}

// closeChannel runs close_init on behalf of the contract.
func (chain *TestChain) closeChannel(ctx entrypointtypes.Context, store wasmvmtypes.KVStore, channelID string) error {
	channel, ok := chain.channels[channelID]
	if !ok {
		return errorsmod.Wrap(channeltypes.ErrChannelNotFound, channelID)
	}

	if channel.State == channeltypes.CLOSED {
		return errorsmod.Wrap(channeltypes.ErrInvalidChannelState, "channel is already CLOSED")
	}

	msg := wasmvmtypes.IBCChannelCloseMsg{CloseInit: &wasmvmtypes.IBCCloseInit{Channel: channel.IBCChannel()}}
	if _, err := chain.Dispatcher.IBCChannelClose(ctx, store, msg); err != nil {
		return err
	}

	channel.State = channeltypes.CLOSED
	return nil
}

func (chain *TestChain) newChannelID() string {
	id := channeltypes.FormatChannelIdentifier(chain.nextChannelID)
	chain.nextChannelID++
	return id
}
