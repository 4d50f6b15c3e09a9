package order

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/types"
)

var (
	exchangeAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	wethAddr     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	proxyAddr    = common.HexToAddress("0x4444444444444444444444444444444444444444")
	nftAddr      = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	makerAddr    = common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	takerAddr    = common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
	otherAddr    = common.HexToAddress("0xDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD")
)

const (
	nftHex   = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	makerHex = "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	takerHex = "0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"
	oneEther = "1000000000000000000"
)

var testNow = time.Unix(1_700_000_000, 0)

// fakeChain answers contract reads from fixed values and records the calls made.
type fakeChain struct {
	mu    sync.Mutex
	calls []string

	proxy       common.Address
	proxyErr    error
	approved    bool
	owner       common.Address
	ownerErr    error
	allowance   *big.Int
	balance     *big.Int
	valid       bool
	validateErr error

	seenSpender common.Address
	seenSig     types.OrderSig
}

// newFakeChain returns a chain on which every precondition passes for makerAddr.
func newFakeChain() *fakeChain {
	return &fakeChain{
		proxy:     proxyAddr,
		approved:  true,
		owner:     makerAddr,
		allowance: new(big.Int).Lsh(big.NewInt(1), 70),
		balance:   new(big.Int).Lsh(big.NewInt(1), 70),
		valid:     true,
	}
}

func (f *fakeChain) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeChain) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeChain) ProxyOf(ctx context.Context, owner common.Address) (common.Address, error) {
	f.record("proxies")
	return f.proxy, f.proxyErr
}

func (f *fakeChain) IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error) {
	f.record("isApprovedForAll")
	return f.approved && operator == f.proxy, nil
}

func (f *fakeChain) OwnerOf(ctx context.Context, token common.Address, tokenID *big.Int) (common.Address, error) {
	f.record("ownerOf")
	return f.owner, f.ownerErr
}

func (f *fakeChain) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	f.record("allowance")
	f.mu.Lock()
	f.seenSpender = spender
	f.mu.Unlock()
	return f.allowance, nil
}

func (f *fakeChain) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	f.record("balanceOf")
	return f.balance, nil
}

func (f *fakeChain) ValidateOrder(ctx context.Context, order *types.SolidityOrder, sig types.OrderSig) (bool, error) {
	f.record("validateOrder")
	f.mu.Lock()
	f.seenSig = sig
	f.mu.Unlock()
	return f.valid, f.validateErr
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newTestService(t *testing.T, chain ChainReader) (*Service, *storage.MemoryStorage, *testClock) {
	t.Helper()

	store := storage.NewMemoryStorage(zap.NewNop())
	clock := &testClock{now: testNow}

	svc, err := New(Config{
		Exchange:     exchangeAddr,
		PaymentToken: wethAddr,
		Store:        store,
		Chain:        chain,
		Logger:       zap.NewNop(),
		Now:          clock.Now,
	})
	require.NoError(t, err)

	return svc, store, clock
}

func sellParams() Params {
	return Params{
		Maker:           makerHex,
		ContractAddress: nftHex,
		TokenID:         "1",
		Price:           oneEther,
		ExpirationTime:  testNow.Unix() + 3600,
	}
}
