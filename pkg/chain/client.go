// Package chain performs the read-only contract calls the order service
// needs: proxy registry lookups, ERC-721 ownership and approval, ERC-20
// allowance and balance, and the exchange's order validation.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/pkg/hexcodec"
	"github.com/mselser95/nft-market/pkg/types"
)

const defaultCallTimeout = 10 * time.Second

// Client wraps a contract caller with the ABIs and addresses of the
// marketplace contracts. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	caller        ethereum.ContractCaller
	closeFn       func()
	proxyRegistry common.Address
	exchange      common.Address
	callTimeout   time.Duration
	logger        *zap.Logger

	proxyRegistryABI abi.ABI
	erc721ABI        abi.ABI
	erc20ABI         abi.ABI
	exchangeABI      abi.ABI
}

// Config holds chain client configuration.
type Config struct {
	RPCURL        string
	ProxyRegistry common.Address
	Exchange      common.Address
	CallTimeout   time.Duration
	Logger        *zap.Logger
}

// Dial connects to the RPC endpoint and returns a client that owns the connection.
func Dial(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}

	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}

	client, err := NewClient(rpc, cfg)
	if err != nil {
		rpc.Close()
		return nil, err
	}
	client.closeFn = rpc.Close

	return client, nil
}

// NewClient creates a client on top of an existing contract caller.
func NewClient(caller ethereum.ContractCaller, cfg *Config) (*Client, error) {
	if caller == nil {
		return nil, errors.New("caller cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	c := &Client{
		caller:        caller,
		proxyRegistry: cfg.ProxyRegistry,
		exchange:      cfg.Exchange,
		callTimeout:   timeout,
		logger:        cfg.Logger,
	}

	parsed := []struct {
		dst *abi.ABI
		src string
	}{
		{&c.proxyRegistryABI, proxyRegistryABI},
		{&c.erc721ABI, erc721ABI},
		{&c.erc20ABI, erc20ABI},
		{&c.exchangeABI, exchangeABI},
	}
	for _, p := range parsed {
		a, err := abi.JSON(strings.NewReader(p.src))
		if err != nil {
			return nil, fmt.Errorf("parse ABI: %w", err)
		}
		*p.dst = a
	}

	return c, nil
}

// Close releases the RPC connection if the client dialed it.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Exchange returns the exchange contract address.
func (c *Client) Exchange() common.Address {
	return c.exchange
}

// ProxyOf returns the user's registered proxy, or the zero address when none exists.
func (c *Client) ProxyOf(ctx context.Context, owner common.Address) (common.Address, error) {
	out, err := c.call(ctx, c.proxyRegistry, &c.proxyRegistryABI, "proxies", owner)
	if err != nil {
		return common.Address{}, err
	}

	return abiAddress(out)
}

// IsApprovedForAll reports whether operator may transfer all of owner's tokens on the collection.
func (c *Client) IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error) {
	out, err := c.call(ctx, token, &c.erc721ABI, "isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}

	approved, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isApprovedForAll output %T", out[0])
	}

	return approved, nil
}

// OwnerOf returns the current owner of tokenID on the collection.
func (c *Client) OwnerOf(ctx context.Context, token common.Address, tokenID *big.Int) (common.Address, error) {
	out, err := c.call(ctx, token, &c.erc721ABI, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}

	return abiAddress(out)
}

// Allowance returns how much spender may transfer from owner.
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, &c.erc20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}

	return abiUint(out)
}

// BalanceOf returns the token balance of owner.
func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, &c.erc20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}

	return abiUint(out)
}

// orderTuple mirrors the exchange's order struct for ABI packing.
type orderTuple struct {
	Exchange           common.Address `abi:"exchange"`
	Maker              common.Address `abi:"maker"`
	Taker              common.Address `abi:"taker"`
	SaleSide           uint8          `abi:"saleSide"`
	SaleKind           uint8          `abi:"saleKind"`
	Target             common.Address `abi:"target"`
	PaymentToken       common.Address `abi:"paymentToken"`
	Calldata           []byte         `abi:"calldata_"`
	ReplacementPattern []byte         `abi:"replacementPattern"`
	StaticTarget       common.Address `abi:"staticTarget"`
	StaticExtra        []byte         `abi:"staticExtra"`
	BasePrice          *big.Int       `abi:"basePrice"`
	EndPrice           *big.Int       `abi:"endPrice"`
	ListingTime        *big.Int       `abi:"listingTime"`
	ExpirationTime     *big.Int       `abi:"expirationTime"`
	Salt               *big.Int       `abi:"salt"`
}

type sigTuple struct {
	R [32]byte `abi:"r"`
	S [32]byte `abi:"s"`
	V uint8    `abi:"v"`
}

// ValidateOrder asks the exchange whether sig is a valid signature for order.
// A revert is returned as an error; a clean false means the exchange rejected it.
func (c *Client) ValidateOrder(ctx context.Context, order *types.SolidityOrder, sig types.OrderSig) (bool, error) {
	r, err := hexcodec.Bytes32(sig.R)
	if err != nil {
		return false, fmt.Errorf("parse signature r: %w", err)
	}

	s, err := hexcodec.Bytes32(sig.S)
	if err != nil {
		return false, fmt.Errorf("parse signature s: %w", err)
	}

	staticExtra := order.StaticExtra
	if staticExtra == nil {
		staticExtra = []byte{}
	}

	tuple := orderTuple{
		Exchange:           order.Exchange,
		Maker:              order.Maker,
		Taker:              order.Taker,
		SaleSide:           uint8(order.SaleSide),
		SaleKind:           uint8(order.SaleKind),
		Target:             order.Target,
		PaymentToken:       order.PaymentToken,
		Calldata:           order.Calldata,
		ReplacementPattern: order.ReplacementPattern,
		StaticTarget:       order.StaticTarget,
		StaticExtra:        staticExtra,
		BasePrice:          order.BasePrice,
		EndPrice:           order.EndPrice,
		ListingTime:        new(big.Int).SetUint64(order.ListingTime),
		ExpirationTime:     new(big.Int).SetUint64(order.ExpirationTime),
		Salt:               new(big.Int).SetBytes(order.Salt[:]),
	}

	out, err := c.call(ctx, c.exchange, &c.exchangeABI, "validateOrder", tuple, sigTuple{R: r, S: s, V: sig.V})
	if err != nil {
		return false, err
	}

	valid, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected validateOrder output %T", out[0])
	}

	return valid, nil
}

func (c *Client) call(
	ctx context.Context,
	to common.Address,
	contract *abi.ABI,
	method string,
	args ...interface{},
) (out []interface{}, err error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	result, err := c.caller.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	CallDurationSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		CallErrorsTotal.WithLabelValues(method).Inc()
		c.logger.Debug("contract-call-failed",
			zap.String("method", method),
			zap.String("contract", to.Hex()),
			zap.Error(err))
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err = contract.Unpack(method, result)
	if err != nil {
		CallErrorsTotal.WithLabelValues(method).Inc()
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("unpack %s: empty output", method)
	}

	return out, nil
}

func abiAddress(out []interface{}) (common.Address, error) {
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected address output %T", out[0])
	}
	return addr, nil
}

func abiUint(out []interface{}) (*big.Int, error) {
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected uint256 output %T", out[0])
	}
	return n, nil
}
