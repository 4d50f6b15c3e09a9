package cmd

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/nft-market/internal/calldata"
	"github.com/mselser95/nft-market/internal/mint"
)

const (
	makerAddr  = "0x00000000000000000000000000000000000000aa"
	sellerAddr = "0x00000000000000000000000000000000000000bb"
)

// TestCommands_Structure tests every subcommand is registered and runnable
func TestCommands_Structure(t *testing.T) {
	tests := []struct {
		cmd *cobra.Command
		use string
	}{
		{cmd: serveCmd, use: "serve"},
		{cmd: verifyOrderCmd, use: "verify-order <order-id>"},
		{cmd: orderBookCmd, use: "order-book"},
		{cmd: nftContractCmd, use: "nft-contract <address>"},
		{cmd: encodeCalldataCmd, use: "encode-calldata"},
		{cmd: lazyTokenIDCmd, use: "lazy-token-id"},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			if tt.cmd == nil {
				t.Fatal("command is nil")
			}

			if tt.cmd.Use != tt.use {
				t.Errorf("expected Use=%q, got %q", tt.use, tt.cmd.Use)
			}

			if tt.cmd.RunE == nil {
				t.Error("RunE function is nil")
			}

			if tt.cmd.Parent() != rootCmd {
				t.Error("command not registered on root")
			}
		})
	}
}

// TestCommands_Flags tests flag defaults
func TestCommands_Flags(t *testing.T) {
	side := orderBookCmd.Flags().Lookup("side")
	require.NotNil(t, side)
	assert.Equal(t, "sell", side.DefValue)

	v := verifyOrderCmd.Flags().Lookup("v")
	require.NotNil(t, v)
	assert.Equal(t, "27", v.DefValue)

	kind := encodeCalldataCmd.Flags().Lookup("kind")
	require.NotNil(t, kind)
	assert.Equal(t, "k", kind.Shorthand)
	assert.Equal(t, "sell", kind.DefValue)

	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
}

func TestEncodeTemplate(t *testing.T) {
	maker := common.HexToAddress(makerAddr)
	seller := common.HexToAddress(sellerAddr)
	tokenID := big.NewInt(7)

	tests := []struct {
		name         string
		kind         string
		counterparty string
		want         calldata.Template
	}{
		{name: "sell", kind: "sell", want: calldata.Sell(maker, tokenID)},
		{name: "offer", kind: "offer", want: calldata.Offer(maker, tokenID)},
		{name: "buy", kind: "buy", counterparty: sellerAddr, want: calldata.BuyAgainstSell(seller, maker, tokenID)},
		{name: "accept", kind: "accept", counterparty: sellerAddr, want: calldata.SellAgainstOffer(seller, maker, tokenID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeTemplate(tt.kind, makerAddr, tt.counterparty, "7")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeTemplate_Errors(t *testing.T) {
	tests := []struct {
		name         string
		kind         string
		maker        string
		counterparty string
		tokenID      string
	}{
		{name: "bad-kind", kind: "swap", maker: makerAddr, tokenID: "1"},
		{name: "bad-maker", kind: "sell", maker: "0x12", tokenID: "1"},
		{name: "bad-token", kind: "sell", maker: makerAddr, tokenID: "-1"},
		{name: "missing-counterparty", kind: "buy", maker: makerAddr, tokenID: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encodeTemplate(tt.kind, tt.maker, tt.counterparty, tt.tokenID)
			assert.Error(t, err)
		})
	}
}

func TestNextLazyIndex(t *testing.T) {
	creator := common.HexToAddress(makerAddr)

	idx, err := nextLazyIndex(creator, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)

	last, err := mint.LazyTokenID(creator, 41)
	require.NoError(t, err)

	idx, err = nextLazyIndex(creator, last.String())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), idx)

	_, err = nextLazyIndex(common.HexToAddress(sellerAddr), last.String())
	assert.Error(t, err)
}

func TestResolveLazyTokenID(t *testing.T) {
	creator := common.HexToAddress(makerAddr)

	index, encoded, err := resolveLazyTokenID(creator, 7, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), index)
	assert.Equal(t, "00000000000000000000000000000000000000aa"+"000000000000000000000007", encoded)

	last, err := mint.LazyTokenID(creator, 7)
	require.NoError(t, err)

	index, encoded, err = resolveLazyTokenID(creator, 0, last.String())
	require.NoError(t, err)
	assert.Equal(t, uint64(8), index)
	assert.Equal(t, "00000000000000000000000000000000000000aa"+"000000000000000000000008", encoded)

	_, _, err = resolveLazyTokenID(common.HexToAddress(sellerAddr), 0, last.String())
	assert.Error(t, err)
}

func TestFormatWei(t *testing.T) {
	assert.Equal(t, "1000000000000000000", formatWei("0000000000000000000000000000000000000000000000000de0b6b3a7640000"))
	assert.Equal(t, "zz", formatWei("zz"))
}
