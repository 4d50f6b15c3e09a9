package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type contractMeta struct {
	Name   string
	Symbol string
}

func newTestCache(t *testing.T, name string) *RistrettoCache {
	t.Helper()

	c, err := NewRistrettoCache(DefaultRistrettoConfig(name, 100, zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}

func TestNewRistrettoCache_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *RistrettoConfig
		wantErr string
	}{
		{
			name:    "missing-name",
			cfg:     DefaultRistrettoConfig("", 10, zap.NewNop()),
			wantErr: "cache name cannot be empty",
		},
		{
			name:    "missing-logger",
			cfg:     DefaultRistrettoConfig("contracts", 10, nil),
			wantErr: "logger cannot be nil",
		},
		{
			name:    "zero-capacity",
			cfg:     DefaultRistrettoConfig("contracts", 0, zap.NewNop()),
			wantErr: "create ristretto cache contracts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewRistrettoCache(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRistrettoCache_Operations(t *testing.T) {
	addrA := Key("nft-contract", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrB := Key("nft-contract", "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	tests := []struct {
		name   string
		run    func(c *RistrettoCache)
		key    string
		wantOK bool
	}{
		{
			name:   "miss-on-empty",
			run:    func(c *RistrettoCache) {},
			key:    addrA,
			wantOK: false,
		},
		{
			name: "set-then-get",
			run: func(c *RistrettoCache) {
				c.Set(addrA, &contractMeta{Name: "Apes"}, time.Hour)
			},
			key:    addrA,
			wantOK: true,
		},
		{
			name: "no-ttl-is-kept",
			run: func(c *RistrettoCache) {
				c.Set(addrA, &contractMeta{Name: "Apes"}, 0)
			},
			key:    addrA,
			wantOK: true,
		},
		{
			name: "delete",
			run: func(c *RistrettoCache) {
				c.Set(addrA, &contractMeta{Name: "Apes"}, time.Hour)
				c.Wait()
				c.Delete(addrA)
			},
			key:    addrA,
			wantOK: false,
		},
		{
			name: "clear",
			run: func(c *RistrettoCache) {
				c.Set(addrA, &contractMeta{Name: "Apes"}, time.Hour)
				c.Set(addrB, &contractMeta{Name: "Punks"}, time.Hour)
				c.Wait()
				c.Clear()
			},
			key:    addrB,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, "ops-"+tt.name)

			tt.run(c)
			c.Wait()

			_, ok := c.Get(tt.key)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRistrettoCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t, "ttl")
	key := Key("nft-contract", "0xcccccccccccccccccccccccccccccccccccccccc")

	require.True(t, c.Set(key, &contractMeta{Name: "Short"}, 50*time.Millisecond))
	c.Wait()

	_, ok := c.Get(key)
	require.True(t, ok)

	time.Sleep(200 * time.Millisecond)

	_, ok = c.Get(key)
	assert.False(t, ok, "entry should expire after its TTL")
}

func TestGetAs(t *testing.T) {
	c := newTestCache(t, "get-as")
	key := Key("nft-contract", "0xdddddddddddddddddddddddddddddddddddddddd")

	_, ok := GetAs[*contractMeta](c, key)
	assert.False(t, ok, "missing key")

	c.Set(key, &contractMeta{Name: "Apes", Symbol: "APE"}, time.Hour)
	c.Wait()

	meta, ok := GetAs[*contractMeta](c, key)
	require.True(t, ok)
	assert.Equal(t, "APE", meta.Symbol)

	_, ok = GetAs[string](c, key)
	assert.False(t, ok, "wrong type counts as a miss")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "nft-contract:0x01", Key("nft-contract", "0x01"))
}

func TestDefaultRistrettoConfig(t *testing.T) {
	cfg := DefaultRistrettoConfig("nft-contract", 500, zap.NewNop())

	assert.Equal(t, "nft-contract", cfg.Name)
	assert.Equal(t, int64(500), cfg.MaxCost)
	assert.Equal(t, int64(5000), cfg.NumCounters)
	assert.Equal(t, int64(64), cfg.BufferItems)
	assert.NotNil(t, cfg.Logger)
}
