// Package hexcodec canonicalizes integers and addresses into the fixed-width
// hex forms stored on orders and embedded in exchange calldata.
package hexcodec

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/mselser95/nft-market/pkg/types"
)

// Uint256HexLen is the length of a canonical uint256 encoding in hex characters.
const Uint256HexLen = 64

// ToUint256 encodes a decimal or 0x-prefixed hex integer as 64 lowercase hex
// characters, big-endian and left-zero-padded.
func ToUint256(value string) (string, error) {
	n, err := ParseUint256(value)
	if err != nil {
		return "", err
	}

	return Uint256FromBig(n)
}

// ParseUint256 parses a decimal or 0x-prefixed hex integer and checks that it fits in 256 bits.
func ParseUint256(value string) (*big.Int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, &types.EncodingError{Value: value, Reason: "empty value"}
	}

	var n *big.Int
	var ok bool
	if has0xPrefix(v) {
		n, ok = new(big.Int).SetString(v[2:], 16)
	} else {
		n, ok = new(big.Int).SetString(v, 10)
	}

	if !ok {
		return nil, &types.EncodingError{Value: value, Reason: "not an integer"}
	}

	return n, checkRange(value, n)
}

// Uint256FromBig encodes n as 64 lowercase hex characters.
func Uint256FromBig(n *big.Int) (string, error) {
	if n == nil {
		return "", &types.EncodingError{Value: "<nil>", Reason: "nil value"}
	}

	err := checkRange(n.String(), n)
	if err != nil {
		return "", err
	}

	return common.Bytes2Hex(common.LeftPadBytes(n.Bytes(), 32)), nil
}

// DecodeUint256 decodes a canonical 64-character encoding back into an integer.
// A 0x prefix is tolerated.
func DecodeUint256(encoded string) (*big.Int, error) {
	b, err := Bytes32(encoded)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(b[:]), nil
}

// Bytes32 decodes a canonical 64-character encoding into a 32-byte array.
func Bytes32(encoded string) ([32]byte, error) {
	var out [32]byte

	s := strings.TrimPrefix(strings.TrimPrefix(encoded, "0x"), "0X")
	if len(s) != Uint256HexLen || !isHex(s) {
		return out, &types.EncodingError{Value: encoded, Reason: "want 64 hex characters"}
	}

	copy(out[:], common.Hex2Bytes(s))
	return out, nil
}

// NormalizeAddress validates a 20-byte address (with or without 0x) and
// returns its lowercase 0x-prefixed form.
func NormalizeAddress(addr string) (string, error) {
	a, err := ParseAddress(addr)
	if err != nil {
		return "", err
	}

	return FormatAddress(a), nil
}

// ParseAddress validates a 20-byte hex address.
func ParseAddress(addr string) (common.Address, error) {
	s := strings.TrimSpace(addr)
	if !common.IsHexAddress(s) {
		return common.Address{}, &types.InvalidAddressError{Address: addr}
	}

	return common.HexToAddress(s), nil
}

// FormatAddress renders an address in the lowercase form stored on orders.
func FormatAddress(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func checkRange(raw string, n *big.Int) error {
	if n.Sign() < 0 {
		return &types.EncodingError{Value: raw, Reason: "negative value"}
	}

	if n.Cmp(math.MaxBig256) > 0 {
		return &types.EncodingError{Value: raw, Reason: "exceeds 256 bits"}
	}

	return nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHex(s string) bool {
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLower := c >= 'a' && c <= 'f'
		isUpper := c >= 'A' && c <= 'F'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}
	return true
}
