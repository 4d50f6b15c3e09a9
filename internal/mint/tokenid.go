// Package mint derives deterministic token ids for lazily minted NFTs. A lazy
// token id packs the creator address into the high 20 bytes and a per-creator
// sequence index into the low 12 bytes, so ids are known before any on-chain
// mint happens.
package mint

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mselser95/nft-market/pkg/hexcodec"
)

const (
	creatorLen = common.AddressLength
	indexLen   = 12
)

// ErrIndexOutOfRange is returned for a zero index or one that does not fit the id.
var ErrIndexOutOfRange = errors.New("lazy token index out of range")

// LazyTokenID returns creator ‖ index as a uint256. Indexes start at 1.
func LazyTokenID(creator common.Address, index uint64) (*big.Int, error) {
	if index == 0 {
		return nil, ErrIndexOutOfRange
	}

	var id [creatorLen + indexLen]byte
	copy(id[:creatorLen], creator.Bytes())
	copy(id[creatorLen:], common.LeftPadBytes(new(big.Int).SetUint64(index).Bytes(), indexLen))

	return new(big.Int).SetBytes(id[:]), nil
}

// EncodeLazyTokenID returns the 64-hex-digit form stored on orders.
func EncodeLazyTokenID(creator common.Address, index uint64) (string, error) {
	id, err := LazyTokenID(creator, index)
	if err != nil {
		return "", err
	}

	return hexcodec.Uint256FromBig(id)
}

// ParseLazyTokenID splits a lazy token id back into creator and index.
func ParseLazyTokenID(id *big.Int) (common.Address, uint64, error) {
	if id == nil || id.Sign() <= 0 || id.BitLen() > 8*(creatorLen+indexLen) {
		return common.Address{}, 0, fmt.Errorf("token id %v is not a lazy token id", id)
	}

	raw := common.LeftPadBytes(id.Bytes(), creatorLen+indexLen)
	creator := common.BytesToAddress(raw[:creatorLen])

	index := new(big.Int).SetBytes(raw[creatorLen:])
	if !index.IsUint64() || index.Sign() == 0 {
		return common.Address{}, 0, fmt.Errorf("parse token id %s: %w", id.Text(16), ErrIndexOutOfRange)
	}

	return creator, index.Uint64(), nil
}

// NextIndex returns the index that follows the creator's most recent lazy
// token, or 1 when the creator has none.
func NextIndex(creator common.Address, last *big.Int) (uint64, error) {
	if last == nil {
		return 1, nil
	}

	owner, index, err := ParseLazyTokenID(last)
	if err != nil {
		return 0, err
	}

	if owner != creator {
		return 0, fmt.Errorf("token id belongs to %s, not %s", owner.Hex(), creator.Hex())
	}

	if index == math.MaxUint64 {
		return 0, ErrIndexOutOfRange
	}

	return index + 1, nil
}
