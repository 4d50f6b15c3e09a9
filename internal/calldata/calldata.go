// Package calldata builds the ERC-721 transfer calldata template and the
// replacement pattern that lets the exchange match two independently signed
// orders. A zero mask byte means the byte must match exactly; 0xff means the
// counterparty may substitute any value.
package calldata

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// SelectorLen is the length of the function selector.
	SelectorLen = 4
	// SlotLen is the width of one ABI word.
	SlotLen = 32
	// Len is the full calldata length: selector + from + to + tokenId.
	Len = SelectorLen + 3*SlotLen
)

// TransferSelector is the selector every order's calldata starts with.
var TransferSelector = [SelectorLen]byte{0x42, 0x84, 0x2e, 0x0e}

var (
	fixedSlot    = bytes.Repeat([]byte{0x00}, SlotLen)
	wildcardSlot = bytes.Repeat([]byte{0xff}, SlotLen)
)

// Slot identifies a party slot in the transfer calldata.
type Slot int

const (
	SlotFrom Slot = iota
	SlotTo
)

func (s Slot) offset() int {
	return SelectorLen + int(s)*SlotLen
}

// Template is a calldata/mask pair.
type Template struct {
	Calldata           []byte
	ReplacementPattern []byte
}

// Build encodes transferFrom(from, to, tokenId) and masks the wildcard slot.
// The selector and tokenId slot are always fixed.
func Build(from, to common.Address, tokenID *big.Int, wildcard Slot) Template {
	data := make([]byte, 0, Len)
	data = append(data, TransferSelector[:]...)
	data = append(data, common.LeftPadBytes(from.Bytes(), SlotLen)...)
	data = append(data, common.LeftPadBytes(to.Bytes(), SlotLen)...)
	data = append(data, common.LeftPadBytes(tokenID.Bytes(), SlotLen)...)

	mask := make([]byte, 0, Len)
	mask = append(mask, make([]byte, SelectorLen)...)
	for _, slot := range []Slot{SlotFrom, SlotTo} {
		if slot == wildcard {
			mask = append(mask, wildcardSlot...)
		} else {
			mask = append(mask, fixedSlot...)
		}
	}
	mask = append(mask, fixedSlot...)

	return Template{Calldata: data, ReplacementPattern: mask}
}

// Sell fixes the maker as sender and leaves the recipient open.
func Sell(maker common.Address, tokenID *big.Int) Template {
	return Build(maker, common.Address{}, tokenID, SlotTo)
}

// Offer fixes the maker as recipient and leaves the sender open.
func Offer(maker common.Address, tokenID *big.Int) Template {
	return Build(common.Address{}, maker, tokenID, SlotFrom)
}

// BuyAgainstSell is the taker's side of a listed sell: the taker is the fixed
// recipient and the seller's slot is wildcarded.
func BuyAgainstSell(seller, taker common.Address, tokenID *big.Int) Template {
	return Build(seller, taker, tokenID, SlotFrom)
}

// SellAgainstOffer is the taker's side of an offer: the taker is the fixed
// sender and the bidder's slot is wildcarded.
func SellAgainstOffer(bidder, taker common.Address, tokenID *big.Int) Template {
	return Build(taker, bidder, tokenID, SlotTo)
}

// Apply performs the exchange's guarded replace: every bit set in mask is
// taken from desired, every clear bit is kept from data.
func Apply(data, desired, mask []byte) ([]byte, error) {
	if len(data) != len(desired) || len(data) != len(mask) {
		return nil, fmt.Errorf("length mismatch: data %d, desired %d, mask %d", len(data), len(desired), len(mask))
	}

	out := make([]byte, len(data))
	for i := range data {
		out[i] = (data[i] &^ mask[i]) | (desired[i] & mask[i])
	}

	return out, nil
}

// Match reports whether two templates converge to identical calldata after
// each side is replaced by the other, as the exchange checks at settlement.
func Match(a, b Template) (bool, error) {
	aReplaced, err := Apply(a.Calldata, b.Calldata, a.ReplacementPattern)
	if err != nil {
		return false, err
	}

	bReplaced, err := Apply(b.Calldata, a.Calldata, b.ReplacementPattern)
	if err != nil {
		return false, err
	}

	return bytes.Equal(aReplaced, bReplaced), nil
}

// Party returns the address encoded in the given slot.
func Party(data []byte, slot Slot) (common.Address, error) {
	if len(data) != Len {
		return common.Address{}, fmt.Errorf("calldata length %d, want %d", len(data), Len)
	}

	word := data[slot.offset() : slot.offset()+SlotLen]
	return common.BytesToAddress(word), nil
}

// TokenID returns the token id encoded in the calldata.
func TokenID(data []byte) (*big.Int, error) {
	if len(data) != Len {
		return nil, fmt.Errorf("calldata length %d, want %d", len(data), Len)
	}

	return new(big.Int).SetBytes(data[SelectorLen+2*SlotLen:]), nil
}
