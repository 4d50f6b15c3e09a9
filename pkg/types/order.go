package types

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
)

// SaleSide is the side of the exchange order: 1 = sell, 0 = buy.
type SaleSide uint8

const (
	SaleSideBuy  SaleSide = 0
	SaleSideSell SaleSide = 1
)

// Opposite returns the side a counterparty submits against this side.
func (s SaleSide) Opposite() SaleSide {
	if s == SaleSideSell {
		return SaleSideBuy
	}
	return SaleSideSell
}

// SaleKind selects the pricing model. Only fixed price is supported.
type SaleKind uint8

const (
	SaleKindFixedPrice SaleKind = 0
	SaleKindDutch      SaleKind = 1
)

// ZeroAddress is used for the open taker, native currency payments and the unused static target.
var ZeroAddress = common.Address{}

// Order is the persisted order record.
type Order struct {
	ID              string    `json:"id"`
	Maker           string    `json:"maker"`           // lowercase 0x-prefixed
	ContractAddress string    `json:"contractAddress"` // lowercase 0x-prefixed
	TokenID         string    `json:"tokenId"`         // 64 hex chars, big-endian
	Price           string    `json:"price"`           // 64 hex chars, big-endian
	ExpirationTime  int64     `json:"expirationTime"`  // unix seconds
	IsSell          bool      `json:"isSell"`
	Verified        bool      `json:"verified"`
	Raw             string    `json:"raw"`
	Signature       string    `json:"signature,omitempty"` // r || s || v, no 0x
	CreatedAt       time.Time `json:"createdAt"`
}

// IsExpired reports whether the order is past its expiration time at now.
func (o *Order) IsExpired(now time.Time) bool {
	return o.ExpirationTime < now.Unix()
}

// SolidityOrder is the exchange order structure that makers sign.
// Field order matches the exchange ABI tuple and must not change.
type SolidityOrder struct {
	Exchange           common.Address
	Maker              common.Address
	Taker              common.Address
	SaleSide           SaleSide
	SaleKind           SaleKind
	Target             common.Address
	PaymentToken       common.Address
	Calldata           []byte
	ReplacementPattern []byte
	StaticTarget       common.Address
	StaticExtra        []byte
	BasePrice          *big.Int
	EndPrice           *big.Int
	ListingTime        uint64
	ExpirationTime     uint64
	Salt               [32]byte
}

type solidityOrderJSON struct {
	Exchange           common.Address `json:"exchange"`
	Maker              common.Address `json:"maker"`
	Taker              common.Address `json:"taker"`
	SaleSide           SaleSide       `json:"saleSide"`
	SaleKind           SaleKind       `json:"saleKind"`
	Target             common.Address `json:"target"`
	PaymentToken       common.Address `json:"paymentToken"`
	Calldata           hexutil.Bytes  `json:"calldata_"`
	ReplacementPattern hexutil.Bytes  `json:"replacementPattern"`
	StaticTarget       common.Address `json:"staticTarget"`
	StaticExtra        hexutil.Bytes  `json:"staticExtra"`
	BasePrice          *hexutil.Big   `json:"basePrice"`
	EndPrice           *hexutil.Big   `json:"endPrice"`
	ListingTime        uint64         `json:"listingTime"`
	ExpirationTime     uint64         `json:"expirationTime"`
	Salt               hexutil.Bytes  `json:"salt"`
}

// MarshalJSON encodes addresses and byte fields as 0x-prefixed hex.
func (o SolidityOrder) MarshalJSON() ([]byte, error) {
	var basePrice, endPrice *hexutil.Big
	if o.BasePrice != nil {
		basePrice = (*hexutil.Big)(o.BasePrice)
	}
	if o.EndPrice != nil {
		endPrice = (*hexutil.Big)(o.EndPrice)
	}

	staticExtra := o.StaticExtra
	if staticExtra == nil {
		staticExtra = []byte{}
	}

	return json.Marshal(solidityOrderJSON{
		Exchange:           o.Exchange,
		Maker:              o.Maker,
		Taker:              o.Taker,
		SaleSide:           o.SaleSide,
		SaleKind:           o.SaleKind,
		Target:             o.Target,
		PaymentToken:       o.PaymentToken,
		Calldata:           o.Calldata,
		ReplacementPattern: o.ReplacementPattern,
		StaticTarget:       o.StaticTarget,
		StaticExtra:        staticExtra,
		BasePrice:          basePrice,
		EndPrice:           endPrice,
		ListingTime:        o.ListingTime,
		ExpirationTime:     o.ExpirationTime,
		Salt:               o.Salt[:],
	})
}

// UnmarshalJSON decodes the hex form produced by MarshalJSON.
func (o *SolidityOrder) UnmarshalJSON(data []byte) error {
	var aux solidityOrderJSON
	err := json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}

	if aux.BasePrice == nil || aux.EndPrice == nil {
		return fmt.Errorf("missing basePrice or endPrice")
	}

	if len(aux.Salt) != 32 {
		return fmt.Errorf("salt must be 32 bytes, got %d", len(aux.Salt))
	}

	*o = SolidityOrder{
		Exchange:           aux.Exchange,
		Maker:              aux.Maker,
		Taker:              aux.Taker,
		SaleSide:           aux.SaleSide,
		SaleKind:           aux.SaleKind,
		Target:             aux.Target,
		PaymentToken:       aux.PaymentToken,
		Calldata:           aux.Calldata,
		ReplacementPattern: aux.ReplacementPattern,
		StaticTarget:       aux.StaticTarget,
		StaticExtra:        aux.StaticExtra,
		BasePrice:          aux.BasePrice.ToInt(),
		EndPrice:           aux.EndPrice.ToInt(),
		ListingTime:        aux.ListingTime,
		ExpirationTime:     aux.ExpirationTime,
	}
	copy(o.Salt[:], aux.Salt)

	return nil
}

// OrderSig is an ECDSA signature over the canonical order encoding.
type OrderSig struct {
	R string `json:"r"` // 32 bytes hex
	S string `json:"s"` // 32 bytes hex
	V uint8  `json:"v"`
}

// Concat returns r || s || v as bare hex digits, the form stored on a verified order.
// V is written as two hex digits (28 -> "1c"), so signatures stored by systems
// that wrote v in decimal are not byte-compatible with these rows.
func (s OrderSig) Concat() string {
	return fmt.Sprintf("%s%s%02x", trimHexPrefix(s.R), trimHexPrefix(s.S), s.V)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
