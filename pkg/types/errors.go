package types

import (
	"errors"
	"fmt"
)

// EncodingError reports a numeric value that cannot be encoded as uint256.
type EncodingError struct {
	Value  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode uint256 %q: %s", e.Value, e.Reason)
}

// InvalidAddressError reports a malformed 20-byte account address.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: want 40 hex characters", e.Address)
}

// OrderNotFoundError is returned when no persisted order matches the id and state filter.
type OrderNotFoundError struct {
	OrderID string
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

// OrderExpiredError is returned when an order is past its expiration time.
type OrderExpiredError struct {
	OrderID        string
	ExpirationTime int64
}

func (e *OrderExpiredError) Error() string {
	return fmt.Sprintf("order %s expired at %d", e.OrderID, e.ExpirationTime)
}

// UnsupportedSaleKindError is returned for any sale kind other than fixed price.
type UnsupportedSaleKindError struct {
	OrderID  string
	SaleKind SaleKind
}

func (e *UnsupportedSaleKindError) Error() string {
	return fmt.Sprintf("order %s has unsupported sale kind %d", e.OrderID, e.SaleKind)
}

var (
	// ErrUnsupportedRawVersion is returned when a stored raw order uses an unknown schema version.
	ErrUnsupportedRawVersion = errors.New("unsupported raw order version")

	// ErrNotNFTContract is returned when contract metadata cannot be fetched for an address.
	ErrNotNFTContract = errors.New("not NFT contract")

	// ErrNotERC721 is returned when the contract exists but is not an ERC-721 collection.
	ErrNotERC721 = errors.New("not erc721")
)

// IsClientError reports whether err is caused by caller input rather than infrastructure.
func IsClientError(err error) bool {
	var encErr *EncodingError
	var addrErr *InvalidAddressError
	var notFound *OrderNotFoundError
	var expired *OrderExpiredError
	var saleKind *UnsupportedSaleKindError

	return errors.As(err, &encErr) ||
		errors.As(err, &addrErr) ||
		errors.As(err, &notFound) ||
		errors.As(err, &expired) ||
		errors.As(err, &saleKind)
}
