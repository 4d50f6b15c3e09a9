package order

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/mselser95/nft-market/pkg/types"
)

// RawVersion is the schema version written into every raw order.
const RawVersion = 1

type rawEnvelope struct {
	Version int             `json:"version"`
	Order   json.RawMessage `json:"order"`
}

// EncodeRaw serializes the order into the versioned form stored on Order.Raw.
func EncodeRaw(o *types.SolidityOrder) (string, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	data, err := json.Marshal(rawEnvelope{Version: RawVersion, Order: body})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	return string(data), nil
}

// DecodeRaw reverses EncodeRaw. Unknown versions fail with
// types.ErrUnsupportedRawVersion.
func DecodeRaw(raw string) (*types.SolidityOrder, error) {
	var env rawEnvelope

	err := json.Unmarshal([]byte(raw), &env)
	if err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	if env.Version != RawVersion {
		return nil, fmt.Errorf("%w: %d", types.ErrUnsupportedRawVersion, env.Version)
	}

	if len(env.Order) == 0 {
		return nil, fmt.Errorf("raw order has no body")
	}

	var o types.SolidityOrder

	err = json.Unmarshal(env.Order, &o)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}

	return &o, nil
}
