package httpserver

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/pkg/hexcodec"
	"github.com/mselser95/nft-market/pkg/types"
)

// WalletHeader carries the authenticated wallet address set by the upstream auth guard.
const WalletHeader = "X-Wallet-Address"

type walletKey struct{}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// requireWallet rejects requests without a valid wallet header and stores
// the normalized address in the request context.
func requireWallet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(WalletHeader)
		if raw == "" {
			writeError(w, "missing "+WalletHeader+" header", http.StatusUnauthorized)
			return
		}

		addr, err := hexcodec.ParseAddress(raw)
		if err != nil {
			writeError(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), walletKey{}, hexcodec.FormatAddress(addr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func walletFrom(ctx context.Context) string {
	addr, _ := ctx.Value(walletKey{}).(string)
	return addr
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotERC721), errors.Is(err, types.ErrNotNFTContract):
		return http.StatusNotFound
	case types.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, logger *zap.Logger, event string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(event, zap.Error(err))
		writeError(w, "internal error", status)
		return
	}

	logger.Debug(event, zap.Error(err), zap.Int("status", status))
	writeError(w, err.Error(), status)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
