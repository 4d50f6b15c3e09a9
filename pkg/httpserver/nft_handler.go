package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/pkg/types"
)

// NFTService resolves collection metadata.
type NFTService interface {
	GetNFTContract(ctx context.Context, address string) (*types.NFTContract, error)
}

type nftHandler struct {
	nfts   NFTService
	logger *zap.Logger
}

func newNFTHandler(nfts NFTService, logger *zap.Logger) *nftHandler {
	return &nftHandler{nfts: nfts, logger: logger}
}

func (h *nftHandler) handleGetContract(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	h.logger.Debug("nft-contract-request-received", zap.String("address", address))

	contract, err := h.nfts.GetNFTContract(r.Context(), address)
	if err != nil {
		writeServiceError(w, h.logger, "nft-contract-lookup-failed", err)
		return
	}

	writeJSON(w, http.StatusOK, contract)
}
