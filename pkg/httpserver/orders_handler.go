package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/order"
	"github.com/mselser95/nft-market/pkg/types"
)

// OrderService is the order lifecycle consumed by the HTTP API.
type OrderService interface {
	GenerateSellOrder(ctx context.Context, p order.Params) (*types.Order, *types.SolidityOrder, error)
	GenerateOfferOrder(ctx context.Context, p order.Params) (*types.Order, *types.SolidityOrder, error)
	GenerateBuyOrderFromFixedPriceSell(ctx context.Context, orderID, taker string) (*types.SolidityOrder, error)
	GenerateSellOrderFromOffer(ctx context.Context, orderID, taker string) (*types.SolidityOrder, error)
	ValidateOrder(ctx context.Context, orderID string, sig types.OrderSig) order.Result
	GetSellOrders(ctx context.Context, contract, tokenID string) ([]*types.Order, error)
	GetOfferOrders(ctx context.Context, contract, tokenID string) ([]*types.Order, error)
}

type orderHandler struct {
	orders OrderService
	logger *zap.Logger
}

func newOrderHandler(orders OrderService, logger *zap.Logger) *orderHandler {
	return &orderHandler{orders: orders, logger: logger}
}

// CreateOrderRequest is the body of POST /orders/sell and POST /orders/offer.
type CreateOrderRequest struct {
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
	Price           string `json:"price"`
	ExpirationTime  int64  `json:"expirationTime"`
}

// CreateOrderResponse returns the persisted order and the structure the maker signs.
type CreateOrderResponse struct {
	Order         *types.Order         `json:"order"`
	SolidityOrder *types.SolidityOrder `json:"solidityOrder"`
}

// VerifyResponse is the verdict of POST /orders/{id}/verify.
type VerifyResponse struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

type generateFunc func(ctx context.Context, p order.Params) (*types.Order, *types.SolidityOrder, error)

func (h *orderHandler) handleCreateSell(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.orders.GenerateSellOrder)
}

func (h *orderHandler) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.orders.GenerateOfferOrder)
}

func (h *orderHandler) create(w http.ResponseWriter, r *http.Request, generate generateFunc) {
	var req CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, so, err := generate(r.Context(), order.Params{
		Maker:           walletFrom(r.Context()),
		ContractAddress: req.ContractAddress,
		TokenID:         req.TokenID,
		Price:           req.Price,
		ExpirationTime:  req.ExpirationTime,
	})
	if err != nil {
		writeServiceError(w, h.logger, "create-order-failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{Order: o, SolidityOrder: so})
}

func (h *orderHandler) handleBuy(w http.ResponseWriter, r *http.Request) {
	so, err := h.orders.GenerateBuyOrderFromFixedPriceSell(r.Context(), chi.URLParam(r, "id"), walletFrom(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "buy-order-failed", err)
		return
	}

	writeJSON(w, http.StatusOK, so)
}

func (h *orderHandler) handleAccept(w http.ResponseWriter, r *http.Request) {
	so, err := h.orders.GenerateSellOrderFromOffer(r.Context(), chi.URLParam(r, "id"), walletFrom(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "accept-offer-failed", err)
		return
	}

	writeJSON(w, http.StatusOK, so)
}

func (h *orderHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var sig types.OrderSig
	if err := decodeBody(r, &sig); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res := h.orders.ValidateOrder(r.Context(), chi.URLParam(r, "id"), sig)
	if res.Reason == order.ReasonExternalCallFailed {
		h.logger.Error("verify-order-failed", zap.Error(res.Err))
		writeError(w, "internal error", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{Verified: res.OK(), Reason: res.Reason.String()})
}

func (h *orderHandler) handleSellBook(w http.ResponseWriter, r *http.Request) {
	h.book(w, r, h.orders.GetSellOrders)
}

func (h *orderHandler) handleOfferBook(w http.ResponseWriter, r *http.Request) {
	h.book(w, r, h.orders.GetOfferOrders)
}

func (h *orderHandler) book(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, contract, tokenID string) ([]*types.Order, error),
) {
	q := r.URL.Query()
	contract, tokenID := q.Get("contract"), q.Get("tokenId")
	if contract == "" || tokenID == "" {
		writeError(w, "missing required query parameters: contract, tokenId", http.StatusBadRequest)
		return
	}

	orders, err := list(r.Context(), contract, tokenID)
	if err != nil {
		writeServiceError(w, h.logger, "order-book-failed", err)
		return
	}

	if orders == nil {
		orders = []*types.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
