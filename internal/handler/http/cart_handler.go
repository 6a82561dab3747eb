package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rocketshoes-cart/internal/model"
	"rocketshoes-cart/internal/service"
)

type CartHandler struct {
	service *service.CartService
}

func NewCartHandler(service *service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type addProductRequest struct {
	ProductID int `json:"productId"`
}

type updateAmountRequest struct {
	Amount int `json:"amount"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Cart())
}

func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Summary())
}

func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.AddProduct(r.Context(), req.ProductID); err != nil {
		writeCartError(w, err, service.MsgAddFailed)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Cart())
}

func (h *CartHandler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}

	var req updateAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := h.service.UpdateProductAmount(r.Context(), model.UpdateProductAmount{ProductID: id, Amount: req.Amount})
	if err != nil {
		writeCartError(w, err, service.MsgUpdateFailed)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Cart())
}

func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}

	if err := h.service.RemoveProduct(r.Context(), id); err != nil {
		writeCartError(w, err, service.MsgRemoveFailed)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Cart())
}

// writeCartError maps cart error kinds onto status codes. The body carries the
// same user-facing text the notifier received.
func writeCartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrOutOfStock):
		writeError(w, http.StatusConflict, service.MsgOutOfStock)
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, fallback)
	default:
		writeError(w, http.StatusBadGateway, fallback)
	}
}
