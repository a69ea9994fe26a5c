package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderHistoryService service.IOrderHistoryService
}

func NewOrderHandler(orderHistoryService service.IOrderHistoryService) *OrderHandler {
	if orderHistoryService == nil {
		panic("orderHistoryService cannot be nil")
	}
	return &OrderHandler{orderHistoryService: orderHistoryService}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	response.SuccessJSON(w, convertOrders(h.orderHistoryService.Orders()), "")
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderHistoryService.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, convertOrder(order), "")
}

func (h *OrderHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.orderHistoryService.ClearOrderHistory(r.Context()); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, convertOrders(nil), "order history cleared")
}
