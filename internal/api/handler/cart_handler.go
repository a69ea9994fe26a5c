package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService     service.ICartService
	checkoutService service.ICheckoutService
	now             func() time.Time
}

func NewCartHandler(cartService service.ICartService, checkoutService service.ICheckoutService, now func() time.Time) *CartHandler {
	if cartService == nil || checkoutService == nil {
		panic("cartService and checkoutService cannot be nil")
	}
	if now == nil {
		now = time.Now
	}
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		now:             now,
	}
}

func (h *CartHandler) writeCart(w http.ResponseWriter) {
	response.SuccessJSON(w, convertCart(h.cartService.Lines(), h.cartService.Summary()), "")
}

func itemIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w)
}

// AddItem POST /cart/items/{id}，body 可省略
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(r)
	if !ok {
		response.BadRequestJSON(w, "item id must be a positive integer")
		return
	}
	var req dto.AddCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequestJSON(w, "invalid request body")
		return
	}

	var err error
	if req.Special {
		err = h.cartService.AddSpecial(r.Context(), id, h.now())
	} else {
		err = h.cartService.AddToCart(r.Context(), id, false)
	}
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	h.writeCart(w)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(r)
	if !ok {
		response.BadRequestJSON(w, "item id must be a positive integer")
		return
	}
	if err := h.cartService.RemoveFromCart(r.Context(), id); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	h.writeCart(w)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.ClearCart(r.Context()); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	h.writeCart(w)
}

// Checkout POST /checkout 模擬付款，成功後回傳新訂單
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequestJSON(w, "invalid request body")
		return
	}

	order, err := h.checkoutService.Checkout(r.Context(), service.Payment{
		Method:     service.PaymentMethod(req.PaymentMethod),
		CardNumber: req.CardNumber,
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, convertOrder(order), "order placed")
}
