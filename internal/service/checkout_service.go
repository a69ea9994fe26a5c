package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/pricing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UnknownItemName 結帳時商品已不在菜單內的顯示名稱
const UnknownItemName = "Unknown Item"

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit"
	PaymentPayPal     PaymentMethod = "paypal"
)

// Payment 模擬付款資訊，不會真的扣款
type Payment struct {
	Method     PaymentMethod
	CardNumber string
}

// Describe renders the free-form payment method stored on the order.
func (p Payment) Describe() (string, error) {
	switch p.Method {
	case PaymentPayPal:
		return "PayPal", nil
	case PaymentCreditCard:
		digits := strings.Map(func(r rune) rune {
			if r == ' ' || r == '-' {
				return -1
			}
			return r
		}, p.CardNumber)
		if digits == "" {
			return "", fmt.Errorf("%w: card number is required", ErrInvalidPayment)
		}
		last := []rune(digits)
		if len(last) > 4 {
			last = last[len(last)-4:]
		}
		return fmt.Sprintf("Credit Card (%s)", string(last)), nil
	default:
		return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidPayment, p.Method)
	}
}

type ICheckoutService interface {
	BuildDraft(snap model.CartSnapshot, payment Payment) (model.OrderDraft, error)
	Checkout(ctx context.Context, payment Payment) (model.Order, error)
}

type CheckoutService struct {
	catalog *catalog.Catalog
	cart    *CartService
	history *OrderHistoryService
	logger  *zerolog.Logger
}

func NewCheckoutService(c *catalog.Catalog, cart *CartService, history *OrderHistoryService, logger *zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		catalog: c,
		cart:    cart,
		history: history,
		logger:  logger,
	}
}

var _ ICheckoutService = (*CheckoutService)(nil)

// BuildDraft 將購物車快照轉成訂單草稿，商品資料完全複製一份
func (s *CheckoutService) BuildDraft(snap model.CartSnapshot, payment Payment) (model.OrderDraft, error) {
	if snap.IsEmpty() {
		return model.OrderDraft{}, ErrEmptyCart
	}
	method, err := payment.Describe()
	if err != nil {
		return model.OrderDraft{}, err
	}

	ids := make([]int, 0, len(snap.Quantities))
	for id := range snap.Quantities {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	items := make([]model.OrderItem, 0, len(ids))
	subtotal := decimal.Zero
	for _, id := range ids {
		oi := model.OrderItem{
			ItemID:   id,
			Quantity: snap.Quantities[id],
			Price:    snap.UnitPrices[id],
			Name:     UnknownItemName,
			Category: model.CategoryUnknown,
		}
		if item, ok := s.catalog.Get(id); ok {
			oi.Name = item.Name
			oi.Category = item.Category
			if _, captured := snap.UnitPrices[id]; !captured {
				oi.Price = item.Price
			}
		}
		subtotal = subtotal.Add(oi.Amount())
		items = append(items, oi)
	}

	return model.OrderDraft{
		Items:         items,
		Total:         pricing.Summarize(subtotal).Total,
		PaymentMethod: method,
	}, nil
}

// Checkout 建立訂單後清空購物車
// 錯誤:
//   - ErrEmptyCart: 購物車為空，不寫入任何資料
//   - ErrInvalidPayment: 付款資訊不完整
//   - ErrPersistFailed: 訂單或購物車寫入失敗，訂單仍視為已成立且購物車已清空
func (s *CheckoutService) Checkout(ctx context.Context, payment Payment) (model.Order, error) {
	draft, err := s.BuildDraft(s.cart.Snapshot(), payment)
	if err != nil {
		return model.Order{}, err
	}

	// 訂單進入記憶體紀錄即視為成立，寫入失敗也照樣清空購物車
	order, orderErr := s.history.AddOrder(ctx, draft)
	if orderErr != nil && !errors.Is(orderErr, ErrPersistFailed) {
		return model.Order{}, orderErr
	}
	s.logger.Info().
		Str("order_id", order.ID).
		Int("items", order.ItemCount()).
		Str("total", order.Total.StringFixed(2)).
		Bool("persisted", orderErr == nil).
		Msg("order placed")

	if err := s.cart.ClearCart(ctx); err != nil {
		return order, errors.Join(orderErr, err)
	}
	return order, orderErr
}
