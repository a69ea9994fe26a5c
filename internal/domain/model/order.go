package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusProcessing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem 下單當下的商品快照，與菜單及購物車完全脫鉤
type OrderItem struct {
	ItemID   int             `json:"item_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Name     string          `json:"name"`
	Category Category        `json:"category"`
}

func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID            string          `json:"id"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Date          time.Time       `json:"date"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"payment_method"`
}

// OrderDraft is the payload handed to AddOrder before id, date and status are assigned.
type OrderDraft struct {
	Items         []OrderItem
	Total         decimal.Decimal
	PaymentMethod string
}

func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Clone copies the item slice so callers can never reach the stored order.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}
