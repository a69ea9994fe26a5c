package pricing

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

const centPlaces = 2

var (
	// DiscountRate 特價商品的折扣後比例 (九折)
	DiscountRate = decimal.RequireFromString("0.9")
	DeliveryFee  = decimal.RequireFromString("3.99")
	TaxRate      = decimal.RequireFromString("0.07")
)

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}

func DiscountedPrice(base decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(DiscountRate))
}

// UnitPrice 加入購物車當下要記錄的單價
func UnitPrice(base decimal.Decimal, useDiscountedPrice bool) decimal.Decimal {
	if useDiscountedPrice {
		return DiscountedPrice(base)
	}
	return base
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums unitPrice × quantity over the keys of quantities; a missing price counts as zero.
func Subtotal(snapshot model.CartSnapshot) decimal.Decimal {
	sum := decimal.Zero
	for id, qty := range snapshot.Quantities {
		price, ok := snapshot.UnitPrices[id]
		if !ok {
			continue
		}
		sum = sum.Add(LineTotal(price, qty))
	}
	return sum
}

type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Summarize 購物車頁、結帳與訂單明細共用同一套計算
func Summarize(subtotal decimal.Decimal) Summary {
	tax := Round2(subtotal.Mul(TaxRate))
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: DeliveryFee,
		Tax:         tax,
		Total:       subtotal.Add(DeliveryFee).Add(tax),
	}
}

func SummarizeCart(snapshot model.CartSnapshot) Summary {
	return Summarize(Subtotal(snapshot))
}

// SummarizeOrder rebuilds the breakdown of a stored order. Tax is whatever remains of
// the recorded total after subtotal and delivery fee, so the stored total is never recomputed.
func SummarizeOrder(order model.Order) Summary {
	subtotal := decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.Amount())
	}
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: DeliveryFee,
		Tax:         order.Total.Sub(subtotal).Sub(DeliveryFee),
		Total:       order.Total,
	}
}
