package handler

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func convertMenuItems(items []model.CatalogItem, date time.Time) []dto.MenuItemDTO {
	out := make([]dto.MenuItemDTO, 0, len(items))
	for _, item := range items {
		d := dto.MenuItemDTO{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       fixed(item.Price),
			Category:    string(item.Category),
			Image:       item.Image,
			Rating:      item.Rating.StringFixed(1),
			Popular:     item.Popular,
			OnSpecial:   catalog.IsOnSpecial(item, date),
		}
		if d.OnSpecial {
			sp := fixed(pricing.DiscountedPrice(item.Price))
			d.SpecialPrice = &sp
		}
		out = append(out, d)
	}
	return out
}

func convertCart(lines []model.CartLine, summary pricing.Summary) dto.CartDTO {
	res := dto.CartDTO{
		Lines:       make([]dto.CartLineDTO, 0, len(lines)),
		Subtotal:    fixed(summary.Subtotal),
		DeliveryFee: fixed(summary.DeliveryFee),
		Tax:         fixed(summary.Tax),
		Total:       fixed(summary.Total),
	}
	for _, l := range lines {
		res.TotalItems += l.Quantity
		res.Lines = append(res.Lines, dto.CartLineDTO{
			ItemID:     l.ItemID,
			Name:       l.Name,
			Category:   string(l.Category),
			Quantity:   l.Quantity,
			UnitPrice:  fixed(l.UnitPrice),
			LineTotal:  fixed(l.LineTotal),
			Discounted: l.Discounted,
		})
	}
	return res
}

func convertOrder(o model.Order) dto.OrderDTO {
	summary := pricing.SummarizeOrder(o)
	res := dto.OrderDTO{
		ID:            o.ID,
		Items:         make([]dto.OrderItemDTO, 0, len(o.Items)),
		ItemCount:     o.ItemCount(),
		Subtotal:      fixed(summary.Subtotal),
		DeliveryFee:   fixed(summary.DeliveryFee),
		Tax:           fixed(summary.Tax),
		Total:         fixed(summary.Total),
		Date:          o.Date.UTC().Format(isoLayout),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
	}
	for _, item := range o.Items {
		res.Items = append(res.Items, dto.OrderItemDTO{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
			Price:    fixed(item.Price),
			Name:     item.Name,
			Category: string(item.Category),
		})
	}
	return res
}

func convertOrders(orders []model.Order) []dto.OrderDTO {
	out := make([]dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, convertOrder(o))
	}
	return out
}
