package model

import (
	"github.com/shopspring/decimal"
)

// CartSnapshot 購物車完整狀態，對應持久化的 cart 與 cartPrices 兩個 key
type CartSnapshot struct {
	Quantities map[int]int
	UnitPrices map[int]decimal.Decimal
}

func NewCartSnapshot() CartSnapshot {
	return CartSnapshot{
		Quantities: make(map[int]int),
		UnitPrices: make(map[int]decimal.Decimal),
	}
}

// Clone deep-copies both maps.
func (s CartSnapshot) Clone() CartSnapshot {
	c := CartSnapshot{
		Quantities: make(map[int]int, len(s.Quantities)),
		UnitPrices: make(map[int]decimal.Decimal, len(s.UnitPrices)),
	}
	for id, q := range s.Quantities {
		c.Quantities[id] = q
	}
	for id, p := range s.UnitPrices {
		c.UnitPrices[id] = p
	}
	return c
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Quantities) == 0
}

// CartLine is one rendered cart entry.
type CartLine struct {
	ItemID     int             `json:"item_id"`
	Name       string          `json:"name"`
	Category   Category        `json:"category"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	BasePrice  decimal.Decimal `json:"base_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	Discounted bool            `json:"discounted"`
}
