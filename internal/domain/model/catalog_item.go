package model

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryPizza   Category = "pizza"
	CategoryBurger  Category = "burger"
	CategoryFries   Category = "fries"
	CategoryDrinks  Category = "drinks"
	CategoryChicken Category = "chicken"
	CategoryDessert Category = "dessert"

	// 結帳時商品已不在菜單內的替代分類
	CategoryUnknown Category = "unknown"
)

// Categories 菜單分類，順序即為前端顯示順序
var Categories = []Category{
	CategoryBurger,
	CategoryPizza,
	CategoryChicken,
	CategoryFries,
	CategoryDessert,
	CategoryDrinks,
}

func IsValidCategory(c string) bool {
	switch Category(c) {
	case CategoryPizza, CategoryBurger, CategoryFries, CategoryDrinks, CategoryChicken, CategoryDessert:
		return true
	default:
		return false
	}
}

type CatalogItem struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"-"`
	Category    Category        `json:"category" yaml:"category"`
	Image       string          `json:"image" yaml:"image"`
	Rating      decimal.Decimal `json:"rating" yaml:"-"`
	Popular     bool            `json:"popular" yaml:"popular"`
}
