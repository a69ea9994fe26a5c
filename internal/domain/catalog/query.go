package catalog

import (
	"sort"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

const (
	featuredLimit = 6
	allCategories = "all"
)

type SortOption string

const (
	SortPopularity SortOption = "popularity"
	SortPriceLow   SortOption = "price-low"
	SortPriceHigh  SortOption = "price-high"
	SortRating     SortOption = "rating"
)

func IsValidSortOption(s string) bool {
	switch SortOption(s) {
	case SortPopularity, SortPriceLow, SortPriceHigh, SortRating:
		return true
	default:
		return false
	}
}

// Query filters the menu. Empty Category or "all" matches every category.
type Query struct {
	Category string
	Text     string
	Sort     SortOption
}

func (c *Catalog) Search(q Query) []model.CatalogItem {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]model.CatalogItem, 0, len(c.items))
	for _, item := range c.items {
		if q.Category != "" && q.Category != allCategories && string(item.Category) != q.Category {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(item.Name), text) &&
			!strings.Contains(strings.ToLower(item.Description), text) {
			continue
		}
		out = append(out, item)
	}
	SortItems(out, q.Sort)
	return out
}

// Featured 首頁精選: 每個分類取第一個熱門商品，不足六個再補其他熱門商品
func (c *Catalog) Featured() []model.CatalogItem {
	picked := make(map[int]struct{})
	seenCategory := make(map[model.Category]struct{})
	out := make([]model.CatalogItem, 0, featuredLimit)

	for _, item := range c.items {
		if !item.Popular {
			continue
		}
		if _, ok := seenCategory[item.Category]; ok {
			continue
		}
		seenCategory[item.Category] = struct{}{}
		picked[item.ID] = struct{}{}
		out = append(out, item)
	}

	for _, item := range c.items {
		if len(out) >= featuredLimit {
			break
		}
		if _, ok := picked[item.ID]; ok || !item.Popular {
			continue
		}
		out = append(out, item)
	}

	if len(out) > featuredLimit {
		out = out[:featuredLimit]
	}
	SortItems(out, SortPopularity)
	return out
}

// SortItems sorts in place; unknown options fall back to popularity.
func SortItems(items []model.CatalogItem, opt SortOption) {
	var less func(a, b model.CatalogItem) bool
	switch opt {
	case SortPriceLow:
		less = func(a, b model.CatalogItem) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b model.CatalogItem) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b model.CatalogItem) bool { return a.Rating.GreaterThan(b.Rating) }
	default:
		less = func(a, b model.CatalogItem) bool {
			if a.Popular != b.Popular {
				return a.Popular
			}
			return a.Rating.GreaterThan(b.Rating)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
