package catalog

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateItemID = errors.New("duplicate item id")
	ErrInvalidItem     = errors.New("invalid catalog item")
)

var maxRating = decimal.NewFromInt(5)

// Catalog 菜單，啟動時載入一次之後不再變動
type Catalog struct {
	items []model.CatalogItem
	byID  map[int]int
}

func New(items []model.CatalogItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]model.CatalogItem, 0, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if _, ok := c.byID[item.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateItemID, item.ID)
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

func validateItem(item model.CatalogItem) error {
	switch {
	case item.ID <= 0:
		return fmt.Errorf("%w: id %d must be positive", ErrInvalidItem, item.ID)
	case item.Price.IsNegative():
		return fmt.Errorf("%w: item %d has negative price", ErrInvalidItem, item.ID)
	case item.Rating.IsNegative() || item.Rating.GreaterThan(maxRating):
		return fmt.Errorf("%w: item %d rating %s out of range", ErrInvalidItem, item.ID, item.Rating)
	case !model.IsValidCategory(string(item.Category)):
		return fmt.Errorf("%w: item %d has unknown category %q", ErrInvalidItem, item.ID, item.Category)
	}
	return nil
}

// ListAll returns a copy of every item in load order.
func (c *Catalog) ListAll() []model.CatalogItem {
	out := make([]model.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Get(id int) (model.CatalogItem, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.CatalogItem{}, false
	}
	return c.items[idx], true
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Categories 回傳菜單中實際出現的分類，依 model.Categories 排序
func (c *Catalog) Categories() []model.Category {
	seen := make(map[model.Category]struct{})
	for _, item := range c.items {
		seen[item.Category] = struct{}{}
	}
	out := make([]model.Category, 0, len(seen))
	for _, cat := range model.Categories {
		if _, ok := seen[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}
