package catalog

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// 依星期決定當日特價分類，索引 0 為星期日
var specialByWeekday = [7]model.Category{
	time.Sunday:    model.CategoryDessert,
	time.Monday:    model.CategoryBurger,
	time.Tuesday:   model.CategoryPizza,
	time.Wednesday: model.CategoryChicken,
	time.Thursday:  model.CategoryFries,
	time.Friday:    model.CategoryDrinks,
	time.Saturday:  model.CategoryPizza,
}

// SpecialCategoryFor is a pure function of the given date; the caller decides the time zone.
func SpecialCategoryFor(date time.Time) model.Category {
	return specialByWeekday[date.Weekday()]
}

func DayName(date time.Time) string {
	return date.Weekday().String()
}

func IsOnSpecial(item model.CatalogItem, date time.Time) bool {
	return item.Category == SpecialCategoryFor(date)
}

// Specials lists the items discounted on the given date, in catalog order.
func (c *Catalog) Specials(date time.Time) []model.CatalogItem {
	cat := SpecialCategoryFor(date)
	out := make([]model.CatalogItem, 0, 4)
	for _, item := range c.items {
		if item.Category == cat {
			out = append(out, item)
		}
	}
	return out
}
