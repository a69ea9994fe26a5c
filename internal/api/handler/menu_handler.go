package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

const dateLayout = "2006-01-02"

type MenuHandler struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewMenuHandler(c *catalog.Catalog, now func() time.Time) *MenuHandler {
	if c == nil {
		panic("catalog cannot be nil")
	}
	if now == nil {
		now = time.Now
	}
	return &MenuHandler{catalog: c, now: now}
}

// List GET /menu?category=&search=&sort=
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category != "" && category != "all" && !model.IsValidCategory(category) {
		response.BadRequestJSON(w, fmt.Sprintf("unknown category %q", category))
		return
	}
	sortBy := catalog.SortOption(q.Get("sort"))
	if sortBy == "" {
		sortBy = catalog.SortPopularity
	}
	if !catalog.IsValidSortOption(string(sortBy)) {
		response.BadRequestJSON(w, fmt.Sprintf("unknown sort %q", sortBy))
		return
	}

	items := h.catalog.Search(catalog.Query{
		Category: category,
		Text:     q.Get("search"),
		Sort:     sortBy,
	})
	response.SuccessJSON(w, convertMenuItems(items, h.now()), "")
}

func (h *MenuHandler) Featured(w http.ResponseWriter, r *http.Request) {
	response.SuccessJSON(w, convertMenuItems(h.catalog.Featured(), h.now()), "")
}

// Specials GET /specials?date=2006-01-02，未帶 date 時使用今天
func (h *MenuHandler) Specials(w http.ResponseWriter, r *http.Request) {
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, date.Location())
		if err != nil {
			response.BadRequestJSON(w, fmt.Sprintf("date must look like %s", dateLayout))
			return
		}
		date = d
	}

	response.SuccessJSON(w, dto.SpecialsDTO{
		Day:      catalog.DayName(date),
		Category: string(catalog.SpecialCategoryFor(date)),
		Items:    convertMenuItems(h.catalog.Specials(date), date),
	}, "")
}
