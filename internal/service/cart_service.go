package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/pricing"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/snapshot"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PricePolicy decides which unit price a line keeps when it is added again.
type PricePolicy string

const (
	// PriceLastWrite 每次加入都以當次的折扣旗標覆蓋單價
	PriceLastWrite PricePolicy = "last-write"
	// PriceFirstAdd 單價固定在該行第一次建立時
	PriceFirstAdd PricePolicy = "first-add"
)

func IsValidPricePolicy(p string) bool {
	switch PricePolicy(p) {
	case PriceLastWrite, PriceFirstAdd:
		return true
	default:
		return false
	}
}

type ICartService interface {
	Load(ctx context.Context) error
	AddToCart(ctx context.Context, itemID int, useDiscountedPrice bool) error
	AddSpecial(ctx context.Context, itemID int, date time.Time) error
	RemoveFromCart(ctx context.Context, itemID int) error
	ClearCart(ctx context.Context) error
	TotalItems() int
	TotalPrice() decimal.Decimal
	Quantities() map[int]int
	UnitPrices() map[int]decimal.Decimal
	Snapshot() model.CartSnapshot
	Lines() []model.CartLine
	Summary() pricing.Summary
}

type CartOption func(*CartService)

func WithPricePolicy(p PricePolicy) CartOption {
	return func(s *CartService) {
		s.policy = p
	}
}

// CartService owns the cart state. Every mutation updates memory first and
// then overwrites both persisted keys under the same lock.
type CartService struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	repo    snapshot.ICartRepository
	logger  *zerolog.Logger
	policy  PricePolicy
	state   model.CartSnapshot
}

var _ ICartService = (*CartService)(nil)

func NewCartService(c *catalog.Catalog, repo snapshot.ICartRepository, logger *zerolog.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		catalog: c,
		repo:    repo,
		logger:  logger,
		policy:  PriceLastWrite,
		state:   model.NewCartSnapshot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load 啟動時讀取一次快照
// 無法解析的 key 以空狀態取代，錯誤仍會回傳給呼叫端
// 錯誤:
//   - ErrCorruptSnapshot: 快照格式錯誤
//   - ErrLoadFailed: 儲存層讀取失敗
func (s *CartService) Load(ctx context.Context) error {
	snap, err := s.repo.Load(ctx)

	s.mu.Lock()
	s.state = snap
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).
			Strs("keys", []string{snapshot.CartKey, snapshot.CartPricesKey}).
			Msg("cart snapshot not fully loaded, falling back to empty state")
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return nil
}

// AddToCart 數量加一，並依 policy 記錄單價
// 錯誤:
//   - ErrUnknownItem: 商品不在菜單內，購物車不變
//   - ErrPersistFailed: 記憶體已更新但寫入失敗
func (s *CartService) AddToCart(ctx context.Context, itemID int, useDiscountedPrice bool) error {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownItem, itemID)
	}
	price := pricing.UnitPrice(item.Price, useDiscountedPrice)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.state.Quantities[itemID]
	s.state.Quantities[itemID]++
	if !exists || s.policy != PriceFirstAdd {
		s.state.UnitPrices[itemID] = price
	} else if _, hasPrice := s.state.UnitPrices[itemID]; !hasPrice {
		s.state.UnitPrices[itemID] = price
	}

	return s.persist(ctx)
}

// AddSpecial 只有商品在 date 當天屬於特價分類時才用折扣價，否則以原價加入
func (s *CartService) AddSpecial(ctx context.Context, itemID int, date time.Time) error {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownItem, itemID)
	}
	return s.AddToCart(ctx, itemID, catalog.IsOnSpecial(item, date))
}

// RemoveFromCart 數量減一，歸零時整行移除；不在購物車內則不做事
func (s *CartService) RemoveFromCart(ctx context.Context, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty, ok := s.state.Quantities[itemID]
	if !ok {
		return nil
	}
	if qty > 1 {
		s.state.Quantities[itemID] = qty - 1
	} else {
		delete(s.state.Quantities, itemID)
		delete(s.state.UnitPrices, itemID)
	}

	return s.persist(ctx)
}

func (s *CartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = model.NewCartSnapshot()
	return s.persist(ctx)
}

// persist 呼叫前須持有寫鎖
func (s *CartService) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.state); err != nil {
		s.logger.Error().Err(err).Msg("failed to save cart snapshot")
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

func (s *CartService) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, qty := range s.state.Quantities {
		n += qty
	}
	return n
}

func (s *CartService) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Subtotal(s.state)
}

func (s *CartService) Summary() pricing.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.SummarizeCart(s.state)
}

func (s *CartService) Quantity(itemID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Quantities[itemID]
}

func (s *CartService) UnitPrice(itemID int) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.UnitPrices[itemID]
	return p, ok
}

func (s *CartService) Quantities() map[int]int {
	return s.Snapshot().Quantities
}

func (s *CartService) UnitPrices() map[int]decimal.Decimal {
	return s.Snapshot().UnitPrices
}

// Snapshot returns a deep copy of the current state.
func (s *CartService) Snapshot() model.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Lines 依商品 id 排序，商品已不在菜單時以 Unknown Item 顯示
func (s *CartService) Lines() []model.CartLine {
	snap := s.Snapshot()

	lines := make([]model.CartLine, 0, len(snap.Quantities))
	for id, qty := range snap.Quantities {
		line := model.CartLine{
			ItemID:   id,
			Name:     UnknownItemName,
			Category: model.CategoryUnknown,
			Quantity: qty,
		}
		item, known := s.catalog.Get(id)
		if known {
			line.Name = item.Name
			line.Category = item.Category
			line.BasePrice = item.Price
		}
		// 缺少單價的行以 0 計，與 TotalPrice 一致
		line.UnitPrice = snap.UnitPrices[id]
		line.LineTotal = pricing.LineTotal(line.UnitPrice, qty)
		line.Discounted = known && !line.UnitPrice.IsZero() && line.UnitPrice.LessThan(item.Price)
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ItemID < lines[j].ItemID
	})
	return lines
}
