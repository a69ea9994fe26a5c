package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/snapshot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type IOrderHistoryService interface {
	Load(ctx context.Context) error
	AddOrder(ctx context.Context, draft model.OrderDraft) (model.Order, error)
	ClearOrderHistory(ctx context.Context) error
	Orders() []model.Order
	Get(id string) (model.Order, error)
}

type OrderHistoryOption func(*OrderHistoryService)

// WithClock 測試時固定下單時間
func WithClock(now func() time.Time) OrderHistoryOption {
	return func(s *OrderHistoryService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) OrderHistoryOption {
	return func(s *OrderHistoryService) {
		s.newID = newID
	}
}

// OrderHistoryService owns the order log, newest first.
type OrderHistoryService struct {
	mu     sync.RWMutex
	repo   snapshot.IOrderRepository
	logger *zerolog.Logger
	now    func() time.Time
	newID  func() string
	orders []model.Order
}

var _ IOrderHistoryService = (*OrderHistoryService)(nil)

func NewOrderHistoryService(repo snapshot.IOrderRepository, logger *zerolog.Logger, opts ...OrderHistoryOption) *OrderHistoryService {
	s := &OrderHistoryService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		orders: []model.Order{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load 啟動時讀取一次訂單紀錄，失敗時以空紀錄開始
func (s *OrderHistoryService) Load(ctx context.Context) error {
	orders, err := s.repo.Load(ctx)
	if err != nil {
		orders = []model.Order{}
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).
			Str("key", snapshot.OrderHistoryKey).
			Msg("order history not loaded, falling back to empty state")
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return nil
}

// AddOrder 產生 id 與時間，狀態固定為 processing，並放在最前面
// 錯誤:
//   - ErrInvalidDraft: draft 沒有商品或數量、金額不合法，紀錄不變
//   - ErrPersistFailed: 記憶體已更新但寫入失敗
func (s *OrderHistoryService) AddOrder(ctx context.Context, draft model.OrderDraft) (model.Order, error) {
	if err := validateDraft(draft); err != nil {
		return model.Order{}, err
	}

	items := make([]model.OrderItem, len(draft.Items))
	copy(items, draft.Items)

	order := model.Order{
		ID:    s.newID(),
		Items: items,
		Total: draft.Total,
		// 持久化格式只到毫秒
		Date:          s.now().UTC().Truncate(time.Millisecond),
		Status:        model.OrderStatusProcessing,
		PaymentMethod: draft.PaymentMethod,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]model.Order, 0, len(s.orders)+1)
	orders = append(orders, order)
	orders = append(orders, s.orders...)
	s.orders = orders

	if err := s.persist(ctx); err != nil {
		return order.Clone(), err
	}
	return order.Clone(), nil
}

func validateDraft(draft model.OrderDraft) error {
	if len(draft.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidDraft)
	}
	if draft.Total.IsNegative() {
		return fmt.Errorf("%w: negative total %s", ErrInvalidDraft, draft.Total)
	}
	for _, item := range draft.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrInvalidDraft, item.ItemID, item.Quantity)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: item %d has negative price", ErrInvalidDraft, item.ItemID)
		}
	}
	return nil
}

func (s *OrderHistoryService) ClearOrderHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = []model.Order{}
	return s.persist(ctx)
}

func (s *OrderHistoryService) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.orders); err != nil {
		s.logger.Error().Err(err).Msg("failed to save order history")
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

// Orders returns copies of the log, newest first.
func (s *OrderHistoryService) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (s *OrderHistoryService) Get(id string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return model.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}
