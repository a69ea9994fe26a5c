package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
)

type IOrderRepository interface {
	Load(ctx context.Context) ([]model.Order, error)
	Save(ctx context.Context, orders []model.Order) error
}

// orderRecord 持久化格式，欄位名稱沿用前端 localStorage 的 camelCase
type orderRecord struct {
	ID            string            `json:"id"`
	Items         []orderItemRecord `json:"items"`
	Total         json.Number       `json:"total"`
	Date          string            `json:"date"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"paymentMethod"`
}

type orderItemRecord struct {
	ItemID   int         `json:"itemId"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
}

type OrderRepo struct {
	store storage.Storage
}

func NewOrderRepo(store storage.Storage) *OrderRepo {
	return &OrderRepo{store: store}
}

var _ IOrderRepository = (*OrderRepo)(nil)

// Load returns the stored log newest first. A missing key is an empty log;
// any invalid entry rejects the whole snapshot with ErrCorruptSnapshot.
func (r *OrderRepo) Load(ctx context.Context) ([]model.Order, error) {
	raw, err := r.store.Get(ctx, OrderHistoryKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []model.Order{}, nil
	}
	if err != nil {
		return []model.Order{}, fmt.Errorf("load %s: %w", OrderHistoryKey, err)
	}
	orders, err := DecodeOrders(raw)
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func (r *OrderRepo) Save(ctx context.Context, orders []model.Order) error {
	raw, err := EncodeOrders(orders)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, OrderHistoryKey, raw); err != nil {
		return fmt.Errorf("save %s: %w", OrderHistoryKey, err)
	}
	return nil
}

func EncodeOrders(orders []model.Order) (string, error) {
	records := make([]orderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, toRecord(o))
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", OrderHistoryKey, err)
	}
	return string(b), nil
}

func DecodeOrders(raw string) ([]model.Order, error) {
	var records []orderRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, OrderHistoryKey, err)
	}
	orders := make([]model.Order, 0, len(records))
	for i, rec := range records {
		o, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorruptSnapshot, OrderHistoryKey, i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func toRecord(o model.Order) orderRecord {
	items := make([]orderItemRecord, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemRecord{
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
			Price:    json.Number(item.Price.String()),
			Name:     item.Name,
			Category: string(item.Category),
		})
	}
	return orderRecord{
		ID:            o.ID,
		Items:         items,
		Total:         json.Number(o.Total.String()),
		Date:          o.Date.UTC().Format(isoLayout),
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
	}
}

func fromRecord(rec orderRecord) (model.Order, error) {
	if rec.ID == "" {
		return model.Order{}, errors.New("order id is empty")
	}
	if !model.IsValidOrderStatus(rec.Status) {
		return model.Order{}, fmt.Errorf("order %s has unknown status %q", rec.ID, rec.Status)
	}
	date, err := time.Parse(time.RFC3339Nano, rec.Date)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s date: %v", rec.ID, err)
	}
	total, err := parseMoney(rec.Total)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s total: %v", rec.ID, err)
	}

	items := make([]model.OrderItem, 0, len(rec.Items))
	for _, ir := range rec.Items {
		if ir.Quantity <= 0 {
			return model.Order{}, fmt.Errorf("order %s item %d has quantity %d", rec.ID, ir.ItemID, ir.Quantity)
		}
		price, err := parseMoney(ir.Price)
		if err != nil {
			return model.Order{}, fmt.Errorf("order %s item %d price: %v", rec.ID, ir.ItemID, err)
		}
		items = append(items, model.OrderItem{
			ItemID:   ir.ItemID,
			Quantity: ir.Quantity,
			Price:    price,
			Name:     ir.Name,
			Category: model.Category(ir.Category),
		})
	}

	return model.Order{
		ID:            rec.ID,
		Items:         items,
		Total:         total,
		Date:          date.UTC(),
		Status:        model.OrderStatus(rec.Status),
		PaymentMethod: rec.PaymentMethod,
	}, nil
}
