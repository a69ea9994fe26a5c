package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/shopspring/decimal"
)

type ICartRepository interface {
	// Load 讀取 cart 與 cartPrices，兩個 key 各自獨立解析
	Load(ctx context.Context) (model.CartSnapshot, error)
	// Save 整份覆蓋 cart 與 cartPrices
	Save(ctx context.Context, snap model.CartSnapshot) error
}

type CartRepo struct {
	store storage.Storage
}

func NewCartRepo(store storage.Storage) *CartRepo {
	return &CartRepo{store: store}
}

var _ ICartRepository = (*CartRepo)(nil)

// Load never returns a nil map. A missing key yields an empty map with no error;
// an unreadable or unparsable key yields an empty map for that key and an error
// wrapping ErrCorruptSnapshot (or the storage error), while the other key still loads.
// Prices whose item has no quantity are dropped.
func (r *CartRepo) Load(ctx context.Context) (model.CartSnapshot, error) {
	snap := model.NewCartSnapshot()
	var errs []error

	if raw, ok, err := r.read(ctx, CartKey); err != nil {
		errs = append(errs, err)
	} else if ok {
		q, err := DecodeQuantities(raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			snap.Quantities = q
		}
	}

	if raw, ok, err := r.read(ctx, CartPricesKey); err != nil {
		errs = append(errs, err)
	} else if ok {
		p, err := DecodePrices(raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			snap.UnitPrices = p
		}
	}

	// 兩個 map 的 key 必須一致，沒有數量的單價直接丟掉
	for id := range snap.UnitPrices {
		if _, ok := snap.Quantities[id]; !ok {
			delete(snap.UnitPrices, id)
		}
	}

	return snap, errors.Join(errs...)
}

func (r *CartRepo) read(ctx context.Context, key string) (string, bool, error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return raw, true, nil
}

func (r *CartRepo) Save(ctx context.Context, snap model.CartSnapshot) error {
	q, err := EncodeQuantities(snap.Quantities)
	if err != nil {
		return err
	}
	p, err := EncodePrices(snap.UnitPrices)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, CartKey, q); err != nil {
		return fmt.Errorf("save %s: %w", CartKey, err)
	}
	if err := r.store.Set(ctx, CartPricesKey, p); err != nil {
		return fmt.Errorf("save %s: %w", CartPricesKey, err)
	}
	return nil
}

func EncodeQuantities(q map[int]int) (string, error) {
	out := make(map[string]int, len(q))
	for id, qty := range q {
		out[strconv.Itoa(id)] = qty
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", CartKey, err)
	}
	return string(b), nil
}

func EncodePrices(p map[int]decimal.Decimal) (string, error) {
	out := make(map[string]json.Number, len(p))
	for id, price := range p {
		out[strconv.Itoa(id)] = json.Number(price.String())
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", CartPricesKey, err)
	}
	return string(b), nil
}

// DecodeQuantities parses {"<id>": <qty>}. Ids must be positive integers and
// quantities positive; anything else rejects the whole snapshot.
func DecodeQuantities(raw string) (map[int]int, error) {
	var in map[string]int
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, CartKey, err)
	}
	out := make(map[int]int, len(in))
	for k, qty := range in {
		id, err := parseItemID(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, CartKey, err)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("%w: %s: item %d has quantity %d", ErrCorruptSnapshot, CartKey, id, qty)
		}
		out[id] = qty
	}
	return out, nil
}

func DecodePrices(raw string) (map[int]decimal.Decimal, error) {
	var in map[string]json.Number
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, CartPricesKey, err)
	}
	out := make(map[int]decimal.Decimal, len(in))
	for k, n := range in {
		id, err := parseItemID(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, CartPricesKey, err)
		}
		price, err := parseMoney(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: item %d: %v", ErrCorruptSnapshot, CartPricesKey, id, err)
		}
		out[id] = price
	}
	return out, nil
}

func parseItemID(k string) (int, error) {
	id, err := strconv.Atoi(k)
	if err != nil {
		return 0, fmt.Errorf("item id %q is not an integer", k)
	}
	if id <= 0 {
		return 0, fmt.Errorf("item id %d must be positive", id)
	}
	return id, nil
}

// parseMoney 金額固定到分
func parseMoney(n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative amount %s", d)
	}
	return d.Round(2), nil
}
