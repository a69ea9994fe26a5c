package service

import (
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/snapshot"
)

var (
	ErrUnknownItem     = errors.New("item is not in the catalog")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidDraft    = errors.New("invalid order draft")
	ErrInvalidPayment  = errors.New("invalid payment")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPersistFailed   = errors.New("persist snapshot failed")
	ErrLoadFailed      = errors.New("load snapshot failed")
	ErrCorruptSnapshot = snapshot.ErrCorruptSnapshot
)

// Reason 操作結果的原因代碼，呼叫端可依此決定要記錄、重試或顯示
type Reason int

const (
	ReasonOK Reason = iota
	ReasonUnknownItem
	ReasonEmptyCart
	ReasonInvalidDraft
	ReasonInvalidPayment
	ReasonOrderNotFound
	ReasonCorruptSnapshot
	ReasonPersistFailed
	ReasonLoadFailed
	ReasonInternal
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "OK"
	case ReasonUnknownItem:
		return "UNKNOWN_ITEM"
	case ReasonEmptyCart:
		return "EMPTY_CART"
	case ReasonInvalidDraft:
		return "INVALID_DRAFT"
	case ReasonInvalidPayment:
		return "INVALID_PAYMENT"
	case ReasonOrderNotFound:
		return "ORDER_NOT_FOUND"
	case ReasonCorruptSnapshot:
		return "CORRUPT_SNAPSHOT"
	case ReasonPersistFailed:
		return "PERSIST_FAILED"
	case ReasonLoadFailed:
		return "LOAD_FAILED"
	default:
		return "INTERNAL"
	}
}

// ReasonOf maps an error returned by this package to its reason code.
// A persist failure wins over the cause it wraps.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrPersistFailed):
		return ReasonPersistFailed
	case errors.Is(err, ErrUnknownItem):
		return ReasonUnknownItem
	case errors.Is(err, ErrEmptyCart):
		return ReasonEmptyCart
	case errors.Is(err, ErrInvalidDraft):
		return ReasonInvalidDraft
	case errors.Is(err, ErrInvalidPayment):
		return ReasonInvalidPayment
	case errors.Is(err, ErrOrderNotFound):
		return ReasonOrderNotFound
	case errors.Is(err, ErrCorruptSnapshot):
		return ReasonCorruptSnapshot
	case errors.Is(err, ErrLoadFailed):
		return ReasonLoadFailed
	default:
		return ReasonInternal
	}
}
