package snapshot

import (
	"errors"
)

// 與前端 localStorage 相同的 key
const (
	CartKey         = "cart"
	CartPricesKey   = "cartPrices"
	OrderHistoryKey = "orderHistory"
)

// ErrCorruptSnapshot 已存在的快照無法解析
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"
