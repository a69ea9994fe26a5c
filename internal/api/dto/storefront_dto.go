package dto

// 金額一律輸出為兩位小數字串

type MenuItemDTO struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	Category     string  `json:"category"`
	Image        string  `json:"image"`
	Rating       string  `json:"rating"`
	Popular      bool    `json:"popular"`
	OnSpecial    bool    `json:"on_special"`
	SpecialPrice *string `json:"special_price,omitempty"`
}

type SpecialsDTO struct {
	Day      string        `json:"day"`
	Category string        `json:"category"`
	Items    []MenuItemDTO `json:"items"`
}

type CartLineDTO struct {
	ItemID     int    `json:"item_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	LineTotal  string `json:"line_total"`
	Discounted bool   `json:"discounted"`
}

type CartDTO struct {
	Lines       []CartLineDTO `json:"lines"`
	TotalItems  int           `json:"total_items"`
	Subtotal    string        `json:"subtotal"`
	DeliveryFee string        `json:"delivery_fee"`
	Tax         string        `json:"tax"`
	Total       string        `json:"total"`
}

// AddCartItemDTO 的 special 只有在商品當日特價時才生效
type AddCartItemDTO struct {
	Special bool `json:"special"`
}

type CheckoutDTO struct {
	PaymentMethod string `json:"payment_method"`
	CardNumber    string `json:"card_number"`
}

type OrderItemDTO struct {
	ItemID   int    `json:"item_id"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type OrderDTO struct {
	ID            string         `json:"id"`
	Items         []OrderItemDTO `json:"items"`
	ItemCount     int            `json:"item_count"`
	Subtotal      string         `json:"subtotal"`
	DeliveryFee   string         `json:"delivery_fee"`
	Tax           string         `json:"tax"`
	Total         string         `json:"total"`
	Date          string         `json:"date"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"payment_method"`
}
