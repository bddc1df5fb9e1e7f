package domain

import "time"

// ProductCategory groups shop products.
type ProductCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Product is a shop item.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"image_url"`
	StockQuantity int       `json:"stock_quantity"`
	CategoryID    *string   `json:"category_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductFilter narrows catalogue listings.
type ProductFilter struct {
	CategoryID      *string
	Search          string
	IncludeInactive bool
}

// ProductUpdate carries optional admin edits.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *float64
	StockQuantity *int
	IsActive      *bool
}
