package catalog

import (
	"time"
)

// Product represents a catalog item. The sales engine reads products and
// mutates their stock counter; it never creates or deletes them.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	PriceHT  float64 `json:"price_ht"`
	PriceTTC float64 `json:"price_ttc"`
	Quantity int     `json:"quantity"`
	InStock  bool    `json:"in_stock"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilters narrows product listings.
type ListFilters struct {
	Search  string
	InStock *bool
	Limit   int
	Offset  int
}
