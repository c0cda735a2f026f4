package model

import "time"

// Item categories accepted by the `items.category` ENUM column.
const (
	CategoryElectronics = "electronics"
	CategoryClothing    = "clothing"
	CategoryBooks       = "books"
	CategoryHome        = "home"
	CategoryOther       = "other"
)

// Item is a catalog entry in the `items` table.  Price is carried in cents to
// avoid float rounding in the database; handlers expose it as a decimal value.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name, 2–50 characters.
//  Description – free text, 10–500 characters.
//  PriceCents  – price in cents (0 .. 10_000_000).
//  Category    – one of the category constants above.
//  InStock     – whether the item is currently in stock.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Item struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  uint64    `json:"price_cents"`
	Category    string    `json:"category"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCategory reports whether c is one of the accepted category values.
func ValidCategory(c string) bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryBooks, CategoryHome, CategoryOther:
		return true
	}
	return false
}
