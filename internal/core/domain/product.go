package domain

import "github.com/govalues/decimal"

// Product is a read-only view of a catalog record. The catalog service
// owns the data; we only consume it while building an order.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}
