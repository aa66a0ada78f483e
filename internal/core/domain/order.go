package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// validTransitions describes the forward-only status machine.
// A status missing from a source's list is unreachable from it.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, t := range validTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID               string
	Status           OrderStatus
	TotalAmount      decimal.Decimal
	TotalItems       int32
	Paid             bool
	PaidAt           *time.Time
	PaymentReference string
	Items            []OrderItem
	Receipt          *OrderReceipt
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderItem struct {
	ProductID string
	Quantity  int32
	// Price is the catalog price snapshotted at order creation.
	// It never changes afterwards, whatever the catalog does later.
	Price decimal.Decimal
	// Name is resolved from the catalog for response projection only,
	// it is not persisted.
	Name string
}

type OrderReceipt struct {
	ReceiptURL string
	CreatedAt  time.Time
}

// OrderItemRequest is a requested line before catalog validation.
type OrderItemRequest struct {
	ProductID string
	Quantity  int32
}

// OrderPage is one page of orders with pagination metadata.
type OrderPage struct {
	Data []*Order
	Meta PageMeta
}

type PageMeta struct {
	Total    int64
	Page     uint64
	LastPage int64
}
