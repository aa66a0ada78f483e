package port

import (
	"context"
	"time"

	"github.com/ordelo/orders-ms/internal/core/domain"
)

// OrderFilter narrows and pages ListOrders. Page and Limit are
// 1-based and already validated by the caller.
type OrderFilter struct {
	Status *domain.OrderStatus
	Page   uint64
	Limit  uint64
}

// OrderStore is the sole mutator of order state. CreateOrder persists
// the order and all of its items as one transaction; the conditional
// updates succeed only when the expected prior state still holds.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, int64, error)

	// UpdateOrderStatus applies the transition only when the order is
	// still in status from; returns domain.ErrNoUpdatedData otherwise.
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)

	// MarkOrderPaid sets paid state and attaches the receipt only while
	// the order is still an unpaid PENDING one; returns
	// domain.ErrNoUpdatedData when a concurrent writer got there first.
	MarkOrderPaid(ctx context.Context, id string, paymentRef string, receiptURL string, paidAt time.Time) (*domain.Order, error)
}
