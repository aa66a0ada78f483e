package port

import (
	"context"

	"github.com/ordelo/orders-ms/internal/core/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, items []domain.OrderItemRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (*domain.OrderPage, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	RequestPayment(ctx context.Context, order *domain.Order) (*domain.PaymentSession, error)
	MarkOrderPaid(ctx context.Context, orderID, paymentRef, receiptURL string) (*domain.Order, error)
}
