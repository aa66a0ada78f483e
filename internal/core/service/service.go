package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/internal/core/port"
	"github.com/ordelo/orders-ms/pkg/metrics"
	"go.uber.org/zap"
)

// paymentCurrency is fixed for every checkout session we open.
const paymentCurrency = "usd"

type Service struct {
	store   port.OrderStore
	catalog port.ProductCatalogClient
	payment port.PaymentGatewayClient
	logger  *zap.Logger
}

func NewService(store port.OrderStore, catalog port.ProductCatalogClient,
	payment port.PaymentGatewayClient, logger *zap.Logger) (*Service, error) {
	return &Service{
		store:   store,
		catalog: catalog,
		payment: payment,
		logger:  logger,
	}, nil
}

// CreateOrder validates the referenced products against the catalog,
// snapshots their prices, and persists the order with all items in one
// transaction. Any unresolved product aborts the whole operation.
func (s *Service) CreateOrder(ctx context.Context, items []domain.OrderItemRequest) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.ErrOrderNoItems
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.ValidateProducts(ctx, ids)
	if err != nil {
		s.logger.Error("Validate products", zap.Error(err))
		return nil, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	var totalItems int32
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, domain.NewNotFound("Product with id #%s not found", item.ProductID)
		}

		qty, err := decimal.New(int64(item.Quantity), 0)
		if err != nil {
			return nil, fmt.Errorf("math error:%w", err)
		}
		line, err := product.Price.Mul(qty)
		if err != nil {
			return nil, fmt.Errorf("math error:%w", err)
		}
		total, err = total.Add(line)
		if err != nil {
			return nil, fmt.Errorf("math error:%w", err)
		}

		totalItems += item.Quantity
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Name:      product.Name,
		})
	}

	now := time.Now()
	order := &domain.Order{
		ID:          uuid.NewString(),
		Status:      domain.OrderStatusPending,
		TotalAmount: total,
		TotalItems:  totalItems,
		Items:       orderItems,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		s.logger.Error("Create order", zap.Error(err))
		return nil, err
	}
	metrics.OrdersCreated.Inc()

	// Names are a display enrichment, the store does not keep them.
	for i := range created.Items {
		created.Items[i].Name = byID[created.Items[i].ProductID].Name
	}

	return created, nil
}

func (s *Service) ListOrders(ctx context.Context, filter port.OrderFilter) (*domain.OrderPage, error) {
	orders, total, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		s.logger.Error("List orders", zap.Error(err))
		return nil, err
	}

	var lastPage int64
	if filter.Limit > 0 {
		lastPage = (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	}

	return &domain.OrderPage{
		Data: orders,
		Meta: domain.PageMeta{
			Total:    total,
			Page:     filter.Page,
			LastPage: lastPage,
		},
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.ReadOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.NewNotFound("Order with id #%s not found", id)
		}
		s.logger.Error("Read order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

// ChangeOrderStatus is idempotent: asking for the current status is a
// no-op. Any other transition must move the status machine forward and
// is applied conditionally on the observed prior status.
func (s *Service) ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}

	if !order.Status.CanTransition(status) {
		return nil, domain.NewConflict("Order %s cannot change status from %s to %s", id, order.Status, status)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, id, order.Status, status)
	if err != nil {
		if errors.Is(err, domain.ErrNoUpdatedData) {
			// Lost a read-then-write race. If the other writer applied
			// the same transition the result is still ours.
			current, rerr := s.GetOrder(ctx, id)
			if rerr == nil && current.Status == status {
				return current, nil
			}
			return nil, domain.NewConflict("Order %s status changed concurrently", id)
		}
		s.logger.Error("Update order status", zap.Error(err))
		return nil, err
	}

	return updated, nil
}

// RequestPayment composes a checkout session from the persisted order.
// Pure composition: nothing is mutated locally.
func (s *Service) RequestPayment(ctx context.Context, order *domain.Order) (*domain.PaymentSession, error) {
	lines := make([]domain.PaymentLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, domain.PaymentLineItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	session, err := s.payment.CreateSession(ctx, &domain.PaymentSessionRequest{
		OrderID:  order.ID,
		Currency: paymentCurrency,
		Items:    lines,
	})
	if err != nil {
		s.logger.Error("Create payment session", zap.Error(err),
			zap.String("order", order.ID))
		return nil, err
	}

	return session, nil
}

// MarkOrderPaid applies the payment confirmation. Confirmations may be
// redelivered, so an already paid order is returned unchanged, and the
// store-level write is conditional on the order still being unpaid.
func (s *Service) MarkOrderPaid(ctx context.Context, orderID, paymentRef, receiptURL string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Paid {
		if order.PaymentReference != paymentRef {
			s.logger.Warn("Confirmation for already paid order ignored",
				zap.String("order", orderID),
				zap.String("payment", paymentRef))
		}
		return order, nil
	}

	if !order.Status.CanTransition(domain.OrderStatusPaid) {
		return nil, domain.NewConflict("Order %s cannot be paid in status %s", orderID, order.Status)
	}

	updated, err := s.store.MarkOrderPaid(ctx, orderID, paymentRef, receiptURL, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNoUpdatedData) {
			// The conditional update matched nothing: either a concurrent
			// confirmation already paid the order, or it left PENDING in
			// the meantime. Only the former is an idempotent success.
			current, rerr := s.GetOrder(ctx, orderID)
			if rerr != nil {
				return nil, rerr
			}
			if current.Paid {
				return current, nil
			}
			return nil, domain.NewConflict("Order %s cannot be paid in status %s", orderID, current.Status)
		}
		s.logger.Error("Mark order paid", zap.Error(err),
			zap.String("order", orderID))
		return nil, err
	}
	metrics.PaymentsConfirmed.Inc()

	s.logger.Info("Order paid",
		zap.String("order", orderID),
		zap.String("payment", paymentRef))

	return updated, nil
}
