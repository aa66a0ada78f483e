package utils

import (
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/internal/core/port"
)

const (
	DefaultPage  uint64 = 1
	DefaultLimit uint64 = 10
)

// ValidateOrderItems checks the caller-supplied lines before any
// orchestration happens. Pure: no configuration, no side effects.
func ValidateOrderItems(items []domain.OrderItemRequest) error {
	if len(items) == 0 {
		return domain.NewValidation("order must contain at least one item")
	}
	for _, item := range items {
		if item.ProductID == "" {
			return domain.NewValidation("order item productId must not be empty")
		}
		if item.Quantity <= 0 {
			return domain.NewValidation("order item quantity must be a positive integer, got %d", item.Quantity)
		}
	}
	return nil
}

// ValidatePagination applies defaults and rejects out-of-range values.
func ValidatePagination(page, limit uint64, status string) (port.OrderFilter, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	filter := port.OrderFilter{Page: page, Limit: limit}
	if status != "" {
		s, err := ValidateStatus(status)
		if err != nil {
			return port.OrderFilter{}, err
		}
		filter.Status = &s
	}
	return filter, nil
}

// ValidateStatus checks membership in the closed status enum.
func ValidateStatus(status string) (domain.OrderStatus, error) {
	s := domain.OrderStatus(status)
	if !s.Valid() {
		return "", domain.NewValidation("status %s is not a valid order status", status)
	}
	return s, nil
}
