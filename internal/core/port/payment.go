package port

import (
	"context"

	"github.com/ordelo/orders-ms/internal/core/domain"
)

// PaymentGatewayClient opens checkout sessions with the payment
// service. The session descriptor is opaque to this service.
type PaymentGatewayClient interface {
	CreateSession(ctx context.Context, req *domain.PaymentSessionRequest) (*domain.PaymentSession, error)
}
