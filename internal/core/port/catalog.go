package port

import (
	"context"

	"github.com/ordelo/orders-ms/internal/core/domain"
)

// ProductCatalogClient resolves product ids against the catalog
// service. The call is a correlated request/reply exchange with a
// timeout; it never blocks indefinitely.
type ProductCatalogClient interface {
	ValidateProducts(ctx context.Context, ids []string) ([]domain.Product, error)
}
