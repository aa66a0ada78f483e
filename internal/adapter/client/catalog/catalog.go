package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/govalues/decimal"
	"github.com/ordelo/orders-ms/internal/adapter/bus"
	"github.com/ordelo/orders-ms/internal/adapter/config"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"go.uber.org/zap"
)

// Client resolves product ids against the catalog service over the
// bus. One request, one correlated reply, bounded by the bus timeout.
type Client struct {
	bus     *bus.Bus
	subject string
	logger  *zap.Logger
}

func NewClient(conf *config.Bus, b *bus.Bus, log *zap.Logger) (*Client, error) {
	return &Client{
		bus:     b,
		subject: conf.CatalogSubject,
		logger:  log,
	}, nil
}

type productResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (c *Client) ValidateProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	c.logger.Debug("Fire request for product validation",
		zap.Int("ids", len(ids)))

	data, err := c.bus.Request(ctx, c.subject, ids)
	if err != nil {
		return nil, err
	}

	var resp []productResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		// Undecodable replies count as empty ones.
		return nil, fmt.Errorf("Empty response (%s)", c.subject)
	}

	products := make([]domain.Product, 0, len(resp))
	for _, p := range resp {
		price, err := decimal.NewFromFloat64(p.Price)
		if err != nil {
			return nil, fmt.Errorf("error on response decode: %w", err)
		}
		products = append(products, domain.Product{
			ID:    p.ID,
			Name:  p.Name,
			Price: price,
		})
	}

	return products, nil
}
