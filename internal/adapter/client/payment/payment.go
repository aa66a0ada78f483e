package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ordelo/orders-ms/internal/adapter/bus"
	"github.com/ordelo/orders-ms/internal/adapter/config"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"go.uber.org/zap"
)

// Client opens checkout sessions with the payment gateway over the
// bus. The session descriptor comes back opaque and is handed to the
// caller untouched.
type Client struct {
	bus     *bus.Bus
	subject string
	logger  *zap.Logger
}

func NewClient(conf *config.Bus, b *bus.Bus, log *zap.Logger) (*Client, error) {
	return &Client{
		bus:     b,
		subject: conf.PaymentSubject,
		logger:  log,
	}, nil
}

type sessionRequest struct {
	OrderID  string            `json:"orderId"`
	Currency string            `json:"currency"`
	Items    []sessionLineItem `json:"items"`
}

type sessionLineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int32   `json:"quantity"`
}

type sessionResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (c *Client) CreateSession(ctx context.Context, req *domain.PaymentSessionRequest) (*domain.PaymentSession, error) {
	items := make([]sessionLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		price, ok := item.Price.Float64()
		if !ok {
			return nil, fmt.Errorf("error on request encode: price %s", item.Price)
		}
		items = append(items, sessionLineItem{
			Name:     item.Name,
			Price:    price,
			Quantity: item.Quantity,
		})
	}

	c.logger.Debug("Fire request for payment session",
		zap.String("order", req.OrderID))

	data, err := c.bus.Request(ctx, c.subject, sessionRequest{
		OrderID:  req.OrderID,
		Currency: req.Currency,
		Items:    items,
	})
	if err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("Empty response (%s)", c.subject)
	}

	return &domain.PaymentSession{
		ID:         resp.ID,
		URL:        resp.URL,
		SuccessURL: resp.SuccessURL,
		CancelURL:  resp.CancelURL,
	}, nil
}
