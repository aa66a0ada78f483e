package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/govalues/decimal"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/internal/core/port"
	"github.com/ordelo/orders-ms/internal/core/utils"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service port.OrderService
	logger  *zap.Logger
}

func NewOrderHandler(service port.OrderService, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}, nil
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

func (oh *OrderHandler) CreateOrder(ctx context.Context, data []byte) (any, error) {
	var req createOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, domain.NewValidation("malformed create order payload")
	}

	items := make([]domain.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if err := utils.ValidateOrderItems(items); err != nil {
		return nil, err
	}

	order, err := oh.service.CreateOrder(ctx, items)
	if err != nil {
		return nil, err
	}

	return orderToResponse(order), nil
}

type findAllRequest struct {
	Page   uint64 `json:"page"`
	Limit  uint64 `json:"limit"`
	Status string `json:"status"`
}

type pageResponse struct {
	Data []orderResponse `json:"data"`
	Meta pageMeta        `json:"meta"`
}

type pageMeta struct {
	Total    int64  `json:"total"`
	Page     uint64 `json:"page"`
	LastPage int64  `json:"lastPage"`
}

func (oh *OrderHandler) FindAllOrders(ctx context.Context, data []byte) (any, error) {
	var req findAllRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, domain.NewValidation("malformed pagination payload")
		}
	}

	filter, err := utils.ValidatePagination(req.Page, req.Limit, req.Status)
	if err != nil {
		return nil, err
	}

	page, err := oh.service.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	orders := make([]orderResponse, 0, len(page.Data))
	for _, o := range page.Data {
		orders = append(orders, orderToResponse(o))
	}

	return pageResponse{
		Data: orders,
		Meta: pageMeta{
			Total:    page.Meta.Total,
			Page:     page.Meta.Page,
			LastPage: page.Meta.LastPage,
		},
	}, nil
}

type findOneRequest struct {
	ID string `json:"id"`
}

func (oh *OrderHandler) FindOneOrder(ctx context.Context, data []byte) (any, error) {
	var req findOneRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, domain.NewValidation("order id must not be empty")
	}

	order, err := oh.service.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return orderToResponse(order), nil
}

type changeStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (oh *OrderHandler) ChangeOrderStatus(ctx context.Context, data []byte) (any, error) {
	var req changeStatusRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, domain.NewValidation("order id must not be empty")
	}

	status, err := utils.ValidateStatus(req.Status)
	if err != nil {
		return nil, err
	}

	order, err := oh.service.ChangeOrderStatus(ctx, req.ID, status)
	if err != nil {
		return nil, err
	}

	return orderToResponse(order), nil
}

type createSessionRequest struct {
	OrderID string `json:"orderId"`
}

type sessionResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (oh *OrderHandler) CreatePaymentSession(ctx context.Context, data []byte) (any, error) {
	var req createSessionRequest
	if err := json.Unmarshal(data, &req); err != nil || req.OrderID == "" {
		return nil, domain.NewValidation("order id must not be empty")
	}

	order, err := oh.service.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	session, err := oh.service.RequestPayment(ctx, order)
	if err != nil {
		return nil, err
	}

	return sessionResponse{
		ID:         session.ID,
		URL:        session.URL,
		SuccessURL: session.SuccessURL,
		CancelURL:  session.CancelURL,
	}, nil
}

type orderPaidRequest struct {
	OrderID          string `json:"orderId"`
	PaymentReference string `json:"paymentReference"`
	ReceiptURL       string `json:"receiptUrl"`
}

// OrderPaid handles the payment confirmation event. Confirmations may
// be redelivered; the service treats repeats as no-ops.
func (oh *OrderHandler) OrderPaid(ctx context.Context, data []byte) (any, error) {
	var req orderPaidRequest
	if err := json.Unmarshal(data, &req); err != nil || req.OrderID == "" {
		return nil, domain.NewValidation("order id must not be empty")
	}

	order, err := oh.service.MarkOrderPaid(ctx, req.OrderID, req.PaymentReference, req.ReceiptURL)
	if err != nil {
		return nil, err
	}

	return orderToResponse(order), nil
}

type orderResponse struct {
	ID               string              `json:"id"`
	Status           string              `json:"status"`
	TotalAmount      float64             `json:"totalAmount"`
	TotalItems       int32               `json:"totalItems"`
	Paid             bool                `json:"paid"`
	PaidAt           *time.Time          `json:"paidAt,omitempty"`
	PaymentReference string              `json:"paymentReference,omitempty"`
	ReceiptURL       string              `json:"receiptUrl,omitempty"`
	Items            []orderItemResponse `json:"items,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int32   `json:"quantity"`
}

func orderToResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		Status:           string(o.Status),
		TotalAmount:      money(o.TotalAmount),
		TotalItems:       o.TotalItems,
		Paid:             o.Paid,
		PaidAt:           o.PaidAt,
		PaymentReference: o.PaymentReference,
		CreatedAt:        o.CreatedAt,
	}
	if o.Receipt != nil {
		resp.ReceiptURL = o.Receipt.ReceiptURL
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     money(item.Price),
			Quantity:  item.Quantity,
		})
	}
	return resp
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
