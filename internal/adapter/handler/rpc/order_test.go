package rpc_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/ordelo/orders-ms/internal/adapter/handler/rpc"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/internal/core/port"
	"github.com/ordelo/orders-ms/internal/core/port/mock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, mockCtrl *gomock.Controller) (*rpc.OrderHandler, *mock.MockOrderService) {
	t.Helper()

	logger, _ := zap.NewProduction()
	svc := mock.NewMockOrderService(mockCtrl)

	oh, err := rpc.NewOrderHandler(svc, logger)
	assert.NoError(t, err)

	return oh, svc
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Valid payload reaches service", func(t *testing.T) {
		oh, svc := newHandler(t, mockCtrl)

		svc.EXPECT().CreateOrder(gomock.Any(),
			[]domain.OrderItemRequest{{ProductID: "p1", Quantity: 2}}).
			Return(&domain.Order{
				ID:          "o1",
				Status:      domain.OrderStatusPending,
				TotalAmount: decimal.MustParse("21"),
				TotalItems:  2,
			}, nil)

		resp, err := oh.CreateOrder(context.Background(),
			[]byte(`{"items":[{"productId":"p1","quantity":2}]}`))
		assert.NoError(t, err)
		assert.NotNil(t, resp)
	})

	t.Run("Malformed payload rejected before orchestration", func(t *testing.T) {
		oh, _ := newHandler(t, mockCtrl)

		_, err := oh.CreateOrder(context.Background(), []byte(`{"items":`))

		var svcErr *domain.ServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})

	t.Run("Zero quantity rejected before orchestration", func(t *testing.T) {
		oh, _ := newHandler(t, mockCtrl)

		_, err := oh.CreateOrder(context.Background(),
			[]byte(`{"items":[{"productId":"p1","quantity":0}]}`))

		var svcErr *domain.ServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
	})
}

func TestOrderHandler_FindAllOrders(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Defaults applied for empty payload", func(t *testing.T) {
		oh, svc := newHandler(t, mockCtrl)

		svc.EXPECT().ListOrders(gomock.Any(), port.OrderFilter{Page: 1, Limit: 10}).
			Return(&domain.OrderPage{Meta: domain.PageMeta{Total: 0, Page: 1}}, nil)

		_, err := oh.FindAllOrders(context.Background(), nil)
		assert.NoError(t, err)
	})

	t.Run("Unknown status filter rejected", func(t *testing.T) {
		oh, _ := newHandler(t, mockCtrl)

		_, err := oh.FindAllOrders(context.Background(), []byte(`{"status":"SHIPPED"}`))
		assert.Error(t, err)
	})
}

func TestOrderHandler_ChangeOrderStatus(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	t.Run("Valid transition request", func(t *testing.T) {
		oh, svc := newHandler(t, mockCtrl)

		svc.EXPECT().ChangeOrderStatus(gomock.Any(), "o1", domain.OrderStatusDelivered).
			Return(&domain.Order{ID: "o1", Status: domain.OrderStatusDelivered}, nil)

		_, err := oh.ChangeOrderStatus(context.Background(),
			[]byte(`{"id":"o1","status":"DELIVERED"}`))
		assert.NoError(t, err)
	})

	t.Run("Missing id rejected", func(t *testing.T) {
		oh, _ := newHandler(t, mockCtrl)

		_, err := oh.ChangeOrderStatus(context.Background(), []byte(`{"status":"PAID"}`))
		assert.Error(t, err)
	})
}

func TestOrderHandler_OrderPaid(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	oh, svc := newHandler(t, mockCtrl)

	svc.EXPECT().MarkOrderPaid(gomock.Any(), "o1", "pay_1", "https://receipts.example/1").
		Return(&domain.Order{
			ID:               "o1",
			Status:           domain.OrderStatusPaid,
			Paid:             true,
			PaymentReference: "pay_1",
			Receipt:          &domain.OrderReceipt{ReceiptURL: "https://receipts.example/1"},
		}, nil)

	resp, err := oh.OrderPaid(context.Background(),
		[]byte(`{"orderId":"o1","paymentReference":"pay_1","receiptUrl":"https://receipts.example/1"}`))
	assert.NoError(t, err)
	assert.NotNil(t, resp)
}
