package rpc

import "github.com/ordelo/orders-ms/internal/adapter/bus"

// Inbound subjects served by this service.
const (
	SubjectCreateOrder          = "order.create"
	SubjectFindAllOrders        = "order.find_all"
	SubjectFindOneOrder         = "order.find_one"
	SubjectChangeOrderStatus    = "order.change_status"
	SubjectCreatePaymentSession = "order.payment.session"
	SubjectOrderPaid            = "order.paid"
)

// Register wires every inbound subject to its handler.
func Register(b *bus.Bus, oh *OrderHandler) {
	b.Subscribe(SubjectCreateOrder, oh.CreateOrder)
	b.Subscribe(SubjectFindAllOrders, oh.FindAllOrders)
	b.Subscribe(SubjectFindOneOrder, oh.FindOneOrder)
	b.Subscribe(SubjectChangeOrderStatus, oh.ChangeOrderStatus)
	b.Subscribe(SubjectCreatePaymentSession, oh.CreatePaymentSession)
	b.Subscribe(SubjectOrderPaid, oh.OrderPaid)
}
