package domain

import "github.com/govalues/decimal"

// PaymentSessionRequest is the summary sent to the payment gateway to
// open a checkout session. Items carry the snapshotted prices.
type PaymentSessionRequest struct {
	OrderID  string
	Currency string
	Items    []PaymentLineItem
}

type PaymentLineItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int32
}

// PaymentSession is the opaque descriptor issued by the gateway.
// We hand it to the caller untouched and keep no local state for it.
type PaymentSession struct {
	ID         string
	URL        string
	SuccessURL string
	CancelURL  string
}
