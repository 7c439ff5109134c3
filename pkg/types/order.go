package types

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus mirrors a brokerage order lifecycle, used only by the
// out-of-core internal/broker collaborator.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderFilled   OrderStatus = "filled"
	OrderRejected OrderStatus = "rejected"
)

// OrderRequest is the intent to place an order, handed to a Broker.
type OrderRequest struct {
	Symbol     string
	Quantity   int64
	Side       Side
	Rationale  string
}

// OrderResult is what a Broker returns after attempting to fill an order.
type OrderResult struct {
	OrderID       uuid.UUID
	Symbol        string
	Side          Side
	RequestedQty  int64
	FilledQty     int64
	FilledPrice   float64
	Status        OrderStatus
	SubmittedAt   time.Time
	ErrorMessage  string
}
