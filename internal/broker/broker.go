// Package broker defines the order-execution boundary the core hands
// target allocations to outside the backtest path, plus a paper
// implementation for dry-run live evaluation.
package broker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/whitelight/quantengine/pkg/types"
)

// Broker executes a single order request and reports its fill.
type Broker interface {
	PlaceOrder(req types.OrderRequest, referencePrice float64) (types.OrderResult, error)
}

// PaperBroker fills every order instantly at the supplied reference price,
// the way a backtest or a dry-run live session would.
type PaperBroker struct{}

// NewPaperBroker returns a broker that never touches a real exchange.
func NewPaperBroker() *PaperBroker { return &PaperBroker{} }

func (b *PaperBroker) PlaceOrder(req types.OrderRequest, referencePrice float64) (types.OrderResult, error) {
	if req.Quantity <= 0 {
		return types.OrderResult{}, fmt.Errorf("broker: order quantity must be positive, got %d", req.Quantity)
	}
	if referencePrice <= 0 {
		return types.OrderResult{}, fmt.Errorf("broker: reference price must be positive, got %.4f", referencePrice)
	}

	return types.OrderResult{
		OrderID:      uuid.New(),
		Symbol:       req.Symbol,
		Side:         req.Side,
		RequestedQty: req.Quantity,
		FilledQty:    req.Quantity,
		FilledPrice:  referencePrice,
		Status:       types.OrderFilled,
		SubmittedAt:  time.Now().UTC(),
	}, nil
}
