package book

import (
	"fmt"

	"gdaxbook/internal/money"
)

// Order is a single resting order, keyed by side/price/id within a
// ProductBook. Ids are opaque strings assigned by the exchange.
type Order struct {
	ID    string
	Side  Side
	Price money.Price
	Size  money.Size
}

func (o Order) String() string {
	return fmt.Sprintf("Order{id:%s side:%s price:%s size:%s}",
		o.ID, o.Side, o.Price, o.Size)
}
