package book

import "gdaxbook/internal/money"

// PriceLevel is a FIFO queue of orders resting at one price on one side.
// Insertion order is time priority. A PriceLevel is never empty while it
// exists in a SideBook; the last remove empties and deletes it
// atomically (see SideBook.Ensure/Remove callers).
type PriceLevel struct {
	Price  money.Price
	Side   Side
	orders []*Order
}

func newPriceLevel(price money.Price, side Side) *PriceLevel {
	return &PriceLevel{Price: price, Side: side}
}

// Append adds an order to the tail of the queue.
func (l *PriceLevel) Append(o *Order) {
	l.orders = append(l.orders, o)
}

// RemoveByID removes the first matching id. Returns whether a removal
// occurred.
func (l *PriceLevel) RemoveByID(id string) bool {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return true
		}
	}
	return false
}

// Head peeks the first order without removing it, or nil if empty.
func (l *PriceLevel) Head() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// DecrementHead reduces the head order's size by size. If the head's
// size reaches zero it is popped. A no-op (no mutation) if the level is
// empty.
func (l *PriceLevel) DecrementHead(size money.Size) {
	if len(l.orders) == 0 {
		return
	}
	head := l.orders[0]
	head.Size = head.Size.Sub(size)
	if head.Size.IsZero() {
		l.orders = l.orders[1:]
	}
}

// UpdateSize locates an order by id and replaces its size. A no-op if
// the id is absent.
func (l *PriceLevel) UpdateSize(id string, newSize money.Size) {
	for _, o := range l.orders {
		if o.ID == id {
			o.Size = newSize
			return
		}
	}
}

// TotalSize sums the sizes of every resting order.
func (l *PriceLevel) TotalSize() money.Size {
	total := money.ZeroSize
	for _, o := range l.orders {
		total = total.Add(o.Size)
	}
	return total
}

// Empty reports whether the level holds no orders.
func (l *PriceLevel) Empty() bool {
	return len(l.orders) == 0
}

// Orders returns a read-only snapshot of the FIFO, in time-priority
// order. Used for rendering snapshots and in tests.
func (l *PriceLevel) Orders() []Order {
	out := make([]Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = *o
	}
	return out
}
