package book

import "gdaxbook/internal/money"

// ProductBook holds both sides of one product's order book plus the
// sequence of the most recently applied message. Instances are created
// on engine start, seeded from a snapshot, mutated only by the apply
// path, and discarded wholesale on gap/disconnect per spec.md §5.
type ProductBook struct {
	ProductID string
	Bids      *SideBook
	Asks      *SideBook

	sequence     int64
	initialised  bool
}

// New creates an empty, uninitialised ProductBook for product.
func New(productID string) *ProductBook {
	return &ProductBook{
		ProductID: productID,
		Bids:      newSideBook(Buy),
		Asks:      newSideBook(Sell),
	}
}

// Sequence returns the last-applied sequence number and whether the
// book has been seeded yet.
func (b *ProductBook) Sequence() (int64, bool) {
	return b.sequence, b.initialised
}

// SetSequence marks the book as initialised at sequence seq. Used both
// by snapshot seeding and after every successfully applied message.
func (b *ProductBook) SetSequence(seq int64) {
	b.sequence = seq
	b.initialised = true
}

func (b *ProductBook) sideBook(side Side) *SideBook {
	if side == Buy {
		return b.Bids
	}
	return b.Asks
}

// Add normalises and inserts an order, creating its price level if
// necessary.
func (b *ProductBook) Add(o Order) {
	lvl := b.sideBook(o.Side).Ensure(o.Price)
	order := o
	lvl.Append(&order)
}

// Remove deletes the order with id at price on side, removing the
// level entirely if it becomes empty. A no-op if the level or order is
// absent.
func (b *ProductBook) Remove(side Side, price money.Price, id string) {
	sb := b.sideBook(side)
	lvl := sb.Get(price)
	if lvl == nil {
		return
	}
	lvl.RemoveByID(id)
	if lvl.Empty() {
		sb.Remove(price)
	}
}

// Match requires the head of the level at price on side to have id ==
// makerID (an invariant violation otherwise, per spec.md §7). If the
// head's size equals size exactly, the head is popped (and the level
// deleted if it empties); otherwise the head is decremented by size.
// If the level does not exist or is empty, the match is silently
// ignored — it covers snapshots that pre-date some orders.
func (b *ProductBook) Match(side Side, price money.Price, makerID string, size money.Size) error {
	sb := b.sideBook(side)
	lvl := sb.Get(price)
	if lvl == nil || lvl.Empty() {
		return nil
	}

	head := lvl.Head()
	if head.ID != makerID {
		return &InvariantError{
			Msg: "match head id mismatch: expected " + makerID + " got " + head.ID,
		}
	}

	if head.Size.Equal(size) {
		lvl.RemoveByID(makerID)
	} else {
		lvl.DecrementHead(size)
	}
	if lvl.Empty() {
		sb.Remove(price)
	}
	return nil
}

// Change locates the order by id on side and sets its size to newSize.
// If price is nil, "market price" is used: the min ask for a sell
// change, the max bid for a buy change. If the order is not found
// (including because the order's own side is empty under a priceless
// lookup), the change is silently ignored per spec.md §9.
func (b *ProductBook) Change(side Side, price *money.Price, id string, newSize money.Size) {
	sb := b.sideBook(side)

	var p money.Price
	if price != nil {
		p = *price
	} else {
		best, err := sb.BestPrice()
		if err != nil {
			// Empty side under a priceless change: ignore, matching
			// observed upstream behaviour (spec.md §9 Open Questions).
			return
		}
		p = best
	}

	lvl := sb.Get(p)
	if lvl == nil {
		return
	}
	lvl.UpdateSize(id, newSize)
}

// BestAskPrice and BestBidPrice expose top-of-book queries.
func (b *ProductBook) BestAskPrice() (money.Price, error) { return b.Asks.BestPrice() }
func (b *ProductBook) BestBidPrice() (money.Price, error) { return b.Bids.BestPrice() }

// LevelAt returns the level at price on side, or nil.
func (b *ProductBook) LevelAt(side Side, price money.Price) *PriceLevel {
	return b.sideBook(side).Get(price)
}

// TotalSizeAtBest returns the summed size of every order at the best
// price on side, or a zero size if the side is empty.
func (b *ProductBook) TotalSizeAtBest(side Side) money.Size {
	sb := b.sideBook(side)
	best, err := sb.BestPrice()
	if err != nil {
		return money.ZeroSize
	}
	return sb.Get(best).TotalSize()
}

// Row is a plain [price, size, id] rendering of one resting order.
type Row struct {
	Price money.Price
	Size  money.Size
	ID    string
}

// Snapshot produces a plain, ordered rendering of the book: bids and
// asks are each emitted in ascending-price iteration (order within a
// level preserved), alongside the current sequence.
type Snapshot struct {
	Sequence int64
	Bids     []Row
	Asks     []Row
}

func (b *ProductBook) Snapshot() Snapshot {
	seq, _ := b.Sequence()
	snap := Snapshot{Sequence: seq}

	b.Bids.IterAscending(func(lvl *PriceLevel) bool {
		for _, o := range lvl.Orders() {
			snap.Bids = append(snap.Bids, Row{Price: o.Price, Size: o.Size, ID: o.ID})
		}
		return true
	})
	b.Asks.IterAscending(func(lvl *PriceLevel) bool {
		for _, o := range lvl.Orders() {
			snap.Asks = append(snap.Asks, Row{Price: o.Price, Size: o.Size, ID: o.ID})
		}
		return true
	})
	return snap
}

// InvariantError signals an internal protocol-contract break (spec.md
// §7): the book observed state inconsistent with what the feed
// promises, e.g. a match whose maker id doesn't match the resting
// head.
type InvariantError struct{ Msg string }

func (e *InvariantError) Error() string { return "book: invariant violation: " + e.Msg }
