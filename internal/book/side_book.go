package book

import (
	"errors"

	"github.com/tidwall/btree"

	"gdaxbook/internal/money"
)

var ErrEmptySide = errors.New("book: side has no price levels")

// levels is the teacher's PriceLevels alias: an ordered map from price to
// PriceLevel, backed by a generic B-tree so best-price lookup and
// insert/remove are O(log n) instead of the hash-map the spec forbids.
type levels = btree.BTreeG[*PriceLevel]

// SideBook is an ordered mapping price -> PriceLevel for one side of one
// product. "Best" is the minimum key for asks and the maximum key for
// bids; which direction applies is fixed at construction time by the
// less-func newSideBook picks for the side, mirroring the teacher's
// NewOrderBook, which builds one btree.NewBTreeG per side with an
// inverted comparator for bids.
type SideBook struct {
	side Side
	tree *levels
}

func newSideBook(side Side) *SideBook {
	var less func(a, b *PriceLevel) bool
	if side == Buy {
		// Bids: best = max key, so the tree orders greatest-first.
		less = func(a, b *PriceLevel) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		// Asks: best = min key, tree orders least-first.
		less = func(a, b *PriceLevel) bool { return a.Price.LessThan(b.Price) }
	}
	return &SideBook{side: side, tree: btree.NewBTreeG(less)}
}

// BestPrice returns the best (min for asks, max for bids) resting
// price. Errors if the side is empty.
func (s *SideBook) BestPrice() (money.Price, error) {
	lvl, ok := s.tree.Min()
	if !ok {
		return money.Price{}, ErrEmptySide
	}
	return lvl.Price, nil
}

// Get returns the level at price, or nil if absent.
func (s *SideBook) Get(price money.Price) *PriceLevel {
	probe := &PriceLevel{Price: price}
	lvl, ok := s.tree.Get(probe)
	if !ok {
		return nil
	}
	return lvl
}

// Ensure returns the level at price, creating an empty one if missing.
func (s *SideBook) Ensure(price money.Price) *PriceLevel {
	if lvl := s.Get(price); lvl != nil {
		return lvl
	}
	lvl := newPriceLevel(price, s.side)
	s.tree.Set(lvl)
	return lvl
}

// Remove deletes the level at price, if any.
func (s *SideBook) Remove(price money.Price) {
	s.tree.Delete(&PriceLevel{Price: price})
}

// IterAscending walks every level in ascending-price order (regardless
// of which side is "best"), as spec.md §4.3's snapshot rendering
// requires for both bids and asks.
func (s *SideBook) IterAscending(fn func(*PriceLevel) bool) {
	if s.side == Buy {
		// The tree's natural (Scan) order is greatest-first for bids
		// (see newSideBook's comparator); Reverse walks it least-first,
		// i.e. ascending price order.
		s.tree.Reverse(fn)
		return
	}
	// Asks are already ordered least-first, so Scan is ascending.
	s.tree.Scan(fn)
}

// Len returns the number of non-empty price levels.
func (s *SideBook) Len() int { return s.tree.Len() }
