package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seedScenario1(t *testing.T) *ProductBook {
	t.Helper()
	b := New("BTC-USD")
	b.Add(Order{ID: "b1", Side: Buy, Price: mustPrice(t, "2525.00"), Size: mustSize(t, "1.5")})
	b.Add(Order{ID: "i2", Side: Buy, Price: mustPrice(t, "2595.52"), Size: mustSize(t, "100")})
	b.Add(Order{ID: "i1", Side: Buy, Price: mustPrice(t, "2595.52"), Size: mustSize(t, "2")})
	b.Add(Order{ID: "b4", Side: Buy, Price: mustPrice(t, "2595.70"), Size: mustSize(t, "1.5")})
	b.Add(Order{ID: "a1", Side: Sell, Price: mustPrice(t, "2596.74"), Size: mustSize(t, "0.2")})
	b.SetSequence(3419033239)
	return b
}

// Scenario 1: snapshot seeding (spec.md §8).
func TestProductBook_SnapshotSeeding(t *testing.T) {
	b := seedScenario1(t)

	bestBid, err := b.BestBidPrice()
	assert.NoError(t, err)
	assert.True(t, bestBid.Equal(mustPrice(t, "2595.70")))

	bestAsk, err := b.BestAskPrice()
	assert.NoError(t, err)
	assert.True(t, bestAsk.Equal(mustPrice(t, "2596.74")))

	assert.True(t, b.TotalSizeAtBest(Buy).Equal(mustSize(t, "1.5")))
	assert.True(t, b.TotalSizeAtBest(Sell).Equal(mustSize(t, "0.2")))

	seq, ok := b.Sequence()
	assert.True(t, ok)
	assert.Equal(t, int64(3419033239), seq)
}

// Scenario 3: match with partial fill.
func TestProductBook_Match_PartialFill(t *testing.T) {
	b := New("BTC-USD")
	price := mustPrice(t, "2596.77")
	b.Add(Order{ID: "a2", Side: Sell, Price: price, Size: mustSize(t, "0.07670504")})
	b.SetSequence(3419033239)

	err := b.Match(Sell, price, "a2", mustSize(t, "0.01"))
	assert.NoError(t, err)

	lvl := b.LevelAt(Sell, price)
	assert.NotNil(t, lvl)
	assert.True(t, lvl.Head().Size.Equal(mustSize(t, "0.06670504")))

	bestAsk, err := b.BestAskPrice()
	assert.NoError(t, err)
	assert.True(t, bestAsk.Equal(price), "best ask unchanged by a partial fill")
}

// Scenario 4: done removes a level entirely.
func TestProductBook_Remove_DeletesEmptyLevel(t *testing.T) {
	b := seedScenario1(t)

	b.Remove(Sell, mustPrice(t, "2596.74"), "a1")
	assert.Nil(t, b.LevelAt(Sell, mustPrice(t, "2596.74")))

	_, err := b.BestAskPrice()
	assert.ErrorIs(t, err, ErrEmptySide, "no asks remain after removing the only one")
}

// Scenario 5 (done without price) is handled entirely at the message
// dispatch layer (internal/engine), since ProductBook.Remove always
// requires a price; see engine_test.go.

func TestProductBook_Match_ExactFillPopsHeadAndDeletesLevel(t *testing.T) {
	b := New("BTC-USD")
	price := mustPrice(t, "100.00")
	b.Add(Order{ID: "a", Side: Sell, Price: price, Size: mustSize(t, "5")})

	err := b.Match(Sell, price, "a", mustSize(t, "5"))
	assert.NoError(t, err)
	assert.Nil(t, b.LevelAt(Sell, price))
}

func TestProductBook_Match_MissingLevelIsIgnored(t *testing.T) {
	b := New("BTC-USD")
	// No orders seeded at all: a match against a price that pre-dates
	// the snapshot must be silently ignored, not an error.
	err := b.Match(Sell, mustPrice(t, "100.00"), "ghost", mustSize(t, "1"))
	assert.NoError(t, err)
}

func TestProductBook_Match_HeadMismatchIsInvariantViolation(t *testing.T) {
	b := New("BTC-USD")
	price := mustPrice(t, "100.00")
	b.Add(Order{ID: "a", Side: Sell, Price: price, Size: mustSize(t, "5")})

	err := b.Match(Sell, price, "not-a", mustSize(t, "1"))
	var invErr *InvariantError
	assert.ErrorAs(t, err, &invErr)
}

func TestProductBook_Change_ByExplicitPrice(t *testing.T) {
	b := New("BTC-USD")
	price := mustPrice(t, "100.00")
	b.Add(Order{ID: "a", Side: Buy, Price: price, Size: mustSize(t, "5")})

	b.Change(Buy, &price, "a", mustSize(t, "9"))
	assert.True(t, b.LevelAt(Buy, price).Head().Size.Equal(mustSize(t, "9")))

	// Unknown id is a silent no-op.
	b.Change(Buy, &price, "missing", mustSize(t, "1"))
	assert.True(t, b.LevelAt(Buy, price).Head().Size.Equal(mustSize(t, "9")))
}

func TestProductBook_Change_MarketPrice(t *testing.T) {
	b := New("BTC-USD")
	b.Add(Order{ID: "a", Side: Sell, Price: mustPrice(t, "100.00"), Size: mustSize(t, "5")})
	b.Add(Order{ID: "b", Side: Sell, Price: mustPrice(t, "101.00"), Size: mustSize(t, "5")})

	// No price given: sell-side market price is the min ask (100.00).
	b.Change(Sell, nil, "a", mustSize(t, "1"))
	assert.True(t, b.LevelAt(Sell, mustPrice(t, "100.00")).Head().Size.Equal(mustSize(t, "1")))
}

func TestProductBook_Change_EmptySideIsIgnoredNotFatal(t *testing.T) {
	b := New("BTC-USD")
	// Sell side is entirely empty; a priceless change must be a no-op,
	// not a panic or error, per spec.md §9.
	assert.NotPanics(t, func() {
		b.Change(Sell, nil, "ghost", mustSize(t, "1"))
	})
}

// Property P3: remove followed by add of the same order at the same
// price yields an equal snapshot (modulo time-priority position).
func TestProductBook_RemoveThenAdd_RoundTrips(t *testing.T) {
	b := New("BTC-USD")
	price := mustPrice(t, "100.00")
	order := Order{ID: "a", Side: Buy, Price: price, Size: mustSize(t, "5")}
	b.Add(order)

	b.Remove(Buy, price, "a")
	b.Add(order)

	lvl := b.LevelAt(Buy, price)
	assert.Equal(t, []Order{order}, lvl.Orders())
}

// Property P4: match decrementing a head by exactly its size is
// equivalent to remove of that head.
func TestProductBook_MatchFullSize_EquivalentToRemove(t *testing.T) {
	price := mustPrice(t, "100.00")

	matched := New("BTC-USD")
	matched.Add(Order{ID: "a", Side: Sell, Price: price, Size: mustSize(t, "5")})
	assert.NoError(t, matched.Match(Sell, price, "a", mustSize(t, "5")))

	removed := New("BTC-USD")
	removed.Add(Order{ID: "a", Side: Sell, Price: price, Size: mustSize(t, "5")})
	removed.Remove(Sell, price, "a")

	assert.Equal(t, removed.Snapshot().Asks, matched.Snapshot().Asks)
}

// Property P5: feeding the current-book snapshot back into a fresh
// ProductBook produces an equal ProductBook.
func TestProductBook_SnapshotRoundTrip(t *testing.T) {
	b := seedScenario1(t)
	snap := b.Snapshot()

	fresh := New("BTC-USD")
	for _, row := range snap.Bids {
		fresh.Add(Order{ID: row.ID, Side: Buy, Price: row.Price, Size: row.Size})
	}
	for _, row := range snap.Asks {
		fresh.Add(Order{ID: row.ID, Side: Sell, Price: row.Price, Size: row.Size})
	}
	fresh.SetSequence(snap.Sequence)

	assert.Equal(t, snap, fresh.Snapshot())
}

func TestProductBook_Add_PreservesInsertionOrderWithinLevel(t *testing.T) {
	b := New("BTC-USD")
	price := mustPrice(t, "2595.52")
	b.Add(Order{ID: "i2", Side: Buy, Price: price, Size: mustSize(t, "100")})
	b.Add(Order{ID: "i1", Side: Buy, Price: price, Size: mustSize(t, "2")})

	lvl := b.LevelAt(Buy, price)
	orders := lvl.Orders()
	assert.Equal(t, "i2", orders[0].ID)
	assert.Equal(t, "i1", orders[1].ID)
}
