package engine

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"gdaxbook/internal/book"
	"gdaxbook/internal/feed"
	"gdaxbook/internal/snapshot"
)

// dispatch classifies one decoded feed message against the sequence
// already applied to its product's book and, if in order, applies it.
// The returned error is non-nil only for conditions that must tear the
// session down and trigger a resync (spec.md §5): a sequence gap, or a
// propagated fatal error. Stale/duplicate messages and informational
// frames resolve to OutcomeNone with a nil error and never reach the
// caller as a failure.
func (e *Engine) dispatch(msg feed.Message) (Tick, error) {
	switch msg.Kind {
	case feed.KindError:
		err := fmt.Errorf("%w: %s", ErrFeedError, msg.ErrorText)
		return Tick{Outcome: OutcomeError, Err: err}, err
	case feed.KindSubscriptions:
		log.Info().Msg("subscriptions acknowledged")
		return Tick{Outcome: OutcomeNone, Note: "subscriptions ack"}, nil
	case feed.KindHeartbeat:
		return Tick{Outcome: OutcomeNone, ProductID: msg.ProductID, Note: "heartbeat"}, nil
	}

	pb := e.books[msg.ProductID]
	if pb == nil {
		return Tick{Outcome: OutcomeNone, ProductID: msg.ProductID, Note: "unsubscribed product, ignored"}, nil
	}

	seq, _ := pb.Sequence()
	switch {
	case msg.Sequence <= seq:
		return Tick{Outcome: OutcomeNone, ProductID: msg.ProductID, Note: "stale message, ignored"}, nil
	case msg.Sequence > seq+1:
		if e.metrics != nil {
			e.metrics.SequenceGaps.WithLabelValues(msg.ProductID).Inc()
		}
		gapErr := fmt.Errorf("sequence gap on %s: have %d, got %d", msg.ProductID, seq, msg.Sequence)
		return Tick{Outcome: OutcomeNone, ProductID: msg.ProductID, Note: gapErr.Error()}, gapErr
	}

	if err := e.apply(pb, msg); err != nil {
		return Tick{Outcome: OutcomeError, ProductID: msg.ProductID, Message: msg, Err: err}, err
	}
	pb.SetSequence(msg.Sequence)
	if e.metrics != nil {
		e.metrics.MessagesApplied.WithLabelValues(msg.ProductID).Inc()
	}
	return Tick{Outcome: OutcomeApplied, ProductID: msg.ProductID, Message: msg}, nil
}

// apply mutates pb per msg's kind. Callers must have already checked
// msg.Sequence == the book's next expected sequence.
func (e *Engine) apply(pb *book.ProductBook, msg feed.Message) error {
	switch msg.Kind {
	case feed.KindReceived:
		// Acknowledgement only; the order isn't resting yet (spec.md
		// §4.3 "received"). Nothing to mutate, but its sequence still
		// advances the book's baseline.
		return nil

	case feed.KindOpen:
		if msg.Price == nil || msg.Size == nil {
			return fmt.Errorf("%w: open missing price or size", ErrUnknownMessageKind)
		}
		pb.Add(book.Order{ID: msg.OrderID, Side: bookSide(msg.Side), Price: *msg.Price, Size: *msg.Size})
		return nil

	case feed.KindDone:
		if msg.Price == nil {
			// Scenario 5 of spec.md §8: a market order that never
			// rested is "done" without ever having had a price — there
			// is no level to remove it from.
			return nil
		}
		pb.Remove(bookSide(msg.Side), *msg.Price, msg.OrderID)
		return nil

	case feed.KindMatch:
		if msg.Price == nil || msg.Size == nil {
			return fmt.Errorf("%w: match missing price or size", ErrUnknownMessageKind)
		}
		if err := pb.Match(bookSide(msg.Side), *msg.Price, msg.MakerOrderID, *msg.Size); err != nil {
			return err
		}
		return nil

	case feed.KindChange:
		if msg.HasNewFunds || msg.NewSize == nil {
			// spec.md §9 Open Questions: a `change` carrying new_funds,
			// or missing new_size outright, is out of scope.
			return ErrNotImplemented
		}
		pb.Change(bookSide(msg.Side), msg.Price, msg.OrderID, *msg.NewSize)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownMessageKind, msg.Kind)
	}
}

func bookSide(s feed.Side) book.Side {
	if s == feed.Buy {
		return book.Buy
	}
	return book.Sell
}

// marshalSnapshot renders a fetched snapshot for the trade log, in the
// same [price, size, id] row shape the REST endpoint itself uses.
func marshalSnapshot(snap snapshot.Snapshot) ([]byte, error) {
	type row = [3]string
	wire := struct {
		Sequence int64 `json:"sequence"`
		Bids     []row `json:"bids"`
		Asks     []row `json:"asks"`
	}{Sequence: snap.Sequence}
	for _, r := range snap.Bids {
		wire.Bids = append(wire.Bids, row{r.Price.String(), r.Size.String(), r.ID})
	}
	for _, r := range snap.Asks {
		wire.Asks = append(wire.Asks, row{r.Price.String(), r.Size.String(), r.ID})
	}
	return json.Marshal(wire)
}
