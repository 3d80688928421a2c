// Package feed decodes the GDAX websocket frame taxonomy into a single
// tagged Message type (spec.md §4.4) and drives the websocket transport
// itself (spec.md §4.6).
package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"gdaxbook/internal/money"
)

// Kind is the frame's `type` discriminant.
type Kind string

const (
	KindSubscriptions Kind = "subscriptions"
	KindReceived      Kind = "received"
	KindOpen          Kind = "open"
	KindDone          Kind = "done"
	KindMatch         Kind = "match"
	KindChange        Kind = "change"
	KindHeartbeat     Kind = "heartbeat"
	KindError         Kind = "error"
)

// ErrUnknownKind is fatal per spec.md §4.4: any `type` value outside the
// known taxonomy is a protocol contract break.
var ErrUnknownKind = errors.New("feed: unknown message kind")

// wireMessage is the raw JSON shape every frame may contain a subset of.
type wireMessage struct {
	Type          string  `json:"type"`
	ProductID     string  `json:"product_id"`
	Sequence      *int64  `json:"sequence"`
	OrderID       string  `json:"order_id"`
	MakerOrderID  string  `json:"maker_order_id"`
	Side          string  `json:"side"`
	Price         *string `json:"price"`
	Size          *string `json:"size"`
	RemainingSize *string `json:"remaining_size"`
	NewSize       *string `json:"new_size"`
	NewFunds      *string `json:"new_funds"`
	Reason        string  `json:"reason"`
	Message       string  `json:"message"`
	// Kept per the original_source supplement: decoded but never acted
	// on, since spec.md says heartbeats are liveness-only.
	LastTradeID int64  `json:"last_trade_id"`
	Time        string `json:"time"`
}

// Message is the single tagged variant over every frame kind the core
// understands, per spec.md's "sum-typed messages" design note — a
// generalisation of the teacher's binary BaseMessage/NewOrderMessage/
// CancelOrderMessage dispatch-by-header idiom onto this domain's JSON
// wire format.
type Message struct {
	Kind      Kind
	ProductID string
	Sequence  int64

	OrderID      string
	MakerOrderID string
	Side         Side
	Price        *money.Price
	Size         *money.Size
	NewSize      *money.Size
	HasNewFunds  bool
	Reason       string
	ErrorText    string

	LastTradeID int64
	Time        string

	// Raw holds the undecoded frame bytes, for TradeLog's `W` records.
	Raw []byte
}

// Side mirrors book.Side without importing internal/book, keeping the
// wire-decoding layer independent of the book's internal representation.
type Side int

const (
	SideUnspecified Side = iota
	Buy
	Sell
)

func parseSide(s string) Side {
	switch s {
	case "buy":
		return Buy
	case "sell":
		return Sell
	default:
		return SideUnspecified
	}
}

// Decode classifies and parses a raw JSON frame into a Message.
// Unrecognised `type` values are fatal (ErrUnknownKind) per spec.md
// §4.4.
func Decode(raw []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return Message{}, fmt.Errorf("feed: malformed frame: %w", err)
	}

	kind := Kind(w.Type)
	switch kind {
	case KindSubscriptions, KindReceived, KindOpen, KindDone, KindMatch,
		KindChange, KindHeartbeat, KindError:
		// known
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}

	m := Message{
		Kind:         kind,
		ProductID:    w.ProductID,
		OrderID:      w.OrderID,
		MakerOrderID: w.MakerOrderID,
		Side:         parseSide(w.Side),
		Reason:       w.Reason,
		ErrorText:    w.Message,
		LastTradeID:  w.LastTradeID,
		Time:         w.Time,
		Raw:          raw,
	}
	if w.Sequence != nil {
		m.Sequence = *w.Sequence
	}

	var err error
	if m.Price, err = optionalPrice(w.Price); err != nil {
		return Message{}, err
	}

	// spec.md §4.3 `add`: size may come from field `size` or
	// `remaining_size`, whichever is present.
	sizeField := w.Size
	if sizeField == nil {
		sizeField = w.RemainingSize
	}
	if m.Size, err = optionalSize(sizeField); err != nil {
		return Message{}, err
	}
	if m.NewSize, err = optionalSize(w.NewSize); err != nil {
		return Message{}, err
	}
	m.HasNewFunds = w.NewFunds != nil

	return m, nil
}

func optionalPrice(s *string) (*money.Price, error) {
	if s == nil {
		return nil, nil
	}
	p, err := money.ParsePrice(*s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func optionalSize(s *string) (*money.Size, error) {
	if s == nil {
		return nil, nil
	}
	sz, err := money.ParseSize(*s)
	if err != nil {
		return nil, err
	}
	return &sz, nil
}
