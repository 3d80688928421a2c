// Package snapshot fetches a level-3 REST order-book snapshot for a
// product (spec.md §4.7). This is the core's only collaborator on the
// REST trading client explicitly excluded from spec.md's scope: the
// core asks for exactly one thing — a level-3 book for a product id —
// and gets back {sequence, bids[], asks[]}.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"gdaxbook/internal/money"
)

// DefaultBaseURL is the GDAX REST endpoint (spec.md §6).
const DefaultBaseURL = "https://api.gdax.com"

// ErrTransport wraps any non-2xx response, timeout, or IO failure.
var ErrTransport = fmt.Errorf("snapshot: transport error")

// Row is a single [price, size, order_id] entry from the book endpoint.
type Row struct {
	Price money.Price
	Size  money.Size
	ID    string
}

// Snapshot is the decoded {sequence, bids[], asks[]} response.
type Snapshot struct {
	Sequence int64
	Bids     []Row
	Asks     []Row
}

// Client fetches level-3 snapshots over HTTP with a configurable
// per-request timeout (spec.md §5, default 10s).
type Client struct {
	http *resty.Client
}

// NewClient builds a Client against baseURL (DefaultBaseURL if empty)
// with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

type wireSnapshot struct {
	Sequence int64      `json:"sequence"`
	Bids     [][3]string `json:"bids"`
	Asks     [][3]string `json:"asks"`
}

// Fetch fetches a level-3 book for productID. Prices and sizes are
// parsed as exact decimals from their textual form; ids are opaque
// strings at level 3.
func (c *Client) Fetch(ctx context.Context, productID string) (Snapshot, error) {
	var wire wireSnapshot
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("level", "3").
		SetResult(&wire).
		Get(fmt.Sprintf("/products/%s/book", productID))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.IsError() {
		return Snapshot{}, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode())
	}

	snap := Snapshot{Sequence: wire.Sequence}
	for _, row := range wire.Bids {
		r, err := decodeRow(row)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Bids = append(snap.Bids, r)
	}
	for _, row := range wire.Asks {
		r, err := decodeRow(row)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Asks = append(snap.Asks, r)
	}
	return snap, nil
}

func decodeRow(row [3]string) (Row, error) {
	price, err := money.ParsePrice(row[0])
	if err != nil {
		return Row{}, err
	}
	size, err := money.ParseSize(row[1])
	if err != nil {
		return Row{}, err
	}
	return Row{Price: price, Size: size, ID: row[2]}, nil
}
