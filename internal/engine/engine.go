// Package engine implements the OrderBookEngine orchestrator: the
// component that drives FeedClient and SnapshotFetcher to keep one
// book.ProductBook per subscribed product consistent with the
// exchange, per spec.md §4.5.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"gdaxbook/internal/book"
	"gdaxbook/internal/feed"
	"gdaxbook/internal/metrics"
	"gdaxbook/internal/sign"
	"gdaxbook/internal/snapshot"
	"gdaxbook/internal/tradelog"
)

// FeedClient is the websocket transport boundary (spec.md §4.6); the
// production implementation is *feed.Client, substituted with a fake in
// tests the way the teacher's Engine interface let internal/net/server.go
// be tested without a real matching engine.
type FeedClient interface {
	Connect(ctx context.Context) error
	SendJSON(obj any) error
	Recv() (feed.Message, error)
	Close() error
	SessionID() string
}

// Config configures one Engine run, mirroring spec.md §6's enumerated
// fields.
type Config struct {
	ProductIDs   []string
	UseHeartbeat bool

	APIKey     string
	APISecret  string
	Passphrase string
}

// Authenticated reports whether every credential is present.
func (c Config) Authenticated() bool {
	return c.APIKey != "" && c.APISecret != "" && c.Passphrase != ""
}

// Outcome classifies one value delivered on the Engine's Tick channel,
// the tri-state "Message, None, exception" consumer model of spec.md §7.
type Outcome int

const (
	// OutcomeApplied reports a successfully applied feed message.
	OutcomeApplied Outcome = iota
	// OutcomeNone reports a recovered, non-fatal event with nothing for
	// the consumer to act on beyond observing it happened (a resync, a
	// stale/duplicate message ignored, a reconnect).
	OutcomeNone
	// OutcomeError reports a fatal error; the Tick channel is closed
	// immediately after.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNone:
		return "none"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Tick is one value delivered on the Engine's Run channel.
type Tick struct {
	Outcome   Outcome
	ProductID string
	Message   feed.Message
	Note      string
	Err       error
}

// Engine owns one book.ProductBook per subscribed product and keeps
// each one current by applying the feed in sequence, per spec.md §5.
type Engine struct {
	cfg     Config
	feedCli FeedClient
	snap    SnapshotFetcher
	metrics *metrics.Registry
	tlog    *tradelog.Log

	books map[string]*book.ProductBook
}

// New constructs an Engine. metrics and tlog may be nil; a nil tlog
// disables trade logging, per tradelog.WriteFrameIfEnabled/
// WriteSnapshotIfEnabled.
func New(cfg Config, feedCli FeedClient, snap SnapshotFetcher, reg *metrics.Registry, tlog *tradelog.Log) *Engine {
	return &Engine{
		cfg:     cfg,
		feedCli: feedCli,
		snap:    snap,
		metrics: reg,
		tlog:    tlog,
		books:   make(map[string]*book.ProductBook, len(cfg.ProductIDs)),
	}
}

// Book returns the current book for productID, or nil if unknown.
func (e *Engine) Book(productID string) *book.ProductBook {
	return e.books[productID]
}

// Run drives the engine until ctx is cancelled or a fatal error occurs,
// emitting one Tick per applied message (and per recovered/fatal
// event) on the returned channel. The channel is closed when Run
// returns.
//
// The lifecycle, per spec.md §4.5: connect, subscribe (signed if
// credentials are configured), optionally enable heartbeats, fetch a
// snapshot per product (concurrently), seed every book, then apply the
// feed message by message. A sequence gap or a disconnect tears
// everything down and restarts from connect, backed off via
// cenkalti/backoff so a flapping feed doesn't spin hot.
func (e *Engine) Run(ctx context.Context) <-chan Tick {
	out := make(chan Tick, 64)
	go func() {
		defer close(out)
		e.runLoop(ctx, out)
	}()
	return out
}

func (e *Engine) runLoop(ctx context.Context, out chan<- Tick) {
	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	for {
		if ctx.Err() != nil {
			return
		}

		err := e.runOnce(ctx, out)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		if isFatal(err) {
			log.Error().Err(err).Msg("engine stopping")
			out <- Tick{Outcome: OutcomeError, Err: err}
			return
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			out <- Tick{Outcome: OutcomeError, Err: fmt.Errorf("engine: giving up after repeated failures: %w", err)}
			return
		}
		log.Warn().Err(err).Dur("backoff", wait).Msg("engine session ended, resyncing")
		out <- Tick{Outcome: OutcomeNone, Note: "resync: " + err.Error()}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runOnce runs exactly one connect→subscribe→snapshot→seed→apply
// session, returning nil only if ctx was cancelled mid-session (a
// clean shutdown, not a failure warranting resync).
func (e *Engine) runOnce(ctx context.Context, out chan<- Tick) error {
	if err := e.feedCli.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer e.feedCli.Close()

	// Recv blocks on the transport, which doesn't itself watch ctx;
	// closing the connection on cancellation is what unblocks it
	// promptly instead of waiting for the next frame to arrive.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.feedCli.Close()
		case <-done:
		}
	}()

	if err := e.subscribe(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if e.cfg.UseHeartbeat {
		if err := e.feedCli.SendJSON(feed.HeartbeatFrame{Type: "heartbeat", On: true}); err != nil {
			return fmt.Errorf("enable heartbeat: %w", err)
		}
	}

	books, err := fetchSnapshotsConcurrently(ctx, e.snap, e.cfg.ProductIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	reconnect := len(e.books) > 0
	for _, productID := range e.cfg.ProductIDs {
		pb := book.New(productID)
		seedBook(pb, books[productID])
		e.books[productID] = pb

		if snapJSON, mErr := marshalSnapshot(books[productID]); mErr == nil {
			_ = tradelog.WriteSnapshotIfEnabled(e.tlog, productID, snapJSON)
		}
		out <- Tick{Outcome: OutcomeNone, ProductID: productID, Note: "seeded"}
	}

	if e.metrics != nil && reconnect {
		e.metrics.Reconnects.Inc()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := e.feedCli.Recv()
		if err != nil {
			if errors.Is(err, feed.ErrUnknownKind) {
				return fmt.Errorf("%w: %v", ErrUnknownMessageKind, err)
			}
			return fmt.Errorf("recv: %w", err)
		}
		_ = tradelog.WriteFrameIfEnabled(e.tlog, msg.Raw)

		tick, resyncErr := e.dispatch(msg)
		if resyncErr != nil {
			// runLoop reports the session-ending event itself (either a
			// final OutcomeError tick, or an OutcomeNone resync note);
			// don't double-report it here.
			return resyncErr
		}
		out <- tick
	}
}

func (e *Engine) subscribe() error {
	frame := feed.SubscribeFrame{Type: "subscribe", ProductIDs: e.cfg.ProductIDs}
	if e.cfg.Authenticated() {
		ts := fmt.Sprintf("%d", time.Now().Unix())
		sig, err := sign.WebsocketSubscribeSignature(ts, e.cfg.APISecret)
		if err != nil {
			return err
		}
		frame.Timestamp = ts
		frame.Signature = sig
		frame.Key = e.cfg.APIKey
		frame.Passphrase = e.cfg.Passphrase
	}
	return e.feedCli.SendJSON(frame)
}

func seedBook(pb *book.ProductBook, snap snapshot.Snapshot) {
	for _, r := range snap.Bids {
		pb.Add(book.Order{ID: r.ID, Side: book.Buy, Price: r.Price, Size: r.Size})
	}
	for _, r := range snap.Asks {
		pb.Add(book.Order{ID: r.ID, Side: book.Sell, Price: r.Price, Size: r.Size})
	}
	pb.SetSequence(snap.Sequence)
}
