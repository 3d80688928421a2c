package engine

import (
	"errors"

	"gdaxbook/internal/book"
)

// Error taxonomy, per spec.md §7. SequenceGap, Stale, and Disconnected
// are recovered internally by resyncing the affected session and never
// stop the engine; FeedError, UnknownMessageKind, TransportError,
// NotImplemented, and invariant violations are fatal and close the
// Tick channel.
var (
	// ErrFeedError wraps a server-reported `type:"error"` frame.
	ErrFeedError = errors.New("engine: feed error")
	// ErrUnknownMessageKind wraps feed.ErrUnknownKind.
	ErrUnknownMessageKind = errors.New("engine: unknown message kind")
	// ErrTransport wraps a snapshot-fetch failure.
	ErrTransport = errors.New("engine: transport error")
	// ErrNotImplemented wraps a `change` with new_funds or without
	// new_size (spec.md §9 Open Questions).
	ErrNotImplemented = errors.New("engine: not implemented")
)

// isFatal reports whether err belongs to the taxonomy's fatal set, as
// opposed to a recoverable disconnect or sequence gap that the run
// loop resyncs from on its own.
func isFatal(err error) bool {
	if errors.Is(err, ErrFeedError) || errors.Is(err, ErrUnknownMessageKind) ||
		errors.Is(err, ErrNotImplemented) || errors.Is(err, ErrTransport) {
		return true
	}
	var invErr *book.InvariantError
	return errors.As(err, &invErr)
}
