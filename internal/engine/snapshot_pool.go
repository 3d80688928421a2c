package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"gdaxbook/internal/snapshot"
)

// snapshotResult pairs a fetched snapshot with the product it was
// fetched for, or the error that occurred.
type snapshotResult struct {
	productID string
	snap      snapshot.Snapshot
	err       error
}

// SnapshotFetcher is the collaborator boundary to the REST snapshot
// client (spec.md §4.7) — mirrors the teacher's `Engine` interface in
// internal/net/server.go, which let the TCP server depend on the
// matching engine only through the methods it actually calls.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, productID string) (snapshot.Snapshot, error)
}

// fetchSnapshotsConcurrently fans out one fetch per product and fans
// the results back in, adapted from the teacher's tomb-supervised
// WorkerPool (internal/worker.go): there, N workers pulled inbound TCP
// connections off a shared channel; here, N workers each own exactly
// one outbound REST fetch, supervised by the same *tomb.Tomb idiom so a
// single failing fetch can cancel its siblings via the tomb's dying
// context (spec.md §4.5: "snapshot fetches for distinct products run
// concurrently").
func fetchSnapshotsConcurrently(ctx context.Context, fetcher SnapshotFetcher, productIDs []string) (map[string]snapshot.Snapshot, error) {
	t, tctx := tomb.WithContext(ctx)
	results := make(chan snapshotResult, len(productIDs))

	for _, productID := range productIDs {
		productID := productID
		t.Go(func() error {
			log.Debug().Str("product_id", productID).Msg("fetching snapshot")
			snap, err := fetcher.Fetch(tctx, productID)
			results <- snapshotResult{productID: productID, snap: snap, err: err}
			return err
		})
	}

	// Wait does not return until every t.Go goroutine exits; the first
	// non-nil error cancels tctx for the rest, matching the teacher's
	// "any error returned from here is fatal" worker contract.
	waitErr := t.Wait()

	close(results)
	books := make(map[string]snapshot.Snapshot, len(productIDs))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		books[r.productID] = r.snap
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if waitErr != nil {
		return nil, waitErr
	}
	return books, nil
}
