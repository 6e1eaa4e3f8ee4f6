package meeting

import (
	"context"
	"fmt"
	"sync"

	"visitbook/internal/domain"
)

// Watch is a live feed of full meeting-list snapshots, newest-first, in the
// order the backend commits them. Consumers apply no merge logic: each
// snapshot replaces the previous one, last write observed wins.
type Watch struct {
	snapshots <-chan []domain.Meeting
	errs      <-chan error
	cancel    context.CancelFunc
	once      sync.Once
}

// Snapshots returns the channel of full-list snapshots. The channel is
// closed when the watch ends.
func (w *Watch) Snapshots() <-chan []domain.Meeting {
	return w.snapshots
}

// Errors returns the channel of non-fatal feed errors.
func (w *Watch) Errors() <-chan error {
	return w.errs
}

// Close stops the watch and cleans up resources. Implements io.Closer.
func (w *Watch) Close() error {
	w.once.Do(w.cancel)
	return nil
}

// Watch subscribes to meeting change events and delivers the current full
// snapshot immediately, then a fresh one after every observed change.
// Snapshots are delivered on a buffered channel; a slow consumer may skip
// intermediate states but always converges on the latest one. The caller
// must Close the watch; cancelling ctx also stops it.
func (r *Repository) Watch(ctx context.Context) (*Watch, error) {
	pubsub := r.rdb.Subscribe(ctx, eventsChannel)
	// Force the subscription to be established before the initial snapshot
	// so no commit between the two is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to meeting events: %w", err)
	}

	snapshots := make(chan []domain.Meeting, 10)
	errs := make(chan error, 10)
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(snapshots)
		defer close(errs)
		defer func() { _ = pubsub.Close() }()

		deliver := func() {
			list, err := r.List(watchCtx)
			if err != nil {
				select {
				case errs <- err:
				case <-watchCtx.Done():
				}
				return
			}
			select {
			case snapshots <- list:
			case <-watchCtx.Done():
			}
		}

		deliver()

		ch := pubsub.Channel()
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				// The payload identifies the change, but the feed contract is
				// full snapshots, so re-list instead of patching.
				deliver()
			}
		}
	}()

	return &Watch{snapshots: snapshots, errs: errs, cancel: cancel}, nil
}
