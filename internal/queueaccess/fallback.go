package queueaccess

import (
	"context"
	"fmt"

	"storyreel/internal/config"
	"storyreel/internal/daemonctl"
	"storyreel/internal/queue"
)

// Session represents a queue access handle and its cleanup function.
type Session struct {
	Access Access

	// ViaDaemon reports whether operations go through the daemon API.
	ViaDaemon bool

	close func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open tries daemon-backed access first, then falls back to opening the
// queue database directly.
func Open(ctx context.Context, cfg *config.Config) (Session, error) {
	return OpenWithFallback(ctx,
		func() *daemonctl.Client { return daemonctl.NewFromConfig(cfg) },
		func() (*queue.Store, error) { return queue.Open(cfg) },
	)
}

// OpenWithFallback wires custom dial and store openers, mostly for tests.
func OpenWithFallback(
	ctx context.Context,
	dial func() *daemonctl.Client,
	openStore func() (*queue.Store, error),
) (Session, error) {
	if dial != nil {
		if client := dial(); client != nil && client.Healthy(ctx) {
			return Session{
				Access:    NewClientAccess(client),
				ViaDaemon: true,
			}, nil
		}
	}

	if openStore == nil {
		return Session{}, fmt.Errorf("open queue store: no store opener configured")
	}
	store, err := openStore()
	if err != nil {
		return Session{}, fmt.Errorf("open queue store: %w", err)
	}
	return Session{
		Access: NewStoreAccess(store),
		close:  store.Close,
	}, nil
}
