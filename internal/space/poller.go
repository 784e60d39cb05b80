package space

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/okatev/readspace/internal/api"
)

// RosterFetch retrieves the current roster snapshot for a space.
type RosterFetch func(ctx context.Context, spaceID int64) (*api.SpaceDetails, error)

// Poller refreshes the roster on a fixed interval while a session is
// connected. Each response fully replaces the previous snapshot; there is
// no merging and no out-of-order guard, the last response wins. Fetch
// failures are logged and the next tick simply tries again.
type Poller struct {
	fetch    RosterFetch
	interval time.Duration
	log      *zerolog.Logger
	onUpdate func(*api.SpaceDetails)

	mu     sync.Mutex
	latest *api.SpaceDetails
	done   chan struct{}
}

// NewPoller builds a poller. onUpdate may be nil; when set it fires after
// every replaced snapshot.
func NewPoller(fetch RosterFetch, interval time.Duration, logger *zerolog.Logger, onUpdate func(*api.SpaceDetails)) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		log:      logger,
		onUpdate: onUpdate,
	}
}

// Start begins polling until ctx is cancelled. The first fetch happens
// immediately. Once ctx is done no further requests are issued.
func (p *Poller) Start(ctx context.Context, spaceID int64) {
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)

		p.poll(ctx, spaceID)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Re-check: the tick may have raced the cancellation.
				if ctx.Err() != nil {
					return
				}
				p.poll(ctx, spaceID)
			}
		}
	}()
}

// Wait blocks until the polling goroutine has exited. No requests are in
// flight after it returns.
func (p *Poller) Wait() {
	if p.done != nil {
		<-p.done
	}
}

// Latest returns the last snapshot, or nil before the first response.
func (p *Poller) Latest() *api.SpaceDetails {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

func (p *Poller) poll(ctx context.Context, spaceID int64) {
	details, err := p.fetch(ctx, spaceID)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn().Err(err).Int64("space_id", spaceID).Msg("roster fetch failed")
		}
		return
	}

	p.mu.Lock()
	p.latest = details
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(details)
	}
}
