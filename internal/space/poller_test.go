package space

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okatev/readspace/internal/api"
)

func TestPollerFetchesImmediatelyAndStopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	fetch := func(context.Context, int64) (*api.SpaceDetails, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return &api.SpaceDetails{ID: 7, TotalParticipants: calls}, nil
	}

	updates := make(chan *api.SpaceDetails, 16)
	p := NewPoller(fetch, 5*time.Millisecond, nil, func(d *api.SpaceDetails) {
		updates <- d
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, 7)

	// The first snapshot arrives without waiting a full interval.
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no immediate poll")
	}

	cancel()
	p.Wait()

	mu.Lock()
	after := calls
	mu.Unlock()
	time.Sleep(25 * time.Millisecond)
	mu.Lock()
	if calls != after {
		t.Fatalf("polls continued after cancel: %d -> %d", after, calls)
	}
	mu.Unlock()
}

func TestPollerLastResponseWins(t *testing.T) {
	var mu sync.Mutex
	n := 0
	fetch := func(context.Context, int64) (*api.SpaceDetails, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return &api.SpaceDetails{TotalParticipants: n}, nil
	}

	seen := make(chan int, 16)
	p := NewPoller(fetch, 2*time.Millisecond, nil, func(d *api.SpaceDetails) {
		seen <- d.TotalParticipants
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, 1)

	var last int
	for i := 0; i < 3; i++ {
		select {
		case last = <-seen:
		case <-time.After(time.Second):
			t.Fatal("poller stalled")
		}
	}
	if got := p.Latest().TotalParticipants; got < last {
		t.Fatalf("Latest = %d, want >= %d", got, last)
	}
}

func TestPollerKeepsGoingAfterFetchError(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	fetch := func(context.Context, int64) (*api.SpaceDetails, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return &api.SpaceDetails{ID: 1}, nil
	}

	updates := make(chan *api.SpaceDetails, 4)
	p := NewPoller(fetch, 2*time.Millisecond, nil, func(d *api.SpaceDetails) {
		updates <- d
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, 1)

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("poller did not recover from a fetch error")
	}
	if p.Latest() == nil {
		t.Fatal("Latest should hold the first successful snapshot")
	}
}
