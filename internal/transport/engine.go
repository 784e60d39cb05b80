// Package transport abstracts the real-time audio SDK behind a small
// interface. Media capture, encoding, and delivery belong to the SDK;
// this package only exposes the lifecycle the space controller needs.
package transport

import (
	"context"
	"errors"
)

// ErrIdentityConflict means the channel rejected the join because this
// participant identity is already present.
var ErrIdentityConflict = errors.New("identity already in channel")

// ErrUnavailable means no transport backend is configured.
var ErrUnavailable = errors.New("transport unavailable")

// Grant is the short-lived credential required to join a channel.
type Grant struct {
	Channel  string
	Token    string
	Identity string
}

// Volume is one participant's reported audio level on a 0-100+ scale.
type Volume struct {
	ParticipantID string
	Level         int
}

// Events receives transport callbacks. Implementations must tolerate
// calls after leave until DetachEvents has returned.
type Events interface {
	// OnRemoteTrack fires when a remote participant's audio stream has
	// been subscribed and playback has started.
	OnRemoteTrack(participantID string)
	// OnVolumes delivers a periodic batch of speaker volume levels.
	// Only currently-audible participants appear in a batch.
	OnVolumes(volumes []Volume)
}

// Track is the local microphone publication.
type Track interface {
	SetEnabled(enabled bool)
	Enabled() bool
	Stop()
}

// Session is one active channel membership.
type Session interface {
	// PublishMicrophone publishes the local audio track. The track is
	// returned enabled; callers decide the initial mute state.
	PublishMicrophone(ctx context.Context) (Track, error)
	// DetachEvents stops event delivery. Safe to call more than once.
	DetachEvents()
	// Leave disconnects from the channel. Best-effort; safe to call
	// after a partial join.
	Leave(ctx context.Context) error
}

// Engine joins channels on a media backend.
type Engine interface {
	Join(ctx context.Context, grant Grant, events Events) (Session, error)
}
