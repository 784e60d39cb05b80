// Package space owns the lifecycle of one live audio room membership:
// join, publish, mute, presence polling, speaking flags, and teardown.
package space

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/okatev/readspace/internal/api"
	"github.com/okatev/readspace/internal/session"
	"github.com/okatev/readspace/internal/transport"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateJoining
	StatePublishing
	StateConnected
	StateLeaving
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateJoining:
		return "joining"
	case StatePublishing:
		return "publishing"
	case StateConnected:
		return "connected"
	case StateLeaving:
		return "leaving"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureCause classifies why a join attempt failed.
type FailureCause int

const (
	CauseNone FailureCause = iota
	// CauseNotAuthenticated means no session token was available.
	CauseNotAuthenticated
	// CauseTransportUnavailable means no transport backend is configured.
	CauseTransportUnavailable
	// CauseIdentityConflict means this identity is already in the channel;
	// the user should retry after a short delay.
	CauseIdentityConflict
	// CauseJoinFailed covers every other signaling/transport failure.
	CauseJoinFailed
)

// Failure carries the cause and a human-readable message for the UI.
type Failure struct {
	Cause   FailureCause
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Join admission errors.
var (
	ErrJoinInProgress = errors.New("a join is already in progress")
	ErrAlreadyJoined  = errors.New("already joined to a space")
)

// Signal is the REST signaling surface the controller needs.
// *api.Client satisfies it.
type Signal interface {
	JoinSpace(ctx context.Context, spaceID int64) (*api.JoinGrant, error)
	SpaceDetails(ctx context.Context, spaceID int64) (*api.SpaceDetails, error)
}

// TokenReader reports whether a session token is present.
// *session.Holder satisfies it.
type TokenReader interface {
	Token() (string, error)
}

// Controller drives the join -> publish -> connected -> leave sequence for
// at most one space at a time. All methods are safe for concurrent use.
type Controller struct {
	engine       transport.Engine
	signal       Signal
	tokens       TokenReader
	log          *zerolog.Logger
	pollInterval time.Duration

	// OnRoster, when set, fires after every replaced roster snapshot.
	// Set it before Join.
	OnRoster func(Roster, map[string]bool)

	mu         sync.Mutex
	state      State
	failure    *Failure
	muted      bool
	spaceID    int64
	sess       transport.Session
	track      transport.Track
	poller     *Poller
	pollCancel context.CancelFunc

	speaking *SpeakingTracker
}

// NewController wires a controller. engine may be nil, in which case every
// join fails fast with a transport-unavailable cause.
func NewController(engine transport.Engine, signal Signal, tokens TokenReader, logger *zerolog.Logger, pollInterval time.Duration) *Controller {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Controller{
		engine:       engine,
		signal:       signal,
		tokens:       tokens,
		log:          logger,
		pollInterval: pollInterval,
		speaking:     NewSpeakingTracker(),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Failure returns the last join failure, or nil.
func (c *Controller) Failure() *Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Muted reports the local mute flag.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Roster returns the display roster built from the latest snapshot plus
// the current speaking flags. Before the first poll response the roster
// is empty.
func (c *Controller) Roster() (Roster, map[string]bool) {
	c.mu.Lock()
	poller := c.poller
	c.mu.Unlock()

	var details *api.SpaceDetails
	if poller != nil {
		details = poller.Latest()
	}
	return BuildRoster(details), c.speaking.Snapshot()
}

// Join runs the full join sequence for spaceID. Only one join may be in
// flight; concurrent calls are rejected until the controller returns to
// idle or failed. On success the controller is connected, muted, and
// polling presence.
func (c *Controller) Join(ctx context.Context, spaceID int64) error {
	c.mu.Lock()
	switch c.state {
	case StateIdle, StateFailed:
		// proceed
	case StateConnected, StateLeaving:
		c.mu.Unlock()
		return ErrAlreadyJoined
	default:
		c.mu.Unlock()
		return ErrJoinInProgress
	}
	c.state = StateInitializing
	c.failure = nil
	c.spaceID = spaceID
	c.mu.Unlock()

	if c.engine == nil {
		return c.fail(CauseTransportUnavailable, "transport unavailable")
	}
	if _, err := c.tokens.Token(); err != nil {
		return c.fail(CauseNotAuthenticated, "not authenticated")
	}

	grant, err := c.signal.JoinSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, api.ErrIdentityConflict) {
			return c.fail(CauseIdentityConflict, "this identity is already in the channel; try again in a few moments")
		}
		return c.fail(CauseJoinFailed, fmt.Sprintf("could not join the audio channel: %v", err))
	}

	c.setState(StateJoining)
	sess, err := c.engine.Join(ctx, transport.Grant{
		Channel:  grant.Channel,
		Token:    grant.Token,
		Identity: grant.RTCUID,
	}, &controllerEvents{c: c})
	if err != nil {
		if errors.Is(err, transport.ErrIdentityConflict) {
			return c.fail(CauseIdentityConflict, "this identity is already in the channel; try again in a few moments")
		}
		return c.fail(CauseJoinFailed, fmt.Sprintf("could not join the audio channel: %v", err))
	}

	c.setState(StatePublishing)
	track, err := sess.PublishMicrophone(ctx)
	if err != nil {
		// Roll the partial join back; no local handle may survive.
		sess.DetachEvents()
		if leaveErr := sess.Leave(ctx); leaveErr != nil {
			c.log.Warn().Err(leaveErr).Msg("leave after failed publish")
		}
		return c.fail(CauseJoinFailed, fmt.Sprintf("could not publish microphone: %v", err))
	}

	// Joiners start muted regardless of any prior state.
	track.SetEnabled(false)

	pollCtx, pollCancel := context.WithCancel(context.Background())
	poller := NewPoller(c.signal.SpaceDetails, c.pollInterval, c.log, c.notifyRoster)

	c.mu.Lock()
	c.sess = sess
	c.track = track
	c.muted = true
	c.poller = poller
	c.pollCancel = pollCancel
	c.state = StateConnected
	c.mu.Unlock()

	poller.Start(pollCtx, spaceID)
	c.log.Info().Int64("space_id", spaceID).Str("channel", grant.Channel).Msg("connected to space")
	return nil
}

// ToggleMute flips the local track's enabled flag. Synchronous, with no
// failure path; without a published track it is a no-op.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track == nil {
		return
	}
	c.muted = !c.muted
	c.track.SetEnabled(!c.muted)
}

// Leave tears the session down: stop the local track, detach transport
// events, leave the channel. Steps run in that order and every step runs
// even if an earlier one fails; failures are logged only. Leave always
// ends in the idle state and is idempotent — when already idle it makes
// no transport calls.
func (c *Controller) Leave(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	track := c.track
	cancel := c.pollCancel
	poller := c.poller
	c.sess = nil
	c.track = nil
	c.pollCancel = nil
	c.poller = nil
	c.state = StateLeaving
	c.mu.Unlock()

	// Presence polling stops before any transport teardown.
	if cancel != nil {
		cancel()
	}
	if poller != nil {
		poller.Wait()
	}

	if track != nil {
		track.Stop()
	}
	if sess != nil {
		sess.DetachEvents()
		if err := sess.Leave(ctx); err != nil {
			c.log.Warn().Err(err).Msg("transport leave failed")
		}
	}

	c.speaking.Reset()

	c.mu.Lock()
	c.muted = false
	c.failure = nil
	c.state = StateIdle
	c.mu.Unlock()
	c.log.Info().Msg("left space")
}

// Close is the teardown path for the owning screen/command.
func (c *Controller) Close() {
	c.Leave(context.Background())
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// fail records the failure and stops presence polling, if any.
func (c *Controller) fail(cause FailureCause, msg string) error {
	f := &Failure{Cause: cause, Message: msg}

	c.mu.Lock()
	cancel := c.pollCancel
	c.pollCancel = nil
	c.failure = f
	c.state = StateFailed
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.log.Warn().Str("cause", msg).Msg("space join failed")
	return f
}

func (c *Controller) notifyRoster(details *api.SpaceDetails) {
	if c.OnRoster != nil {
		c.OnRoster(BuildRoster(details), c.speaking.Snapshot())
	}
}

// controllerEvents adapts transport callbacks onto the controller.
type controllerEvents struct {
	c *Controller
}

func (e *controllerEvents) OnRemoteTrack(participantID string) {
	e.c.log.Debug().Str("participant", participantID).Msg("remote audio playing")
}

func (e *controllerEvents) OnVolumes(volumes []transport.Volume) {
	e.c.speaking.Merge(volumes)
}

var _ TokenReader = (*session.Holder)(nil)
var _ Signal = (*api.Client)(nil)
