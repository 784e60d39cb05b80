package space

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okatev/readspace/internal/api"
	"github.com/okatev/readspace/internal/transport"
)

type fakeTrack struct {
	mu      sync.Mutex
	enabled bool
	sets    []bool
	stops   int
	events  *eventLog
}

func (t *fakeTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.sets = append(t.sets, enabled)
}

func (t *fakeTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	t.events.add("track.stop")
}

type fakeSession struct {
	mu         sync.Mutex
	track      *fakeTrack
	publishErr error
	leaveErr   error
	detaches   int
	leaves     int
	events     *eventLog
}

func (s *fakeSession) PublishMicrophone(context.Context) (transport.Track, error) {
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	return s.track, nil
}

func (s *fakeSession) DetachEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detaches++
	s.events.add("session.detach")
}

func (s *fakeSession) Leave(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves++
	s.events.add("session.leave")
	return s.leaveErr
}

type fakeEngine struct {
	mu      sync.Mutex
	sess    *fakeSession
	joinErr error
	joins   int
	events  transport.Events
}

func (e *fakeEngine) Join(_ context.Context, _ transport.Grant, events transport.Events) (transport.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.joins++
	e.events = events
	if e.joinErr != nil {
		return nil, e.joinErr
	}
	return e.sess, nil
}

type fakeSignal struct {
	mu          sync.Mutex
	grant       *api.JoinGrant
	joinErr     error
	joinStarted chan struct{}
	joinRelease chan struct{}
	details     *api.SpaceDetails
	detailCalls int
}

func (s *fakeSignal) JoinSpace(context.Context, int64) (*api.JoinGrant, error) {
	if s.joinStarted != nil {
		close(s.joinStarted)
	}
	if s.joinRelease != nil {
		<-s.joinRelease
	}
	if s.joinErr != nil {
		return nil, s.joinErr
	}
	return s.grant, nil
}

func (s *fakeSignal) SpaceDetails(context.Context, int64) (*api.SpaceDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailCalls++
	return s.details, nil
}

func (s *fakeSignal) detailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailCalls
}

type fakeTokens struct {
	err error
}

func (f fakeTokens) Token() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token", nil
}

// eventLog records transport calls in order across fakes.
type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func newFixture() (*Controller, *fakeEngine, *fakeSession, *fakeTrack, *fakeSignal) {
	events := &eventLog{}
	track := &fakeTrack{enabled: true, events: events}
	sess := &fakeSession{track: track, events: events}
	engine := &fakeEngine{sess: sess}
	signal := &fakeSignal{
		grant:   &api.JoinGrant{Token: "rtc-token", Channel: "space-1", RTCUID: "user-1"},
		details: &api.SpaceDetails{ID: 1, Title: "morning reading"},
	}
	ctrl := NewController(engine, signal, fakeTokens{}, nil, 5*time.Millisecond)
	return ctrl, engine, sess, track, signal
}

func TestJoinConnectsMuted(t *testing.T) {
	ctrl, engine, _, track, _ := newFixture()
	defer ctrl.Close()

	if err := ctrl.Join(context.Background(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := ctrl.State(); got != StateConnected {
		t.Fatalf("state = %v, want connected", got)
	}
	if !ctrl.Muted() {
		t.Fatal("controller should start muted")
	}
	if track.Enabled() {
		t.Fatal("track should start disabled")
	}
	if engine.joins != 1 {
		t.Fatalf("engine joins = %d, want 1", engine.joins)
	}
}

func TestJoinRejectedWhileInFlight(t *testing.T) {
	ctrl, _, _, _, signal := newFixture()
	defer ctrl.Close()

	signal.joinStarted = make(chan struct{})
	signal.joinRelease = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- ctrl.Join(context.Background(), 1) }()
	<-signal.joinStarted

	if err := ctrl.Join(context.Background(), 1); !errors.Is(err, ErrJoinInProgress) {
		t.Fatalf("concurrent join = %v, want ErrJoinInProgress", err)
	}

	close(signal.joinRelease)
	if err := <-done; err != nil {
		t.Fatalf("first join: %v", err)
	}

	if err := ctrl.Join(context.Background(), 1); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("join while connected = %v, want ErrAlreadyJoined", err)
	}
}

func TestJoinFailsWithoutTransport(t *testing.T) {
	signal := &fakeSignal{}
	ctrl := NewController(nil, signal, fakeTokens{}, nil, time.Second)

	err := ctrl.Join(context.Background(), 1)
	var f *Failure
	if !errors.As(err, &f) || f.Cause != CauseTransportUnavailable {
		t.Fatalf("join = %v, want transport-unavailable failure", err)
	}
	if ctrl.State() != StateFailed {
		t.Fatalf("state = %v, want failed", ctrl.State())
	}
}

func TestJoinFailsWithoutToken(t *testing.T) {
	ctrl, _, _, _, _ := newFixture()
	ctrl.tokens = fakeTokens{err: errors.New("no token")}

	err := ctrl.Join(context.Background(), 1)
	var f *Failure
	if !errors.As(err, &f) || f.Cause != CauseNotAuthenticated {
		t.Fatalf("join = %v, want not-authenticated failure", err)
	}
}

func TestJoinIdentityConflictIsDistinct(t *testing.T) {
	tests := []struct {
		name  string
		wire  func(*fakeEngine, *fakeSignal)
		cause FailureCause
	}{
		{
			name:  "signaling conflict",
			wire:  func(_ *fakeEngine, s *fakeSignal) { s.joinErr = api.ErrIdentityConflict },
			cause: CauseIdentityConflict,
		},
		{
			name:  "transport conflict",
			wire:  func(e *fakeEngine, _ *fakeSignal) { e.joinErr = transport.ErrIdentityConflict },
			cause: CauseIdentityConflict,
		},
		{
			name:  "generic failure",
			wire:  func(e *fakeEngine, _ *fakeSignal) { e.joinErr = errors.New("dial timeout") },
			cause: CauseJoinFailed,
		},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, engine, _, _, signal := newFixture()
			tt.wire(engine, signal)

			err := ctrl.Join(context.Background(), 1)
			var f *Failure
			if !errors.As(err, &f) || f.Cause != tt.cause {
				t.Fatalf("join = %v, want cause %d", err, tt.cause)
			}
			messages = append(messages, f.Message)
		})
	}

	// The conflict message must differ from the generic failure message.
	if messages[0] == messages[2] {
		t.Fatal("identity conflict should not reuse the generic failure message")
	}
}

func TestPublishFailureRollsBack(t *testing.T) {
	ctrl, _, sess, _, _ := newFixture()
	sess.publishErr = errors.New("no audio device")

	err := ctrl.Join(context.Background(), 1)
	var f *Failure
	if !errors.As(err, &f) || f.Cause != CauseJoinFailed {
		t.Fatalf("join = %v, want join-failed failure", err)
	}
	if sess.detaches != 1 || sess.leaves != 1 {
		t.Fatalf("detaches=%d leaves=%d, want 1/1", sess.detaches, sess.leaves)
	}

	// No local handle survives: toggling must be a no-op.
	ctrl.ToggleMute()
	if ctrl.Muted() {
		t.Fatal("mute toggled without a live track")
	}
}

func TestToggleMuteRoundTrip(t *testing.T) {
	ctrl, _, _, track, _ := newFixture()
	defer ctrl.Close()

	if err := ctrl.Join(context.Background(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}

	ctrl.ToggleMute()
	if ctrl.Muted() || !track.Enabled() {
		t.Fatal("first toggle should unmute")
	}
	ctrl.ToggleMute()
	if !ctrl.Muted() || track.Enabled() {
		t.Fatal("second toggle should mute again")
	}
}

func TestLeaveIsIdempotentAndOrdered(t *testing.T) {
	ctrl, _, sess, track, _ := newFixture()

	if err := ctrl.Join(context.Background(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	ctrl.Leave(context.Background())
	ctrl.Leave(context.Background())

	if track.stops != 1 || sess.detaches != 1 || sess.leaves != 1 {
		t.Fatalf("stops=%d detaches=%d leaves=%d, want 1/1/1",
			track.stops, sess.detaches, sess.leaves)
	}
	want := []string{"track.stop", "session.detach", "session.leave"}
	got := sess.events.list()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if ctrl.State() != StateIdle {
		t.Fatalf("state = %v, want idle", ctrl.State())
	}
}

func TestLeaveCompletesDespiteTransportError(t *testing.T) {
	ctrl, _, sess, _, _ := newFixture()
	sess.leaveErr = errors.New("connection reset")

	if err := ctrl.Join(context.Background(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	ctrl.Leave(context.Background())

	if ctrl.State() != StateIdle {
		t.Fatalf("state = %v, want idle even when transport leave fails", ctrl.State())
	}
}

func TestLeaveStopsPresencePolling(t *testing.T) {
	ctrl, _, _, _, signal := newFixture()

	if err := ctrl.Join(context.Background(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	// Let at least the immediate poll land.
	deadline := time.Now().Add(time.Second)
	for signal.detailCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	ctrl.Leave(context.Background())
	after := signal.detailCount()
	time.Sleep(30 * time.Millisecond)
	if got := signal.detailCount(); got != after {
		t.Fatalf("polls continued after leave: %d -> %d", after, got)
	}
}

func TestVolumesDriveSpeakingFlags(t *testing.T) {
	ctrl, engine, _, _, _ := newFixture()
	defer ctrl.Close()

	if err := ctrl.Join(context.Background(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}

	engine.events.OnVolumes([]transport.Volume{
		{ParticipantID: "user-2", Level: 42},
		{ParticipantID: "user-3", Level: 2},
	})
	_, speaking := ctrl.Roster()
	if !speaking["user-2"] || speaking["user-3"] {
		t.Fatalf("speaking = %v, want user-2 only", speaking)
	}

	// A batch without user-2 keeps the last known flag.
	engine.events.OnVolumes([]transport.Volume{{ParticipantID: "user-3", Level: 9}})
	_, speaking = ctrl.Roster()
	if !speaking["user-2"] || !speaking["user-3"] {
		t.Fatalf("speaking = %v, want both", speaking)
	}

	// Flags are cleared on leave.
	ctrl.Leave(context.Background())
	_, speaking = ctrl.Roster()
	if len(speaking) != 0 {
		t.Fatalf("speaking after leave = %v, want empty", speaking)
	}
}
