// Package livekit implements transport.Engine on the LiveKit Go SDK.
package livekit

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/okatev/readspace/internal/transport"
)

// Engine joins LiveKit rooms with signaled per-space tokens.
type Engine struct {
	wsURL string
	log   *zerolog.Logger
}

// New creates an engine for the LiveKit server at wsURL. Returns nil when
// wsURL is empty so callers get the explicit transport-unavailable path
// instead of a connection error later.
func New(wsURL string, logger *zerolog.Logger) *Engine {
	if wsURL == "" {
		return nil
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Engine{wsURL: wsURL, log: logger}
}

// Join connects to the channel named in the grant. Remote audio tracks
// are auto-subscribed; playback here means draining the stream so the
// SDK keeps delivering it.
func (e *Engine) Join(ctx context.Context, grant transport.Grant, events transport.Events) (transport.Session, error) {
	s := &session{log: e.log}

	callback := &lksdk.RoomCallback{
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, _ *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if track.Kind() != webrtc.RTPCodecTypeAudio {
					return
				}
				go drain(track)
				if events != nil && !s.detached.Load() {
					events.OnRemoteTrack(rp.Identity())
				}
			},
		},
		OnActiveSpeakersChanged: func(speakers []lksdk.Participant) {
			if events == nil || s.detached.Load() {
				return
			}
			volumes := make([]transport.Volume, 0, len(speakers))
			for _, sp := range speakers {
				volumes = append(volumes, transport.Volume{
					ParticipantID: sp.Identity(),
					// SDK levels are 0..1; the roster UI works on 0-100+.
					Level: int(sp.AudioLevel() * 100),
				})
			}
			if len(volumes) > 0 {
				events.OnVolumes(volumes)
			}
		},
	}

	room, err := lksdk.ConnectToRoomWithToken(e.wsURL, grant.Token, callback, lksdk.WithAutoSubscribe(true))
	if err != nil {
		if isIdentityConflict(err) {
			return nil, fmt.Errorf("join %s: %w", grant.Channel, transport.ErrIdentityConflict)
		}
		return nil, fmt.Errorf("join %s: %w", grant.Channel, err)
	}

	s.room = room
	e.log.Debug().Str("channel", grant.Channel).Str("identity", grant.Identity).Msg("joined channel")
	return s, nil
}

func isIdentityConflict(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate identity") || strings.Contains(msg, "already joined")
}

func drain(track *webrtc.TrackRemote) {
	for {
		if _, _, err := track.ReadRTP(); err != nil {
			return
		}
	}
}

type session struct {
	room     *lksdk.Room
	log      *zerolog.Logger
	detached atomic.Bool
}

func (s *session) PublishMicrophone(ctx context.Context) (transport.Track, error) {
	local, err := lksdk.NewLocalSampleTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: 48000,
		Channels:  2,
	})
	if err != nil {
		return nil, fmt.Errorf("create audio track: %w", err)
	}

	pub, err := s.room.LocalParticipant.PublishTrack(local, &lksdk.TrackPublicationOptions{
		Name:   "microphone",
		Source: livekit.TrackSource_MICROPHONE,
	})
	if err != nil {
		return nil, fmt.Errorf("publish audio track: %w", err)
	}

	return &localTrack{pub: pub, room: s.room}, nil
}

func (s *session) DetachEvents() {
	s.detached.Store(true)
}

func (s *session) Leave(context.Context) error {
	if s.room == nil {
		return nil
	}
	s.room.Disconnect()
	return nil
}

// localTrack wraps the published microphone track. Enabled maps to the
// publication's mute flag.
type localTrack struct {
	pub  *lksdk.LocalTrackPublication
	room *lksdk.Room
}

func (t *localTrack) SetEnabled(enabled bool) {
	t.pub.SetMuted(!enabled)
}

func (t *localTrack) Enabled() bool {
	return !t.pub.IsMuted()
}

func (t *localTrack) Stop() {
	_ = t.room.LocalParticipant.UnpublishTrack(t.pub.SID())
}

var _ transport.Engine = (*Engine)(nil)
