package space

import (
	"sync"

	"github.com/okatev/readspace/internal/transport"
)

// speakingThreshold is the volume level above which a participant counts
// as speaking.
const speakingThreshold = 5

// SpeakingTracker folds periodic volume batches into a standing
// participant -> speaking map. Volume events are only emitted for
// currently-audible participants, so a participant absent from a batch
// keeps their last known flag until the tracker is reset on leave.
type SpeakingTracker struct {
	mu       sync.Mutex
	speaking map[string]bool
}

// NewSpeakingTracker returns an empty tracker.
func NewSpeakingTracker() *SpeakingTracker {
	return &SpeakingTracker{speaking: make(map[string]bool)}
}

// Merge applies one volume batch. Participants in the batch get their
// flag recomputed; everyone else is left untouched.
func (t *SpeakingTracker) Merge(volumes []transport.Volume) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range volumes {
		t.speaking[v.ParticipantID] = v.Level > speakingThreshold
	}
}

// IsSpeaking reports the last known flag for a participant.
func (t *SpeakingTracker) IsSpeaking(participantID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speaking[participantID]
}

// Snapshot copies the current mapping.
func (t *SpeakingTracker) Snapshot() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]bool, len(t.speaking))
	for id, s := range t.speaking {
		out[id] = s
	}
	return out
}

// Reset clears all flags. Called on room leave.
func (t *SpeakingTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.speaking = make(map[string]bool)
}
