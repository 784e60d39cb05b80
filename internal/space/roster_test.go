package space

import (
	"testing"

	"github.com/okatev/readspace/internal/api"
)

func TestBuildRosterDeduplicates(t *testing.T) {
	details := &api.SpaceDetails{
		Title: "book club",
		Host:  &api.SpaceUser{UserID: 1, UserName: "ana"},
		Speakers: []api.SpaceUser{
			{UserID: 1, UserName: "ana"}, // host repeated as speaker
			{UserID: 2, UserName: "ben"},
		},
		Listeners: []api.SpaceUser{
			{UserID: 1, UserName: "ana"}, // host repeated as listener
			{UserID: 2, UserName: "ben"}, // speaker repeated as listener
			{UserID: 3, UserName: "cal"},
		},
		TotalParticipants: 3,
	}

	r := BuildRoster(details)

	if r.Host == nil || r.Host.UserID != 1 {
		t.Fatalf("host = %+v, want user 1", r.Host)
	}
	if len(r.Speakers) != 1 || r.Speakers[0].UserID != 2 {
		t.Fatalf("speakers = %+v, want only user 2", r.Speakers)
	}
	if len(r.Listeners) != 1 || r.Listeners[0].UserID != 3 {
		t.Fatalf("listeners = %+v, want only user 3", r.Listeners)
	}
}

func TestBuildRosterNilSnapshot(t *testing.T) {
	r := BuildRoster(nil)
	if r.Host != nil || len(r.Speakers) != 0 || len(r.Listeners) != 0 {
		t.Fatalf("roster from nil snapshot = %+v, want empty", r)
	}
}
