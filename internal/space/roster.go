package space

import "github.com/okatev/readspace/internal/api"

// Roster is the deduplicated view of a roster snapshot: the host appears
// only in the host slot, speakers exclude the host, and listeners exclude
// anyone already shown as host or speaker.
type Roster struct {
	Title     string
	Host      *api.SpaceUser
	Speakers  []api.SpaceUser
	Listeners []api.SpaceUser
	Total     int
}

// BuildRoster derives the display roster from a server snapshot.
func BuildRoster(details *api.SpaceDetails) Roster {
	r := Roster{}
	if details == nil {
		return r
	}
	r.Title = details.Title
	r.Host = details.Host
	r.Total = details.TotalParticipants

	seen := make(map[int64]struct{})
	if details.Host != nil {
		seen[details.Host.UserID] = struct{}{}
	}

	for _, s := range details.Speakers {
		if _, dup := seen[s.UserID]; dup {
			continue
		}
		seen[s.UserID] = struct{}{}
		r.Speakers = append(r.Speakers, s)
	}

	for _, l := range details.Listeners {
		if _, dup := seen[l.UserID]; dup {
			continue
		}
		seen[l.UserID] = struct{}{}
		r.Listeners = append(r.Listeners, l)
	}

	return r
}
