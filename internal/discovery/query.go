package discovery

import (
	"github.com/oggyb/tennis-connect/internal/model"
)

// Query is a proximity discovery request. It is never persisted; the
// caller reconstructs it per search from the current filter state.
type Query struct {
	Origin  model.Location
	Radius  float64 // miles
	Filters Filters
}

// Filters narrows a candidate list. The zero value matches everyone.
type Filters struct {
	SkillLevel    float64 // NTRP; 0 means no skill filter
	GameStyles    []string
	PreferredDays []string
	Gender        string
	NewcomerOnly  bool
}

// skillWindow is the tolerance around a requested skill level.
const skillWindow = 0.5

// Empty reports whether no filter predicate is set.
func (f Filters) Empty() bool {
	return f.SkillLevel == 0 &&
		len(f.GameStyles) == 0 &&
		len(f.PreferredDays) == 0 &&
		f.Gender == "" &&
		!f.NewcomerOnly
}

// Match applies every set predicate against a single player. Used
// client-side when the transport-level query was widened for recall so
// filter semantics stay identical to a server-filtered search.
func (f Filters) Match(p *model.Player) bool {
	if f.SkillLevel != 0 {
		diff := p.SkillLevel - f.SkillLevel
		if diff < -skillWindow || diff > skillWindow {
			return false
		}
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.NewcomerOnly && !p.IsNewToArea {
		return false
	}
	if len(f.GameStyles) > 0 {
		found := false
		for _, style := range f.GameStyles {
			if p.HasGameStyle(style) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.PreferredDays) > 0 {
		found := false
		for _, day := range f.PreferredDays {
			if p.AvailableOn(day) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply filters a candidate list in place of a server-side filter.
// Candidate order is preserved; no ranking is imposed here.
func (f Filters) Apply(players []model.Player) []model.Player {
	if f.Empty() {
		return players
	}
	out := make([]model.Player, 0, len(players))
	for _, p := range players {
		if f.Match(&p) {
			out = append(out, p)
		}
	}
	return out
}

// Metadata is the read-only report attached to a completed search.
// Invariant: UsersInRange + UsersOutOfRange == TotalUsers. In/out of
// range is judged against the originally requested radius, so fallback
// results remain distinguishable.
type Metadata struct {
	TotalUsers      int     `json:"total_users"`
	UsersInRange    int     `json:"users_in_range"`
	UsersOutOfRange int     `json:"users_out_of_range"`
	OriginalRadius  float64 `json:"original_search_radius"`
	ActualRadius    float64 `json:"actual_search_radius"`
	ShowingFallback bool    `json:"showing_fallback"`
}

// Outcome is a completed search. NoneAnywhere distinguishes "searched
// everywhere and found nothing" from a transport failure, which is
// returned as an error instead.
type Outcome struct {
	Players      []model.Player `json:"players"`
	Metadata     Metadata       `json:"metadata"`
	NoneAnywhere bool           `json:"none_anywhere"`
}

func buildMetadata(players []model.Player, originalRadius, actualRadius float64, fallback bool) Metadata {
	md := Metadata{
		TotalUsers:      len(players),
		OriginalRadius:  originalRadius,
		ActualRadius:    actualRadius,
		ShowingFallback: fallback,
	}
	for _, p := range players {
		if p.Distance <= originalRadius {
			md.UsersInRange++
		} else {
			md.UsersOutOfRange++
		}
	}
	return md
}
