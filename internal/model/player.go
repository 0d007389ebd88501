package model

// Player is a candidate identity as supplied by the player directory or
// the identity provider. The engine never mutates players.
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SkillLevel     float64    `json:"skill_level"` // NTRP rating (1.0-7.0)
	GameStyles     []string   `json:"game_styles"` // Singles, Doubles, Competitive, Social
	Gender         string     `json:"gender,omitempty"`
	IsVerified     bool       `json:"is_verified"`
	IsNewToArea    bool       `json:"is_new_to_area"`
	Bio            string     `json:"bio,omitempty"`
	PhotoURL       string     `json:"photo,omitempty"`
	PreferredTimes []TimeSlot `json:"preferred_times"`
	Location       Location   `json:"location"`

	// Distance in miles from the search origin. Attached by the
	// directory that answered the search, never recomputed locally.
	Distance float64 `json:"distance,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ZipCode   string  `json:"zip_code,omitempty"`
	City      string  `json:"city"`
	State     string  `json:"state"`
}

// TimeSlot is a weekly availability window.
type TimeSlot struct {
	DayOfWeek string `json:"day_of_week"` // Monday, Tuesday, ...
	StartTime string `json:"start_time"`  // 24-hour format: "14:00"
	EndTime   string `json:"end_time"`    // 24-hour format: "16:00"
}

// HasGameStyle reports whether the player lists the given style.
func (p *Player) HasGameStyle(style string) bool {
	for _, s := range p.GameStyles {
		if s == style {
			return true
		}
	}
	return false
}

// AvailableOn reports whether the player has a time slot on the given day.
func (p *Player) AvailableOn(day string) bool {
	for _, ts := range p.PreferredTimes {
		if ts.DayOfWeek == day {
			return true
		}
	}
	return false
}
