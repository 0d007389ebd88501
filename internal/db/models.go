package db

import (
	"time"
)

// Like represents a directed "interest" edge from the local actor
// toward a candidate player.
//
// Composite PK: (ActorID, PlayerID)
//   - Ensures a single row per ordered pair (re-liking is idempotent).
//
// Unliking deletes the row; there is no soft-delete flag.
type Like struct {
	ActorID   string    `gorm:"primaryKey;size:64;index:idx_player_actor,priority:2"`
	PlayerID  string    `gorm:"primaryKey;size:64;index:idx_player_actor,priority:1"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// MatchRecord is created once, at the moment reciprocity between two
// players is first observed. It is append-only: revoking a like later
// does not delete the record.
//
// Unique index over (actor_id, player_id) guards against duplicate
// creation when the like is replayed for an already-matched pair.
type MatchRecord struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	ActorID   string    `gorm:"size:64;uniqueIndex:idx_match_pair,priority:1" json:"actor_id"`
	PlayerID  string    `gorm:"size:64;uniqueIndex:idx_match_pair,priority:2" json:"player_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Notification is one entry in the actor's notification center.
//
// Read is a one-way transition (unread -> read). ResponseState only
// applies when ActionRequired is set: pending -> accepted|declined,
// and deciding also marks the notification read.
type Notification struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	ActorID        string    `gorm:"size:64;index:idx_actor_created,priority:1" json:"-"`
	Type           string    `gorm:"size:32;not null" json:"type"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Message        string    `gorm:"size:1024" json:"message"`
	Read           bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	ActionRequired bool      `gorm:"not null;default:false" json:"action_required"`
	ResponseState  string    `gorm:"size:16" json:"response_state,omitempty"`
	AvatarRef      string    `gorm:"size:512" json:"avatar,omitempty"`
	SubjectID      string    `gorm:"size:64" json:"subject_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_actor_created,priority:2,sort:desc" json:"created_at"`
}

// DirectoryPlayer backs the offline/demo player directory. Slice-valued
// player fields are stored JSON-encoded so the row stays flat.
type DirectoryPlayer struct {
	ID          string  `gorm:"primaryKey;size:64"`
	Name        string  `gorm:"size:128;not null"`
	SkillLevel  float64 `gorm:"not null"`
	GameStyles  string  `gorm:"size:255"`  // JSON array
	Gender      string  `gorm:"size:16"`
	IsVerified  bool
	IsNewToArea bool
	Bio         string    `gorm:"size:512"`
	PhotoURL    string    `gorm:"size:512"`
	TimeSlots   string    `gorm:"size:1024"` // JSON array of slots
	Latitude    float64
	Longitude   float64
	City        string    `gorm:"size:64"`
	State       string    `gorm:"size:32"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Account is a locally known user credential record, used only to seed
// and resolve the demo actor identity.
type Account struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	Name         string `gorm:"size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	SkillLevel   float64
	Latitude     float64
	Longitude    float64
	City         string    `gorm:"size:64"`
	State        string    `gorm:"size:32"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
