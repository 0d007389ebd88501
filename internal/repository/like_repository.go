package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/tennis-connect/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository provides data access for like edges and match records.
// It only ever holds edges on behalf of the local actor; no cross-actor
// mutation happens through it.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// CreateLike inserts the directed edge actor -> player.
//
// Behavior:
//   - If the (actor_id, player_id) pair already exists the insert is a
//     no-op (re-liking is idempotent).
//   - Returns whether a new edge was actually written.
//   - Malformed (blank) identifiers are treated as no-ops, not errors;
//     this is advisory client-side state, not a source of truth.
func (r *LikeRepository) CreateLike(ctx context.Context, actorID, playerID string) (bool, error) {
	if blank(actorID) || blank(playerID) {
		return false, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "player_id"}},
			DoNothing: true,
		}).
		Create(&db.Like{ActorID: actorID, PlayerID: playerID, CreatedAt: time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteLike removes the edge actor -> player if present; no-op otherwise.
// The historical match record for the pair, if any, is retained.
func (r *LikeRepository) DeleteLike(ctx context.Context, actorID, playerID string) error {
	if blank(actorID) || blank(playerID) {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("actor_id = ? AND player_id = ?", actorID, playerID).
		Delete(&db.Like{}).Error
}

// HasLiked checks whether an edge actor -> player exists.
func (r *LikeRepository) HasLiked(ctx context.Context, actorID, playerID string) (bool, error) {
	if blank(actorID) || blank(playerID) {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("actor_id = ? AND player_id = ?", actorID, playerID).
		Count(&count).Error
	return count > 0, err
}

// LikedPlayerIDs returns every player the actor currently likes,
// oldest edge first.
func (r *LikeRepository) LikedPlayerIDs(ctx context.Context, actorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("actor_id = ?", actorID).
		Order("created_at ASC").
		Pluck("player_id", &ids).Error
	return ids, err
}

// LikerIDs returns every player with a like edge toward the actor,
// oldest edge first. Served by the reverse pair index.
func (r *LikeRepository) LikerIDs(ctx context.Context, actorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("player_id = ?", actorID).
		Order("created_at ASC").
		Pluck("actor_id", &ids).Error
	return ids, err
}

// CountLiked returns how many players the actor currently likes.
// Used in conjunction with the Redis counter cache (DB is fallback).
func (r *LikeRepository) CountLiked(ctx context.Context, actorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("actor_id = ?", actorID).
		Count(&count).Error
	return count, err
}

// CreateMatchRecord persists the match for actor -> player, once.
//
// Behavior:
//   - The unique pair index makes creation race-safe: replaying a like
//     for an already-matched pair writes nothing.
//   - Returns the record and whether this call created it.
//   - Records are append-only; nothing in this subsystem deletes them.
func (r *LikeRepository) CreateMatchRecord(ctx context.Context, actorID, playerID string) (*db.MatchRecord, bool, error) {
	record := db.MatchRecord{
		ID:       uuid.NewString(),
		ActorID:  actorID,
		PlayerID: playerID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "player_id"}},
			DoNothing: true,
		}).
		Create(&record)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		var existing db.MatchRecord
		err := r.db.WithContext(ctx).
			Where("actor_id = ? AND player_id = ?", actorID, playerID).
			First(&existing).Error
		if err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return &record, true, nil
}

// HasMatchRecord checks whether a match has ever been recorded for the pair.
func (r *LikeRepository) HasMatchRecord(ctx context.Context, actorID, playerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.MatchRecord{}).
		Where("actor_id = ? AND player_id = ?", actorID, playerID).
		Count(&count).Error
	return count > 0, err
}

// ListMatchRecords returns the actor's match history, newest first.
func (r *LikeRepository) ListMatchRecords(ctx context.Context, actorID string) ([]db.MatchRecord, error) {
	var records []db.MatchRecord
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
