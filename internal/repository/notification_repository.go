package repository

import (
	"context"
	"time"

	"github.com/oggyb/tennis-connect/internal/db"
	"github.com/oggyb/tennis-connect/internal/utils/pagination"

	"gorm.io/gorm"
)

// NotificationRepository provides data access for the actor's
// notification list. Every mutation touches whole rows in one
// statement, so the unread-count invariant can always be recomputed
// from the table.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository bound to the given DB connection.
func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// Insert appends one notification.
func (r *NotificationRepository) Insert(ctx context.Context, n *db.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns the actor's notifications, most recent first.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *NotificationRepository) List(
	ctx context.Context,
	actorID string,
	paginationToken *string,
	limit int,
) ([]db.Notification, *string, error) {
	var notifications []db.Notification

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.ID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(notifications) > limit {
		last := notifications[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		notifications = notifications[:limit]
	}

	return notifications, nextToken, nil
}

// Get fetches one notification owned by the actor.
func (r *NotificationRepository) Get(ctx context.Context, actorID, id string) (*db.Notification, error) {
	var n db.Notification
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND id = ?", actorID, id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CountUnread returns the number of notifications with read = false.
// This is the single source of truth behind unreadCount.
func (r *NotificationRepository) CountUnread(ctx context.Context, actorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("actor_id = ? AND is_read = ?", actorID, false).
		Count(&count).Error
	return count, err
}

// MarkRead sets read = true for exactly one notification.
// No-op if the id is unknown or the notification is already read.
func (r *NotificationRepository) MarkRead(ctx context.Context, actorID, id string) error {
	return r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("actor_id = ? AND id = ? AND is_read = ?", actorID, id, false).
		Update("is_read", true).Error
}

// MarkAllRead sets read = true for every notification in one statement.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, actorID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("actor_id = ? AND is_read = ?", actorID, false).
		Update("is_read", true).Error
}

// SetResponseState records the actor's decision on an action-required
// notification and marks it read in the same statement.
func (r *NotificationRepository) SetResponseState(ctx context.Context, actorID, id, state string) error {
	return r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("actor_id = ? AND id = ?", actorID, id).
		Updates(map[string]interface{}{"response_state": state, "is_read": true}).Error
}

// Delete removes one notification; no-op if the id is unknown.
func (r *NotificationRepository) Delete(ctx context.Context, actorID, id string) error {
	return r.db.WithContext(ctx).
		Where("actor_id = ? AND id = ?", actorID, id).
		Delete(&db.Notification{}).Error
}

// DeleteAll clears the actor's notification list.
func (r *NotificationRepository) DeleteAll(ctx context.Context, actorID string) error {
	return r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Delete(&db.Notification{}).Error
}

// Prune evicts the oldest notifications beyond the retained-history
// cap. Called after every insert so the list cannot grow unbounded.
func (r *NotificationRepository) Prune(ctx context.Context, actorID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	var boundary db.Notification
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC, id DESC").
		Offset(keep - 1).
		First(&boundary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil // fewer rows than the cap
		}
		return err
	}
	return r.db.WithContext(ctx).
		Where("actor_id = ? AND (created_at < ? OR (created_at = ? AND id < ?))",
			actorID, boundary.CreatedAt, boundary.CreatedAt, boundary.ID).
		Delete(&db.Notification{}).Error
}

func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
