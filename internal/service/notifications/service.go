package notifications

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/tennis-connect/internal/app"
	"github.com/oggyb/tennis-connect/internal/db"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/repository"
	"gorm.io/gorm"
)

// Notification types accepted through the single Add entry point.
const (
	TypeMatchFound       = "match_found"
	TypeBookingConfirmed = "booking_confirmed"
	TypeSessionReminder  = "session_reminder"
	TypeGroupInvite      = "group_invite"
	TypeBulletinResponse = "bulletin_response"
	TypeResponseDecision = "response_decision"
)

// Response states for action-required notifications.
const (
	ResponsePending  = "pending"
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

func validType(t string) bool {
	switch t {
	case TypeMatchFound, TypeBookingConfirmed, TypeSessionReminder,
		TypeGroupInvite, TypeBulletinResponse, TypeResponseDecision:
		return true
	}
	return false
}

// Payload is what a producer (match resolver, booking flow, bulletin
// flow) supplies when appending a notification. Everything else -- id,
// timestamps, read state -- is assigned here.
type Payload struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ActionRequired bool   `json:"action_required"`
	AvatarRef      string `json:"avatar,omitempty"`
	SubjectID      string `json:"subject_id,omitempty"`
}

// Service is the notification center: the sole mutator of the actor's
// notification list. Producers only append through Add; the read-state
// machine is one-way (unread -> read), and the orthogonal response
// state is pending -> accepted|declined for action-required entries.
type Service struct {
	appCtx       *app.AppContext
	repo         *repository.NotificationRepository
	historyLimit int
}

// NewService creates the notification center with dependencies from AppContext.
func NewService(appCtx *app.AppContext, historyLimit int) *Service {
	return &Service{
		appCtx:       appCtx,
		repo:         repository.NewNotificationRepository(appCtx.DB),
		historyLimit: historyLimit,
	}
}

// Add appends one notification for the actor.
//
// Behavior:
//   - Assigns id and createdAt, read defaults to false.
//   - Action-required notifications start in the pending response state.
//   - History beyond the retention cap is evicted, oldest first.
//   - The cached unread count is invalidated so the invariant
//     unreadCount == count(read == false) holds on the next read.
func (s *Service) Add(ctx context.Context, actorID string, p Payload) (*db.Notification, error) {
	if actorID == "" {
		return nil, svcErr.ErrUnauthenticated
	}
	if !validType(p.Type) {
		return nil, svcErr.InvalidArgument("unknown notification type")
	}
	if p.Title == "" {
		return nil, svcErr.InvalidArgument("title is required")
	}

	n := &db.Notification{
		ID:             uuid.NewString(),
		ActorID:        actorID,
		Type:           p.Type,
		Title:          p.Title,
		Message:        p.Message,
		ActionRequired: p.ActionRequired,
		AvatarRef:      p.AvatarRef,
		SubjectID:      p.SubjectID,
		CreatedAt:      time.Now().UTC(),
	}
	if p.ActionRequired {
		n.ResponseState = ResponsePending
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	if err := s.repo.Prune(ctx, actorID, s.historyLimit); err != nil {
		s.appCtx.Logger.Warn("failed to prune notification history", "err", err)
	}
	s.invalidateUnread(ctx, actorID)

	s.appCtx.Logger.Debug("notification added", "id", n.ID, "type", n.Type, "actor", actorID)
	return n, nil
}

// List returns the actor's notifications, most recent first, with
// cursor pagination.
func (s *Service) List(ctx context.Context, actorID string, token *string, limit int) ([]db.Notification, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, actorID, token, limit)
}

// UnreadCount returns count(read == false) for the actor.
// Cache-first strategy:
//  1. Attempts to read from Redis (notify:unread:actorID).
//  2. On cache miss, falls back to the store and refreshes the cache
//     with a 1h TTL.
func (s *Service) UnreadCount(ctx context.Context, actorID string) (int64, error) {
	key := s.appCtx.RedisCache.KeyForUnreadCount(actorID)

	if n, ok, err := s.appCtx.RedisCache.GetCount(ctx, key); err == nil && ok {
		return n, nil
	}

	count, err := s.repo.CountUnread(ctx, actorID)
	if err != nil {
		return 0, err
	}
	_ = s.appCtx.RedisCache.Set(ctx, key, strconv.FormatInt(count, 10), time.Hour)
	return count, nil
}

// MarkAsRead transitions one notification to read. Unknown ids and
// already-read notifications are no-ops.
func (s *Service) MarkAsRead(ctx context.Context, actorID, id string) error {
	if err := s.repo.MarkRead(ctx, actorID, id); err != nil {
		return err
	}
	s.invalidateUnread(ctx, actorID)
	return nil
}

// MarkAllAsRead transitions every notification to read in one update.
func (s *Service) MarkAllAsRead(ctx context.Context, actorID string) error {
	if err := s.repo.MarkAllRead(ctx, actorID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, actorID)
	return nil
}

// Respond records an accept/decline decision on an action-required
// notification. Deciding implies the read transition.
//
// Only pending notifications can be decided; a second decision is
// rejected rather than overwritten.
func (s *Service) Respond(ctx context.Context, actorID, id string, accept bool) (*db.Notification, error) {
	n, err := s.repo.Get(ctx, actorID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrNotFound
		}
		return nil, err
	}
	if !n.ActionRequired {
		return nil, svcErr.InvalidArgument("notification does not require a response")
	}
	if n.ResponseState != ResponsePending {
		return nil, svcErr.InvalidArgument("notification already decided")
	}

	state := ResponseDeclined
	if accept {
		state = ResponseAccepted
	}
	if err := s.repo.SetResponseState(ctx, actorID, id, state); err != nil {
		return nil, err
	}
	s.invalidateUnread(ctx, actorID)

	n.ResponseState = state
	n.Read = true
	s.appCtx.Logger.Info("notification decided", "id", id, "state", state)
	return n, nil
}

// Remove deletes one notification.
func (s *Service) Remove(ctx context.Context, actorID, id string) error {
	if err := s.repo.Delete(ctx, actorID, id); err != nil {
		return err
	}
	s.invalidateUnread(ctx, actorID)
	return nil
}

// ClearAll deletes every notification for the actor.
func (s *Service) ClearAll(ctx context.Context, actorID string) error {
	if err := s.repo.DeleteAll(ctx, actorID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, actorID)
	return nil
}

// invalidateUnread drops the cached unread count after a mutation; the
// next read recomputes it from the store.
func (s *Service) invalidateUnread(ctx context.Context, actorID string) {
	key := s.appCtx.RedisCache.KeyForUnreadCount(actorID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate unread cache", "err", err)
	}
}
