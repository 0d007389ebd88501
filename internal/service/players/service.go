package players

import (
	"context"
	"fmt"
	"sync"

	"github.com/oggyb/tennis-connect/internal/app"
	"github.com/oggyb/tennis-connect/internal/db"
	"github.com/oggyb/tennis-connect/internal/discovery"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/identity"
	"github.com/oggyb/tennis-connect/internal/model"
	"github.com/oggyb/tennis-connect/internal/remote"
	"github.com/oggyb/tennis-connect/internal/repository"
	"github.com/oggyb/tennis-connect/internal/service/notifications"
)

// Card is a candidate player as the presentation layer renders it:
// the directory's player plus the actor's like/match state toward it.
// A matched card is always shown as matched, never merely liked.
type Card struct {
	model.Player
	Liked   bool `json:"liked"`
	Matched bool `json:"matched"`
}

// SearchResult is the presentation-facing view of a completed search.
type SearchResult struct {
	Cards        []Card              `json:"users"`
	Metadata     *discovery.Metadata `json:"metadata,omitempty"`
	NoneAnywhere bool                `json:"none_anywhere"`
}

// LikeResult reports the outcome of a like intent.
type LikeResult struct {
	Success bool   `json:"success"`
	IsMatch bool   `json:"is_match,omitempty"`
	MatchID string `json:"match_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Service implements player discovery and the like/match engine.
// It contains the business logic on top of the repository, the
// discovery sessions and the remote sync boundary.
type Service struct {
	appCtx   *app.AppContext
	likeRepo *repository.LikeRepository
	client   *discovery.Client
	syncer   remote.LikeSyncer
	notify   *notifications.Service

	// one discovery session per actor: the latest-wins discard applies
	// to an actor's own surface, never across actors
	mu       sync.Mutex
	sessions map[string]*discovery.Session
}

// NewService wires the players service.
// Dependencies include:
//   - DB connection (via LikeRepository)
//   - a Directory implementation chosen by the caller (live or demo)
//   - the best-effort like sync boundary
//   - the notification center, for match-found events
func NewService(
	appCtx *app.AppContext,
	dir discovery.Directory,
	syncer remote.LikeSyncer,
	notify *notifications.Service,
) *Service {
	return &Service{
		appCtx:   appCtx,
		likeRepo: repository.NewLikeRepository(appCtx.DB),
		client:   discovery.NewClient(dir, appCtx.Logger),
		syncer:   syncer,
		notify:   notify,
		sessions: make(map[string]*discovery.Session),
	}
}

// sessionFor returns the actor's discovery session, creating it on
// first use.
func (s *Service) sessionFor(actorID string) *discovery.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[actorID]
	if !ok {
		sess = discovery.NewSession(s.client)
		s.sessions[actorID] = sess
	}
	return sess
}

// Search resolves a proximity query through the discovery session and
// annotates the candidates with the actor's like/match state.
//
// A missing actor identity is surfaced distinctly (never retried); all
// transport errors were already converted to typed outcomes inside the
// discovery client.
func (s *Service) Search(ctx context.Context, actor *identity.Actor, q discovery.Query) (*SearchResult, error) {
	if actor == nil || actor.ID == "" {
		return nil, svcErr.ErrUnauthenticated
	}

	state := s.sessionFor(actor.ID).Search(ctx, q)
	if state.Err != nil {
		return nil, state.Err
	}

	cards, err := s.annotate(ctx, actor.ID, state.Players)
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Cards:        cards,
		Metadata:     state.Metadata,
		NoneAnywhere: state.NoneAnywhere,
	}, nil
}

// annotate marks each candidate liked/matched from the local edge set.
// Matched is derived from mutual edge existence at query time, so both
// sides of a reciprocal pair see the same status regardless of whose
// like observed the match first.
func (s *Service) annotate(ctx context.Context, actorID string, candidates []model.Player) ([]Card, error) {
	likedIDs, err := s.likeRepo.LikedPlayerIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	liked := make(map[string]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}

	likerIDs, err := s.likeRepo.LikerIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	likedBy := make(map[string]bool, len(likerIDs))
	for _, id := range likerIDs {
		likedBy[id] = true
	}

	cards := make([]Card, 0, len(candidates))
	for _, p := range candidates {
		cards = append(cards, Card{
			Player:  p,
			Liked:   liked[p.ID],
			Matched: liked[p.ID] && likedBy[p.ID],
		})
	}
	return cards, nil
}

// LikeRequest carries a like intent from a rendered card.
type LikeRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	AvatarRef  string `json:"avatar,omitempty"`
}

// Like records the actor's like and resolves reciprocity.
//
// Behavior:
//   - Idempotent: re-liking an already-liked player changes nothing
//     and cannot fire a second match.
//   - The remote sync is best-effort; a sync failure is logged and
//     local state stands.
//   - Reciprocity holds when the reverse edge is locally known or the
//     remote side confirms the other player already liked back (a
//     confirmation is mirrored as a local reverse edge). On the first
//     observation: exactly one match record and one match-found
//     notification per actor of the pair, whichever side observed it.
func (s *Service) Like(ctx context.Context, actor *identity.Actor, req LikeRequest) (*LikeResult, error) {
	if actor == nil || actor.ID == "" {
		return nil, svcErr.ErrUnauthenticated
	}
	if req.PlayerID == "" {
		return nil, svcErr.InvalidArgument("player_id is required")
	}
	if req.PlayerID == actor.ID {
		return nil, svcErr.InvalidArgument("cannot like yourself")
	}

	created, err := s.likeRepo.CreateLike(ctx, actor.ID, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if !created {
		// replayed like: report current state without re-firing
		isMatch, err := s.likeRepo.HasMatchRecord(ctx, actor.ID, req.PlayerID)
		if err != nil {
			return nil, err
		}
		return &LikeResult{Success: true, IsMatch: isMatch}, nil
	}
	s.invalidateLikedCount(ctx, actor.ID)

	// best-effort remote sync; local state is the source of truth
	remoteConfirmed := false
	if res, err := s.syncer.Sync(ctx, req.PlayerID, remote.ActionLike); err != nil {
		s.appCtx.Logger.Warn("like sync failed", "player", req.PlayerID, "err", err)
	} else if res != nil {
		remoteConfirmed = res.Confirmed
	}

	reciprocal := remoteConfirmed
	if reciprocal {
		// mirror the server-confirmed reverse edge locally so match
		// status stays derivable from the edge set
		if mirrored, err := s.likeRepo.CreateLike(ctx, req.PlayerID, actor.ID); err != nil {
			return nil, err
		} else if mirrored {
			s.invalidateLikedCount(ctx, req.PlayerID)
		}
	} else {
		reciprocal, err = s.likeRepo.HasLiked(ctx, req.PlayerID, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !reciprocal {
		return &LikeResult{Success: true}, nil
	}

	record, isNew, err := s.likeRepo.CreateMatchRecord(ctx, actor.ID, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if isNew {
		name := req.PlayerName
		if name == "" {
			name = "your match"
		}
		_, err = s.notify.Add(ctx, actor.ID, notifications.Payload{
			Type:           notifications.TypeMatchFound,
			Title:          "It's a Match!",
			Message:        fmt.Sprintf("You and %s liked each other. Time to play!", name),
			ActionRequired: true,
			AvatarRef:      req.AvatarRef,
			SubjectID:      req.PlayerID,
		})
		if err != nil {
			s.appCtx.Logger.Error("failed to add match notification", "err", err)
		}
		s.appCtx.Logger.Info("match recorded", "actor", actor.ID, "player", req.PlayerID, "match_id", record.ID)
	}
	s.recordCounterpartMatch(ctx, actor, req.PlayerID)

	return &LikeResult{
		Success: true,
		IsMatch: true,
		MatchID: record.ID,
		Message: "It's a match! You can now message each other.",
	}, nil
}

// recordCounterpartMatch writes the match for the other side of the
// pair, so the counterpart's session sees the same match history and
// notification no matter whose like observed reciprocity first. The
// pair index keeps this idempotent across replays from either side.
func (s *Service) recordCounterpartMatch(ctx context.Context, actor *identity.Actor, playerID string) {
	record, isNew, err := s.likeRepo.CreateMatchRecord(ctx, playerID, actor.ID)
	if err != nil {
		s.appCtx.Logger.Error("failed to record counterpart match", "player", playerID, "err", err)
		return
	}
	if !isNew {
		return
	}
	name := actor.Name
	if name == "" {
		name = "your match"
	}
	if _, err := s.notify.Add(ctx, playerID, notifications.Payload{
		Type:           notifications.TypeMatchFound,
		Title:          "It's a Match!",
		Message:        fmt.Sprintf("You and %s liked each other. Time to play!", name),
		ActionRequired: true,
		SubjectID:      actor.ID,
	}); err != nil {
		s.appCtx.Logger.Error("failed to add counterpart match notification", "err", err)
	}
	s.appCtx.Logger.Info("match recorded", "actor", playerID, "player", actor.ID, "match_id", record.ID)
}

// Unlike removes the actor's like edge. Idempotent; the historical
// match record, if any, is retained.
func (s *Service) Unlike(ctx context.Context, actor *identity.Actor, playerID string) error {
	if actor == nil || actor.ID == "" {
		return svcErr.ErrUnauthenticated
	}
	if playerID == "" {
		return svcErr.InvalidArgument("player_id is required")
	}

	if err := s.likeRepo.DeleteLike(ctx, actor.ID, playerID); err != nil {
		return err
	}
	s.invalidateLikedCount(ctx, actor.ID)
	if _, err := s.syncer.Sync(ctx, playerID, remote.ActionUnlike); err != nil {
		s.appCtx.Logger.Warn("unlike sync failed", "player", playerID, "err", err)
	}
	return nil
}

// IsLiked reports whether the actor currently likes the player.
func (s *Service) IsLiked(ctx context.Context, actor *identity.Actor, playerID string) (bool, error) {
	if actor == nil || actor.ID == "" {
		return false, svcErr.ErrUnauthenticated
	}
	return s.likeRepo.HasLiked(ctx, actor.ID, playerID)
}

// LikedCount returns how many players the actor currently likes.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:actorID).
//  2. On cache miss, falls back to the store and refreshes the cache
//     with a 1h TTL.
func (s *Service) LikedCount(ctx context.Context, actor *identity.Actor) (int64, error) {
	if actor == nil || actor.ID == "" {
		return 0, svcErr.ErrUnauthenticated
	}
	key := s.appCtx.RedisCache.KeyForLikedCount(actor.ID)

	if n, ok, err := s.appCtx.RedisCache.GetCount(ctx, key); err == nil && ok {
		return n, nil
	}

	count, err := s.likeRepo.CountLiked(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	_ = s.appCtx.RedisCache.SetCount(ctx, key, count)
	return count, nil
}

// invalidateLikedCount drops the cached liked count after a like edge
// mutation; the next read recomputes it from the store.
func (s *Service) invalidateLikedCount(ctx context.Context, actorID string) {
	key := s.appCtx.RedisCache.KeyForLikedCount(actorID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate liked count cache", "err", err)
	}
}

// Matches returns the actor's match history, newest first.
func (s *Service) Matches(ctx context.Context, actor *identity.Actor) ([]db.MatchRecord, error) {
	if actor == nil || actor.ID == "" {
		return nil, svcErr.ErrUnauthenticated
	}
	return s.likeRepo.ListMatchRecords(ctx, actor.ID)
}
