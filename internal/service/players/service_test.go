package players_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/tennis-connect/internal/app"
	"github.com/oggyb/tennis-connect/internal/cache"
	"github.com/oggyb/tennis-connect/internal/config"
	"github.com/oggyb/tennis-connect/internal/db"
	"github.com/oggyb/tennis-connect/internal/discovery"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/identity"
	"github.com/oggyb/tennis-connect/internal/model"
	"github.com/oggyb/tennis-connect/internal/remote"
	"github.com/oggyb/tennis-connect/internal/repository"
	"github.com/oggyb/tennis-connect/internal/service/notifications"
	"github.com/oggyb/tennis-connect/internal/service/players"
)

// stubSyncer scripts the remote side of the like boundary.
type stubSyncer struct {
	confirm bool
	err     error
	calls   []string
}

func (s *stubSyncer) Sync(ctx context.Context, targetID, action string) (*remote.SyncResult, error) {
	s.calls = append(s.calls, action+":"+targetID)
	if s.err != nil {
		return nil, s.err
	}
	return &remote.SyncResult{Confirmed: s.confirm}, nil
}

type fixture struct {
	svc    *players.Service
	notify *notifications.Service
	syncer *stubSyncer
	gdb    *gorm.DB
}

// seedDirectory inserts a small deterministic candidate set around
// latitude 37.77 / longitude -122.42:
//   - serena: ~3.5 miles out, skill 6.0
//   - rafa:   ~3.5 miles out, skill 6.5
//   - iga:    ~69 miles out, skill 6.5 (fallback range only)
func seedDirectory(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	rows := []db.DirectoryPlayer{
		{ID: "serena", Name: "Serena", SkillLevel: 6.0, Gender: "Female",
			GameStyles: `["Singles"]`, Latitude: 37.82, Longitude: -122.42, City: "San Francisco", State: "CA"},
		{ID: "rafa", Name: "Rafa", SkillLevel: 6.5, Gender: "Male",
			GameStyles: `["Singles","Competitive"]`, Latitude: 37.72, Longitude: -122.42, City: "San Francisco", State: "CA"},
		{ID: "iga", Name: "Iga", SkillLevel: 6.5, Gender: "Female",
			GameStyles: `["Singles"]`, Latitude: 38.77, Longitude: -122.42, City: "Santa Rosa", State: "CA"},
	}
	require.NoError(t, gdb.Create(&rows).Error)
}

// setupFixture spins up an isolated in-memory SQLite DB and miniredis,
// seeds the demo directory, and wires the players service on top of a
// scripted sync boundary.
func setupFixture(t *testing.T) *fixture {
	return setupFixtureWith(t, nil)
}

// setupFixtureWith is setupFixture with the directory swapped out; nil
// selects the seeded demo directory.
func setupFixtureWith(t *testing.T, dir discovery.Directory) *fixture {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(
		&db.Like{}, &db.MatchRecord{}, &db.Notification{}, &db.DirectoryPlayer{},
	))
	seedDirectory(t, dbase)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests
	appCtx := app.New(dbase, redisCache, logger)

	if dir == nil {
		dir = discovery.NewDemoDirectory(dbase)
	}
	syncer := &stubSyncer{}
	notify := notifications.NewService(appCtx, 200)
	svc := players.NewService(appCtx, dir, syncer, notify)

	return &fixture{svc: svc, notify: notify, syncer: syncer, gdb: dbase}
}

func actor(id string) *identity.Actor {
	return &identity.Actor{
		ID:   id,
		Name: "Actor " + id,
		Location: model.Location{
			Latitude:  37.77,
			Longitude: -122.42,
		},
	}
}

func query(radius float64) discovery.Query {
	return discovery.Query{
		Origin: actor("alice").Location,
		Radius: radius,
	}
}

func TestSearchAnnotatesLikedAndMatched(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")

	_, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena"})
	require.NoError(t, err)

	// rafa already liked alice; liking back matches
	likeRepo := repository.NewLikeRepository(fx.gdb)
	_, err = likeRepo.CreateLike(ctx, "rafa", "alice")
	require.NoError(t, err)
	res, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "rafa"})
	require.NoError(t, err)
	require.True(t, res.IsMatch)

	out, err := fx.svc.Search(ctx, alice, query(10))
	require.NoError(t, err)

	byID := map[string]players.Card{}
	for _, c := range out.Cards {
		byID[c.ID] = c
	}
	require.Contains(t, byID, "serena")
	require.Contains(t, byID, "rafa")
	assert.NotContains(t, byID, "iga", "iga is outside the requested radius")

	assert.True(t, byID["serena"].Liked)
	assert.False(t, byID["serena"].Matched)
	assert.True(t, byID["rafa"].Liked)
	assert.True(t, byID["rafa"].Matched)

	require.NotNil(t, out.Metadata)
	assert.False(t, out.Metadata.ShowingFallback)
	assert.Equal(t, out.Metadata.TotalUsers, out.Metadata.UsersInRange+out.Metadata.UsersOutOfRange)
}

func TestSearchFallsBackToWidenedRadius(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")

	// nobody within one mile of the origin
	out, err := fx.svc.Search(ctx, alice, query(1))
	require.NoError(t, err)

	require.NotNil(t, out.Metadata)
	assert.True(t, out.Metadata.ShowingFallback)
	assert.Equal(t, float64(1), out.Metadata.OriginalRadius)
	assert.Equal(t, float64(200), out.Metadata.ActualRadius)
	assert.Len(t, out.Cards, 3)
	assert.Equal(t, 0, out.Metadata.UsersInRange)
	assert.Equal(t, 3, out.Metadata.UsersOutOfRange)
	assert.False(t, out.NoneAnywhere)
}

func TestSearchRequiresActor(t *testing.T) {
	fx := setupFixture(t)
	_, err := fx.svc.Search(context.Background(), nil, query(10))
	assert.ErrorIs(t, err, svcErr.ErrUnauthenticated)
}

func TestMutualLikeFiresExactlyOnce(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")

	likeRepo := repository.NewLikeRepository(fx.gdb)
	_, err := likeRepo.CreateLike(ctx, "serena", "alice")
	require.NoError(t, err)

	res, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena", PlayerName: "Serena"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.IsMatch)
	assert.NotEmpty(t, res.MatchID)

	// replaying the like reports the match but fires nothing new
	replay, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena", PlayerName: "Serena"})
	require.NoError(t, err)
	assert.True(t, replay.Success)
	assert.True(t, replay.IsMatch)

	matches, err := fx.svc.Matches(ctx, alice)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "serena", matches[0].PlayerID)

	list, _, err := fx.notify.List(ctx, "alice", nil, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, notifications.TypeMatchFound, list[0].Type)
	assert.Equal(t, "It's a Match!", list[0].Title)
	assert.Contains(t, list[0].Message, "Serena")
	assert.True(t, list[0].ActionRequired)
	assert.Equal(t, "serena", list[0].SubjectID)

	// only the first like reached the remote boundary
	assert.Equal(t, []string{"like:serena"}, fx.syncer.calls)
}

func TestRemoteConfirmedReciprocity(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	fx.syncer.confirm = true
	alice := actor("alice")

	// no local reverse edge; the remote side reports the like-back
	res, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "rafa", PlayerName: "Rafa"})
	require.NoError(t, err)
	assert.True(t, res.IsMatch)

	matches, _ := fx.svc.Matches(ctx, alice)
	require.Len(t, matches, 1)

	list, _, _ := fx.notify.List(ctx, "alice", nil, 20)
	require.Len(t, list, 1)
}

func TestSyncFailureKeepsLocalLike(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	fx.syncer.err = errors.New("remote unreachable")
	alice := actor("alice")

	res, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena"})
	require.NoError(t, err, "sync is best-effort; local state stands")
	assert.True(t, res.Success)
	assert.False(t, res.IsMatch)

	liked, err := fx.svc.IsLiked(ctx, alice, "serena")
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestUnlikeRetainsMatchHistory(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")

	likeRepo := repository.NewLikeRepository(fx.gdb)
	_, _ = likeRepo.CreateLike(ctx, "serena", "alice")
	_, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Unlike(ctx, alice, "serena"))
	// unliking twice is a no-op
	require.NoError(t, fx.svc.Unlike(ctx, alice, "serena"))

	liked, _ := fx.svc.IsLiked(ctx, alice, "serena")
	assert.False(t, liked)

	matches, err := fx.svc.Matches(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, matches, 1, "match history is append-only")

	assert.Equal(t, []string{"like:serena", "unlike:serena", "unlike:serena"}, fx.syncer.calls)
}

// TestMatchIsSymmetric drives both sides of a pair through the service
// and checks that whichever like observes reciprocity, both actors end
// up with the match record, the notification and the matched card.
func TestMatchIsSymmetric(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")
	serena := actor("serena")

	first, err := fx.svc.Like(ctx, serena, players.LikeRequest{PlayerID: "alice", PlayerName: "Alice"})
	require.NoError(t, err)
	assert.False(t, first.IsMatch)

	second, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena", PlayerName: "Serena"})
	require.NoError(t, err)
	assert.True(t, second.IsMatch)

	// both sessions hold the match history
	aliceMatches, err := fx.svc.Matches(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceMatches, 1)
	assert.Equal(t, "serena", aliceMatches[0].PlayerID)

	serenaMatches, err := fx.svc.Matches(ctx, serena)
	require.NoError(t, err)
	require.Len(t, serenaMatches, 1)
	assert.Equal(t, "alice", serenaMatches[0].PlayerID)

	// and both actors were notified
	aliceList, _, err := fx.notify.List(ctx, "alice", nil, 20)
	require.NoError(t, err)
	require.Len(t, aliceList, 1)
	assert.Equal(t, notifications.TypeMatchFound, aliceList[0].Type)
	assert.Equal(t, "serena", aliceList[0].SubjectID)

	serenaList, _, err := fx.notify.List(ctx, "serena", nil, 20)
	require.NoError(t, err)
	require.Len(t, serenaList, 1)
	assert.Equal(t, notifications.TypeMatchFound, serenaList[0].Type)
	assert.Equal(t, "alice", serenaList[0].SubjectID)
	assert.Contains(t, serenaList[0].Message, "Actor alice")

	// replaying from either side fires nothing new
	replay, err := fx.svc.Like(ctx, serena, players.LikeRequest{PlayerID: "alice"})
	require.NoError(t, err)
	assert.True(t, replay.IsMatch)
	serenaList, _, _ = fx.notify.List(ctx, "serena", nil, 20)
	assert.Len(t, serenaList, 1)
	serenaMatches, _ = fx.svc.Matches(ctx, serena)
	assert.Len(t, serenaMatches, 1)

	// alice's card for serena is matched, not merely liked
	out, err := fx.svc.Search(ctx, alice, query(10))
	require.NoError(t, err)
	for _, c := range out.Cards {
		if c.ID == "serena" {
			assert.True(t, c.Liked)
			assert.True(t, c.Matched)
		}
	}
}

// gatedService blocks each directory call until the test releases it,
// so completion order across concurrent searches can be forced.
type gatedService struct {
	mu      sync.Mutex
	gates   map[float64]chan struct{} // keyed by radius
	entered chan float64
}

func newGatedService() *gatedService {
	return &gatedService{
		gates:   make(map[float64]chan struct{}),
		entered: make(chan float64, 8),
	}
}

func (d *gatedService) gate(radius float64) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.gates[radius]
	if !ok {
		g = make(chan struct{})
		d.gates[radius] = g
	}
	return g
}

func (d *gatedService) Search(ctx context.Context, origin model.Location, radius float64, f discovery.Filters) ([]model.Player, error) {
	d.entered <- radius
	<-d.gate(radius)
	return []model.Player{{
		ID:         fmt.Sprintf("p%.0f", radius),
		Name:       "P",
		SkillLevel: 4.0,
		Distance:   1,
	}}, nil
}

// TestConcurrentSearchesAreIsolatedPerActor checks that one actor's
// completed search is never displaced by another actor's newer one:
// each caller gets the result of their own query.
func TestConcurrentSearchesAreIsolatedPerActor(t *testing.T) {
	ctx := context.Background()
	dir := newGatedService()
	fx := setupFixtureWith(t, dir)

	results := make(map[float64]*players.SearchResult)
	done := map[float64]chan struct{}{10: make(chan struct{}), 25: make(chan struct{})}

	run := func(who *identity.Actor, radius float64) {
		out, err := fx.svc.Search(ctx, who, query(radius))
		require.NoError(t, err)
		results[radius] = out
		close(done[radius])
	}

	go run(actor("alice"), 10)
	require.Equal(t, float64(10), <-dir.entered)
	go run(actor("bob"), 25)
	require.Equal(t, float64(25), <-dir.entered)

	// bob's newer search completes before alice's older one
	close(dir.gate(25))
	<-done[25]
	close(dir.gate(10))
	<-done[10]

	require.NotNil(t, results[10].Metadata)
	assert.Equal(t, float64(10), results[10].Metadata.OriginalRadius)
	require.Len(t, results[10].Cards, 1)
	assert.Equal(t, "p10", results[10].Cards[0].ID)

	require.NotNil(t, results[25].Metadata)
	assert.Equal(t, float64(25), results[25].Metadata.OriginalRadius)
	assert.Equal(t, "p25", results[25].Cards[0].ID)
}

// TestRapidSearchesSameActorLatestWins checks the discard discipline
// still applies within one actor's surface: an older search completing
// late observes the newer result instead of overwriting it.
func TestRapidSearchesSameActorLatestWins(t *testing.T) {
	ctx := context.Background()
	dir := newGatedService()
	fx := setupFixtureWith(t, dir)
	alice := actor("alice")

	results := make(map[float64]*players.SearchResult)
	done := map[float64]chan struct{}{10: make(chan struct{}), 25: make(chan struct{})}

	run := func(radius float64) {
		out, err := fx.svc.Search(ctx, alice, query(radius))
		require.NoError(t, err)
		results[radius] = out
		close(done[radius])
	}

	go run(10)
	require.Equal(t, float64(10), <-dir.entered)
	go run(25)
	require.Equal(t, float64(25), <-dir.entered)

	close(dir.gate(25))
	<-done[25]
	close(dir.gate(10))
	<-done[10]

	// the stale completion was discarded; both calls see the newer state
	require.NotNil(t, results[10].Metadata)
	assert.Equal(t, float64(25), results[10].Metadata.OriginalRadius)
	assert.Equal(t, float64(25), results[25].Metadata.OriginalRadius)
}

// TestLikedCountCache verifies the liked count with the cache in front:
// first read fills it from the store, mutations invalidate it.
func TestLikedCountCache(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")

	_, err := fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "serena"})
	require.NoError(t, err)

	// first call → DB, second call → cache
	count, err := fx.svc.LikedCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = fx.svc.LikedCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "rafa"})
	require.NoError(t, err)
	count, _ = fx.svc.LikedCount(ctx, alice)
	assert.Equal(t, int64(2), count)

	require.NoError(t, fx.svc.Unlike(ctx, alice, "rafa"))
	count, _ = fx.svc.LikedCount(ctx, alice)
	assert.Equal(t, int64(1), count)
}

func TestLikePreconditions(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(t)
	alice := actor("alice")

	_, err := fx.svc.Like(ctx, nil, players.LikeRequest{PlayerID: "serena"})
	assert.ErrorIs(t, err, svcErr.ErrUnauthenticated)

	_, err = fx.svc.Like(ctx, alice, players.LikeRequest{})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = fx.svc.Like(ctx, alice, players.LikeRequest{PlayerID: "alice"})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}
