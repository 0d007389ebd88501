package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/tennis-connect/internal/config"
	"github.com/oggyb/tennis-connect/internal/discovery"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/model"
)

func directoryFor(t *testing.T, handler http.HandlerFunc) *discovery.HTTPDirectory {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.New()
	cfg.Directory.BaseURL = srv.URL
	cfg.Directory.Timeout = 2 * time.Second
	return discovery.NewHTTPDirectory(cfg)
}

func TestHTTPDirectoryEncodesQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	dir := directoryFor(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[{"id":"p1","name":"P1","skill_level":4.5,"distance":2.2}]}`))
	})

	players, err := dir.Search(context.Background(),
		model.Location{Latitude: 37.77, Longitude: -122.42},
		10,
		discovery.Filters{
			SkillLevel:    4.5,
			GameStyles:    []string{"Singles", "Doubles"},
			PreferredDays: []string{"Saturday"},
			Gender:        "Female",
			NewcomerOnly:  true,
		})
	require.NoError(t, err)

	assert.Equal(t, "/users/nearby", gotPath)
	assert.Equal(t, "37.77", gotQuery["latitude"])
	assert.Equal(t, "-122.42", gotQuery["longitude"])
	assert.Equal(t, "10", gotQuery["radius"])
	assert.Equal(t, "4.5", gotQuery["skill_level"])
	assert.Equal(t, "Singles,Doubles", gotQuery["game_styles"])
	assert.Equal(t, "Saturday", gotQuery["preferred_days"])
	assert.Equal(t, "Female", gotQuery["gender"])
	assert.Equal(t, "true", gotQuery["is_newcomer"])

	require.Len(t, players, 1)
	assert.Equal(t, "p1", players[0].ID)
	assert.Equal(t, 2.2, players[0].Distance)
}

func TestHTTPDirectoryOmitsUnsetFilters(t *testing.T) {
	var rawQuery string
	dir := directoryFor(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"users":[]}`))
	})

	_, err := dir.Search(context.Background(), model.Location{}, 25, discovery.Filters{})
	require.NoError(t, err)
	assert.NotContains(t, rawQuery, "skill_level")
	assert.NotContains(t, rawQuery, "gender")
	assert.NotContains(t, rawQuery, "is_newcomer")
}

func TestHTTPDirectoryStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, svcErr.ErrNotFound},
		{http.StatusUnauthorized, svcErr.ErrUnauthenticated},
		{http.StatusInternalServerError, svcErr.ErrUnavailable},
	}
	for _, tc := range cases {
		dir := directoryFor(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := dir.Search(context.Background(), model.Location{}, 10, discovery.Filters{})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestHTTPDirectoryMalformedBody(t *testing.T) {
	dir := directoryFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err := dir.Search(context.Background(), model.Location{}, 10, discovery.Filters{})
	assert.ErrorIs(t, err, svcErr.ErrUnavailable)
}
