package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oggyb/tennis-connect/internal/config"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/model"
)

// Directory answers proximity searches against a backing set of
// candidate players. Implementations apply the given filters where they
// support them and attach Distance to every returned player.
//
// An empty backing result is signalled as ErrNotFound (or a nil-error
// empty slice); both are distinguishable from transport failure.
type Directory interface {
	Search(ctx context.Context, origin model.Location, radius float64, filters Filters) ([]model.Player, error)
}

// HTTPDirectory queries the remote player directory over its JSON API.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(cfg *config.Config) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(cfg.Directory.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Directory.Timeout},
	}
}

// nearbyResponse mirrors the directory's wire format.
type nearbyResponse struct {
	Users []model.Player `json:"users"`
}

func (d *HTTPDirectory) Search(ctx context.Context, origin model.Location, radius float64, filters Filters) ([]model.Player, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(origin.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(origin.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))

	if filters.SkillLevel != 0 {
		params.Set("skill_level", strconv.FormatFloat(filters.SkillLevel, 'f', -1, 64))
	}
	if len(filters.GameStyles) > 0 {
		params.Set("game_styles", strings.Join(filters.GameStyles, ","))
	}
	if len(filters.PreferredDays) > 0 {
		params.Set("preferred_days", strings.Join(filters.PreferredDays, ","))
	}
	if filters.NewcomerOnly {
		params.Set("is_newcomer", "true")
	}
	if filters.Gender != "" {
		params.Set("gender", filters.Gender)
	}

	endpoint := fmt.Sprintf("%s/users/nearby?%s", d.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, svcErr.Unavailable(err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, svcErr.Unavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, svcErr.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, svcErr.ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return nil, svcErr.Unavailable(fmt.Errorf("directory returned %d", resp.StatusCode))
	}

	var body nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, svcErr.Unavailable(err)
	}
	return body.Users, nil
}
