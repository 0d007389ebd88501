package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/oggyb/tennis-connect/internal/config"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
)

// Like actions understood by the remote sync boundary.
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

// SyncResult is the remote side's answer to a like/unlike. Confirmed
// carries the server-authoritative reciprocity signal: when true, the
// other player already likes the actor back.
type SyncResult struct {
	Confirmed bool   `json:"is_match"`
	Message   string `json:"message"`
}

// LikeSyncer pushes like/unlike actions to the remote service. The
// boundary is best-effort: callers log failures and keep local state,
// which remains the source of truth for the UI.
type LikeSyncer interface {
	Sync(ctx context.Context, targetID, action string) (*SyncResult, error)
}

// HTTPSyncer posts like actions to the remote API.
type HTTPSyncer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSyncer(cfg *config.Config) *HTTPSyncer {
	return &HTTPSyncer{
		baseURL: strings.TrimRight(cfg.Directory.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Directory.Timeout},
	}
}

func (s *HTTPSyncer) Sync(ctx context.Context, targetID, action string) (*SyncResult, error) {
	payload, err := json.Marshal(map[string]string{
		"target_id": targetID,
		"action":    action,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/users/like/%s", s.baseURL, targetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, svcErr.Unavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, svcErr.Unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, svcErr.ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, svcErr.Unavailable(fmt.Errorf("like sync returned %d", resp.StatusCode))
	}

	var result SyncResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, svcErr.Unavailable(err)
	}
	return &result, nil
}

// NopSyncer is used in demo mode, where there is no remote peer.
type NopSyncer struct{}

func (NopSyncer) Sync(ctx context.Context, targetID, action string) (*SyncResult, error) {
	return &SyncResult{}, nil
}
