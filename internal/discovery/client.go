package discovery

import (
	"context"
	"errors"
	"log/slog"

	svcErr "github.com/oggyb/tennis-connect/internal/errors"
)

// fallbackRadiusFloor is the minimum widened radius, in miles, used
// when a search comes back empty at the requested radius.
const fallbackRadiusFloor = 200

// Client resolves a Query to a candidate list, escalating the radius so
// a search surface is never presented empty while any candidate exists
// anywhere in the backing directory.
type Client struct {
	dir Directory
	log *slog.Logger
}

func NewClient(dir Directory, log *slog.Logger) *Client {
	return &Client{dir: dir, log: log}
}

// Search runs the escalation policy:
//
//  1. Search at the requested radius with all filters applied by the
//     directory where it supports them.
//  2. On an empty result (or a not-found signal), reissue at
//     max(2*radius, 200) with no server-side narrowing, then apply the
//     same filters client-side.
//  3. Zero candidates after escalation is an informational outcome
//     (NoneAnywhere), not an error.
//  4. Any other transport failure gets one retry at the widened radius
//     before the failure is surfaced. Fabricated data is never
//     substituted here; demo mode is a separate directory chosen by
//     the caller.
//
// Every completed search carries full Metadata.
func (c *Client) Search(ctx context.Context, q Query) (*Outcome, error) {
	players, err := c.dir.Search(ctx, q.Origin, q.Radius, q.Filters)

	switch {
	case err == nil && len(players) > 0:
		return &Outcome{
			Players:  players,
			Metadata: buildMetadata(players, q.Radius, q.Radius, false),
		}, nil

	case err == nil, errors.Is(err, svcErr.ErrNotFound):
		c.log.Debug("search empty, widening radius", "radius", q.Radius)
		return c.widen(ctx, q)

	case errors.Is(err, svcErr.ErrUnauthenticated):
		// never retried; the caller must re-authenticate
		return nil, err

	default:
		c.log.Warn("search failed, retrying at widened radius", "radius", q.Radius, "err", err)
		out, retryErr := c.widen(ctx, q)
		if retryErr != nil {
			return nil, retryErr
		}
		return out, nil
	}
}

// widen reissues the search at the expanded radius without server-side
// narrowing, preserving filter semantics client-side.
func (c *Client) widen(ctx context.Context, q Query) (*Outcome, error) {
	expanded := q.Radius * 2
	if expanded < fallbackRadiusFloor {
		expanded = fallbackRadiusFloor
	}

	wide, err := c.dir.Search(ctx, q.Origin, expanded, Filters{})
	if err != nil && !errors.Is(err, svcErr.ErrNotFound) {
		if errors.Is(err, svcErr.ErrUnauthenticated) {
			return nil, err
		}
		return nil, svcErr.Unavailable(err)
	}

	candidates := q.Filters.Apply(wide)
	if len(candidates) == 0 {
		// searched and found nothing anywhere: terminal, informational
		return &Outcome{
			Metadata:     buildMetadata(nil, q.Radius, expanded, false),
			NoneAnywhere: true,
		}, nil
	}

	c.log.Info("showing fallback results",
		"original_radius", q.Radius,
		"actual_radius", expanded,
		"candidates", len(candidates),
	)
	return &Outcome{
		Players:  candidates,
		Metadata: buildMetadata(candidates, q.Radius, expanded, true),
	}, nil
}
