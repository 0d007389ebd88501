package discovery

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/oggyb/tennis-connect/internal/model"
)

// State is the presentation-facing snapshot of the discovery surface.
type State struct {
	Players      []model.Player
	Metadata     *Metadata
	NoneAnywhere bool
	Loading      bool
	Err          error
}

// Session serializes search results for one surface. Each issued search
// gets a monotonic sequence number; a completion whose sequence is not
// the latest issued is discarded, so rapid filter changes can never
// overwrite fresher results with stale ones.
type Session struct {
	client *Client

	seq atomic.Uint64

	mu    sync.Mutex
	state State
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// Search issues a query and folds its completion into the session
// state under the latest-query-wins discipline. The returned state is
// the session snapshot after this completion was applied or discarded.
func (s *Session) Search(ctx context.Context, q Query) State {
	seq := s.seq.Add(1)

	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()

	out, err := s.client.Search(ctx, q)
	return s.apply(seq, out, err)
}

// apply folds one completed search into the state unless a newer search
// has been issued since.
func (s *Session) apply(seq uint64, out *Outcome, err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq.Load() {
		// stale completion: a fresher query is in flight or done
		return s.state
	}

	s.state.Loading = false
	s.state.Err = err
	if err != nil {
		return s.state
	}
	s.state.Players = out.Players
	md := out.Metadata
	s.state.Metadata = &md
	s.state.NoneAnywhere = out.NoneAnywhere
	return s.state
}

// Current returns the session snapshot.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
