package feed

import (
	"context"
	"fmt"
	"sync"

	"votecast/internal/gateway"
	"votecast/internal/models"
	"votecast/internal/observability"
)

// DefaultPageSize is the page size requested from the poll gateway.
const DefaultPageSize = 10

// Page is a snapshot of one tab's cached state.
type Page struct {
	Polls    []*models.Poll
	NextPage int
	IsLast   bool
}

// Manager is the shared feed cache. One instance serves every screen; all
// methods are safe for concurrent use. Mutating operations on the same tab
// are serialized by a per-tab writer lock, so a refresh can never interleave
// with a load-more on the same tab.
type Manager struct {
	polls    gateway.PollGateway
	pageSize int

	mu   sync.Mutex // guards tabs map
	tabs map[Tab]*tabState

	logger *observability.StoreLogger
}

type tabState struct {
	// loadMu is held for the whole duration of any page fetch on this tab.
	// LoadNextPage only try-locks it: an overlapping call is dropped, never
	// queued.
	loadMu sync.Mutex

	// mu guards the fields below.
	mu       sync.Mutex
	polls    []*models.Poll
	seen     map[uint]struct{}
	nextPage int
	isLast   bool
}

// NewManager creates a Manager on the given poll gateway.
func NewManager(polls gateway.PollGateway, pageSize int) *Manager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Manager{
		polls:    polls,
		pageSize: pageSize,
		tabs:     make(map[Tab]*tabState),
		logger:   observability.NewStoreLogger("feed"),
	}
}

func (m *Manager) tab(tab Tab) *tabState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tabs[tab]
	if !ok {
		st = &tabState{seen: make(map[uint]struct{})}
		m.tabs[tab] = st
	}
	return st
}

// LoadFirstPage replaces any cached state for the tab with page 0.
// On failure the existing cache is left untouched.
func (m *Manager) LoadFirstPage(ctx context.Context, tab Tab) (Page, error) {
	return m.loadFresh(ctx, tab, "first")
}

// Refresh reloads page 0 for the tab. Cache semantics are identical to
// LoadFirstPage; scroll restoration is the caller's concern.
func (m *Manager) Refresh(ctx context.Context, tab Tab) (Page, error) {
	return m.loadFresh(ctx, tab, "refresh")
}

func (m *Manager) loadFresh(ctx context.Context, tab Tab, load string) (Page, error) {
	st := m.tab(tab)
	st.loadMu.Lock()
	defer st.loadMu.Unlock()

	observability.FeedPageLoads.WithLabelValues(tab.Kind(), load).Inc()

	polls, last, err := m.fetch(ctx, tab, 0)
	if err != nil {
		m.logger.LogError(ctx, load, err)
		return st.snapshot(), err
	}
	if ctx.Err() != nil {
		// The initiating view is gone; discard the result.
		return st.snapshot(), ctx.Err()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.polls = st.polls[:0]
	st.seen = make(map[uint]struct{})
	st.appendLocked(polls)
	st.nextPage = 1
	st.isLast = last
	return st.snapshotLocked(), nil
}

// LoadNextPage appends the next page to the tab. It is a no-op returning the
// current state when the tab is exhausted or another load on the same tab is
// already in flight.
func (m *Manager) LoadNextPage(ctx context.Context, tab Tab) (Page, error) {
	st := m.tab(tab)

	st.mu.Lock()
	if st.isLast {
		defer st.mu.Unlock()
		return st.snapshotLocked(), nil
	}
	st.mu.Unlock()

	if !st.loadMu.TryLock() {
		// A load for this tab is in flight; drop, never queue.
		return st.snapshot(), nil
	}
	defer st.loadMu.Unlock()

	// Re-read the cursor: a refresh may have completed in the meantime.
	st.mu.Lock()
	if st.isLast {
		defer st.mu.Unlock()
		return st.snapshotLocked(), nil
	}
	page := st.nextPage
	st.mu.Unlock()

	observability.FeedPageLoads.WithLabelValues(tab.Kind(), "next").Inc()

	polls, last, err := m.fetch(ctx, tab, page)
	if err != nil {
		m.logger.LogError(ctx, "next", err)
		return st.snapshot(), err
	}
	if ctx.Err() != nil {
		return st.snapshot(), ctx.Err()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.appendLocked(polls)
	st.nextPage = page + 1
	st.isLast = last
	return st.snapshotLocked(), nil
}

// fetch retrieves one page for the tab from the gateway. The second return
// value reports whether the listing is exhausted.
func (m *Manager) fetch(ctx context.Context, tab Tab, page int) ([]*models.Poll, bool, error) {
	switch tab.Kind() {
	case "main":
		pp, err := m.polls.LoadMainPage(ctx, page, m.pageSize)
		if err != nil {
			return nil, false, err
		}
		return pp.Content, pp.Last || len(pp.Content) < m.pageSize, nil
	case "storage":
		kind, ok := tab.storageKind()
		if !ok {
			return nil, false, models.NewValidationError(fmt.Sprintf("Unknown storage tab %q", tab))
		}
		pp, err := m.polls.LoadStorage(ctx, kind, page, m.pageSize)
		if err != nil {
			return nil, false, err
		}
		return pp.Content, pp.Last || len(pp.Content) < m.pageSize, nil
	case "user":
		id, ok := tab.subjectID()
		if !ok {
			return nil, false, models.NewValidationError(fmt.Sprintf("Malformed user tab %q", tab))
		}
		up, err := m.polls.LoadUserPage(ctx, id, page)
		if err != nil {
			return nil, false, err
		}
		return up.Posts.Content, up.Posts.Last || len(up.Posts.Content) < m.pageSize, nil
	case "vote":
		id, ok := tab.subjectID()
		if !ok {
			return nil, false, models.NewValidationError(fmt.Sprintf("Malformed vote tab %q", tab))
		}
		poll, err := m.polls.GetVote(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return []*models.Poll{poll}, true, nil
	default:
		return nil, false, models.NewValidationError(fmt.Sprintf("Unknown tab %q", tab))
	}
}

// Page returns a snapshot of the tab's cached state.
func (m *Manager) Page(tab Tab) Page {
	return m.tab(tab).snapshot()
}

// Lookup returns a clone of the first cached occurrence of the poll, or nil
// when no tab currently holds it.
func (m *Manager) Lookup(pollID uint) *models.Poll {
	for _, st := range m.states() {
		st.mu.Lock()
		for _, p := range st.polls {
			if p.ID == pollID {
				clone := p.Clone()
				st.mu.Unlock()
				return clone
			}
		}
		st.mu.Unlock()
	}
	return nil
}

// PatchEntity applies fn to every cached occurrence of the poll across all
// tabs. After any successful mutation every mounted view converges without
// its own network refresh.
func (m *Manager) PatchEntity(pollID uint, fn func(*models.Poll)) {
	for _, st := range m.states() {
		st.mu.Lock()
		for _, p := range st.polls {
			if p.ID == pollID {
				fn(p)
			}
		}
		st.mu.Unlock()
	}
}

// RemoveEntity drops the poll from every tab; used after an author delete.
func (m *Manager) RemoveEntity(pollID uint) {
	for _, st := range m.states() {
		st.mu.Lock()
		kept := st.polls[:0]
		for _, p := range st.polls {
			if p.ID == pollID {
				delete(st.seen, p.ID)
				continue
			}
			kept = append(kept, p)
		}
		st.polls = kept
		st.mu.Unlock()
	}
}

// Evict discards the tab's cached state; the next LoadFirstPage rebuilds it.
func (m *Manager) Evict(tab Tab) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tabs, tab)
}

func (m *Manager) states() []*tabState {
	m.mu.Lock()
	defer m.mu.Unlock()
	states := make([]*tabState, 0, len(m.tabs))
	for _, st := range m.tabs {
		states = append(states, st)
	}
	return states
}

// appendLocked appends polls, skipping IDs the tab already holds.
// Callers must hold st.mu.
func (st *tabState) appendLocked(polls []*models.Poll) {
	for _, p := range polls {
		if _, dup := st.seen[p.ID]; dup {
			continue
		}
		st.seen[p.ID] = struct{}{}
		st.polls = append(st.polls, p)
	}
}

func (st *tabState) snapshot() Page {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked()
}

func (st *tabState) snapshotLocked() Page {
	polls := make([]*models.Poll, len(st.polls))
	copy(polls, st.polls)
	return Page{Polls: polls, NextPage: st.nextPage, IsLast: st.isLast}
}
