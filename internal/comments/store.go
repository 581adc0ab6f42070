// Package comments maintains the two-level threaded comment store: root
// comments with their replies, popularity-based best promotion, and
// independent reply pagination per root.
package comments

import (
	"context"
	"strings"
	"sync"
	"time"

	"votecast/internal/gateway"
	"votecast/internal/models"
	"votecast/internal/observability"
	"votecast/internal/session"
)

// BestLikeThreshold is the minimum like count for best promotion.
const BestLikeThreshold = 10

// DefaultPageSize is the page size for root and reply listings.
const DefaultPageSize = 10

// Thread is a snapshot of one poll's comment thread.
type Thread struct {
	Roots    []*models.Comment
	NextPage int
	IsLast   bool
}

// Store is the shared threaded comment store, one thread per poll.
// All methods are safe for concurrent use.
type Store struct {
	sessions session.Store
	comments gateway.CommentGateway
	pageSize int

	mu      sync.Mutex // guards threads map
	threads map[uint]*threadState

	now    func() time.Time
	logger *observability.StoreLogger
}

type threadState struct {
	mu        sync.Mutex
	roots     []*models.Comment
	seen      map[uint]struct{}
	nextPage  int
	isLast    bool
	replyPage map[uint]int // per-root reply cursor
	replyLast map[uint]bool
}

// NewStore creates a Store on the given comment gateway.
func NewStore(sessions session.Store, comments gateway.CommentGateway, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{
		sessions: sessions,
		comments: comments,
		pageSize: pageSize,
		threads:  make(map[uint]*threadState),
		now:      time.Now,
		logger:   observability.NewStoreLogger("comments"),
	}
}

func (s *Store) thread(pollID uint) *threadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.threads[pollID]
	if !ok {
		st = &threadState{
			seen:      make(map[uint]struct{}),
			replyPage: make(map[uint]int),
			replyLast: make(map[uint]bool),
		}
		s.threads[pollID] = st
	}
	return st
}

func (s *Store) requireSession(ctx context.Context) error {
	token, err := s.sessions.Get(ctx)
	if err != nil {
		return models.NewNetworkError("reading session credential", err)
	}
	if !session.Usable(token, s.now()) {
		return models.NewUnauthenticatedError("Sign in to join the discussion")
	}
	return nil
}

// LoadRootPage fetches one page of root comments (replies embedded). Page 0
// replaces the thread; later pages append with dedup. A failed fetch leaves
// the thread untouched.
func (s *Store) LoadRootPage(ctx context.Context, pollID uint, page int) (Thread, error) {
	st := s.thread(pollID)

	cp, err := s.comments.ListRoots(ctx, pollID, page, s.pageSize)
	if err != nil {
		s.logger.LogError(ctx, "load_roots", err)
		return st.snapshot(), err
	}
	if ctx.Err() != nil {
		return st.snapshot(), ctx.Err()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if page == 0 {
		st.roots = st.roots[:0]
		st.seen = make(map[uint]struct{})
		st.replyPage = make(map[uint]int)
		st.replyLast = make(map[uint]bool)
	}
	for _, c := range cp.Content {
		if _, dup := st.seen[c.ID]; dup {
			continue
		}
		st.seen[c.ID] = struct{}{}
		st.roots = append(st.roots, c)
		// Embedded replies arrive as page 0 of that root's reply thread.
		st.replyPage[c.ID] = 1
	}
	st.nextPage = page + 1
	st.isLast = cp.Last || len(cp.Content) < s.pageSize
	return st.snapshotLocked(), nil
}

// Submit creates a root comment, or a reply when parentID is set. A
// successful submission reloads root page 0: reply counts and best status may
// have shifted, so a full reload beats an incremental merge.
func (s *Store) Submit(ctx context.Context, pollID uint, content string, parentID *uint) (*models.Comment, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if parentID != nil {
		st := s.thread(pollID)
		st.mu.Lock()
		parent := findCommentLocked(st.roots, *parentID)
		st.mu.Unlock()
		if parent != nil && !parent.IsRoot() {
			// Replies attach to the nearest root; never nest deeper.
			return nil, models.NewValidationError("Replies to replies are not supported")
		}
	}

	created, err := s.comments.Create(ctx, pollID, content, parentID)
	if err != nil {
		return nil, err
	}
	s.logger.LogMutation(ctx, "submit", map[string]interface{}{
		"poll_id":    pollID,
		"comment_id": created.ID,
		"is_reply":   parentID != nil,
	})

	if _, err := s.LoadRootPage(ctx, pollID, 0); err != nil {
		// The comment exists server-side; surface the stale thread silently.
		s.logger.LogError(ctx, "reload_after_submit", err)
	}
	return created, nil
}

// Edit updates a comment's content and reloads the thread. The gateway
// enforces authorship; CanModify only hides controls in the UI.
func (s *Store) Edit(ctx context.Context, pollID, commentID uint, content string) error {
	if err := s.requireSession(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Comment cannot be empty")
	}
	if err := s.comments.Update(ctx, commentID, content); err != nil {
		return err
	}
	s.logger.LogMutation(ctx, "edit", map[string]interface{}{"comment_id": commentID})
	if _, err := s.LoadRootPage(ctx, pollID, 0); err != nil {
		s.logger.LogError(ctx, "reload_after_edit", err)
	}
	return nil
}

// Delete removes a comment and reloads the thread.
func (s *Store) Delete(ctx context.Context, pollID, commentID uint) error {
	if err := s.requireSession(ctx); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	s.logger.LogMutation(ctx, "delete", map[string]interface{}{"comment_id": commentID})
	if _, err := s.LoadRootPage(ctx, pollID, 0); err != nil {
		s.logger.LogError(ctx, "reload_after_delete", err)
	}
	return nil
}

// ToggleLike optimistically flips the like state of a single comment, root
// or reply, then applies the server's authoritative state. Failure restores
// the exact prior values.
func (s *Store) ToggleLike(ctx context.Context, pollID, commentID uint) error {
	if err := s.requireSession(ctx); err != nil {
		return err
	}
	st := s.thread(pollID)

	st.mu.Lock()
	target := findCommentLocked(st.roots, commentID)
	if target == nil {
		st.mu.Unlock()
		return models.NewNotFoundError("Comment", commentID)
	}
	prevLiked, prevCount := target.IsLiked, target.LikeCount
	if target.IsLiked {
		target.LikeCount--
	} else {
		target.LikeCount++
	}
	target.IsLiked = !target.IsLiked
	st.mu.Unlock()

	s.logger.LogMutation(ctx, "toggle_like", map[string]interface{}{"comment_id": commentID})

	reaction, err := s.comments.ToggleLike(ctx, commentID)
	if err != nil {
		observability.OptimisticRollbacks.WithLabelValues("comment_like").Inc()
		s.logger.LogRollback(ctx, "toggle_like", err)
		st.mu.Lock()
		if t := findCommentLocked(st.roots, commentID); t != nil {
			t.IsLiked, t.LikeCount = prevLiked, prevCount
		}
		st.mu.Unlock()
		return err
	}

	st.mu.Lock()
	if t := findCommentLocked(st.roots, commentID); t != nil {
		t.IsLiked = reaction.IsLiked
		t.LikeCount = reaction.LikeCount
	}
	st.mu.Unlock()
	return nil
}

// LoadMoreReplies fetches the next reply page for one root comment, leaving
// sibling cursors untouched.
func (s *Store) LoadMoreReplies(ctx context.Context, pollID, commentID uint) (*models.Comment, error) {
	st := s.thread(pollID)

	st.mu.Lock()
	root := findRootLocked(st.roots, commentID)
	if root == nil {
		st.mu.Unlock()
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if st.replyLast[commentID] {
		snapshot := root.Clone()
		st.mu.Unlock()
		return snapshot, nil
	}
	page := st.replyPage[commentID]
	st.mu.Unlock()

	cp, err := s.comments.ListReplies(ctx, commentID, page, s.pageSize)
	if err != nil {
		s.logger.LogError(ctx, "load_replies", err)
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	root = findRootLocked(st.roots, commentID)
	if root == nil {
		// The thread was reloaded while we fetched; discard.
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	existing := make(map[uint]struct{}, len(root.Replies))
	for _, r := range root.Replies {
		existing[r.ID] = struct{}{}
	}
	for _, r := range cp.Content {
		if _, dup := existing[r.ID]; dup {
			continue
		}
		root.Replies = append(root.Replies, r)
	}
	st.replyPage[commentID] = page + 1
	st.replyLast[commentID] = cp.Last || len(cp.Content) < s.pageSize
	return root.Clone(), nil
}

// Thread returns a snapshot of the poll's thread.
func (s *Store) Thread(pollID uint) Thread {
	return s.thread(pollID).snapshot()
}

// Evict discards the poll's thread.
func (s *Store) Evict(pollID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, pollID)
}

// CanModify reports whether the UI should show edit/delete controls. This is
// an affordance only; the gateway is the security boundary.
func CanModify(c *models.Comment, currentUserID uint) bool {
	return c != nil && c.AuthorID == currentUserID
}

// findCommentLocked searches roots and their replies for the comment.
func findCommentLocked(roots []*models.Comment, id uint) *models.Comment {
	for _, root := range roots {
		if root.ID == id {
			return root
		}
		for _, reply := range root.Replies {
			if reply.ID == id {
				return reply
			}
		}
	}
	return nil
}

// findRootLocked returns the root comment with the given ID.
func findRootLocked(roots []*models.Comment, id uint) *models.Comment {
	for _, root := range roots {
		if root.ID == id {
			return root
		}
	}
	return nil
}

func (st *threadState) snapshot() Thread {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked()
}

func (st *threadState) snapshotLocked() Thread {
	roots := make([]*models.Comment, len(st.roots))
	for i, r := range st.roots {
		roots[i] = r.Clone()
	}
	return Thread{Roots: roots, NextPage: st.nextPage, IsLast: st.isLast}
}
