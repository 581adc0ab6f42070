package comments

import (
	"context"
	"sync"

	"votecast/internal/models"
)

// ComposerState is the submission state of a comment being written.
type ComposerState int

// Composer states. A failed submission returns to the previous editing state
// with the draft preserved.
const (
	ComposerIdle ComposerState = iota
	ComposerComposing
	ComposerSubmitting
)

// Composer tracks one in-progress comment or reply composition for a poll
// view. Entering reply mode for a new target discards any other in-progress
// composition; only one reply box is open at a time.
type Composer struct {
	store  *Store
	pollID uint

	mu          sync.Mutex
	state       ComposerState
	draft       string
	replyTarget *uint // nil while composing a root comment
}

// NewComposer creates a Composer for the given poll.
func NewComposer(store *Store, pollID uint) *Composer {
	return &Composer{store: store, pollID: pollID}
}

// State returns the current composer state.
func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns the current draft text.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// ReplyTarget returns the root comment being replied to, or nil.
func (c *Composer) ReplyTarget() *uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replyTarget == nil {
		return nil
	}
	id := *c.replyTarget
	return &id
}

// BeginReply opens the reply box for the target root comment, discarding any
// other in-progress composition and its draft.
func (c *Composer) BeginReply(targetID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replyTarget != nil && *c.replyTarget == targetID {
		return
	}
	id := targetID
	c.replyTarget = &id
	c.draft = ""
	c.state = ComposerComposing
}

// BeginRoot switches to composing a root comment, discarding any reply draft.
func (c *Composer) BeginRoot() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replyTarget == nil && c.state == ComposerComposing {
		return
	}
	c.replyTarget = nil
	c.draft = ""
	c.state = ComposerComposing
}

// SetDraft records the in-progress text.
func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
	if c.state == ComposerIdle {
		c.state = ComposerComposing
	}
}

// Submit sends the draft. On success the composer resets to idle and the
// store reloads the thread; on failure the draft and target are preserved so
// the user can resubmit.
func (c *Composer) Submit(ctx context.Context) (*models.Comment, error) {
	c.mu.Lock()
	if c.state == ComposerSubmitting {
		c.mu.Unlock()
		return nil, models.NewValidationError("A submission is already in progress")
	}
	draft := c.draft
	target := c.replyTarget
	c.state = ComposerSubmitting
	c.mu.Unlock()

	created, err := c.store.Submit(ctx, c.pollID, draft, target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Input preserved for resubmission.
		c.state = ComposerComposing
		return nil, err
	}
	c.state = ComposerIdle
	c.draft = ""
	c.replyTarget = nil
	return created, nil
}

// Cancel discards the composition and returns to idle.
func (c *Composer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ComposerSubmitting {
		return
	}
	c.state = ComposerIdle
	c.draft = ""
	c.replyTarget = nil
}
