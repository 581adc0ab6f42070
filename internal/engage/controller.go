// Package engage applies optimistic mutations to cached polls: vote-option
// selection, like toggling, and bookmark toggling. The local copy changes
// first; the gateway call follows; failure restores the exact prior state.
package engage

import (
	"context"
	"time"

	"votecast/internal/feed"
	"votecast/internal/gateway"
	"votecast/internal/models"
	"votecast/internal/observability"
	"votecast/internal/session"
)

// Controller is the shared optimistic mutation controller. One instance is
// injected into every screen so all views mutate the same cache.
type Controller struct {
	sessions session.Store
	polls    gateway.PollGateway
	cache    *feed.Manager
	now      func() time.Time
	logger   *observability.StoreLogger
}

// NewController creates a Controller over the shared feed cache.
func NewController(sessions session.Store, polls gateway.PollGateway, cache *feed.Manager) *Controller {
	return &Controller{
		sessions: sessions,
		polls:    polls,
		cache:    cache,
		now:      time.Now,
		logger:   observability.NewStoreLogger("engage"),
	}
}

// requireSession fails with UNAUTHENTICATED before any network call or local
// mutation when no usable credential is stored.
func (c *Controller) requireSession(ctx context.Context) error {
	token, err := c.sessions.Get(ctx)
	if err != nil {
		return models.NewNetworkError("reading session credential", err)
	}
	if !session.Usable(token, c.now()) {
		return models.NewUnauthenticatedError("Sign in to interact with polls")
	}
	return nil
}

// SelectOption records the user's vote for an option. A poll accepts exactly
// one vote per user for its lifetime: re-selecting the already chosen option
// is a no-op, any other change is rejected, and closed polls reject outright.
func (c *Controller) SelectOption(ctx context.Context, pollID, optionID uint) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	before := c.cache.Lookup(pollID)
	if before == nil {
		return models.NewNotFoundError("Poll", pollID)
	}
	if before.Closed(c.now()) {
		return models.NewValidationError("Voting on this poll has closed")
	}
	if before.HasVoted() {
		if *before.SelectedOptionID == optionID {
			return nil
		}
		return models.NewValidationError("You have already voted on this poll")
	}
	if before.Option(optionID) == nil {
		return models.NewValidationError("Unknown poll option")
	}

	c.cache.PatchEntity(pollID, func(p *models.Poll) {
		id := optionID
		p.SelectedOptionID = &id
		if opt := p.Option(optionID); opt != nil {
			opt.VoteCount++
		}
	})
	c.logger.LogMutation(ctx, "select_option", map[string]interface{}{
		"poll_id":   pollID,
		"option_id": optionID,
	})

	if err := c.polls.SelectOption(ctx, pollID, optionID); err != nil {
		c.rollback(ctx, "select_option", pollID, before, err)
		return err
	}

	c.reconcile(ctx, pollID)
	return nil
}

// ToggleLike flips the like flag and counter, then reconciles with the
// server's authoritative counts.
func (c *Controller) ToggleLike(ctx context.Context, pollID uint) error {
	return c.toggleReaction(ctx, pollID, "toggle_like",
		func(p *models.Poll) {
			if p.IsLiked {
				p.LikeCount--
			} else {
				p.LikeCount++
			}
			p.IsLiked = !p.IsLiked
		},
		func(ctx context.Context) error {
			_, err := c.polls.ToggleLike(ctx, pollID)
			return err
		})
}

// ToggleBookmark flips the bookmark flag. Bookmarks carry no public counter
// on the poll; only the flag is mutated locally.
func (c *Controller) ToggleBookmark(ctx context.Context, pollID uint) error {
	return c.toggleReaction(ctx, pollID, "toggle_bookmark",
		func(p *models.Poll) {
			p.IsBookmarked = !p.IsBookmarked
		},
		func(ctx context.Context) error {
			_, err := c.polls.ToggleBookmark(ctx, pollID)
			return err
		})
}

func (c *Controller) toggleReaction(ctx context.Context, pollID uint, op string, patch func(*models.Poll), call func(context.Context) error) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	before := c.cache.Lookup(pollID)
	if before == nil {
		return models.NewNotFoundError("Poll", pollID)
	}

	c.cache.PatchEntity(pollID, patch)
	c.logger.LogMutation(ctx, op, map[string]interface{}{"poll_id": pollID})

	if err := call(ctx); err != nil {
		c.rollback(ctx, op, pollID, before, err)
		return err
	}

	c.reconcile(ctx, pollID)
	return nil
}

// DeletePoll removes the user's own poll and drops it from every cached tab.
// Authoritative author enforcement lives server-side.
func (c *Controller) DeletePoll(ctx context.Context, pollID uint) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	if err := c.polls.DeleteVote(ctx, pollID); err != nil {
		return err
	}
	c.cache.RemoveEntity(pollID)
	c.logger.LogMutation(ctx, "delete_poll", map[string]interface{}{"poll_id": pollID})
	return nil
}

// rollback restores every cached copy to the pre-mutation snapshot.
func (c *Controller) rollback(ctx context.Context, op string, pollID uint, before *models.Poll, cause error) {
	observability.OptimisticRollbacks.WithLabelValues(op).Inc()
	c.logger.LogRollback(ctx, op, cause)
	c.cache.PatchEntity(pollID, func(p *models.Poll) {
		*p = *before.Clone()
	})
}

// reconcile overwrites every cached copy with the server's representation;
// concurrent votes by other users may have shifted the totals. Best effort:
// a failed re-fetch keeps the optimistic copy, which the next page load
// corrects.
func (c *Controller) reconcile(ctx context.Context, pollID uint) {
	authoritative, err := c.polls.GetVote(ctx, pollID)
	if err != nil {
		c.logger.LogError(ctx, "reconcile", err)
		return
	}
	c.cache.PatchEntity(pollID, func(p *models.Poll) {
		*p = *authoritative.Clone()
	})
}
