// Package models contains data structures for the application's domain models.
package models

import (
	"math"
	"time"
)

// Poll represents a vote post as served by the poll gateway.
type Poll struct {
	ID               uint       `json:"id"`
	AuthorID         uint       `json:"authorId"`
	AuthorName       string     `json:"authorName"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Category         string     `json:"category"`
	CreatedAt        time.Time  `json:"createdAt"`
	ClosesAt         time.Time  `json:"closesAt"`
	Options          []Option   `json:"options"`
	Images           []ImageRef `json:"images,omitempty"`
	LikeCount        int        `json:"likeCount"`
	CommentCount     int        `json:"commentCount"`
	IsLiked          bool       `json:"isLiked"`
	IsBookmarked     bool       `json:"isBookmarked"`
	SelectedOptionID *uint      `json:"selectedOptionId,omitempty"`
}

// Option is a single selectable choice within a poll.
type Option struct {
	ID        uint   `json:"id"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl,omitempty"`
	VoteCount int    `json:"voteCount"`
}

// ImageRef points at an uploaded image attached to a poll.
type ImageRef struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Closed reports whether voting has ended as of now.
// Once a poll is closed its SelectedOptionID must never change.
func (p *Poll) Closed(now time.Time) bool {
	return !now.Before(p.ClosesAt)
}

// HasVoted reports whether the current user has already cast a vote.
func (p *Poll) HasVoted() bool {
	return p.SelectedOptionID != nil
}

// TotalVotes sums the vote counts of all options.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, opt := range p.Options {
		total += opt.VoteCount
	}
	return total
}

// Option returns the option with the given ID, or nil.
func (p *Poll) Option(optionID uint) *Option {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the poll. Cached copies are cloned before
// being handed to callers so optimistic rollback snapshots stay stable.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Options = make([]Option, len(p.Options))
	copy(clone.Options, p.Options)
	if len(p.Images) > 0 {
		clone.Images = make([]ImageRef, len(p.Images))
		copy(clone.Images, p.Images)
	}
	if p.SelectedOptionID != nil {
		id := *p.SelectedOptionID
		clone.SelectedOptionID = &id
	}
	return &clone
}

// Percentage returns the option's share of totalVotes rounded to the nearest
// whole percent. A zero total yields 0 for every option.
func (o *Option) Percentage(totalVotes int) int {
	if totalVotes <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(o.VoteCount) / float64(totalVotes)))
}
