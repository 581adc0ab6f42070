// Package stubgateway is an in-process implementation of the remote poll and
// comment gateways, used for local development and integration tests. It is
// not the production backend and never faces real traffic.
package stubgateway

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account on the stub.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Vote is a poll row.
type Vote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Category  string         `gorm:"index" json:"category"`
	ClosesAt  time.Time      `gorm:"not null" json:"closes_at"`
	Options   []VoteOption   `gorm:"foreignKey:VoteID" json:"options"`
	Images    []VoteImage    `gorm:"foreignKey:VoteID" json:"images"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VoteOption is one selectable choice of a vote.
type VoteOption struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	VoteID   uint   `gorm:"not null;index" json:"vote_id"`
	Content  string `gorm:"not null" json:"content"`
	ImageURL string `json:"image_url"`
	Position int    `json:"position"`
}

// VoteImage is an image attached to a vote.
type VoteImage struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	VoteID   uint   `gorm:"not null;index" json:"vote_id"`
	URL      string `gorm:"not null" json:"url"`
	Position int    `json:"position"`
}

// Ballot records a user's single vote on a poll.
// The combination of UserID and VoteID must be unique.
type Ballot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ballot_user_vote" json:"user_id"`
	VoteID    uint      `gorm:"not null;uniqueIndex:idx_ballot_user_vote" json:"vote_id"`
	OptionID  uint      `gorm:"not null;index" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Reaction kinds.
const (
	ReactionLike     = "like"
	ReactionBookmark = "bookmark"
)

// Reaction records a like or bookmark toggle state.
// A user holds at most one reaction row per vote and kind.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_vote_kind" json:"user_id"`
	VoteID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_vote_kind" json:"vote_id"`
	Kind      string    `gorm:"not null;uniqueIndex:idx_reaction_user_vote_kind" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRow is a stored comment. ParentID is nil for roots; replies always
// reference a root, never another reply.
type CommentRow struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	VoteID    uint           `gorm:"not null;index" json:"vote_id"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Content   string         `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentLike records a user's like on a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_clike_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_clike_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
