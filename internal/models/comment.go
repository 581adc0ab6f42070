package models

import "time"

// Comment is a discussion entry on a poll. A nil ParentID marks a root
// comment; replies carry the root's ID and never nest further.
type Comment struct {
	ID         uint       `json:"id"`
	AuthorID   uint       `json:"authorId"`
	AuthorName string     `json:"authorName"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	LikeCount  int        `json:"likeCount"`
	IsLiked    bool       `json:"isLiked"`
	ParentID   *uint      `json:"parentId,omitempty"`
	Replies    []*Comment `json:"replies,omitempty"`
}

// IsRoot reports whether the comment is a top-level entry.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// Clone returns a copy of the comment including its reply list.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	clone := *c
	if c.ParentID != nil {
		id := *c.ParentID
		clone.ParentID = &id
	}
	if len(c.Replies) > 0 {
		clone.Replies = make([]*Comment, len(c.Replies))
		for i, r := range c.Replies {
			clone.Replies[i] = r.Clone()
		}
	}
	return &clone
}
