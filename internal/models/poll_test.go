package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePoll() *Poll {
	selected := uint(2)
	return &Poll{
		ID:         7,
		AuthorID:   3,
		AuthorName: "ada",
		Title:      "Tabs or spaces?",
		ClosesAt:   time.Now().Add(time.Hour),
		Options: []Option{
			{ID: 1, Content: "Tabs", VoteCount: 3},
			{ID: 2, Content: "Spaces", VoteCount: 6},
		},
		LikeCount:        4,
		IsLiked:          true,
		SelectedOptionID: &selected,
	}
}

func TestPollClosed(t *testing.T) {
	closesAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{ClosesAt: closesAt}

	assert.False(t, p.Closed(closesAt.Add(-time.Second)))
	assert.True(t, p.Closed(closesAt), "a poll closes exactly at its deadline")
	assert.True(t, p.Closed(closesAt.Add(time.Second)))
}

func TestPollTotalVotes(t *testing.T) {
	p := samplePoll()
	assert.Equal(t, 9, p.TotalVotes())

	empty := &Poll{}
	assert.Equal(t, 0, empty.TotalVotes())
}

func TestOptionPercentage(t *testing.T) {
	tests := []struct {
		name  string
		votes int
		total int
		want  int
	}{
		{"zero total yields zero", 0, 0, 0},
		{"negative total yields zero", 5, -1, 0},
		{"two thirds rounds up", 2, 3, 67},
		{"one third rounds down", 1, 3, 33},
		{"exact half", 5, 10, 50},
		{"all votes", 4, 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := &Option{VoteCount: tt.votes}
			assert.Equal(t, tt.want, opt.Percentage(tt.total))
		})
	}
}

func TestPollCloneIsDeep(t *testing.T) {
	p := samplePoll()
	clone := p.Clone()

	clone.Options[0].VoteCount = 99
	*clone.SelectedOptionID = 1
	clone.Title = "mutated"

	assert.Equal(t, 3, p.Options[0].VoteCount)
	assert.Equal(t, uint(2), *p.SelectedOptionID)
	assert.Equal(t, "Tabs or spaces?", p.Title)
}

func TestPollCloneNil(t *testing.T) {
	var p *Poll
	assert.Nil(t, p.Clone())
}

func TestPollOptionLookup(t *testing.T) {
	p := samplePoll()

	opt := p.Option(2)
	require.NotNil(t, opt)
	assert.Equal(t, "Spaces", opt.Content)

	assert.Nil(t, p.Option(42))
}

func TestCommentCloneIsDeep(t *testing.T) {
	parent := uint(1)
	c := &Comment{
		ID:      5,
		Content: "root",
		Replies: []*Comment{
			{ID: 6, Content: "reply", ParentID: &parent, LikeCount: 2},
		},
	}

	clone := c.Clone()
	clone.Replies[0].LikeCount = 99
	clone.Replies[0].Content = "mutated"

	assert.Equal(t, 2, c.Replies[0].LikeCount)
	assert.Equal(t, "reply", c.Replies[0].Content)
}

func TestCommentIsRoot(t *testing.T) {
	parent := uint(1)
	assert.True(t, (&Comment{}).IsRoot())
	assert.False(t, (&Comment{ParentID: &parent}).IsRoot())
}
