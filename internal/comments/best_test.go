package comments

import (
	"testing"

	"votecast/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLikes(likes ...int) []*models.Comment {
	list := make([]*models.Comment, len(likes))
	for i, n := range likes {
		list[i] = &models.Comment{ID: uint(i + 1), LikeCount: n}
	}
	return list
}

func TestPromoteBest(t *testing.T) {
	tests := []struct {
		name   string
		likes  []int
		wantID uint // 0 means no promotion
	}{
		{"nothing clears the threshold", []int{1, 2, 3}, 0},
		{"highest above threshold wins", []int{3, 15, 10}, 2},
		{"exactly at threshold qualifies", []int{9, 10}, 2},
		{"tie resolves to first in order", []int{12, 12, 11}, 1},
		{"empty list", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := PromoteBest(withLikes(tt.likes...))
			if tt.wantID == 0 {
				assert.Nil(t, best)
				return
			}
			require.NotNil(t, best)
			assert.Equal(t, tt.wantID, best.ID)
		})
	}
}

func TestDisplayOrderPromotesBestFirst(t *testing.T) {
	list := withLikes(3, 15, 10, 12)

	ordered := DisplayOrder(list)

	require.Len(t, ordered, 4)
	assert.Equal(t, uint(2), ordered[0].ID)
	assert.Equal(t, uint(1), ordered[1].ID)
	assert.Equal(t, uint(3), ordered[2].ID)
	assert.Equal(t, uint(4), ordered[3].ID)
}

func TestDisplayOrderWithoutBestKeepsOrder(t *testing.T) {
	list := withLikes(1, 2, 3)

	ordered := DisplayOrder(list)

	require.Len(t, ordered, 3)
	for i, c := range ordered {
		assert.Equal(t, uint(i+1), c.ID)
	}
}

func TestDisplayOrderDoesNotMutateInput(t *testing.T) {
	list := withLikes(3, 15)

	_ = DisplayOrder(list)

	assert.Equal(t, uint(1), list[0].ID, "stored order must stay untouched")
	assert.Equal(t, uint(2), list[1].ID)
}
