package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"votecast/internal/models"
)

// StorageKind selects one of the saved-item listings.
type StorageKind string

// Storage listing kinds.
const (
	StorageVoted      StorageKind = "voted"
	StorageLiked      StorageKind = "liked"
	StorageBookmarked StorageKind = "bookmarked"
)

// PollPage is one page of a paginated poll listing.
type PollPage struct {
	Content []*models.Poll `json:"content"`
	Number  int            `json:"number"`
	Last    bool           `json:"last"`
}

// UserPage is a user profile together with one page of that user's posts.
type UserPage struct {
	Profile models.UserProfile `json:"profile"`
	Posts   PollPage           `json:"posts"`
}

// ReactionState is the toggled state returned by the reaction endpoints.
type ReactionState struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// CreateVoteInput is the payload for creating a poll.
type CreateVoteInput struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Category string            `json:"category"`
	ClosesAt time.Time         `json:"closesAt"`
	Options  []string          `json:"options"`
	Images   []models.ImageRef `json:"images,omitempty"`
}

// PollGateway is the client for the remote poll gateway.
type PollGateway interface {
	LoadMainPage(ctx context.Context, page, size int) (*PollPage, error)
	GetVote(ctx context.Context, id uint) (*models.Poll, error)
	CreateVote(ctx context.Context, in CreateVoteInput) (*models.Poll, error)
	DeleteVote(ctx context.Context, id uint) error
	SelectOption(ctx context.Context, voteID, optionID uint) error
	ToggleLike(ctx context.Context, voteID uint) (*ReactionState, error)
	ToggleBookmark(ctx context.Context, voteID uint) (*ReactionState, error)
	LoadStorage(ctx context.Context, kind StorageKind, page, size int) (*PollPage, error)
	LoadUserPage(ctx context.Context, userID uint, page int) (*UserPage, error)
}

type pollGateway struct {
	client *Client
}

// NewPollGateway creates a PollGateway on the shared client.
func NewPollGateway(client *Client) PollGateway {
	return &pollGateway{client: client}
}

func (g *pollGateway) LoadMainPage(ctx context.Context, page, size int) (*PollPage, error) {
	var out PollPage
	path := fmt.Sprintf("/vote/load-main-page-votes?page=%d&size=%d", page, size)
	if err := g.client.do(ctx, "GET", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *pollGateway) GetVote(ctx context.Context, id uint) (*models.Poll, error) {
	var out models.Poll
	if err := g.client.do(ctx, "GET", fmt.Sprintf("/vote/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *pollGateway) CreateVote(ctx context.Context, in CreateVoteInput) (*models.Poll, error) {
	var out models.Poll
	if err := g.client.do(ctx, "POST", "/vote", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *pollGateway) DeleteVote(ctx context.Context, id uint) error {
	return g.client.do(ctx, "DELETE", fmt.Sprintf("/vote/%d", id), nil, nil, true)
}

func (g *pollGateway) SelectOption(ctx context.Context, voteID, optionID uint) error {
	path := fmt.Sprintf("/vote/%d/options/%d/select", voteID, optionID)
	return g.client.do(ctx, "POST", path, nil, nil, true)
}

func (g *pollGateway) ToggleLike(ctx context.Context, voteID uint) (*ReactionState, error) {
	var out ReactionState
	path := fmt.Sprintf("/reaction/like?voteId=%d", voteID)
	if err := g.client.do(ctx, "POST", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *pollGateway) ToggleBookmark(ctx context.Context, voteID uint) (*ReactionState, error) {
	var out ReactionState
	path := fmt.Sprintf("/reaction/bookmark?voteId=%d", voteID)
	if err := g.client.do(ctx, "POST", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *pollGateway) LoadStorage(ctx context.Context, kind StorageKind, page, size int) (*PollPage, error) {
	var out PollPage
	path := fmt.Sprintf("/storage/%s?page=%d&size=%d", url.PathEscape(string(kind)), page, size)
	if err := g.client.do(ctx, "GET", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *pollGateway) LoadUserPage(ctx context.Context, userID uint, page int) (*UserPage, error) {
	var out UserPage
	path := fmt.Sprintf("/user/%d?page=%d", userID, page)
	if err := g.client.do(ctx, "GET", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}
