package gateway

import (
	"context"
	"fmt"

	"votecast/internal/models"
)

// CommentPage is one page of a paginated comment listing.
type CommentPage struct {
	Content []*models.Comment `json:"content"`
	Last    bool              `json:"last"`
}

// CommentReaction is the state returned by the comment like endpoint.
type CommentReaction struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

// CommentGateway is the client for the remote comment gateway.
type CommentGateway interface {
	ListRoots(ctx context.Context, voteID uint, page, size int) (*CommentPage, error)
	ListReplies(ctx context.Context, parentID uint, page, size int) (*CommentPage, error)
	Create(ctx context.Context, voteID uint, content string, parentID *uint) (*models.Comment, error)
	Update(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, id uint) (*CommentReaction, error)
}

type commentGateway struct {
	client *Client
}

// NewCommentGateway creates a CommentGateway on the shared client.
func NewCommentGateway(client *Client) CommentGateway {
	return &commentGateway{client: client}
}

func (g *commentGateway) ListRoots(ctx context.Context, voteID uint, page, size int) (*CommentPage, error) {
	var out CommentPage
	path := fmt.Sprintf("/comment/%d?page=%d&size=%d", voteID, page, size)
	if err := g.client.do(ctx, "GET", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *commentGateway) ListReplies(ctx context.Context, parentID uint, page, size int) (*CommentPage, error) {
	var out CommentPage
	path := fmt.Sprintf("/comment/%d/replies?page=%d&size=%d", parentID, page, size)
	if err := g.client.do(ctx, "GET", path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *commentGateway) Create(ctx context.Context, voteID uint, content string, parentID *uint) (*models.Comment, error) {
	in := struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parentId,omitempty"`
	}{Content: content, ParentID: parentID}

	var out models.Comment
	if err := g.client.do(ctx, "POST", fmt.Sprintf("/comment/%d", voteID), in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *commentGateway) Update(ctx context.Context, id uint, content string) error {
	in := struct {
		Content string `json:"content"`
	}{Content: content}
	return g.client.do(ctx, "PUT", fmt.Sprintf("/comment/%d", id), in, nil, true)
}

func (g *commentGateway) Delete(ctx context.Context, id uint) error {
	return g.client.do(ctx, "DELETE", fmt.Sprintf("/comment/%d", id), nil, nil, true)
}

func (g *commentGateway) ToggleLike(ctx context.Context, id uint) (*CommentReaction, error) {
	var out CommentReaction
	if err := g.client.do(ctx, "POST", fmt.Sprintf("/comment-like/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}
