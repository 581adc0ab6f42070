package stubgateway

import (
	"context"
	"errors"

	"votecast/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *CommentRow) error
	GetRow(ctx context.Context, id uint) (*CommentRow, error)
	ListRoots(ctx context.Context, voteID uint, page, size int, currentUserID uint) ([]*models.Comment, bool, error)
	ListReplies(ctx context.Context, parentID uint, page, size int, currentUserID uint) ([]*models.Comment, bool, error)
	Update(ctx context.Context, comment *CommentRow) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, commentID uint) (bool, int64, error)
}

// commentRepository implements CommentRepository.
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *CommentRow) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetRow(ctx context.Context, id uint) (*CommentRow, error) {
	var row CommentRow
	if err := r.db.WithContext(ctx).Preload("Author").First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *commentRepository) ListRoots(ctx context.Context, voteID uint, page, size int, currentUserID uint) ([]*models.Comment, bool, error) {
	var rows []*CommentRow
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("vote_id = ? AND parent_id IS NULL", voteID).
		Order("created_at ASC").
		Limit(size + 1).
		Offset(page * size).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}

	last := len(rows) <= size
	if !last {
		rows = rows[:size]
	}

	roots := make([]*models.Comment, 0, len(rows))
	for _, row := range rows {
		root, err := r.toComment(ctx, row, currentUserID)
		if err != nil {
			return nil, false, err
		}
		// Roots carry their first reply page embedded.
		replies, _, err := r.ListReplies(ctx, row.ID, 0, size, currentUserID)
		if err != nil {
			return nil, false, err
		}
		root.Replies = replies
		roots = append(roots, root)
	}
	return roots, last, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, page, size int, currentUserID uint) ([]*models.Comment, bool, error) {
	var rows []*CommentRow
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Limit(size + 1).
		Offset(page * size).
		Find(&rows).Error
	if err != nil {
		return nil, false, err
	}

	last := len(rows) <= size
	if !last {
		rows = rows[:size]
	}

	replies := make([]*models.Comment, 0, len(rows))
	for _, row := range rows {
		reply, err := r.toComment(ctx, row, currentUserID)
		if err != nil {
			return nil, false, err
		}
		replies = append(replies, reply)
	}
	return replies, last, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *CommentRow) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	// Deleting a root takes its replies with it.
	if err := r.db.WithContext(ctx).Where("parent_id = ?", id).Delete(&CommentRow{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&CommentRow{}, id).Error
}

func (r *commentRepository) ToggleLike(ctx context.Context, userID, commentID uint) (bool, int64, error) {
	if err := r.db.WithContext(ctx).Select("id").First(&CommentRow{}, commentID).Error; err != nil {
		return false, 0, err
	}

	var existing CommentLike
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(&existing).Error

	liked := false
	switch {
	case err == nil:
		if delErr := r.db.WithContext(ctx).Delete(&existing).Error; delErr != nil {
			return false, 0, delErr
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if createErr := r.db.WithContext(ctx).Create(&CommentLike{
			UserID:    userID,
			CommentID: commentID,
		}).Error; createErr != nil {
			return false, 0, createErr
		}
		liked = true
	default:
		return false, 0, err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error; err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// toComment assembles the wire representation of a comment row.
func (r *commentRepository) toComment(ctx context.Context, row *CommentRow, currentUserID uint) (*models.Comment, error) {
	db := r.db.WithContext(ctx)

	var likeCount int64
	if err := db.Model(&CommentLike{}).Where("comment_id = ?", row.ID).Count(&likeCount).Error; err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:         row.ID,
		AuthorID:   row.AuthorID,
		AuthorName: row.Author.Name,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
		LikeCount:  int(likeCount),
		ParentID:   row.ParentID,
	}

	if currentUserID != 0 {
		var liked int64
		if err := db.Model(&CommentLike{}).
			Where("comment_id = ? AND user_id = ?", row.ID, currentUserID).
			Count(&liked).Error; err != nil {
			return nil, err
		}
		comment.IsLiked = liked > 0
	}

	return comment, nil
}
