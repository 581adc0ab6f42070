package stubgateway

import (
	"context"
	"errors"
	"time"

	"votecast/internal/models"

	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers.
var (
	ErrAlreadyVoted = errors.New("user already voted on this poll")
	ErrVoteClosed   = errors.New("voting has closed")
)

// VoteRepository defines the interface for vote data operations.
type VoteRepository interface {
	Create(ctx context.Context, vote *Vote) error
	GetByID(ctx context.Context, id, currentUserID uint) (*models.Poll, error)
	AuthorOf(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, page, size int, currentUserID uint) ([]*models.Poll, bool, error)
	ListStorage(ctx context.Context, kind string, userID uint, page, size int) ([]*models.Poll, bool, error)
	ListByAuthor(ctx context.Context, authorID uint, page, size int, currentUserID uint) ([]*models.Poll, bool, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
	CastBallot(ctx context.Context, userID, voteID, optionID uint) error
	ToggleReaction(ctx context.Context, userID, voteID uint, kind string) (bool, int64, error)
}

// voteRepository implements VoteRepository.
type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Create(ctx context.Context, vote *Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) GetByID(ctx context.Context, id, currentUserID uint) (*models.Poll, error) {
	var vote Vote
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&vote, id).Error
	if err != nil {
		return nil, err
	}
	return r.toPoll(ctx, &vote, currentUserID)
}

func (r *voteRepository) AuthorOf(ctx context.Context, id uint) (uint, error) {
	var vote Vote
	if err := r.db.WithContext(ctx).Select("id", "author_id").First(&vote, id).Error; err != nil {
		return 0, err
	}
	return vote.AuthorID, nil
}

func (r *voteRepository) List(ctx context.Context, page, size int, currentUserID uint) ([]*models.Poll, bool, error) {
	var votes []*Vote
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at DESC").
		Limit(size + 1).
		Offset(page * size).
		Find(&votes).Error
	if err != nil {
		return nil, false, err
	}
	return r.assemblePage(ctx, votes, size, currentUserID)
}

func (r *voteRepository) ListStorage(ctx context.Context, kind string, userID uint, page, size int) ([]*models.Poll, bool, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") })

	switch kind {
	case "voted":
		q = q.Joins("JOIN ballots ON ballots.vote_id = votes.id AND ballots.user_id = ?", userID).
			Order("ballots.created_at DESC")
	case "liked", "bookmarked":
		reaction := ReactionLike
		if kind == "bookmarked" {
			reaction = ReactionBookmark
		}
		q = q.Joins("JOIN reactions ON reactions.vote_id = votes.id AND reactions.user_id = ? AND reactions.kind = ?", userID, reaction).
			Order("reactions.created_at DESC")
	default:
		return nil, false, gorm.ErrRecordNotFound
	}

	var votes []*Vote
	if err := q.Limit(size + 1).Offset(page * size).Find(&votes).Error; err != nil {
		return nil, false, err
	}
	return r.assemblePage(ctx, votes, size, userID)
}

func (r *voteRepository) ListByAuthor(ctx context.Context, authorID uint, page, size int, currentUserID uint) ([]*models.Poll, bool, error) {
	var votes []*Vote
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(size + 1).
		Offset(page * size).
		Find(&votes).Error
	if err != nil {
		return nil, false, err
	}
	return r.assemblePage(ctx, votes, size, currentUserID)
}

func (r *voteRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Vote{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *voteRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Vote{}, id).Error
}

func (r *voteRepository) CastBallot(ctx context.Context, userID, voteID, optionID uint) error {
	var vote Vote
	if err := r.db.WithContext(ctx).Select("id", "closes_at").First(&vote, voteID).Error; err != nil {
		return err
	}
	if !time.Now().Before(vote.ClosesAt) {
		return ErrVoteClosed
	}

	var existing Ballot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND vote_id = ?", userID, voteID).
		First(&existing).Error
	if err == nil {
		if existing.OptionID == optionID {
			// Idempotent re-selection of the same option.
			return nil
		}
		return ErrAlreadyVoted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.WithContext(ctx).Create(&Ballot{
		UserID:   userID,
		VoteID:   voteID,
		OptionID: optionID,
	}).Error
}

func (r *voteRepository) ToggleReaction(ctx context.Context, userID, voteID uint, kind string) (bool, int64, error) {
	if err := r.db.WithContext(ctx).Select("id").First(&Vote{}, voteID).Error; err != nil {
		return false, 0, err
	}

	var existing Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND vote_id = ? AND kind = ?", userID, voteID, kind).
		First(&existing).Error

	active := false
	switch {
	case err == nil:
		if delErr := r.db.WithContext(ctx).Delete(&existing).Error; delErr != nil {
			return false, 0, delErr
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if createErr := r.db.WithContext(ctx).Create(&Reaction{
			UserID: userID,
			VoteID: voteID,
			Kind:   kind,
		}).Error; createErr != nil {
			return false, 0, createErr
		}
		active = true
	default:
		return false, 0, err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&Reaction{}).
		Where("vote_id = ? AND kind = ?", voteID, kind).
		Count(&count).Error; err != nil {
		return false, 0, err
	}
	return active, count, nil
}

// assemblePage converts up to size+1 rows into poll DTOs and reports whether
// the listing is exhausted.
func (r *voteRepository) assemblePage(ctx context.Context, votes []*Vote, size int, currentUserID uint) ([]*models.Poll, bool, error) {
	last := len(votes) <= size
	if !last {
		votes = votes[:size]
	}
	polls := make([]*models.Poll, 0, len(votes))
	for _, v := range votes {
		poll, err := r.toPoll(ctx, v, currentUserID)
		if err != nil {
			return nil, false, err
		}
		polls = append(polls, poll)
	}
	return polls, last, nil
}

// toPoll assembles the wire representation of a vote for the current user.
func (r *voteRepository) toPoll(ctx context.Context, vote *Vote, currentUserID uint) (*models.Poll, error) {
	db := r.db.WithContext(ctx)

	var likeCount int64
	if err := db.Model(&Reaction{}).
		Where("vote_id = ? AND kind = ?", vote.ID, ReactionLike).
		Count(&likeCount).Error; err != nil {
		return nil, err
	}

	var commentCount int64
	if err := db.Model(&CommentRow{}).Where("vote_id = ?", vote.ID).Count(&commentCount).Error; err != nil {
		return nil, err
	}

	type optionCount struct {
		OptionID uint
		Total    int64
	}
	var counts []optionCount
	if err := db.Model(&Ballot{}).
		Select("option_id, COUNT(*) as total").
		Where("vote_id = ?", vote.ID).
		Group("option_id").
		Find(&counts).Error; err != nil {
		return nil, err
	}
	countByOption := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByOption[c.OptionID] = c.Total
	}

	poll := &models.Poll{
		ID:           vote.ID,
		AuthorID:     vote.AuthorID,
		AuthorName:   vote.Author.Name,
		Title:        vote.Title,
		Body:         vote.Body,
		Category:     vote.Category,
		CreatedAt:    vote.CreatedAt,
		ClosesAt:     vote.ClosesAt,
		LikeCount:    int(likeCount),
		CommentCount: int(commentCount),
	}
	for _, opt := range vote.Options {
		poll.Options = append(poll.Options, models.Option{
			ID:        opt.ID,
			Content:   opt.Content,
			ImageURL:  opt.ImageURL,
			VoteCount: int(countByOption[opt.ID]),
		})
	}
	for _, img := range vote.Images {
		poll.Images = append(poll.Images, models.ImageRef{URL: img.URL, Position: img.Position})
	}

	if currentUserID != 0 {
		var ballot Ballot
		err := db.Where("user_id = ? AND vote_id = ?", currentUserID, vote.ID).First(&ballot).Error
		if err == nil {
			id := ballot.OptionID
			poll.SelectedOptionID = &id
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var reactions []Reaction
		if err := db.Where("user_id = ? AND vote_id = ?", currentUserID, vote.ID).Find(&reactions).Error; err != nil {
			return nil, err
		}
		for _, re := range reactions {
			switch re.Kind {
			case ReactionLike:
				poll.IsLiked = true
			case ReactionBookmark:
				poll.IsBookmarked = true
			}
		}
	}

	return poll, nil
}
