package stubgateway

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	seedUserCount    = 8
	seedVoteCount    = 24
	seedPassword     = "password123"
	seedCommentSpan  = 6
	seedReplySpan    = 4
	seedOptionMin    = 2
	seedOptionMax    = 4
	seedBallotChance = 70
)

// Seed fills an empty stub database with demo users, polls, ballots,
// reactions and comment threads. Running it against a populated database is
// a no-op.
func Seed(db *gorm.DB) error {
	var existing int64
	if err := db.Model(&User{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}

	users := make([]*User, 0, seedUserCount)
	for i := 0; i < seedUserCount; i++ {
		user := &User{
			Name:     fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Password: string(hashed),
		}
		if err := db.Create(user).Error; err != nil {
			return err
		}
		users = append(users, user)
	}

	votes := make([]*Vote, 0, seedVoteCount)
	for i := 0; i < seedVoteCount; i++ {
		author := users[r.Intn(len(users))]
		vote := &Vote{
			AuthorID: author.ID,
			Title:    gofakeit.Question(),
			Body:     gofakeit.Paragraph(1, 2, 8, "\n"),
			Category: gofakeit.RandomString([]string{"food", "tech", "sports", "music", "misc"}),
			ClosesAt: time.Now().Add(time.Duration(r.Intn(14)+1) * 24 * time.Hour),
		}
		// A few polls close in the past so closed-poll paths get exercised.
		if r.Intn(5) == 0 {
			vote.ClosesAt = time.Now().Add(-time.Duration(r.Intn(48)+1) * time.Hour)
		}
		vote.CreatedAt = time.Now().Add(-time.Duration(r.Intn(30*24)) * time.Hour)

		optionCount := seedOptionMin + r.Intn(seedOptionMax-seedOptionMin+1)
		for pos := 0; pos < optionCount; pos++ {
			vote.Options = append(vote.Options, VoteOption{
				Content:  gofakeit.BuzzWord(),
				Position: pos,
			})
		}
		if r.Intn(3) == 0 {
			vote.Images = append(vote.Images, VoteImage{
				URL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
				Position: 0,
			})
		}

		if err := db.Create(vote).Error; err != nil {
			return err
		}
		votes = append(votes, vote)
	}

	for _, vote := range votes {
		for _, user := range users {
			if r.Intn(100) < seedBallotChance {
				option := vote.Options[r.Intn(len(vote.Options))]
				ballot := &Ballot{UserID: user.ID, VoteID: vote.ID, OptionID: option.ID}
				if err := db.Create(ballot).Error; err != nil {
					return err
				}
			}
			if r.Intn(3) == 0 {
				if err := db.Create(&Reaction{UserID: user.ID, VoteID: vote.ID, Kind: ReactionLike}).Error; err != nil {
					return err
				}
			}
			if r.Intn(5) == 0 {
				if err := db.Create(&Reaction{UserID: user.ID, VoteID: vote.ID, Kind: ReactionBookmark}).Error; err != nil {
					return err
				}
			}
		}

		rootCount := r.Intn(seedCommentSpan)
		for i := 0; i < rootCount; i++ {
			root := &CommentRow{
				VoteID:   vote.ID,
				AuthorID: users[r.Intn(len(users))].ID,
				Content:  gofakeit.Sentence(8),
			}
			if err := db.Create(root).Error; err != nil {
				return err
			}

			replyCount := r.Intn(seedReplySpan)
			for j := 0; j < replyCount; j++ {
				parentID := root.ID
				reply := &CommentRow{
					VoteID:   vote.ID,
					AuthorID: users[r.Intn(len(users))].ID,
					ParentID: &parentID,
					Content:  gofakeit.Sentence(6),
				}
				if err := db.Create(reply).Error; err != nil {
					return err
				}
				if r.Intn(2) == 0 {
					if err := db.Create(&CommentLike{
						UserID:    users[r.Intn(len(users))].ID,
						CommentID: reply.ID,
					}).Error; err != nil {
						return err
					}
				}
			}

			likeCount := r.Intn(len(users))
			for _, liker := range users[:likeCount] {
				if err := db.Create(&CommentLike{UserID: liker.ID, CommentID: root.ID}).Error; err != nil {
					return err
				}
			}
		}
	}

	return nil
}
