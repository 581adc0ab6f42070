package stubgateway

import (
	"errors"
	"strings"
	"time"

	"votecast/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultPageSize = 10

// pageParams extracts page/size query parameters.
func pageParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	size := c.QueryInt("size", defaultPageSize)
	if size <= 0 || size > 100 {
		size = defaultPageSize
	}
	return page, size
}

// parseID extracts a route parameter as a positive uint. On failure it
// writes a 400 response and returns false.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid "+param))
		return 0, false
	}
	return uint(id), true
}

// LoadMainPage serves the main feed listing.
func (s *Server) LoadMainPage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page, size := pageParams(c)

	polls, last, err := s.voteRepo.List(c.UserContext(), page, size, userID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"content": polls, "number": page, "last": last})
}

// GetVote serves a single poll.
func (s *Server) GetVote(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	poll, err := s.voteRepo.GetByID(c.UserContext(), id, userID)
	if err != nil {
		return respondNotFoundOr(c, err, "Vote", id)
	}
	return c.JSON(poll)
}

type createVoteRequest struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Category string            `json:"category"`
	ClosesAt time.Time         `json:"closesAt"`
	Options  []string          `json:"options"`
	Images   []models.ImageRef `json:"images"`
}

// CreateVote creates a poll authored by the current user.
func (s *Server) CreateVote(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req createVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Title) == "" {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Title is required"))
	}
	if len(req.Options) < 2 {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("A poll needs at least two options"))
	}
	if !req.ClosesAt.After(time.Now()) {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("closesAt must be in the future"))
	}

	vote := &Vote{
		AuthorID: userID,
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		ClosesAt: req.ClosesAt,
	}
	for i, content := range req.Options {
		if strings.TrimSpace(content) == "" {
			continue
		}
		vote.Options = append(vote.Options, VoteOption{Content: content, Position: i})
	}
	if len(vote.Options) < 2 {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("A poll needs at least two non-empty options"))
	}
	for _, img := range req.Images {
		vote.Images = append(vote.Images, VoteImage{URL: img.URL, Position: img.Position})
	}

	if err := s.voteRepo.Create(c.UserContext(), vote); err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}

	poll, err := s.voteRepo.GetByID(c.UserContext(), vote.ID, userID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(poll)
}

// DeleteVote removes the current user's poll.
func (s *Server) DeleteVote(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	authorID, err := s.voteRepo.AuthorOf(c.UserContext(), id)
	if err != nil {
		return respondNotFoundOr(c, err, "Vote", id)
	}
	if authorID != userID {
		return respondWithError(c, fiber.StatusForbidden, models.NewValidationError("You can only delete your own polls"))
	}

	if err := s.voteRepo.Delete(c.UserContext(), id); err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectOption records the current user's vote.
func (s *Server) SelectOption(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	voteID, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	optionID, ok := parseID(c, "optionId")
	if !ok {
		return nil
	}

	err := s.voteRepo.CastBallot(c.UserContext(), userID, voteID, optionID)
	switch {
	case errors.Is(err, ErrVoteClosed):
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Voting on this poll has closed"))
	case errors.Is(err, ErrAlreadyVoted):
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("You have already voted on this poll"))
	case err != nil:
		return respondNotFoundOr(c, err, "Vote", voteID)
	}
	return c.SendStatus(fiber.StatusOK)
}

// ToggleLikeReaction toggles the like reaction for ?voteId=.
func (s *Server) ToggleLikeReaction(c *fiber.Ctx) error {
	return s.toggleReaction(c, ReactionLike)
}

// ToggleBookmarkReaction toggles the bookmark reaction for ?voteId=.
func (s *Server) ToggleBookmarkReaction(c *fiber.Ctx) error {
	return s.toggleReaction(c, ReactionBookmark)
}

func (s *Server) toggleReaction(c *fiber.Ctx, kind string) error {
	userID := c.Locals("userID").(uint)
	voteID := c.QueryInt("voteId", 0)
	if voteID <= 0 {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("voteId is required"))
	}

	active, count, err := s.voteRepo.ToggleReaction(c.UserContext(), userID, uint(voteID), kind)
	if err != nil {
		return respondNotFoundOr(c, err, "Vote", voteID)
	}
	return c.JSON(fiber.Map{"active": active, "count": count})
}

// LoadStorage serves the voted/liked/bookmarked listings of the current user.
func (s *Server) LoadStorage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	kind := c.Params("kind")
	switch kind {
	case "voted", "liked", "bookmarked":
	default:
		return respondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Storage", kind))
	}
	page, size := pageParams(c)

	polls, last, err := s.voteRepo.ListStorage(c.UserContext(), kind, userID, page, size)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"content": polls, "last": last})
}

// LoadUserPage serves a user's profile and one page of their polls.
func (s *Server) LoadUserPage(c *fiber.Ctx) error {
	currentUserID := c.Locals("userID").(uint)
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	page, _ := pageParams(c)

	var user User
	if err := s.db.WithContext(c.UserContext()).First(&user, id).Error; err != nil {
		return respondNotFoundOr(c, err, "User", id)
	}

	polls, last, err := s.voteRepo.ListByAuthor(c.UserContext(), id, page, defaultPageSize, currentUserID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	total, err := s.voteRepo.CountByAuthor(c.UserContext(), id)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"profile": models.UserProfile{ID: user.ID, Name: user.Name, PostCount: int(total)},
		"posts":   fiber.Map{"content": polls, "number": page, "last": last},
	})
}
