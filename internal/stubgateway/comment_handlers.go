package stubgateway

import (
	"strings"

	"votecast/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListComments serves one page of root comments with embedded replies.
func (s *Server) ListComments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	voteID, ok := parseID(c, "voteId")
	if !ok {
		return nil
	}
	page, size := pageParams(c)

	roots, last, err := s.commentRepo.ListRoots(c.UserContext(), voteID, page, size, userID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"content": roots, "last": last})
}

// ListReplies serves one page of a root comment's replies.
func (s *Server) ListReplies(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	parentID, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	page, size := pageParams(c)

	replies, last, err := s.commentRepo.ListReplies(c.UserContext(), parentID, page, size, userID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"content": replies, "last": last})
}

// CreateComment creates a root comment or a reply on a poll.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	voteID, ok := parseID(c, "voteId")
	if !ok {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Content is required"))
	}

	if _, err := s.voteRepo.AuthorOf(c.UserContext(), voteID); err != nil {
		return respondNotFoundOr(c, err, "Vote", voteID)
	}

	parentID := req.ParentID
	if parentID != nil {
		parent, err := s.commentRepo.GetRow(c.UserContext(), *parentID)
		if err != nil {
			return respondNotFoundOr(c, err, "Comment", *parentID)
		}
		if parent.VoteID != voteID {
			return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Parent comment belongs to another poll"))
		}
		// Replies attach to the nearest root; depth never exceeds one.
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	row := &CommentRow{
		VoteID:   voteID,
		AuthorID: userID,
		ParentID: parentID,
		Content:  req.Content,
	}
	if err := s.commentRepo.Create(c.UserContext(), row); err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}

	stored, err := s.commentRepo.GetRow(c.UserContext(), row.ID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.Comment{
		ID:         stored.ID,
		AuthorID:   stored.AuthorID,
		AuthorName: stored.Author.Name,
		Content:    stored.Content,
		CreatedAt:  stored.CreatedAt,
		ParentID:   stored.ParentID,
	})
}

// UpdateComment edits a comment (author only).
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Content is required"))
	}

	row, err := s.commentRepo.GetRow(c.UserContext(), id)
	if err != nil {
		return respondNotFoundOr(c, err, "Comment", id)
	}
	if row.AuthorID != userID {
		return respondWithError(c, fiber.StatusForbidden, models.NewValidationError("You can only edit your own comments"))
	}

	row.Content = req.Content
	if err := s.commentRepo.Update(c.UserContext(), row); err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// DeleteComment removes a comment (author only).
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	row, err := s.commentRepo.GetRow(c.UserContext(), id)
	if err != nil {
		return respondNotFoundOr(c, err, "Comment", id)
	}
	if row.AuthorID != userID {
		return respondWithError(c, fiber.StatusForbidden, models.NewValidationError("You can only delete your own comments"))
	}

	if err := s.commentRepo.Delete(c.UserContext(), id); err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleCommentLike toggles the current user's like on a comment.
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	liked, count, err := s.commentRepo.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return respondNotFoundOr(c, err, "Comment", id)
	}
	return c.JSON(fiber.Map{"isLiked": liked, "likeCount": count})
}
