package stubgateway

import (
	"errors"
	"strconv"
	"time"

	"votecast/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an account on the stub.
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" || req.Password == "" {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Name and password are required"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}

	user := User{Name: req.Name, Password: string(hashed)}
	if err := s.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		return respondWithError(c, fiber.StatusConflict, models.NewValidationError("Name already taken"))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "name": user.Name})
}

// Login checks the password and mints a test bearer token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	var user User
	err := s.db.WithContext(c.UserContext()).Where("name = ?", req.Name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError("Invalid credentials"))
	}
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return respondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError("Invalid credentials"))
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"token": token, "userId": user.ID})
}

func (s *Server) mintToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.StubJWTSecret))
}
