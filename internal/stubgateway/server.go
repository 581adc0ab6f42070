package stubgateway

import (
	"errors"
	"fmt"
	"log/slog"

	"votecast/internal/config"
	"votecast/internal/models"
	"votecast/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Server hosts the stub gateway endpoints.
type Server struct {
	config      *config.Config
	db          *gorm.DB
	voteRepo    VoteRepository
	commentRepo CommentRepository
	logger      *slog.Logger
}

// NewServer opens the database and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := observability.GlobalLogger.Logger

	db, err := OpenDatabase(cfg.StubDBDriver, cfg.StubDBDSN, logger)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		config:      cfg,
		db:          db,
		voteRepo:    NewVoteRepository(db),
		commentRepo: NewCommentRepository(db),
		logger:      logger,
	}

	if cfg.StubSeedDatabase {
		if err := Seed(db); err != nil {
			return nil, fmt.Errorf("seeding stub database: %w", err)
		}
	}

	return srv, nil
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "votecast stub gateway",
	})

	// A per-server registry keeps repeated App() calls (tests) from tripping
	// duplicate collector registration.
	prom := fiberprometheus.NewWithRegistry(prometheus.NewRegistry(), "votecast_stub", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	s.setupRoutes(app)
	return app
}

func (s *Server) setupRoutes(app *fiber.App) {
	app.Post("/auth/register", s.Register)
	app.Post("/auth/login", s.Login)

	auth := s.AuthRequired

	app.Get("/vote/load-main-page-votes", auth, s.LoadMainPage)
	app.Post("/vote", auth, s.CreateVote)
	app.Get("/vote/:id", auth, s.GetVote)
	app.Delete("/vote/:id", auth, s.DeleteVote)
	app.Post("/vote/:id/options/:optionId/select", auth, s.SelectOption)

	app.Post("/reaction/like", auth, s.ToggleLikeReaction)
	app.Post("/reaction/bookmark", auth, s.ToggleBookmarkReaction)

	app.Get("/storage/:kind", auth, s.LoadStorage)
	app.Get("/user/:id", auth, s.LoadUserPage)

	// The replies route must register before the catch-all vote listing.
	app.Get("/comment/:id/replies", auth, s.ListReplies)
	app.Get("/comment/:voteId", auth, s.ListComments)
	app.Post("/comment/:voteId", auth, s.CreateComment)
	app.Put("/comment/:id", auth, s.UpdateComment)
	app.Delete("/comment/:id", auth, s.DeleteComment)
	app.Post("/comment-like/:id", auth, s.ToggleCommentLike)
}

// respondWithError writes a standardized error response.
func respondWithError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// respondNotFoundOr maps gorm's record-not-found to a 404, everything else
// to a 500.
func respondNotFoundOr(c *fiber.Ctx, err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondWithError(c, fiber.StatusNotFound, models.NewNotFoundError(resource, id))
	}
	return respondWithError(c, fiber.StatusInternalServerError, err)
}
