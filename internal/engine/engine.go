// Package engine wires the feed cache, mutation controller, and comment
// store into the single shared instance every screen is handed. Screens never
// build their own caches; per-screen divergence is what this exists to end.
package engine

import (
	"fmt"
	"time"

	"votecast/internal/comments"
	"votecast/internal/config"
	"votecast/internal/engage"
	"votecast/internal/feed"
	"votecast/internal/gateway"
	"votecast/internal/session"
)

// Engine is the client-side feed & engagement state engine.
type Engine struct {
	Sessions session.Store
	Polls    gateway.PollGateway
	Comments gateway.CommentGateway
	Feed     *feed.Manager
	Engage   *engage.Controller
	Threads  *comments.Store
}

// New builds an Engine from configuration.
func New(cfg *config.Config) (*Engine, error) {
	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		store, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting session store: %w", err)
		}
		sessions = store
	default:
		sessions = session.NewFileStore(cfg.SessionFilePath)
	}

	client := gateway.NewClient(cfg.GatewayBaseURL, time.Duration(cfg.GatewayTimeout)*time.Second, sessions)
	return FromParts(sessions, client, cfg.PageSize), nil
}

// FromParts assembles an Engine from an existing session store and gateway
// client; used by tests and the demo CLI.
func FromParts(sessions session.Store, client *gateway.Client, pageSize int) *Engine {
	polls := gateway.NewPollGateway(client)
	commentsGw := gateway.NewCommentGateway(client)
	cache := feed.NewManager(polls, pageSize)
	return &Engine{
		Sessions: sessions,
		Polls:    polls,
		Comments: commentsGw,
		Feed:     cache,
		Engage:   engage.NewController(sessions, polls, cache),
		Threads:  comments.NewStore(sessions, commentsGw, pageSize),
	}
}

// Composer returns a fresh reply composer bound to the poll's thread.
func (e *Engine) Composer(pollID uint) *comments.Composer {
	return comments.NewComposer(e.Threads, pollID)
}
