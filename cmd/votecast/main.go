// Command votecast is a small demo CLI over the client engine: sign in
// against the gateway, browse the feed tabs, vote, react, and read comment
// threads from a terminal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"votecast/internal/comments"
	"votecast/internal/config"
	"votecast/internal/engine"
	"votecast/internal/feed"
	"votecast/internal/gateway"
	"votecast/internal/models"
	"votecast/internal/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "votecast-cli",
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := observability.WithCorrelationID(context.Background(), observability.GenerateCorrelationID())
	if err := run(ctx, cfg, eng, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: votecast <command> [args]

commands:
  login <name> <password>        sign in and store the session credential
  logout                         discard the stored credential
  feed [main|voted|liked|bookmarked]
  more [main|voted|liked|bookmarked]
  poll <id>                      show one poll
  user <id>                      show a user's polls
  vote <pollID> <optionID>       cast a vote
  like <pollID>                  toggle like
  bookmark <pollID>              toggle bookmark
  comments <pollID>              show the comment thread
  comment <pollID> <text>        post a comment (-reply <id> for a reply)`)
}

func run(ctx context.Context, cfg *config.Config, eng *engine.Engine, cmd string, args []string) error {
	switch cmd {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: votecast login <name> <password>")
		}
		return login(ctx, cfg, eng, args[0], args[1])
	case "logout":
		return eng.Sessions.Remove(ctx)
	case "feed":
		page, err := eng.Feed.LoadFirstPage(ctx, tabFromArgs(args))
		if err != nil {
			return err
		}
		printPolls(page.Polls)
		return nil
	case "more":
		page, err := eng.Feed.LoadNextPage(ctx, tabFromArgs(args))
		if err != nil {
			return err
		}
		printPolls(page.Polls)
		return nil
	case "poll":
		id, err := argID(args, 0)
		if err != nil {
			return err
		}
		page, err := eng.Feed.LoadFirstPage(ctx, feed.VoteTab(id))
		if err != nil {
			return err
		}
		printPolls(page.Polls)
		return nil
	case "user":
		id, err := argID(args, 0)
		if err != nil {
			return err
		}
		page, err := eng.Feed.LoadFirstPage(ctx, feed.UserTab(id))
		if err != nil {
			return err
		}
		printPolls(page.Polls)
		return nil
	case "vote":
		pollID, err := argID(args, 0)
		if err != nil {
			return err
		}
		optionID, err := argID(args, 1)
		if err != nil {
			return err
		}
		return eng.Engage.SelectOption(ctx, pollID, optionID)
	case "like":
		pollID, err := argID(args, 0)
		if err != nil {
			return err
		}
		return eng.Engage.ToggleLike(ctx, pollID)
	case "bookmark":
		pollID, err := argID(args, 0)
		if err != nil {
			return err
		}
		return eng.Engage.ToggleBookmark(ctx, pollID)
	case "comments":
		pollID, err := argID(args, 0)
		if err != nil {
			return err
		}
		thread, err := eng.Threads.LoadRootPage(ctx, pollID, 0)
		if err != nil {
			return err
		}
		printThread(thread)
		return nil
	case "comment":
		fs := flag.NewFlagSet("comment", flag.ExitOnError)
		replyTo := fs.Uint("reply", 0, "comment ID to reply to")
		if err := fs.Parse(args); err != nil {
			return err
		}
		rest := fs.Args()
		if len(rest) != 2 {
			return fmt.Errorf("usage: votecast comment [-reply <id>] <pollID> <text>")
		}
		pollID, err := argID(rest, 0)
		if err != nil {
			return err
		}
		var parentID *uint
		if *replyTo != 0 {
			id := uint(*replyTo)
			parentID = &id
		}
		created, err := eng.Threads.Submit(ctx, pollID, rest[1], parentID)
		if err != nil {
			return err
		}
		fmt.Printf("posted comment #%d\n", created.ID)
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// login talks to the gateway's auth endpoint directly; authentication is not
// an engine concern, the engine only consumes the stored credential.
func login(ctx context.Context, cfg *config.Config, eng *engine.Engine, name, password string) error {
	body, err := json.Marshal(map[string]string{"name": name, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.GatewayBaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.NewNetworkError("signing in", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.NewUnauthenticatedError("Invalid credentials")
	}

	var out struct {
		Token  string `json:"token"`
		UserID uint   `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.NewNetworkError("decoding login response", err)
	}
	if err := eng.Sessions.Set(ctx, out.Token); err != nil {
		return err
	}
	fmt.Printf("signed in as user #%d\n", out.UserID)
	return nil
}

func tabFromArgs(args []string) feed.Tab {
	if len(args) == 0 || args[0] == "main" {
		return feed.TabMain
	}
	return feed.StorageTab(gateway.StorageKind(args[0]))
}

func argID(args []string, i int) (uint, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	id, err := strconv.ParseUint(args[i], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid ID %q", args[i])
	}
	return uint(id), nil
}

func printPolls(polls []*models.Poll) {
	for _, p := range polls {
		marks := ""
		if p.IsLiked {
			marks += " ♥"
		}
		if p.IsBookmarked {
			marks += " ⊕"
		}
		fmt.Printf("#%d %s — by %s (%d votes, %d likes, %d comments)%s\n",
			p.ID, p.Title, p.AuthorName, p.TotalVotes(), p.LikeCount, p.CommentCount, marks)
		for _, opt := range p.Options {
			sel := "  "
			if p.SelectedOptionID != nil && *p.SelectedOptionID == opt.ID {
				sel = "> "
			}
			fmt.Printf("  %s[%d] %s — %d%%\n", sel, opt.ID, opt.Content, opt.Percentage(p.TotalVotes()))
		}
	}
}

func printThread(thread comments.Thread) {
	for _, root := range comments.DisplayOrder(thread.Roots) {
		tag := ""
		if best := comments.PromoteBest(thread.Roots); best != nil && best.ID == root.ID {
			tag = " [best]"
		}
		fmt.Printf("#%d %s: %s (%d likes)%s\n", root.ID, root.AuthorName, root.Content, root.LikeCount, tag)
		for _, reply := range root.Replies {
			fmt.Printf("    #%d %s: %s (%d likes)\n", reply.ID, reply.AuthorName, reply.Content, reply.LikeCount)
		}
	}
}
