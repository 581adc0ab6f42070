package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"votecast/internal/config"
	"votecast/internal/feed"
	"votecast/internal/gateway"
	"votecast/internal/session"
	"votecast/internal/stubgateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startStub serves the stub gateway on a loopback listener and returns its
// base URL.
func startStub(t *testing.T) string {
	t.Helper()
	srv, err := stubgateway.NewServer(&config.Config{
		GatewayBaseURL:  "http://localhost",
		PageSize:        10,
		SessionBackend:  "file",
		SessionFilePath: t.TempDir() + "/unused",
		StubDBDriver:    "sqlite",
		StubDBDSN:       fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		StubJWTSecret:   "integration-secret",
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := srv.App()
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func signUpAndStore(t *testing.T, baseURL string, eng *Engine, name string) {
	t.Helper()
	creds, err := json.Marshal(map[string]string{"name": name, "password": "password123"})
	require.NoError(t, err)

	resp, err := http.Post(baseURL+"/auth/register", "application/json", bytes.NewReader(creds))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(creds))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NoError(t, eng.Sessions.Set(context.Background(), out.Token))
}

func newEngine(t *testing.T, baseURL string) *Engine {
	t.Helper()
	sessions := session.NewFileStore(t.TempDir() + "/session")
	client := gateway.NewClient(baseURL, 5*time.Second, sessions)
	return FromParts(sessions, client, 10)
}

func TestEngineEndToEnd(t *testing.T) {
	baseURL := startStub(t)
	eng := newEngine(t, baseURL)
	ctx := context.Background()

	// Unauthenticated mutations fail locally before touching the network.
	err := eng.Engage.ToggleLike(ctx, 1)
	require.Error(t, err)

	signUpAndStore(t, baseURL, eng, "endtoend")

	poll, err := eng.Polls.CreateVote(ctx, gateway.CreateVoteInput{
		Title:    "Integration poll",
		ClosesAt: time.Now().Add(time.Hour),
		Options:  []string{"Yes", "No"},
	})
	require.NoError(t, err)
	require.Len(t, poll.Options, 2)

	// The feed serves the poll; the detail tab holds the same entity.
	page, err := eng.Feed.LoadFirstPage(ctx, feed.TabMain)
	require.NoError(t, err)
	require.Len(t, page.Polls, 1)
	_, err = eng.Feed.LoadFirstPage(ctx, feed.VoteTab(poll.ID))
	require.NoError(t, err)

	// Voting applies optimistically and reconciles; both tabs converge.
	require.NoError(t, eng.Engage.SelectOption(ctx, poll.ID, poll.Options[0].ID))
	for _, tab := range []feed.Tab{feed.TabMain, feed.VoteTab(poll.ID)} {
		p := eng.Feed.Page(tab).Polls[0]
		require.NotNil(t, p.SelectedOptionID, "tab %s", tab)
		assert.Equal(t, poll.Options[0].ID, *p.SelectedOptionID)
		assert.Equal(t, 1, p.Options[0].VoteCount)
	}

	// Changing the vote is rejected locally.
	err = eng.Engage.SelectOption(ctx, poll.ID, poll.Options[1].ID)
	require.Error(t, err)

	// Like shows up in the liked storage tab.
	require.NoError(t, eng.Engage.ToggleLike(ctx, poll.ID))
	liked, err := eng.Feed.LoadFirstPage(ctx, feed.StorageTab(gateway.StorageLiked))
	require.NoError(t, err)
	require.Len(t, liked.Polls, 1)
	assert.True(t, liked.Polls[0].IsLiked)

	// Comment round trip through the composer.
	composer := eng.Composer(poll.ID)
	composer.BeginRoot()
	composer.SetDraft("works end to end")
	created, err := composer.Submit(ctx)
	require.NoError(t, err)

	thread := eng.Threads.Thread(poll.ID)
	require.Len(t, thread.Roots, 1)
	assert.Equal(t, created.ID, thread.Roots[0].ID)

	// Reply and comment like.
	_, err = eng.Threads.Submit(ctx, poll.ID, "a reply", &created.ID)
	require.NoError(t, err)
	require.NoError(t, eng.Threads.ToggleLike(ctx, poll.ID, created.ID))

	thread = eng.Threads.Thread(poll.ID)
	require.Len(t, thread.Roots, 1)
	assert.True(t, thread.Roots[0].IsLiked)
	assert.Equal(t, 1, thread.Roots[0].LikeCount)
	assert.Len(t, thread.Roots[0].Replies, 1)

	// Deleting the poll clears it from every tab.
	require.NoError(t, eng.Engage.DeletePoll(ctx, poll.ID))
	assert.Empty(t, eng.Feed.Page(feed.TabMain).Polls)
	assert.Empty(t, eng.Feed.Page(feed.VoteTab(poll.ID)).Polls)
}

func TestNewEngineFromConfig(t *testing.T) {
	cfg := &config.Config{
		GatewayBaseURL:  "http://localhost:1",
		GatewayTimeout:  1,
		PageSize:        10,
		SessionBackend:  "file",
		SessionFilePath: t.TempDir() + "/session",
	}

	eng, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, eng.Feed)
	require.NotNil(t, eng.Engage)
	require.NotNil(t, eng.Threads)

	// The configured gateway is unreachable; loads fail, cache stays empty.
	require.NoError(t, eng.Sessions.Set(context.Background(), "tok"))
	_, err = eng.Feed.LoadFirstPage(context.Background(), feed.TabMain)
	require.Error(t, err)
	assert.Empty(t, eng.Feed.Page(feed.TabMain).Polls)
}
