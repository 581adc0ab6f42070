package stubgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"votecast/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GatewayBaseURL:  "http://localhost",
		PageSize:        10,
		SessionBackend:  "file",
		SessionFilePath: t.TempDir() + "/session",
		StubDBDriver:    "sqlite",
		StubDBDSN:       fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		StubJWTSecret:   "test-secret",
	}
}

func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	return srv, srv.App()
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && json.Valid(data) {
		_ = json.Unmarshal(data, &out)
	}
	return resp.StatusCode, out
}

func signUp(t *testing.T, app *fiber.App, name string) (string, uint) {
	t.Helper()
	creds := map[string]string{"name": name, "password": "password123"}
	status, _ := doJSON(t, app, "POST", "/auth/register", "", creds)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, app, "POST", "/auth/login", "", creds)
	require.Equal(t, fiber.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	userID := uint(body["userId"].(float64))
	return token, userID
}

func createPoll(t *testing.T, app *fiber.App, token string, options ...string) uint {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Tabs", "Spaces"}
	}
	status, body := doJSON(t, app, "POST", "/vote", token, map[string]any{
		"title":    "Tabs or spaces?",
		"body":     "settle it",
		"category": "tech",
		"closesAt": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"options":  options,
	})
	require.Equal(t, fiber.StatusCreated, status)
	return uint(body["id"].(float64))
}

func pollOptionIDs(t *testing.T, app *fiber.App, token string, pollID uint) []uint {
	t.Helper()
	status, body := doJSON(t, app, "GET", fmt.Sprintf("/vote/%d", pollID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	raw, ok := body["options"].([]any)
	require.True(t, ok)
	ids := make([]uint, len(raw))
	for i, o := range raw {
		ids[i] = uint(o.(map[string]any)["id"].(float64))
	}
	return ids
}

func TestAuthFlow(t *testing.T) {
	_, app := newTestApp(t)

	token, userID := signUp(t, app, "authflow")
	assert.NotZero(t, userID)

	// Duplicate name is rejected.
	status, _ := doJSON(t, app, "POST", "/auth/register", "", map[string]string{
		"name": "authflow", "password": "other",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	// Wrong password is rejected.
	status, _ = doJSON(t, app, "POST", "/auth/login", "", map[string]string{
		"name": "authflow", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// The token opens protected routes.
	status, _ = doJSON(t, app, "GET", "/vote/load-main-page-votes", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// No token does not.
	status, _ = doJSON(t, app, "GET", "/vote/load-main-page-votes", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCreateVoteValidation(t *testing.T) {
	_, app := newTestApp(t)
	token, _ := signUp(t, app, "creator")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{
			"options": []string{"a", "b"}, "closesAt": time.Now().Add(time.Hour),
		}},
		{"single option", map[string]any{
			"title": "t", "options": []string{"a"}, "closesAt": time.Now().Add(time.Hour),
		}},
		{"closes in the past", map[string]any{
			"title": "t", "options": []string{"a", "b"}, "closesAt": time.Now().Add(-time.Hour),
		}},
		{"blank options", map[string]any{
			"title": "t", "options": []string{" ", "b", ""}, "closesAt": time.Now().Add(time.Hour),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, "POST", "/vote", token, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestMainPagePagination(t *testing.T) {
	_, app := newTestApp(t)
	token, _ := signUp(t, app, "paginator")
	for i := 0; i < 3; i++ {
		createPoll(t, app, token)
	}

	status, body := doJSON(t, app, "GET", "/vote/load-main-page-votes?page=0&size=2", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["content"], 2)
	assert.Equal(t, false, body["last"])

	status, body = doJSON(t, app, "GET", "/vote/load-main-page-votes?page=1&size=2", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["content"], 1)
	assert.Equal(t, true, body["last"])
}

func TestSelectOptionLifecycle(t *testing.T) {
	_, app := newTestApp(t)
	token, _ := signUp(t, app, "voter")
	pollID := createPoll(t, app, token)
	optionIDs := pollOptionIDs(t, app, token, pollID)
	require.Len(t, optionIDs, 2)

	selectPath := func(opt uint) string {
		return fmt.Sprintf("/vote/%d/options/%d/select", pollID, opt)
	}

	status, _ := doJSON(t, app, "POST", selectPath(optionIDs[0]), token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// Same option again: idempotent.
	status, _ = doJSON(t, app, "POST", selectPath(optionIDs[0]), token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// A different option is refused.
	status, _ = doJSON(t, app, "POST", selectPath(optionIDs[1]), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// The poll now reports the selection and count.
	status, body := doJSON(t, app, "GET", fmt.Sprintf("/vote/%d", pollID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(optionIDs[0]), body["selectedOptionId"])

	// A second voter bumps the same option independently.
	token2, _ := signUp(t, app, "voter2")
	status, _ = doJSON(t, app, "POST", selectPath(optionIDs[0]), token2, nil)
	assert.Equal(t, fiber.StatusOK, status)

	_, body = doJSON(t, app, "GET", fmt.Sprintf("/vote/%d", pollID), token, nil)
	opts := body["options"].([]any)
	assert.Equal(t, float64(2), opts[0].(map[string]any)["voteCount"])
}

func TestReactionToggle(t *testing.T) {
	_, app := newTestApp(t)
	token, _ := signUp(t, app, "reactor")
	pollID := createPoll(t, app, token)

	path := fmt.Sprintf("/reaction/like?voteId=%d", pollID)

	status, body := doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, float64(1), body["count"])

	status, body = doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["active"])
	assert.Equal(t, float64(0), body["count"])

	// Bookmarks toggle independently and land in storage.
	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/reaction/bookmark?voteId=%d", pollID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, "GET", "/storage/bookmarked", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["content"], 1)

	status, body = doJSON(t, app, "GET", "/storage/liked", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["content"])
}

func TestDeleteVoteAuthorOnly(t *testing.T) {
	_, app := newTestApp(t)
	author, _ := signUp(t, app, "author")
	other, _ := signUp(t, app, "intruder")
	pollID := createPoll(t, app, author)

	status, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/vote/%d", pollID), other, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/vote/%d", pollID), author, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/vote/%d", pollID), author, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestUserPage(t *testing.T) {
	_, app := newTestApp(t)
	token, userID := signUp(t, app, "pageowner")
	createPoll(t, app, token)
	createPoll(t, app, token)

	status, body := doJSON(t, app, "GET", fmt.Sprintf("/user/%d", userID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	profile := body["profile"].(map[string]any)
	assert.Equal(t, "pageowner", profile["name"])
	assert.Equal(t, float64(2), profile["postCount"])

	posts := body["posts"].(map[string]any)
	assert.Len(t, posts["content"], 2)
	assert.Equal(t, true, posts["last"])
}

func TestCommentThread(t *testing.T) {
	_, app := newTestApp(t)
	token, _ := signUp(t, app, "commenter")
	pollID := createPoll(t, app, token)

	commentPath := fmt.Sprintf("/comment/%d", pollID)

	// Root comment.
	status, root := doJSON(t, app, "POST", commentPath, token, map[string]any{"content": "first!"})
	require.Equal(t, fiber.StatusCreated, status)
	rootID := uint(root["id"].(float64))

	// Reply to the root.
	status, reply := doJSON(t, app, "POST", commentPath, token, map[string]any{
		"content": "agreed", "parentId": rootID,
	})
	require.Equal(t, fiber.StatusCreated, status)
	replyID := uint(reply["id"].(float64))
	assert.Equal(t, float64(rootID), reply["parentId"])

	// A reply to a reply attaches to the root instead of nesting.
	status, nested := doJSON(t, app, "POST", commentPath, token, map[string]any{
		"content": "nested attempt", "parentId": replyID,
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(rootID), nested["parentId"])

	// Empty content is rejected.
	status, _ = doJSON(t, app, "POST", commentPath, token, map[string]any{"content": "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)

	// The listing embeds replies under the root.
	status, listing := doJSON(t, app, "GET", commentPath, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	roots := listing["content"].([]any)
	require.Len(t, roots, 1)
	replies := roots[0].(map[string]any)["replies"].([]any)
	assert.Len(t, replies, 2)

	// Standalone reply pagination works too.
	status, page := doJSON(t, app, "GET", fmt.Sprintf("/comment/%d/replies?page=0&size=1", rootID), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, page["content"], 1)
	assert.Equal(t, false, page["last"])
}

func TestCommentAuthorEnforcement(t *testing.T) {
	_, app := newTestApp(t)
	author, _ := signUp(t, app, "cauthor")
	other, _ := signUp(t, app, "cother")
	pollID := createPoll(t, app, author)

	status, created := doJSON(t, app, "POST", fmt.Sprintf("/comment/%d", pollID), author, map[string]any{
		"content": "mine",
	})
	require.Equal(t, fiber.StatusCreated, status)
	commentID := uint(created["id"].(float64))
	editPath := fmt.Sprintf("/comment/%d", commentID)

	status, _ = doJSON(t, app, "PUT", editPath, other, map[string]any{"content": "hijacked"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, "PUT", editPath, author, map[string]any{"content": "edited"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "DELETE", editPath, other, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, "DELETE", editPath, author, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestCommentLikeToggle(t *testing.T) {
	_, app := newTestApp(t)
	token, _ := signUp(t, app, "cliker")
	pollID := createPoll(t, app, token)

	status, created := doJSON(t, app, "POST", fmt.Sprintf("/comment/%d", pollID), token, map[string]any{
		"content": "like me",
	})
	require.Equal(t, fiber.StatusCreated, status)
	commentID := uint(created["id"].(float64))

	path := fmt.Sprintf("/comment-like/%d", commentID)

	status, body := doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["isLiked"])
	assert.Equal(t, float64(1), body["likeCount"])

	status, body = doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["isLiked"])
	assert.Equal(t, float64(0), body["likeCount"])
}

func TestSeedPopulatesDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.StubSeedDatabase = true

	srv, err := NewServer(cfg)
	require.NoError(t, err)

	var users, votes int64
	require.NoError(t, srv.db.Model(&User{}).Count(&users).Error)
	require.NoError(t, srv.db.Model(&Vote{}).Count(&votes).Error)
	assert.NotZero(t, users)
	assert.NotZero(t, votes)

	// Seeding again is a no-op.
	require.NoError(t, Seed(srv.db))
	var usersAfter int64
	require.NoError(t, srv.db.Model(&User{}).Count(&usersAfter).Error)
	assert.Equal(t, users, usersAfter)
}

func TestRepositoryCastBallotClosedPoll(t *testing.T) {
	srv, _ := newTestApp(t)

	user := User{Name: "closed", Password: "x"}
	require.NoError(t, srv.db.Create(&user).Error)
	vote := Vote{
		AuthorID: user.ID,
		Title:    "done deal",
		ClosesAt: time.Now().Add(-time.Hour),
		Options:  []VoteOption{{Content: "a"}, {Content: "b"}},
	}
	require.NoError(t, srv.db.Create(&vote).Error)

	err := srv.voteRepo.CastBallot(context.Background(), user.ID, vote.ID, vote.Options[0].ID)
	assert.ErrorIs(t, err, ErrVoteClosed)
}
