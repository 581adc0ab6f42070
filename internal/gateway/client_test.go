package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"votecast/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySessions struct {
	token string
}

func (s *memorySessions) Get(_ context.Context) (string, error) { return s.token, nil }
func (s *memorySessions) Set(_ context.Context, t string) error { s.token = t; return nil }
func (s *memorySessions) Remove(_ context.Context) error        { s.token = ""; return nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, 5*time.Second, &memorySessions{token: token})
	return client, srv
}

func TestClientAttachesBearerCredential(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(PollPage{Last: true})
	}, "opaque-token")

	polls := NewPollGateway(client)
	_, err := polls.LoadMainPage(context.Background(), 0, 10)

	require.NoError(t, err)
	assert.Equal(t, "Bearer opaque-token", gotAuth)
}

func TestClientFailsBeforeNetworkWithoutCredential(t *testing.T) {
	reached := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}, "")

	polls := NewPollGateway(client)
	_, err := polls.LoadMainPage(context.Background(), 0, 10)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthenticated, appErr.Code)
	assert.False(t, reached, "no request may leave the client without a credential")
}

func TestClientFailsBeforeNetworkWithExpiredJWT(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	token, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	reached := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}, token)

	polls := NewPollGateway(client)
	_, err = polls.LoadMainPage(context.Background(), 0, 10)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthenticated, appErr.Code)
	assert.False(t, reached)
}

func TestClientMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"401 maps to unauthenticated", http.StatusUnauthorized, models.CodeUnauthenticated},
		{"404 maps to not found", http.StatusNotFound, models.CodeNotFound},
		{"500 maps to network failure", http.StatusInternalServerError, models.CodeNetworkFailure},
		{"400 maps to network failure", http.StatusBadRequest, models.CodeNetworkFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
			}, "tok")

			polls := NewPollGateway(client)
			_, err := polls.GetVote(context.Background(), 1)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestClientUnreachableGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, &memorySessions{token: "tok"})
	polls := NewPollGateway(client)

	_, err := polls.LoadMainPage(context.Background(), 0, 10)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNetworkFailure, appErr.Code)
}

func TestCommentGatewaySendsReplyParent(t *testing.T) {
	var body struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parentId"`
	}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(models.Comment{ID: 2, Content: body.Content, ParentID: body.ParentID})
	}, "tok")

	comments := NewCommentGateway(client)
	parent := uint(7)
	created, err := comments.Create(context.Background(), 1, "a reply", &parent)

	require.NoError(t, err)
	require.NotNil(t, body.ParentID)
	assert.Equal(t, uint(7), *body.ParentID)
	require.NotNil(t, created.ParentID)
	assert.Equal(t, uint(7), *created.ParentID)
}

func TestPollGatewayPaths(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}, "tok")
	polls := NewPollGateway(client)
	comments := NewCommentGateway(client)

	_, _ = polls.LoadMainPage(context.Background(), 2, 10)
	assert.Equal(t, "/vote/load-main-page-votes?page=2&size=10", gotPath)

	_ = polls.SelectOption(context.Background(), 3, 12)
	assert.Equal(t, "/vote/3/options/12/select", gotPath)

	_, _ = polls.ToggleLike(context.Background(), 3)
	assert.Equal(t, "/reaction/like?voteId=3", gotPath)

	_, _ = polls.LoadStorage(context.Background(), StorageBookmarked, 0, 10)
	assert.Equal(t, "/storage/bookmarked?page=0&size=10", gotPath)

	_, _ = comments.ListReplies(context.Background(), 4, 1, 10)
	assert.Equal(t, "/comment/4/replies?page=1&size=10", gotPath)

	_, _ = comments.ToggleLike(context.Background(), 4)
	assert.Equal(t, "/comment-like/4", gotPath)
}
