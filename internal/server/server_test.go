package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backend-yatube/internal/auth"
	"backend-yatube/internal/config"
	"backend-yatube/internal/feed"
	"backend-yatube/internal/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		JWTSecret:  "secret",
		ServerPort: ":0",
		MediaRoot:  t.TempDir(),
		LoginPath:  "/auth/login",
	}
}

func TestHealthRoute(t *testing.T) {
	s := NewServer(testConfig(t), nil, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRequiredRoutesRedirect(t *testing.T) {
	s := NewServer(testConfig(t), nil, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/follow"},
		{http.MethodGet, "/liked"},
		{http.MethodPost, "/create"},
		{http.MethodPost, "/follow/leo"},
		{http.MethodPost, "/posts/1/like"},
	} {
		resp, err := s.App.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err, tc.path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, tc.path)
		assert.Contains(t, resp.Header.Get("Location"), "/auth/login?next=", tc.path)
	}
}

func TestUploadNeedsBearerToken(t *testing.T) {
	s := NewServer(testConfig(t), nil, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodPost, "/storage/upload", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMalformedPostIDIsNotFound(t *testing.T) {
	s := NewServer(testConfig(t), nil, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamRequiresUpgrade(t *testing.T) {
	s := NewServer(testConfig(t), nil, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/stream/ws/leo", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMediaIsServed(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.MediaRoot, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.MediaRoot, "posts", "a.gif"), []byte("GIF89a"), 0o644))
	s := NewServer(cfg, nil, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/media/posts/a.gif", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIndexUsesPageCache(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "text", "image_url", "created_at", "author_id", "username",
			"group_id", "group_title", "group_slug", "comment_count", "like_count",
		}).AddRow(int64(1), "hello", "", time.Now(), "user-1", "leo", int64(0), "", "", int64(0), int64(0)))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := testConfig(t)
	cfg.PageCacheTTL = time.Minute
	s := NewServer(cfg, mock, client)
	defer s.Stream.Close()

	first, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	second, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))
	require.NoError(t, mock.ExpectationsWereMet())
}

var postCols = []string{
	"id", "text", "image_url", "created_at", "author_id", "username",
	"group_id", "group_title", "group_slug", "comment_count", "like_count",
}

func signedAs(t *testing.T, req *http.Request, userID, username string) *http.Request {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func followFeed(t *testing.T, s *Server) feed.Listing {
	t.Helper()
	resp, err := s.App.Test(signedAs(t, httptest.NewRequest(http.MethodGet, "/follow", nil), "user-2", "anna"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing feed.Listing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	return listing
}

func TestFollowFeedTracksFollowAndUnfollow(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()
	s := NewServer(testConfig(t), mock, nil)

	// anna follows leo
	mock.ExpectQuery(`SELECT id, username FROM users WHERE username = \$1`).
		WithArgs("leo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username"}).AddRow("user-1", "leo"))
	mock.ExpectExec(`INSERT INTO follows`).
		WithArgs("user-2", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	resp, err := s.App.Test(signedAs(t, httptest.NewRequest(http.MethodPost, "/follow/leo", nil), "user-2", "anna"))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	// leo's post is in her feed
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p WHERE p.author_id IN`).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`FROM follows f WHERE f.follower_id = \$1\).* LIMIT \$2 OFFSET \$3`).
		WithArgs("user-2", 10, 0).
		WillReturnRows(pgxmock.NewRows(postCols).
			AddRow(int64(7), "from leo", "", time.Now(), "user-1", "leo", int64(0), "", "", int64(0), int64(0)))
	listing := followFeed(t, s)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, int64(7), listing.Posts[0].ID)
	assert.Equal(t, "leo", listing.Posts[0].Author.Username)

	// anna unfollows leo
	mock.ExpectQuery(`SELECT id, username FROM users WHERE username = \$1`).
		WithArgs("leo").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username"}).AddRow("user-1", "leo"))
	mock.ExpectExec(`DELETE FROM follows`).
		WithArgs("user-2", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	resp, err = s.App.Test(signedAs(t, httptest.NewRequest(http.MethodPost, "/unfollow/leo", nil), "user-2", "anna"))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	// and the post is gone from it
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p WHERE p.author_id IN`).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`FROM follows f WHERE f.follower_id = \$1\).* LIMIT \$2 OFFSET \$3`).
		WithArgs("user-2", 10, 0).
		WillReturnRows(pgxmock.NewRows(postCols))
	listing = followFeed(t, s)
	assert.Empty(t, listing.Posts)
	assert.Equal(t, 0, listing.Page.Count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupDeleteNeedsStaff(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	cfg := testConfig(t)
	cfg.StaffUsernames = []string{"admin"}
	s := NewServer(cfg, mock, nil)

	resp, err := s.App.Test(signedAs(t, httptest.NewRequest(http.MethodDelete, "/group/cats", nil), "user-2", "anna"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	mock.ExpectExec(`DELETE FROM groups`).
		WithArgs("cats").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	resp, err = s.App.Test(signedAs(t, httptest.NewRequest(http.MethodDelete, "/group/cats", nil), "user-9", "admin"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorHandlerLogsServerErrors(t *testing.T) {
	hook := test.NewLocal(logging.Log.Logger)
	defer hook.Reset()

	s := NewServer(testConfig(t), nil, nil)
	s.App.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	s.App.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/gone", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, hook.AllEntries())

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "/boom", hook.LastEntry().Data["path"])
}
