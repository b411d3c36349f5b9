package group

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-yatube/internal/auth"
	"backend-yatube/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	passThrough := func(c *fiber.Ctx) error { return c.Next() }
	RegisterRoutes(app, svc, passThrough, passThrough)
	return app
}

// newGuardedApp mounts the routes behind the real viewer, login and staff
// checks with "admin" as the only staff member.
func newGuardedApp(svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Use(auth.Viewer("secret"))
	RegisterRoutes(app, svc, auth.RequireLogin("/auth/login"), auth.RequireStaff([]string{"admin"}))
	return app
}

func as(t *testing.T, req *http.Request, username string) *http.Request {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:   "user-" + username,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestGroupHandlersCreateListDelete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO groups`).
		WithArgs("Cats", "cats", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`FROM groups`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "slug", "description"}).AddRow(int64(1), "Cats", "cats", ""))
	mock.ExpectExec(`DELETE FROM groups`).
		WithArgs("cats").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	app := newApp(NewService(mock))

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader([]byte(`{"title":"Cats","slug":"cats"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/groups", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/group/cats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupWritesNeedStaff(t *testing.T) {
	mock := newMock(t)
	app := newGuardedApp(NewService(mock))

	resp, err := app.Test(as(t, httptest.NewRequest(http.MethodDelete, "/group/cats", nil), "leo"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader([]byte(`{"title":"Cats","slug":"cats"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(as(t, req, "leo"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// No statement may have reached the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupDeleteByStaff(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM groups`).
		WithArgs("cats").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	resp, err := newGuardedApp(NewService(mock)).Test(as(t, httptest.NewRequest(http.MethodDelete, "/group/cats", nil), "admin"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupDeleteAnonymousRedirects(t *testing.T) {
	resp, err := newGuardedApp(NewService(newMock(t))).Test(httptest.NewRequest(http.MethodDelete, "/group/cats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestGroupHandlersValidation(t *testing.T) {
	app := newApp(NewService(nil))

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader([]byte(`{"title":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGroupHandlersDeleteUnknown(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM groups`).
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	resp, err := newApp(NewService(mock)).Test(httptest.NewRequest(http.MethodDelete, "/group/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
