package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elawdiya/backend/internal/database/dbtest"
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/identity"
	"github.com/elawdiya/backend/internal/middleware"
	"github.com/elawdiya/backend/internal/models"
	"github.com/elawdiya/backend/internal/services"
	"github.com/elawdiya/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestTopOffenders_RejectsBadParams(t *testing.T) {
	db, _ := dbtest.New(t)
	app := fiber.New()
	app.Get("/top", NewShameHandler(services.NewShameService(db, nil)).TopOffenders)

	for _, path := range []string{
		"/top?time_range=fortnight",
		"/top?limit=abc",
		"/top?limit=0",
		"/top?limit=101",
	} {
		status, body := doRequest(t, app, http.MethodGet, path, "")
		assert.Equal(t, fiber.StatusBadRequest, status, path)

		var errResp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &errResp))
		assert.True(t, errResp.Error)
	}
}

func TestTopOffenders_EmptyWindow(t *testing.T) {
	db, mock := dbtest.New(t)
	app := fiber.New()
	app.Get("/top", NewShameHandler(services.NewShameService(db, nil)).TopOffenders)

	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE status = \$1 AND created_at >= \$2 AND violation_type = \$3 ORDER BY created_at ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE status = \$1 ORDER BY created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	status, body := doRequest(t, app, http.MethodGet, "/top?vehicle_type=car&time_range=7", "")
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.TopOffendersResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Empty(t, resp.Data.Offenders)
	assert.Empty(t, resp.Data.RecentActivity)
	assert.Zero(t, resp.Data.OverallStats.TotalVerifiedReports)
	assert.Zero(t, resp.Data.OverallStats.AverageDetectionConfidence)
	assert.Equal(t, map[string]int{"car": 0, "bike": 0}, resp.Data.OverallStats.ViolationsByType)
}

func TestLeaderboard_RanksAndFindsViewer(t *testing.T) {
	db, mock := dbtest.New(t)
	a, b := uuid.New(), uuid.New()
	app := fiber.New()
	app.Get("/board", func(c *fiber.Ctx) error {
		// Stand-in for OptionalJWT with a token for user a.
		c.Locals(identity.LocalsKey, testToken(a, models.RoleUser))
		return c.Next()
	}, NewShameHandler(services.NewShameService(db, nil)).Leaderboard)

	mock.ExpectQuery(`(?s)SELECT users.id AS user_id.*LEFT JOIN reports ON reports.user_id = users.id GROUP BY`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "total_points", "report_count", "verified_count"}).
			AddRow(a.String(), "A", 30, 2, 2).
			AddRow(b.String(), "B", 30, 3, 3))

	status, body := doRequest(t, app, http.MethodGet, "/board?limit=1", "")
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.LeaderboardResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Leaderboard, 1)
	assert.Equal(t, "B", resp.Leaderboard[0].Name)
	assert.Equal(t, 1, resp.Leaderboard[0].Rank)
	require.NotNil(t, resp.UserRank)
	assert.Equal(t, 2, resp.UserRank.Rank)
	assert.Equal(t, "A", resp.UserRank.Name)
}

func TestVerify_ValidatesBody(t *testing.T) {
	db, _ := dbtest.New(t)
	app := fiber.New()
	app.Post("/verify", asPrincipal(uuid.New(), models.RoleAdmin),
		NewAdminHandler(services.NewAdminService(db, nil, nil), validation.New()).Verify)

	status, _ := doRequest(t, app, http.MethodPost, "/verify", `{"verified": true}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/verify", `{"report_id": "not-a-uuid", "verified": true}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/verify", `{"report_id": "`+uuid.NewString()+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestVerify_MapsServiceErrors(t *testing.T) {
	db, mock := dbtest.New(t)
	app := fiber.New()
	app.Post("/verify", asPrincipal(uuid.New(), models.RoleAdmin),
		NewAdminHandler(services.NewAdminService(db, nil, nil), validation.New()).Verify)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "reports"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()
	status, _ := doRequest(t, app, http.MethodPost, "/verify", `{"report_id": "`+uuid.NewString()+`", "verified": true}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow(uuid.NewString(), uuid.NewString(), "rejected"))
	mock.ExpectRollback()
	status, body := doRequest(t, app, http.MethodPost, "/verify", `{"report_id": "`+uuid.NewString()+`", "verified": false}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "already been processed")
}

func TestReportGet_ForbiddenForNonOwner(t *testing.T) {
	db, mock := dbtest.New(t)
	caller := uuid.New()
	app := fiber.New()
	app.Get("/reports/:id", func(c *fiber.Ctx) error {
		c.Locals(identity.LocalsKey, testToken(caller, models.RoleUser))
		return c.Next()
	}, NewReportHandler(services.NewReportService(db, nil, nil, nil, nil), validation.New()).Get)

	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow(uuid.NewString(), uuid.NewString(), "pending"))

	status, body := doRequest(t, app, http.MethodGet, "/reports/"+uuid.NewString(), "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.NotContains(t, string(body), "violation_type")

	status, _ = doRequest(t, app, http.MethodGet, "/reports/nope", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestReportCreate_RequiresFields(t *testing.T) {
	db, _ := dbtest.New(t)
	app := fiber.New()
	app.Post("/reports", func(c *fiber.Ctx) error {
		c.Locals(identity.LocalsKey, testToken(uuid.New(), models.RoleUser))
		return c.Next()
	}, NewReportHandler(services.NewReportService(db, nil, services.NewContentFilter(), nil, nil), validation.New()).Create)

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("violation_type=car&latitude=north"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("violation_type=car"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "location is required")
}

func TestReportCreate_RejectsNonFiniteNumbers(t *testing.T) {
	db, _ := dbtest.New(t)
	app := fiber.New()
	app.Post("/reports", func(c *fiber.Ctx) error {
		c.Locals(identity.LocalsKey, testToken(uuid.New(), models.RoleUser))
		return c.Next()
	}, NewReportHandler(services.NewReportService(db, nil, services.NewContentFilter(), nil, nil), validation.New()).Create)

	for _, form := range []string{
		"violation_type=car&location=Main+St&latitude=NaN",
		"violation_type=car&location=Main+St&longitude=%2BInf",
		"violation_type=car&location=Main+St&detection_confidence=-Inf",
	} {
		req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, form)
		assert.Contains(t, string(body), "must be a number", form)
	}
}

func TestRegister_ValidatesBody(t *testing.T) {
	db, _ := dbtest.New(t)
	app := fiber.New()
	app.Post("/register", NewAuthHandler(services.NewAuthService(db, nil, nil), validation.New()).Register)

	status, body := doRequest(t, app, http.MethodPost, "/register", `{"name": "Ana", "email": "nope", "password": "secret123"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "email must be a valid email address")

	status, _ = doRequest(t, app, http.MethodPost, "/register", `{"name": "Ana", "email": "ana@example.com", "password": "short"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func asPrincipal(id uuid.UUID, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.PrincipalKey, &identity.Principal{UserID: id, Role: role})
		return c.Next()
	}
}

func testToken(id uuid.UUID, role models.Role) *jwt.Token {
	return &jwt.Token{
		Valid:  true,
		Claims: jwt.MapClaims{"sub": id.String(), "role": role.String()},
	}
}
