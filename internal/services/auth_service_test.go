package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elawdiya/backend/internal/config"
	"github.com/elawdiya/backend/internal/database/dbtest"
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

var userColumns = []string{"id", "name", "email", "password", "role", "total_points"}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(uuid.New().String(), "Ana", "ana@example.com", "x", "user", 0))

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Ana", Email: "  ANA@example.com ", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_CreatesUserAndTokens(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "refresh_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user", resp.UserType)
}

func TestRegister_InvalidatesShameCache(t *testing.T) {
	db, mock := dbtest.New(t)
	shameCache, rec := recordingCache(t)
	svc := NewAuthService(db, testConfig(), shameCache)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "refresh_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"incr"}, rec.Commands())
}

func TestRegister_WeakPasswordNeverHitsDB(t *testing.T) {
	db, _ := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "abc",
	})
	assert.True(t, IsValidation(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(uuid.New().String(), "Ana", "ana@example.com", string(hash), "user", 0))

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "wrong123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_UnknownToken(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	mock.ExpectQuery(`SELECT \* FROM "refresh_tokens" WHERE token_hash = \$1 AND revoked = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: "nope"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

var refreshTokenColumns = []string{"id", "user_id", "token_hash", "expires_at", "revoked"}

func TestRefresh_RotatesToken(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	tokenID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "refresh_tokens" WHERE token_hash = \$1 AND revoked = \$2`).
		WillReturnRows(sqlmock.NewRows(refreshTokenColumns).
			AddRow(tokenID.String(), userID.String(), hashToken("raw"), time.Now().Add(time.Hour), false))
	mock.ExpectExec(`UPDATE "refresh_tokens" SET "revoked"=\$1 WHERE id = \$2 AND revoked = \$3`).
		WithArgs(true, tokenID, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(userID.String(), "Ana", "ana@example.com", "x", "user", 0))
	mock.ExpectQuery(`INSERT INTO "refresh_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	resp, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: "raw"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, "raw", resp.RefreshToken)
}

func TestRefresh_ConcurrentReuseRejected(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	tokenID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "refresh_tokens" WHERE token_hash = \$1 AND revoked = \$2`).
		WillReturnRows(sqlmock.NewRows(refreshTokenColumns).
			AddRow(tokenID.String(), uuid.NewString(), hashToken("raw"), time.Now().Add(time.Hour), false))
	// Another request revoked the token between the read and the update.
	mock.ExpectExec(`UPDATE "refresh_tokens" SET "revoked"=\$1 WHERE id = \$2 AND revoked = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: "raw"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_WithoutTokenIsNoop(t *testing.T) {
	db, _ := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)

	assert.NoError(t, svc.Logout(context.Background(), uuid.New(), ""))
}

func TestIssueAccessToken_Claims(t *testing.T) {
	cfg := testConfig()
	user := &models.User{ID: uuid.New(), Email: "root@example.com", Role: models.RoleSuperAdmin}
	now := time.Now()

	signed, err := IssueAccessToken(cfg, user, now)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "super_admin", claims["role"])
	assert.Equal(t, float64(now.Add(time.Hour).Unix()), claims["exp"])
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"abc12", false},
		{"abcdefgh", false},
		{"12345678", false},
		{"secret123", true},
		{string(make([]byte, 129)), false},
	}
	for _, tt := range tests {
		err := checkPassword(tt.password)
		if tt.ok {
			assert.NoError(t, err, tt.password)
		} else {
			assert.True(t, IsValidation(err), tt.password)
		}
	}
}

func TestContentFilter(t *testing.T) {
	f := NewContentFilter()

	assert.Empty(t, f.Check("Blocked the crossing for ten minutes"))
	assert.Equal(t, "inappropriate_language", f.Check("what a BASTARD driver"))
	assert.Equal(t, "url_not_allowed", f.Check("see https://example.com/video"))
	assert.Equal(t, "contact_info_not_allowed", f.Check("mail me: ana@example.com"))
	assert.Contains(t, RejectionMessage("url_not_allowed"), "URLs")
}

func TestMe(t *testing.T) {
	db, mock := dbtest.New(t)
	svc := NewAuthService(db, testConfig(), nil)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "Ana", "ana@example.com", "x", "admin", 40))
	user, err := svc.Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, 40, user.TotalPoints)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	_, err = svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
