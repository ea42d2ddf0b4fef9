package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/testutil"
)

func newUserHandler(t *testing.T) (*UserHandler, pgxmock.PgxPoolIface, *middleware.AuthMiddleware) {
	t.Helper()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	t.Cleanup(mockPool.Close)

	users := database.NewUserRepository(testutil.NewMockPoolAdapter(mockPool))
	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	return NewUserHandler(users, auth, bcrypt.MinCost), mockPool, auth
}

func TestUserHandler_Register(t *testing.T) {
	handler, mockPool, auth := newUserHandler(t)

	now := time.Now()
	mockPool.ExpectQuery(`INSERT INTO users`).
		WithArgs("test@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(), "free").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("user-1", now, now))

	w := postJSON(t, handler.Register, "/api/v1/users/register", models.UserRequest{
		Email:    "test@example.com",
		Password: "testpassword123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	require.Contains(t, resp, "token")

	claims, err := auth.ValidateToken(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)

	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "free", user["subscription_tier"])
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUserHandler_Register_EmailTaken(t *testing.T) {
	handler, mockPool, _ := newUserHandler(t)

	mockPool.ExpectQuery(`INSERT INTO users`).
		WithArgs("taken@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(), "free").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	w := postJSON(t, handler.Register, "/api/v1/users/register", models.UserRequest{
		Email:    "taken@example.com",
		Password: "testpassword123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "email already registered")
}

func TestUserHandler_Register_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"invalid JSON", "not json"},
		{"missing email", map[string]interface{}{"password": "testpassword123"}},
		{"missing password", map[string]interface{}{"email": "test@example.com"}},
		{"password too short", map[string]interface{}{"email": "test@example.com", "password": "short"}},
		{"malformed email", map[string]interface{}{"email": "not-an-email", "password": "testpassword123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newUserHandler(t)

			w := postJSON(t, handler.Register, "/api/v1/users/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w), "error")
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	handler, mockPool, auth := newUserHandler(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockPool.ExpectQuery(`FROM users`).
		WithArgs("test@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "telegram_chat_id", "subscription_tier", "created_at", "updated_at",
		}).AddRow("user-1", "test@example.com", string(hash), nil, "free", now, now))

	w := postJSON(t, handler.Login, "/api/v1/users/login", models.LoginRequest{
		Email:    "test@example.com",
		Password: "testpassword123",
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	require.Contains(t, resp, "token")

	claims, err := auth.ValidateToken(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUserHandler_Login_WrongPassword(t *testing.T) {
	handler, mockPool, _ := newUserHandler(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockPool.ExpectQuery(`FROM users`).
		WithArgs("test@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "telegram_chat_id", "subscription_tier", "created_at", "updated_at",
		}).AddRow("user-1", "test@example.com", string(hash), nil, "free", now, now))

	w := postJSON(t, handler.Login, "/api/v1/users/login", models.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
}

func TestUserHandler_Login_UnknownEmail(t *testing.T) {
	handler, mockPool, _ := newUserHandler(t)

	mockPool.ExpectQuery(`FROM users`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	w := postJSON(t, handler.Login, "/api/v1/users/login", models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "testpassword123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
}

func TestUserHandler_Profile(t *testing.T) {
	handler, mockPool, _ := newUserHandler(t)

	chatID := "123456789"
	now := time.Now()
	mockPool.ExpectQuery(`FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "telegram_chat_id", "subscription_tier", "created_at", "updated_at",
		}).AddRow("user-1", "test@example.com", "hash", &chatID, "pro", now, now))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	c.Set(middleware.ContextUserID, "user-1")

	handler.Profile(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "test@example.com", resp["email"])
	assert.Equal(t, "123456789", resp["telegram_chat_id"])
	assert.Equal(t, "pro", resp["subscription_tier"])
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUserHandler_Profile_NoAuth(t *testing.T) {
	handler, _, _ := newUserHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)

	handler.Profile(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeBody(t, w)["error"])
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	handler, mockPool, _ := newUserHandler(t)

	chatID := "987654321"
	now := time.Now()
	mockPool.ExpectExec(`UPDATE users`).
		WithArgs("user-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectQuery(`FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "telegram_chat_id", "subscription_tier", "created_at", "updated_at",
		}).AddRow("user-1", "test@example.com", "hash", &chatID, "free", now, now))

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(UpdateProfileRequest{TelegramChatID: &chatID}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/users/profile", &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserID, "user-1")

	handler.UpdateProfile(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "987654321", resp["telegram_chat_id"])
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUserHandler_UpdateProfile_NoAuth(t *testing.T) {
	handler, _, _ := newUserHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/users/profile", nil)

	handler.UpdateProfile(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeBody(t, w)["error"])
}
