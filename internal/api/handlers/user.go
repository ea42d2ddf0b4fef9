package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/models"
)

// UserHandler serves registration, login and profile endpoints.
type UserHandler struct {
	users      *database.UserRepository
	auth       *middleware.AuthMiddleware
	bcryptCost int
}

// UpdateProfileRequest carries the mutable profile fields. A null
// telegram_chat_id clears the alert binding.
type UpdateProfileRequest struct {
	TelegramChatID *string `json:"telegram_chat_id"`
}

func NewUserHandler(users *database.UserRepository, auth *middleware.AuthMiddleware, bcryptCost int) *UserHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{
		users:      users,
		auth:       auth,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user account and issues a token.
func (h *UserHandler) Register(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Email:            req.Email,
		PasswordHash:     string(hash),
		SubscriptionTier: req.SubscriptionTier,
	}
	if req.TelegramChatID != "" {
		user.TelegramChatID = &req.TelegramChatID
	}
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = "free"
	}

	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login verifies credentials and issues a token.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Profile returns the authenticated user's account.
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// UpdateProfile updates the Telegram chat binding used for trend alerts.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateTelegramChatID(c.Request.Context(), userID, req.TelegramChatID); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, models.AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.auth.TokenDuration()),
		User:      user.ToResponse(),
	})
}
