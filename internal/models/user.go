package models

import (
	"encoding/json"
	"time"
)

// User represents a platform user
type User struct {
	ID               string    `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	TelegramChatID   *string   `json:"telegram_chat_id" db:"telegram_chat_id"`
	SubscriptionTier string    `json:"subscription_tier" db:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// UserAlert represents user-configured alerts
type UserAlert struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"user_id" db:"user_id"`
	AlertType  string          `json:"alert_type" db:"alert_type"`
	Conditions json.RawMessage `json:"conditions" db:"conditions"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	User       *User           `json:"user,omitempty"`
}

// AlertConditions represents trend-alert trigger conditions
type AlertConditions struct {
	DatasetID      string   `json:"dataset_id,omitempty"`
	TrendDirection []string `json:"trend_direction,omitempty"`
	MinConfidence  string   `json:"min_confidence,omitempty"`
}

// UserRequest represents user registration/update request
type UserRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	TelegramChatID   string `json:"telegram_chat_id"`
	SubscriptionTier string `json:"subscription_tier"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents user information for API responses
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	TelegramChatID   string    `json:"telegram_chat_id"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
}

// AuthResponse represents a successful login
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ToResponse converts a User to its API representation
func (u *User) ToResponse() UserResponse {
	chatID := ""
	if u.TelegramChatID != nil {
		chatID = *u.TelegramChatID
	}
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		TelegramChatID:   chatID,
		SubscriptionTier: u.SubscriptionTier,
		CreatedAt:        u.CreatedAt,
	}
}
