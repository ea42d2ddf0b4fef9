package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/datalyr/foresight-go/internal/models"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registration hits the unique email constraint.
	ErrEmailTaken = errors.New("email already registered")
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// UserRepository handles database operations for user accounts.
type UserRepository struct {
	pool DatabasePool
}

// NewUserRepository creates a new user repository.
//
// Parameters:
//
//	pool: The database connection pool.
//
// Returns:
//
//	*UserRepository: The initialized repository.
func NewUserRepository(pool DatabasePool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

// CreateUser inserts a new user account. The user's ID, CreatedAt and
// UpdatedAt are populated from the insert.
//
// Parameters:
//
//	ctx: Context.
//	user: User to create, with PasswordHash already set.
//
// Returns:
//
//	error: ErrEmailTaken when the email exists, otherwise the database error.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, telegram_chat_id, subscription_tier)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.TelegramChatID,
		user.SubscriptionTier,
	).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email address.
//
// Parameters:
//
//	ctx: Context.
//	email: Email address.
//
// Returns:
//
//	*models.User: The user, or ErrUserNotFound when it does not exist.
//	error: Error if retrieval fails.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, telegram_chat_id, subscription_tier, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.TelegramChatID,
		&user.SubscriptionTier,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
//
// Parameters:
//
//	ctx: Context.
//	id: User ID.
//
// Returns:
//
//	*models.User: The user, or ErrUserNotFound when it does not exist.
//	error: Error if retrieval fails.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, telegram_chat_id, subscription_tier, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.TelegramChatID,
		&user.SubscriptionTier,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// UpdateTelegramChatID links or unlinks a user's Telegram chat.
//
// Parameters:
//
//	ctx: Context.
//	userID: User ID.
//	chatID: Telegram chat ID, nil to unlink.
//
// Returns:
//
//	error: ErrUserNotFound when no user matched, otherwise the database error.
func (r *UserRepository) UpdateTelegramChatID(ctx context.Context, userID string, chatID *string) error {
	query := `
		UPDATE users
		SET telegram_chat_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to update telegram chat id: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetTelegramRecipients returns all users with a linked Telegram chat.
// Used by the notification service to fan out trend alerts.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	[]models.User: Users with a Telegram chat ID.
//	error: Error if retrieval fails.
func (r *UserRepository) GetTelegramRecipients(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, email, password_hash, telegram_chat_id, subscription_tier, created_at, updated_at
		FROM users
		WHERE telegram_chat_id IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram recipients: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.TelegramChatID,
			&user.SubscriptionTier,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
