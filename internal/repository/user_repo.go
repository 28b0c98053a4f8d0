package repository

import (
	"database/sql"
	"fmt"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
)

// UserRepository handles database operations for user accounts and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userCols = `uid, email, password_hash, display_name, photo_url, provider, role,
	phone_verified, onboarding_completed, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.UID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.PhotoURL,
		&u.Provider, &u.Role, &u.PhoneVerified, &u.OnboardingCompleted,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user account
func (r *UserRepository) CreateUser(u *models.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.db.Exec(
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UID, u.Email, u.PasswordHash, u.DisplayName, u.PhotoURL,
		u.Provider, u.Role, u.PhoneVerified, u.OnboardingCompleted,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email, nil if absent
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves a user by uid, nil if absent
func (r *UserRepository) GetUserByID(uid string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userCols+` FROM users WHERE uid = ?`, uid)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// TouchUser bumps the user's updated_at, the merge-write the clients perform
// on every sign-in
func (r *UserRepository) TouchUser(uid string) error {
	_, err := r.db.Exec(`UPDATE users SET updated_at = ? WHERE uid = ?`, time.Now(), uid)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}

// SetPhoneVerified marks the user's phone as verified
func (r *UserRepository) SetPhoneVerified(uid string) error {
	_, err := r.db.Exec(
		`UPDATE users SET phone_verified = ?, updated_at = ? WHERE uid = ?`,
		true, time.Now(), uid,
	)
	if err != nil {
		return fmt.Errorf("set phone verified: %w", err)
	}
	return nil
}

// SetOnboardingCompleted marks the user's onboarding as done
func (r *UserRepository) SetOnboardingCompleted(uid string) error {
	_, err := r.db.Exec(
		`UPDATE users SET onboarding_completed = ?, updated_at = ? WHERE uid = ?`,
		true, time.Now(), uid,
	)
	if err != nil {
		return fmt.Errorf("set onboarding completed: %w", err)
	}
	return nil
}

// SetFlowStatus sets both routing flags at once (the self-healing path when
// an existing parent profile implies a completed flow)
func (r *UserRepository) SetFlowStatus(uid string, phoneVerified, onboardingCompleted bool) error {
	_, err := r.db.Exec(
		`UPDATE users SET phone_verified = ?, onboarding_completed = ?, updated_at = ? WHERE uid = ?`,
		phoneVerified, onboardingCompleted, time.Now(), uid,
	)
	if err != nil {
		return fmt.Errorf("set flow status: %w", err)
	}
	return nil
}

// CreateSession inserts a new session token
func (r *UserRepository) CreateSession(token, userID string, expiresAt time.Time) (*models.Session, error) {
	now := time.Now()
	_, err := r.db.Exec(
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token, userID, expiresAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &models.Session{Token: token, UserID: userID, ExpiresAt: expiresAt, CreatedAt: now}, nil
}

// GetSession retrieves a session by token, nil if absent
func (r *UserRepository) GetSession(token string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session token
func (r *UserRepository) DeleteSession(token string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry
func (r *UserRepository) DeleteExpiredSessions() error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}
