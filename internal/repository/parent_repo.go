package repository

import (
	"database/sql"
	"fmt"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
)

// ParentRepository handles database operations for parent profiles
type ParentRepository struct {
	db *database.DB
}

// NewParentRepository creates a new parent repository
func NewParentRepository(db *database.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

const parentCols = `uid, email, display_name, photo_url, group_id, is_premium, created_at, updated_at`

func scanParent(scanner interface{ Scan(...any) error }) (*models.Parent, error) {
	var p models.Parent
	var groupID sql.NullString
	err := scanner.Scan(
		&p.UID, &p.Email, &p.DisplayName, &p.PhotoURL,
		&groupID, &p.IsPremium, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if groupID.Valid {
		p.GroupID = &groupID.String
	}
	return &p, nil
}

// CreateParent inserts a new parent profile with no group yet
func (r *ParentRepository) CreateParent(p *models.Parent) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.Exec(
		`INSERT INTO parents (`+parentCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UID, p.Email, p.DisplayName, p.PhotoURL, p.GroupID, p.IsPremium,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert parent: %w", err)
	}
	return nil
}

// GetParentByUID retrieves a parent profile, nil if absent
func (r *ParentRepository) GetParentByUID(uid string) (*models.Parent, error) {
	row := r.db.QueryRow(`SELECT `+parentCols+` FROM parents WHERE uid = ?`, uid)
	p, err := scanParent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get parent: %w", err)
	}
	return p, nil
}

// UpdateProfile updates the parent's display name and photo
func (r *ParentRepository) UpdateProfile(uid, displayName, photoURL string) error {
	_, err := r.db.Exec(
		`UPDATE parents SET display_name = ?, photo_url = ?, updated_at = ? WHERE uid = ?`,
		displayName, photoURL, time.Now(), uid,
	)
	if err != nil {
		return fmt.Errorf("update parent profile: %w", err)
	}
	return nil
}

// SetPremium flips the premium subscription flag
func (r *ParentRepository) SetPremium(uid string, premium bool) error {
	_, err := r.db.Exec(
		`UPDATE parents SET is_premium = ?, updated_at = ? WHERE uid = ?`,
		premium, time.Now(), uid,
	)
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}
	return nil
}
