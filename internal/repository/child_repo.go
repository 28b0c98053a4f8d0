package repository

import (
	"database/sql"
	"fmt"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childCols = `child_id, family_code, nickname, avatar, age, parent_uid,
	reward_enabled, base_coin_reward, approval_mode, usage_start_time, usage_end_time,
	daily_max_completion, push_agreed, recovery_email, created_at, updated_at`

func scanChild(scanner interface{ Scan(...any) error }) (*models.ChildProfile, error) {
	var c models.ChildProfile
	var age sql.NullInt64
	err := scanner.Scan(
		&c.ChildID, &c.FamilyCode, &c.Nickname, &c.Avatar, &age, &c.ParentUID,
		&c.ApprovalSettings.RewardEnabled, &c.ApprovalSettings.BaseCoinReward,
		&c.ApprovalSettings.ApprovalMode, &c.ApprovalSettings.UsageStartTime,
		&c.ApprovalSettings.UsageEndTime, &c.ApprovalSettings.DailyMaxCompletion,
		&c.ApprovalSettings.PushAgreed, &c.ApprovalSettings.RecoveryEmail,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		c.Age = &a
	}
	return &c, nil
}

// GetChildByID retrieves a child profile, nil if absent
func (r *ChildRepository) GetChildByID(childID string) (*models.ChildProfile, error) {
	row := r.db.QueryRow(`SELECT `+childCols+` FROM children WHERE child_id = ?`, childID)
	child, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return child, nil
}

// ListByFamilyCode returns all children linked to a family code, oldest first
func (r *ChildRepository) ListByFamilyCode(familyCode string) ([]models.ChildProfile, error) {
	rows, err := r.db.Query(
		`SELECT `+childCols+` FROM children WHERE family_code = ? ORDER BY created_at ASC`,
		familyCode,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []models.ChildProfile
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// Exists reports whether a child profile with the given id exists
func (r *ChildRepository) Exists(childID string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM children WHERE child_id = ?`, childID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check child exists: %w", err)
	}
	return count > 0, nil
}

// UpdateChild saves editable profile fields and approval settings
func (r *ChildRepository) UpdateChild(child *models.ChildProfile) error {
	child.UpdatedAt = time.Now()
	s := child.ApprovalSettings
	_, err := r.db.Exec(
		`UPDATE children SET nickname = ?, avatar = ?, age = ?,
		 reward_enabled = ?, base_coin_reward = ?, approval_mode = ?,
		 usage_start_time = ?, usage_end_time = ?, daily_max_completion = ?,
		 push_agreed = ?, recovery_email = ?, updated_at = ?
		 WHERE child_id = ?`,
		child.Nickname, child.Avatar, nullableAge(child.Age),
		s.RewardEnabled, s.BaseCoinReward, s.ApprovalMode,
		s.UsageStartTime, s.UsageEndTime, s.DailyMaxCompletion,
		s.PushAgreed, s.RecoveryEmail, child.UpdatedAt,
		child.ChildID,
	)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return nil
}
