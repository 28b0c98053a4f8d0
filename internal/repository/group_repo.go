package repository

import (
	"database/sql"
	"fmt"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
)

// GroupRepository handles database operations for family groups and their
// child rosters
type GroupRepository struct {
	db *database.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup inserts a new family group with an empty roster and links it
// back to the owning parent, in one transaction.
func (r *GroupRepository) CreateGroup(g *models.FamilyGroup) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO family_groups (invite_code, owner_id, selected_theme, allow_auto_approval, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.InviteCode, g.OwnerID, g.SelectedTheme, g.AllowAutoApproval, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE parents SET group_id = ?, updated_at = ? WHERE uid = ?`,
		g.InviteCode, now, g.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("link group to parent: %w", err)
	}

	return tx.Commit()
}

// GetGroupByCode retrieves a group and its roster, nil if absent
func (r *GroupRepository) GetGroupByCode(code string) (*models.FamilyGroup, error) {
	var g models.FamilyGroup
	err := r.db.QueryRow(
		`SELECT invite_code, owner_id, selected_theme, allow_auto_approval, created_at, updated_at
		 FROM family_groups WHERE invite_code = ?`, code,
	).Scan(&g.InviteCode, &g.OwnerID, &g.SelectedTheme, &g.AllowAutoApproval, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	children, err := r.ListChildIDs(code)
	if err != nil {
		return nil, err
	}
	g.Children = children
	return &g, nil
}

// CodeExists reports whether a group with this invite code already exists
func (r *GroupRepository) CodeExists(code string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM family_groups WHERE invite_code = ?`, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check invite code: %w", err)
	}
	return count > 0, nil
}

// ListChildIDs returns the group's roster in insertion order
func (r *GroupRepository) ListChildIDs(code string) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT child_id FROM group_children WHERE invite_code = ? ORDER BY added_at ASC`, code,
	)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateSettings updates the group's theme and auto-approval settings
func (r *GroupRepository) UpdateSettings(code, selectedTheme string, allowAutoApproval bool) error {
	_, err := r.db.Exec(
		`UPDATE family_groups SET selected_theme = ?, allow_auto_approval = ?, updated_at = ?
		 WHERE invite_code = ?`,
		selectedTheme, allowAutoApproval, time.Now(), code,
	)
	if err != nil {
		return fmt.Errorf("update group settings: %w", err)
	}
	return nil
}
