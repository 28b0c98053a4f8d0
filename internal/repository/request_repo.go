package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
)

// ErrRequestNotPending is returned when an approve or reject races another
// resolution of the same request, or targets an already resolved one.
var ErrRequestNotPending = errors.New("link request is not pending")

// RequestRepository handles database operations for child link requests
type RequestRepository struct {
	db *database.DB
}

// NewRequestRepository creates a new link request repository
func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestCols = `id, family_code, child_nickname, child_avatar, child_age, status,
	rejection_reason, parent_uid, child_id, created_at, updated_at`

func scanRequest(scanner interface{ Scan(...any) error }) (*models.LinkRequest, error) {
	var req models.LinkRequest
	var age sql.NullInt64
	err := scanner.Scan(
		&req.ID, &req.FamilyCode, &req.ChildNickname, &req.ChildAvatar, &age,
		&req.Status, &req.RejectionReason, &req.ParentUID, &req.ChildID,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		req.ChildAge = &a
	}
	return &req, nil
}

func nullableAge(age *int) any {
	if age == nil {
		return nil
	}
	return *age
}

// CreateRequest inserts a new pending link request
func (r *RequestRepository) CreateRequest(req *models.LinkRequest) error {
	now := time.Now()
	req.Status = models.LinkRequestPending
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := r.db.Exec(
		`INSERT INTO child_link_requests
		 (id, family_code, child_nickname, child_avatar, child_age, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.FamilyCode, req.ChildNickname, req.ChildAvatar,
		nullableAge(req.ChildAge), req.Status, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert link request: %w", err)
	}
	return nil
}

// GetByID retrieves a link request, nil if absent
func (r *RequestRepository) GetByID(id string) (*models.LinkRequest, error) {
	row := r.db.QueryRow(`SELECT `+requestCols+` FROM child_link_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get link request: %w", err)
	}
	return req, nil
}

// ListByFamilyCode returns requests for a family code with the given status,
// most recent first
func (r *RequestRepository) ListByFamilyCode(familyCode, status string) ([]models.LinkRequest, error) {
	rows, err := r.db.Query(
		`SELECT `+requestCols+` FROM child_link_requests
		 WHERE family_code = ? AND status = ?
		 ORDER BY created_at DESC`,
		familyCode, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list link requests: %w", err)
	}
	defer rows.Close()

	var requests []models.LinkRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// Approve finalizes a pending request in a single transaction: the request
// is flipped to approved, the child profile is created, and the child is
// added to the group roster. The status flip is conditional on the request
// still being pending, so a concurrent approval loses with
// ErrRequestNotPending and leaves no side effects.
func (r *RequestRepository) Approve(requestID, parentUID string, child *models.ChildProfile, approvalSnapshot string) error {
	now := time.Now()
	child.CreatedAt = now
	child.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE child_link_requests
		 SET status = ?, parent_uid = ?, child_id = ?, approval_snapshot = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		models.LinkRequestApproved, parentUID, child.ChildID, approvalSnapshot, now,
		requestID, models.LinkRequestPending,
	)
	if err != nil {
		return fmt.Errorf("mark request approved: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotPending
	}

	s := child.ApprovalSettings
	_, err = tx.Exec(
		`INSERT INTO children
		 (child_id, family_code, nickname, avatar, age, parent_uid,
		  reward_enabled, base_coin_reward, approval_mode, usage_start_time, usage_end_time,
		  daily_max_completion, push_agreed, recovery_email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		child.ChildID, child.FamilyCode, child.Nickname, child.Avatar,
		nullableAge(child.Age), child.ParentUID,
		s.RewardEnabled, s.BaseCoinReward, s.ApprovalMode, s.UsageStartTime, s.UsageEndTime,
		s.DailyMaxCompletion, s.PushAgreed, s.RecoveryEmail, child.CreatedAt, child.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert child profile: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO group_children (invite_code, child_id, added_at) VALUES (?, ?, ?)`,
		child.FamilyCode, child.ChildID, now,
	)
	if err != nil {
		return fmt.Errorf("add child to roster: %w", err)
	}

	return tx.Commit()
}

// Reject marks a pending request rejected with the resolving parent and
// reason. Resolving an already resolved request fails with
// ErrRequestNotPending.
func (r *RequestRepository) Reject(requestID, parentUID, reason string) error {
	result, err := r.db.Exec(
		`UPDATE child_link_requests
		 SET status = ?, parent_uid = ?, rejection_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		models.LinkRequestRejected, parentUID, reason, time.Now(),
		requestID, models.LinkRequestPending,
	)
	if err != nil {
		return fmt.Errorf("mark request rejected: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotPending
	}
	return nil
}

// DeleteStaleRequests removes pending requests older than the cutoff. The
// mobile client only remembers one outstanding request, so abandoned ones
// accumulate without this.
func (r *RequestRepository) DeleteStaleRequests(olderThan time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM child_link_requests WHERE status = ? AND created_at < ?`,
		models.LinkRequestPending, olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale requests: %w", err)
	}
	return result.RowsAffected()
}
