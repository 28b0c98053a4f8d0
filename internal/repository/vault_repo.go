package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
)

// ErrVaultItemNotPending is returned when delivering an item that has
// already been delivered.
var ErrVaultItemNotPending = errors.New("vault item is not pending")

// VaultRepository handles database operations for stored gifticons
type VaultRepository struct {
	db *database.DB
}

// NewVaultRepository creates a new vault repository
func NewVaultRepository(db *database.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

const vaultCols = `vault_id, parent_id, target_child_id, name, image_url, barcode_url,
	status, expiry_date, created_at, updated_at`

func scanVaultItem(scanner interface{ Scan(...any) error }) (*models.VaultItem, error) {
	var v models.VaultItem
	var targetChildID sql.NullString
	var expiryDate sql.NullTime
	err := scanner.Scan(
		&v.VaultID, &v.ParentID, &targetChildID, &v.Name, &v.ImageURL, &v.BarcodeURL,
		&v.Status, &expiryDate, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if targetChildID.Valid {
		v.TargetChildID = &targetChildID.String
	}
	if expiryDate.Valid {
		t := expiryDate.Time
		v.ExpiryDate = &t
	}
	return &v, nil
}

// Create inserts a new pending vault item
func (r *VaultRepository) Create(item *models.VaultItem) error {
	now := time.Now()
	item.Status = models.VaultItemPending
	item.CreatedAt = now
	item.UpdatedAt = now

	var targetChildID any
	if item.TargetChildID != nil {
		targetChildID = *item.TargetChildID
	}
	var expiryDate any
	if item.ExpiryDate != nil {
		expiryDate = *item.ExpiryDate
	}
	_, err := r.db.Exec(
		`INSERT INTO vault_items
		 (vault_id, parent_id, target_child_id, name, image_url, barcode_url, status, expiry_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.VaultID, item.ParentID, targetChildID, item.Name, item.ImageURL, item.BarcodeURL,
		item.Status, expiryDate, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vault item: %w", err)
	}
	return nil
}

// GetByID retrieves a vault item, nil if absent
func (r *VaultRepository) GetByID(vaultID string) (*models.VaultItem, error) {
	row := r.db.QueryRow(`SELECT `+vaultCols+` FROM vault_items WHERE vault_id = ?`, vaultID)
	item, err := scanVaultItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vault item: %w", err)
	}
	return item, nil
}

// ListByParent returns a parent's vault items, newest first
func (r *VaultRepository) ListByParent(parentID string) ([]models.VaultItem, error) {
	rows, err := r.db.Query(
		`SELECT `+vaultCols+` FROM vault_items WHERE parent_id = ? ORDER BY created_at DESC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vault items: %w", err)
	}
	defer rows.Close()

	var items []models.VaultItem
	for rows.Next() {
		item, err := scanVaultItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Assign sets or clears the target child of a vault item
func (r *VaultRepository) Assign(vaultID string, childID *string) error {
	var target any
	if childID != nil {
		target = *childID
	}
	_, err := r.db.Exec(
		`UPDATE vault_items SET target_child_id = ?, updated_at = ? WHERE vault_id = ?`,
		target, time.Now(), vaultID,
	)
	if err != nil {
		return fmt.Errorf("assign vault item: %w", err)
	}
	return nil
}

// MarkDelivered flips a pending item to delivered. Delivering twice fails
// with ErrVaultItemNotPending.
func (r *VaultRepository) MarkDelivered(vaultID string) error {
	result, err := r.db.Exec(
		`UPDATE vault_items SET status = ?, updated_at = ? WHERE vault_id = ? AND status = ?`,
		models.VaultItemDelivered, time.Now(), vaultID, models.VaultItemPending,
	)
	if err != nil {
		return fmt.Errorf("mark vault item delivered: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVaultItemNotPending
	}
	return nil
}
