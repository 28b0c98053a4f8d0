package repository

import (
	"database/sql"
	"fmt"
	"time"

	"antgiftbox/internal/database"
)

// PreferenceRepository handles database operations for per-device preferences
type PreferenceRepository struct {
	db *database.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *database.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get retrieves a preference value for a device. The second return value
// reports whether the key was set.
func (r *PreferenceRepository) Get(deviceID, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(
		`SELECT pref_value FROM device_preferences WHERE device_id = ? AND pref_key = ?`,
		deviceID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference: %w", err)
	}
	return value, true, nil
}

// Set stores a preference value for a device, overwriting any previous one.
// Update-then-insert keeps the upsert portable across dialects.
func (r *PreferenceRepository) Set(deviceID, key, value string) error {
	now := time.Now()
	result, err := r.db.Exec(
		`UPDATE device_preferences SET pref_value = ?, updated_at = ?
		 WHERE device_id = ? AND pref_key = ?`,
		value, now, deviceID, key,
	)
	if err != nil {
		return fmt.Errorf("update preference: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	_, err = r.db.Exec(
		`INSERT INTO device_preferences (device_id, pref_key, pref_value, updated_at)
		 VALUES (?, ?, ?, ?)`,
		deviceID, key, value, now,
	)
	if err != nil {
		return fmt.Errorf("insert preference: %w", err)
	}
	return nil
}

// Delete removes a preference for a device. Deleting an unset key is a no-op.
func (r *PreferenceRepository) Delete(deviceID, key string) error {
	_, err := r.db.Exec(
		`DELETE FROM device_preferences WHERE device_id = ? AND pref_key = ?`,
		deviceID, key,
	)
	if err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}

// GetAll returns every preference set for a device
func (r *PreferenceRepository) GetAll(deviceID string) (map[string]string, error) {
	rows, err := r.db.Query(
		`SELECT pref_key, pref_value FROM device_preferences WHERE device_id = ?`,
		deviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}
