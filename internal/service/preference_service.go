package service

import (
	"errors"
	"fmt"

	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
)

var ErrUnknownPreference = errors.New("unknown preference key")

// PreferenceService stores per-device preferences: auto-login flags, the
// cached child session, the active link request id and theme selection.
// Unset keys resolve to their documented defaults.
type PreferenceService struct {
	prefRepo *repository.PreferenceRepository
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(prefRepo *repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefRepo: prefRepo}
}

// Get returns the value for a known key, falling back to its default
func (s *PreferenceService) Get(deviceID, key string) (string, error) {
	defaultValue, known := models.PreferenceDefaults[key]
	if !known {
		return "", ErrUnknownPreference
	}
	value, ok, err := s.prefRepo.Get(deviceID, key)
	if err != nil {
		return "", fmt.Errorf("failed to get preference: %w", err)
	}
	if !ok {
		return defaultValue, nil
	}
	return value, nil
}

// Set stores the value for a known key
func (s *PreferenceService) Set(deviceID, key, value string) error {
	if _, known := models.PreferenceDefaults[key]; !known {
		return ErrUnknownPreference
	}
	if err := s.prefRepo.Set(deviceID, key, value); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}

// Clear resets a known key back to its default
func (s *PreferenceService) Clear(deviceID, key string) error {
	if _, known := models.PreferenceDefaults[key]; !known {
		return ErrUnknownPreference
	}
	if err := s.prefRepo.Delete(deviceID, key); err != nil {
		return fmt.Errorf("failed to clear preference: %w", err)
	}
	return nil
}

// GetAll returns every known key for a device, with defaults filled in for
// unset ones
func (s *PreferenceService) GetAll(deviceID string) (map[string]string, error) {
	stored, err := s.prefRepo.GetAll(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}

	prefs := make(map[string]string, len(models.PreferenceDefaults))
	for key, defaultValue := range models.PreferenceDefaults {
		if value, ok := stored[key]; ok {
			prefs[key] = value
		} else {
			prefs[key] = defaultValue
		}
	}
	return prefs, nil
}

// ActiveLinkRequestID returns the link request the child device is waiting
// on, empty when none
func (s *PreferenceService) ActiveLinkRequestID(deviceID string) (string, error) {
	return s.Get(deviceID, models.PrefActiveLinkRequestID)
}

// SetActiveLinkRequestID remembers the link request a child device just
// submitted
func (s *PreferenceService) SetActiveLinkRequestID(deviceID, requestID string) error {
	return s.Set(deviceID, models.PrefActiveLinkRequestID, requestID)
}

// ClearActiveLinkRequestID forgets the active link request, used once the
// request is resolved
func (s *PreferenceService) ClearActiveLinkRequestID(deviceID string) error {
	return s.Clear(deviceID, models.PrefActiveLinkRequestID)
}

// SetChildSession caches the child session id for auto-login on the child
// device
func (s *PreferenceService) SetChildSession(deviceID, childID string) error {
	return s.Set(deviceID, models.PrefChildSessionID, childID)
}

// ChildSessionID returns the cached child session id, empty when the
// device has none
func (s *PreferenceService) ChildSessionID(deviceID string) (string, error) {
	return s.Get(deviceID, models.PrefChildSessionID)
}
