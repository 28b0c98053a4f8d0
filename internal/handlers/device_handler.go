package handlers

import (
	"net/http"

	"antgiftbox/internal/service"
)

// DeviceHandler handles the per-device preference endpoints
type DeviceHandler struct {
	preferenceService *service.PreferenceService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(preferenceService *service.PreferenceService) *DeviceHandler {
	return &DeviceHandler{preferenceService: preferenceService}
}

// GetPreferences handles GET /device/preferences
func (h *DeviceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(DeviceIDHeader)
	prefs, err := h.preferenceService.GetAll(deviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

// GetPreference handles GET /device/preferences/{key}
func (h *DeviceHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(DeviceIDHeader)
	key := r.PathValue("key")

	value, err := h.preferenceService.Get(deviceID, key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// SetPreference handles PUT /device/preferences/{key}
func (h *DeviceHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(DeviceIDHeader)
	key := r.PathValue("key")

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	if err := h.preferenceService.Set(deviceID, key, req.Value); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// ClearPreference handles DELETE /device/preferences/{key}
func (h *DeviceHandler) ClearPreference(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(DeviceIDHeader)
	key := r.PathValue("key")

	if err := h.preferenceService.Clear(deviceID, key); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
