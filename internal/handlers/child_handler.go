package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"antgiftbox/internal/models"
	"antgiftbox/internal/service"
)

// ChildHandler handles child profile endpoints
type ChildHandler struct {
	childService      *service.ChildService
	watcher           *service.ChildWatcher
	preferenceService *service.PreferenceService
}

// NewChildHandler creates a new child handler
func NewChildHandler(childService *service.ChildService, watcher *service.ChildWatcher, preferenceService *service.PreferenceService) *ChildHandler {
	return &ChildHandler{
		childService:      childService,
		watcher:           watcher,
		preferenceService: preferenceService,
	}
}

// SessionValid handles GET /child/session/valid. The device's cached child
// session id is checked against the live profile so a deleted child is
// logged out on next launch.
func (h *ChildHandler) SessionValid(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(DeviceIDHeader)
	childID, err := h.preferenceService.ChildSessionID(deviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	valid, err := h.childService.SessionValid(childID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !valid {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "childId": childID})
}

// GetProfile handles GET /child/profiles/{id}
func (h *ChildHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	child, err := h.childService.GetProfile(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

// WatchProfile handles GET /child/profiles/{id}/watch, streaming profile
// updates as server-sent events. The child device keeps this open to
// mirror settings changes made by the parent. The stream ends when the
// client disconnects.
func (h *ChildHandler) WatchProfile(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming-unsupported", "Streaming is not supported.")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.watcher.Watch(r.PathValue("id"))
	defer sub.Cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// UpdateChild handles PUT /parent/children/{id}
func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Nickname string                  `json:"nickname"`
		Avatar   string                  `json:"avatar"`
		Age      *int                    `json:"age"`
		Settings models.ApprovalSettings `json:"settings"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	child, err := h.childService.UpdateProfile(r.PathValue("id"), user.UID, req.Nickname, req.Avatar, req.Age, req.Settings)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}
