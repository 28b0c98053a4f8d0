package handlers

import (
	"net/http"

	"antgiftbox/internal/models"
	"antgiftbox/internal/service"
)

// PairingHandler handles the link request workflow on both sides: child
// devices create and poll requests, parents list and resolve them.
type PairingHandler struct {
	pairingService    *service.PairingService
	preferenceService *service.PreferenceService
}

// NewPairingHandler creates a new pairing handler
func NewPairingHandler(pairingService *service.PairingService, preferenceService *service.PreferenceService) *PairingHandler {
	return &PairingHandler{
		pairingService:    pairingService,
		preferenceService: preferenceService,
	}
}

// CreateRequest handles POST /child/link-requests. The returned request id
// is also remembered as the device's active request, so a restarted app
// can resume polling.
func (h *PairingHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FamilyCode string `json:"familyCode"`
		Nickname   string `json:"nickname"`
		Avatar     string `json:"avatar"`
		Age        *int   `json:"age"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	request, err := h.pairingService.CreateLinkRequest(req.FamilyCode, req.Nickname, req.Avatar, req.Age)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	deviceID := r.Header.Get(DeviceIDHeader)
	if err := h.preferenceService.SetActiveLinkRequestID(deviceID, request.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"request":         request,
		"activeRequestId": request.ID,
	})
}

// GetRequest handles GET /child/link-requests/{id}. Child devices poll this
// until the request is resolved; on approval the child session is cached
// for auto-login and the active request id is cleared.
func (h *PairingHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.pairingService.GetRequest(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	deviceID := r.Header.Get(DeviceIDHeader)
	if deviceID != "" && !request.IsPending() {
		if request.Status == models.LinkRequestApproved && request.ChildID != "" {
			if err := h.preferenceService.SetChildSession(deviceID, request.ChildID); err != nil {
				writeServiceError(w, err)
				return
			}
		}
		if err := h.preferenceService.ClearActiveLinkRequestID(deviceID); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, request)
}

// ListPending handles GET /parent/link-requests
func (h *PairingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	requests, err := h.pairingService.ListPendingForParent(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// Approve handles POST /parent/link-requests/{id}/approve
func (h *PairingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload models.ParentApprovalPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	child, err := h.pairingService.Approve(r.PathValue("id"), user.UID, &payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"child": child})
}

// Reject handles POST /parent/link-requests/{id}/reject
func (h *PairingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	if err := h.pairingService.Reject(r.PathValue("id"), user.UID, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
