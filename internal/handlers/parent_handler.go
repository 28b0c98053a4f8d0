package handlers

import (
	"net/http"

	"antgiftbox/internal/repository"
	"antgiftbox/internal/service"
)

// ParentHandler handles the parent profile and family group endpoints
type ParentHandler struct {
	directoryService *service.DirectoryService
	childService     *service.ChildService
	parentRepo       *repository.ParentRepository
}

// NewParentHandler creates a new parent handler
func NewParentHandler(directoryService *service.DirectoryService, childService *service.ChildService, parentRepo *repository.ParentRepository) *ParentHandler {
	return &ParentHandler{
		directoryService: directoryService,
		childService:     childService,
		parentRepo:       parentRepo,
	}
}

// Profile handles GET /parent/profile
func (h *ParentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	parent, err := h.parentRepo.GetParentByUID(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if parent == nil {
		writeServiceError(w, service.ErrParentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

// UpdateProfile handles PUT /parent/profile
func (h *ParentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "validation-failed", "Display name is required.")
		return
	}

	if err := h.parentRepo.UpdateProfile(user.UID, req.DisplayName, req.PhotoURL); err != nil {
		writeServiceError(w, err)
		return
	}
	parent, err := h.parentRepo.GetParentByUID(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parent)
}

// FamilyCode handles GET /parent/family-code, creating the group on first
// call
func (h *ParentHandler) FamilyCode(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	code, err := h.directoryService.GetOrCreateFamilyCode(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"familyCode": code})
}

// FamilyGroup handles GET /parent/group
func (h *ParentHandler) FamilyGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	code, err := h.directoryService.GetOrCreateFamilyCode(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	group, err := h.directoryService.GetGroup(code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// UpdateGroupSettings handles PUT /parent/group/settings
func (h *ParentHandler) UpdateGroupSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		SelectedTheme     string `json:"selectedTheme"`
		AllowAutoApproval bool   `json:"allowAutoApproval"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	if err := h.directoryService.UpdateGroupSettings(user.UID, req.SelectedTheme, req.AllowAutoApproval); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateSubscription handles PUT /parent/subscription
func (h *ParentHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		IsPremium bool `json:"isPremium"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	parent, err := h.parentRepo.GetParentByUID(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if parent == nil {
		writeServiceError(w, service.ErrParentNotFound)
		return
	}
	if err := h.parentRepo.SetPremium(user.UID, req.IsPremium); err != nil {
		writeServiceError(w, err)
		return
	}
	parent.IsPremium = req.IsPremium
	writeJSON(w, http.StatusOK, parent)
}

// Children handles GET /parent/children
func (h *ParentHandler) Children(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	parent, err := h.parentRepo.GetParentByUID(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if parent == nil {
		writeServiceError(w, service.ErrParentNotFound)
		return
	}

	children, err := h.childService.ListForParent(parent)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"children": children})
}
