package handlers

import (
	"net/http"
	"time"

	"antgiftbox/internal/service"
)

// VaultHandler handles the parent gifticon vault endpoints
type VaultHandler struct {
	vaultService *service.VaultService
}

// NewVaultHandler creates a new vault handler
func NewVaultHandler(vaultService *service.VaultService) *VaultHandler {
	return &VaultHandler{vaultService: vaultService}
}

// List handles GET /parent/vault
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	items, err := h.vaultService.ListItems(user.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Add handles POST /parent/vault
func (h *VaultHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name       string     `json:"name"`
		ImageURL   string     `json:"imageUrl"`
		BarcodeURL string     `json:"barcodeUrl"`
		ExpiryDate *time.Time `json:"expiryDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	item, err := h.vaultService.AddItem(user.UID, req.Name, req.ImageURL, req.BarcodeURL, req.ExpiryDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Assign handles PUT /parent/vault/{id}/assign
func (h *VaultHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		ChildID *string `json:"childId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-body", "Invalid request body.")
		return
	}

	item, err := h.vaultService.AssignItem(r.PathValue("id"), user.UID, req.ChildID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Deliver handles POST /parent/vault/{id}/deliver
func (h *VaultHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.vaultService.DeliverItem(r.PathValue("id"), user.UID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
