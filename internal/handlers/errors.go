package handlers

import (
	"errors"
	"net/http"

	"antgiftbox/internal/service"
	"antgiftbox/internal/validation"
)

// writeServiceError maps a service error to its HTTP status and stable
// error code. Unknown errors become a 500 without leaking the cause.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email-taken", "An account with this email already exists.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid-credentials", "Invalid email or password.")
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "not-authenticated", "Session is missing or expired.")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrParentNotFound):
		writeError(w, http.StatusNotFound, "account-not-found", "Account not found.")
	case errors.Is(err, service.ErrProviderNotConfigured):
		writeError(w, http.StatusBadRequest, "provider-not-configured", "Social provider is not configured.")
	case errors.Is(err, service.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "group-not-found", "Family group not found.")
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		writeError(w, http.StatusServiceUnavailable, "code-generation-failed", "Could not generate an invite code. Try again.")
	case errors.Is(err, service.ErrInvalidFamilyCode):
		writeError(w, http.StatusNotFound, "invalid-family-code", "No family found for this code.")
	case errors.Is(err, service.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "request-not-found", "Link request not found.")
	case errors.Is(err, service.ErrRequestNotPending):
		writeError(w, http.StatusConflict, "request-not-pending", "This request has already been resolved.")
	case errors.Is(err, service.ErrNotRequestOwner):
		writeError(w, http.StatusForbidden, "not-request-owner", "This request belongs to another family.")
	case errors.Is(err, service.ErrChildNotFound):
		writeError(w, http.StatusNotFound, "child-not-found", "Child profile not found.")
	case errors.Is(err, service.ErrVaultItemNotFound):
		writeError(w, http.StatusNotFound, "vault-item-not-found", "Vault item not found.")
	case errors.Is(err, service.ErrNotVaultOwner):
		writeError(w, http.StatusForbidden, "not-vault-owner", "This vault item belongs to another parent.")
	case errors.Is(err, service.ErrVaultItemNotPending):
		writeError(w, http.StatusConflict, "vault-item-delivered", "This vault item has already been delivered.")
	case errors.Is(err, service.ErrVaultItemExpired):
		writeError(w, http.StatusConflict, "vault-item-expired", "This vault item has expired.")
	case errors.Is(err, service.ErrInvalidVaultItem):
		writeError(w, http.StatusBadRequest, "invalid-vault-item", "Vault item name is required.")
	case errors.Is(err, service.ErrUnknownPreference):
		writeError(w, http.StatusBadRequest, "unknown-preference", "Unknown preference key.")
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, "validation-failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal-error", "Something went wrong.")
	}
}

func isValidationError(err error) bool {
	var verr *validation.Error
	return errors.As(err, &verr)
}
