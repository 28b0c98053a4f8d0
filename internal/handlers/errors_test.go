package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"antgiftbox/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"email taken", service.ErrEmailTaken, http.StatusConflict, "email-taken"},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid-credentials"},
		{"session expired", service.ErrSessionExpired, http.StatusUnauthorized, "not-authenticated"},
		{"invalid family code", service.ErrInvalidFamilyCode, http.StatusNotFound, "invalid-family-code"},
		{"request not pending", service.ErrRequestNotPending, http.StatusConflict, "request-not-pending"},
		{"not request owner", service.ErrNotRequestOwner, http.StatusForbidden, "not-request-owner"},
		{"child not found", service.ErrChildNotFound, http.StatusNotFound, "child-not-found"},
		{"vault delivered", service.ErrVaultItemNotPending, http.StatusConflict, "vault-item-delivered"},
		{"unknown preference", service.ErrUnknownPreference, http.StatusBadRequest, "unknown-preference"},
		{"wrapped sentinel", fmt.Errorf("get request: %w", service.ErrRequestNotFound), http.StatusNotFound, "request-not-found"},
		{"unknown error", errors.New("database on fire"), http.StatusInternalServerError, "internal-error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			writeServiceError(recorder, tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}

			var body errorResponse
			if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
			if body.Error.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestUnknownErrorDoesNotLeakDetails(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeServiceError(recorder, errors.New("pq: secret dsn exposed"))

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "Something went wrong." {
		t.Errorf("message = %q, want generic", body.Error.Message)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"valid token", "Bearer abc123", "abc123"},
		{"extra whitespace", "Bearer   abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"bare token", "abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(r); got != tt.want {
				t.Errorf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "10.0.0.1:52000", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:52000", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:52000", "203.0.113.7, 10.0.0.2", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
