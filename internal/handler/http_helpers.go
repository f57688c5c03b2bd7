package handler

import (
	"encoding/json"
	"net/http"

	"catalog-annotations/internal/domain"
	apperrors "catalog-annotations/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// ownerID returns the authenticated owner, writing a 401 when there is none.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok || user.ID == "" {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return "", false
	}
	return user.ID, true
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeAppError maps err to its status code and public message.
func writeAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.FromDomain(err)
	writeError(w, appErr.StatusCode, appErr.Message)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
