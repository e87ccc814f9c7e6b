package http

import (
	"encoding/json"
	"net/http"
)

const (
	detailBadLogin     = "Incorrect username or password"
	detailBadToken     = "Could not validate credentials"
	detailRateLimited  = "Too many login attempts"
	detailNotFound     = "Patient not found"
	detailInternal     = "Internal server error"
	detailInvalidID    = "Invalid patient id"
	detailMissingField = "username and password are required"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeUnauthorized is the single response for every authentication failure
// on a route; callers pick the detail per route, never per cause.
func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, detail)
}
