package server

import (
	"encoding/json"
	"net/http"
)

// errorResponse is returned for rejected input
type errorResponse struct {
	Error string `json:"error"`
}

// detailResponse is returned for internal failures
type detailResponse struct {
	Detail string `json:"detail"`
}

// healthResponse is returned by the health endpoint
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detailResponse{Detail: msg})
}
