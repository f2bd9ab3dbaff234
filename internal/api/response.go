package api

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope for every endpoint except the statement
// document, which is written bare.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "error",
		Message: msg,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Document writes an already encoded JSON document as the whole body.
func Document(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
