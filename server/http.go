package server

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respond encodes data (or an error as an errorResponse) to JSON and responds
// with it and the http code. Nothing is encoded for a nil data or a 204.
func respond(w http.ResponseWriter, data any, httpCode int) {
	var resp any
	if v, ok := data.(error); ok {
		resp = errorResponse{Error: v.Error()}
	} else {
		resp = data
	}

	if resp == nil || httpCode == http.StatusNoContent {
		w.WriteHeader(httpCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(resp)
}
