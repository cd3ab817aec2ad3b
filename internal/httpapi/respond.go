package httpapi

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Msg    string `json:"msg,omitempty"`
}

type denyResponse struct {
	Status string `json:"status"`
	Action string `json:"action"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Status: "error", Error: code, Msg: msg})
}

// writeDeny is for admission outcomes that carry a gate action token the
// device firmware acts on (deny_entry / deny_exit).
func writeDeny(w http.ResponseWriter, status int, action, code string) {
	writeJSON(w, status, denyResponse{Status: "error", Action: action, Error: code})
}
