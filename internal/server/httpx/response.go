// Package httpx holds the JSON response envelope shared by HTTP handlers and
// middleware: {success, message, code?, ...payload}.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Body is the envelope payload. Keys other than success/message/code are
// merged into the top-level object.
type Body map[string]any

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to marshal JSON response","code":"INTERNAL_ERROR"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// Success writes {success:true, message, ...extra}.
func Success(w http.ResponseWriter, status int, message string, extra Body) {
	b := Body{}
	for k, v := range extra {
		b[k] = v
	}
	b["success"] = true
	b["message"] = message
	RespondWithJSON(w, status, b)
}

// Fail writes {success:false, message, code}.
func Fail(w http.ResponseWriter, status int, message, code string) {
	RespondWithJSON(w, status, Body{
		"success": false,
		"message": message,
		"code":    code,
	})
}
