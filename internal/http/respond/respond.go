package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response body: the HTTP status echoed as code, a
// short human-readable message, and the payload when there is one.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes the envelope with the given status, message, and payload.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	body, err := json.Marshal(Envelope{Code: status, Message: message, Data: data})
	if err != nil {
		log.Printf("respond: marshal envelope: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":500,"message":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// Error writes an envelope with no data.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, message, nil)
}
