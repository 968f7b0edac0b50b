// Package envelope defines the {code, reply} body returned by every gateway
// endpoint and the helpers that write it.
package envelope

import (
	"encoding/json"
	"net/http"
)

const (
	CodeOK          = "200"
	CodeBadRequest  = "400"
	CodeNotFound    = "404"
	CodeServerError = "500"
)

const (
	ReplyRequestError = "Request error occurred"
	ReplyNotFound     = "Endpoint not found"
)

// Envelope is the only body shape the gateway ever returns. Code mirrors an
// HTTP status but is carried as a string and is independent of the status
// actually written on the response.
type Envelope struct {
	Code  string `json:"code"`
	Reply string `json:"reply"`
}

func OK(reply string) Envelope {
	return Envelope{Code: CodeOK, Reply: reply}
}

func BadRequest(reply string) Envelope {
	return Envelope{Code: CodeBadRequest, Reply: reply}
}

func NotFound() Envelope {
	return Envelope{Code: CodeNotFound, Reply: ReplyNotFound}
}

func RequestError() Envelope {
	return Envelope{Code: CodeServerError, Reply: ReplyRequestError}
}

// Write serializes env as JSON with the given HTTP status.
func Write(w http.ResponseWriter, status int, env Envelope) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(env)
}
