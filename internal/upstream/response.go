package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Kind int

const (
	KindSuccess    Kind = iota // status "true" with a result
	KindFailure                // any other status with a message
	KindUnexpected             // neither shape
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "unexpected"
	}
}

// Response is the decoded upstream answer. Text holds the result or message;
// non-string JSON values are kept as their compact JSON text.
type Response struct {
	Kind Kind
	Text string
}

type rawResponse struct {
	Status  json.RawMessage `json:"status"`
	Result  json.RawMessage `json:"result"`
	Message json.RawMessage `json:"message"`
}

// Decode parses an upstream body. It fails only when body is not valid JSON;
// any valid document maps to some Kind.
func Decode(body []byte) (Response, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		if json.Valid(body) {
			return Response{Kind: KindUnexpected}, nil
		}
		return Response{}, fmt.Errorf("decode upstream body: %w", err)
	}

	var status string
	_ = json.Unmarshal(raw.Status, &status)

	if status == "true" {
		if text, ok := textOf(raw.Result); ok {
			return Response{Kind: KindSuccess, Text: text}, nil
		}
		return Response{Kind: KindUnexpected}, nil
	}

	if text, ok := textOf(raw.Message); ok {
		return Response{Kind: KindFailure, Text: text}, nil
	}
	return Response{Kind: KindUnexpected}, nil
}

// textOf unwraps JSON strings and compacts anything else. Absent and null
// values report false.
func textOf(v json.RawMessage) (string, bool) {
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v), true
	}
	return buf.String(), true
}
