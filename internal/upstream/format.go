package upstream

import (
	"github.com/angeloszaimis/gemini-gateway/internal/envelope"
)

// Format maps a decoded upstream answer onto the envelope. Any error yields
// the request error envelope. An upstream-reported failure still carries
// code "200"; callers read the reply to tell them apart.
func Format(resp Response, err error) envelope.Envelope {
	if err != nil {
		return envelope.RequestError()
	}

	switch resp.Kind {
	case KindSuccess, KindFailure:
		return envelope.OK(resp.Text)
	default:
		return envelope.OK("")
	}
}
