// Package upstream calls the third-party AI inference API and normalizes its
// loosely shaped JSON answer into the gateway envelope.
//
// The API answers with an object whose "status" field is the string "true"
// on success, alongside either "result" or "message". Decode turns that into
// a Response tagged with its Kind; Format maps a Response (or a call error)
// onto an envelope.Envelope.
package upstream
