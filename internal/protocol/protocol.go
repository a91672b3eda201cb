// Package protocol defines the shard daemon API.
//
// Requests and responses are newline-delimited JSON: one message per line,
// framed by the wire package. Every request names an Op; the response echoes
// the result or carries an error string. Snippet payloads travel as the same
// records the store's export document uses.
package protocol

import (
	"encoding/json"
	"fmt"

	"go.klb.dev/shard/internal/store"
)

// Op identifies the kind of request.
type Op string

const (
	OpAdd     Op = "ADD"
	OpList    Op = "LIST"
	OpGet     Op = "GET"
	OpUpdate  Op = "UPDATE"
	OpDelete  Op = "DELETE"
	OpPin     Op = "PIN"
	OpUnpin   Op = "UNPIN"
	OpResolve Op = "RESOLVE"
	OpPins    Op = "PINS"
	OpCopy    Op = "COPY"
	OpStatus  Op = "STATUS"
)

// Request is the client → daemon envelope.
type Request struct {
	Op Op `json:"op"`

	// ADD — raw text to classify, or an explicit record (classification
	// bypass) when Record is set. Label applies to either.
	Text   string        `json:"text,omitempty"`
	Record *store.Record `json:"record,omitempty"`
	Label  string        `json:"label,omitempty"`

	// LIST
	Kind  string `json:"kind,omitempty"`
	Query string `json:"query,omitempty"`

	// GET / UPDATE / DELETE / PIN / COPY
	ID string `json:"id,omitempty"`

	// UPDATE — nil means leave untouched
	NewLabel *string `json:"new_label,omitempty"`

	// UNPIN / RESOLVE
	Surface string `json:"surface,omitempty"`
}

// PinInfo is one pinned surface in a PINS response.
type PinInfo struct {
	Surface   string `json:"surface"`
	SnippetID string `json:"snippet_id"`
}

// StatusInfo describes a running daemon.
type StatusInfo struct {
	Version       string `json:"version"`
	DBPath        string `json:"db_path"`
	SchemaVersion int    `json:"schema_version"`
	Snippets      int    `json:"snippets"`
	Pins          int    `json:"pins"`
	Clipboard     bool   `json:"clipboard"`
}

// Response is the daemon → client envelope. Error is empty on success.
type Response struct {
	Error string `json:"error,omitempty"`

	Snippets []store.Record `json:"snippets,omitempty"` // LIST / GET / ADD / UPDATE
	Surface  string         `json:"surface,omitempty"`  // PIN / RESOLVE
	ID       string         `json:"id,omitempty"`       // RESOLVE
	Pins     []PinInfo      `json:"pins,omitempty"`     // PINS
	Status   *StatusInfo    `json:"status,omitempty"`   // STATUS
}

// Errorf builds an error response.
func Errorf(format string, args ...any) *Response {
	return &Response{Error: fmt.Sprintf(format, args...)}
}

// Err converts a non-empty Error field back into a Go error.
func (r *Response) Err() error {
	if r.Error == "" {
		return nil
	}
	return fmt.Errorf("daemon: %s", r.Error)
}

// EncodeRequest serialises a request to JSON without a trailing newline.
func EncodeRequest(r *Request) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest deserialises a request from raw JSON bytes.
func DecodeRequest(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("request decode: %w", err)
	}
	return &r, nil
}

// EncodeResponse serialises a response to JSON without a trailing newline.
func EncodeResponse(r *Response) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeResponse deserialises a response from raw JSON bytes.
func DecodeResponse(b []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("response decode: %w", err)
	}
	return &r, nil
}
