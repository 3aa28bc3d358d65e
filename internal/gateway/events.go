package gateway

import (
	"encoding/json"
	"fmt"

	"codepair/internal/models"
)

// Client-to-server events.
const (
	EventJoinSession    = "join-session"
	EventCodeChange     = "code-change"
	EventLanguageChange = "language-change"
	EventOutputChange   = "output-change"
	EventActivityChange = "activity-change"
)

// Server-to-client events. session-state and error are private replies;
// the update events are room broadcasts.
const (
	EventSessionState   = "session-state"
	EventError          = "error"
	EventCodeUpdate     = "code-update"
	EventLanguageUpdate = "language-update"
	EventOutputUpdate   = "output-update"
	EventPresenceUpdate = "presence-update"
)

// Error strings reported to the offending sender. Fixed wording, the
// client matches on them.
const (
	errSessionIDRequired   = "Session ID is required"
	errSessionNotFound     = "Session not found"
	errInvalidCodeChange   = "Invalid code change data"
	errCodeUpdateFailed    = "Failed to update code"
	errInvalidLangChange   = "Invalid language change data"
	errInvalidLangValue    = "Invalid language selection"
	errLangUpdateFailed    = "Failed to update language"
	errInvalidOutputChange = "Invalid output data"
)

// frame is the wire envelope: a named event with one object payload.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads. Pointer fields distinguish an absent value from a
// present zero value; validation happens here at the boundary, before
// any store or presence call.

type joinSessionData struct {
	SessionID string `json:"sessionId"`
}

type codeChangeData struct {
	SessionID string  `json:"sessionId"`
	Code      *string `json:"code"`
}

type languageChangeData struct {
	SessionID string  `json:"sessionId"`
	Language  *string `json:"language"`
}

type outputChangeData struct {
	SessionID string  `json:"sessionId"`
	Output    *string `json:"output"`
	Error     *string `json:"error"`
	IsRunning *bool   `json:"isRunning"`
}

type activityChangeData struct {
	SessionID string `json:"sessionId"`
	IsActive  *bool  `json:"isActive"`
}

// Outbound payloads.

type sessionStateData struct {
	Code     string          `json:"code"`
	Language models.Language `json:"language"`
}

type errorData struct {
	Message string `json:"message"`
}

type codeUpdateData struct {
	Code string `json:"code"`
}

type languageUpdateData struct {
	Language models.Language `json:"language"`
}

// outputUpdateData is the normalized form of an output-change: absent
// output becomes "", absent isRunning false, absent error stays null.
type outputUpdateData struct {
	Output    string  `json:"output"`
	Error     *string `json:"error"`
	IsRunning bool    `json:"isRunning"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(frame{Event: event, Data: payload})
}

// unmarshalData decodes an inbound payload. An empty payload is treated
// as every field absent rather than as a decode failure.
func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
