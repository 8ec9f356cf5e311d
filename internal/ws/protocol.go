package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edward93/project-joke-web/internal/model"
)

// Envelope is the wire format for every protocol event: a closed, tagged
// union of event kinds, validated here before reaching the engines.
type Envelope struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope wraps a typed payload in an envelope
func NewEnvelope(eventType model.EventType, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, Payload: data}, nil
}

// Decode unmarshals the envelope's payload into the given value
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("missing %s payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// Marshal encodes the envelope for the wire
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes a raw incoming message
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, errors.New("envelope missing type")
	}
	return env, nil
}

// Error codes carried in error events
const (
	CodeValidation    = "VALIDATION"
	CodeNotFound      = "NOT_FOUND"
	CodeDuplicateUser = "DUPLICATE_USER"
	CodeInvalidState  = "INVALID_STATE"
	CodePermission    = "PERMISSION"
	CodeBadRequest    = "BAD_REQUEST"
	CodeInternal      = "INTERNAL"
)

// toErrorPayload maps an engine failure to its protocol error event.
// Failures are reported only to the requesting participant and never
// change canonical state.
func toErrorPayload(err error) model.ErrorPayload {
	code := CodeInternal

	switch {
	case errors.Is(err, model.ErrEmptyUsername),
		errors.Is(err, model.ErrEmptyGameID),
		errors.Is(err, model.ErrEmptyAnswer):
		code = CodeValidation
	case errors.Is(err, model.ErrGameNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrSheetNotFound),
		errors.Is(err, model.ErrPromptNotFound),
		errors.Is(err, model.ErrNotInGame):
		code = CodeNotFound
	case errors.Is(err, model.ErrAlreadyJoined):
		code = CodeDuplicateUser
	case errors.Is(err, model.ErrInvalidGameState),
		errors.Is(err, model.ErrInvalidSessionState),
		errors.Is(err, model.ErrPromptAnswered),
		errors.Is(err, model.ErrGameNotComplete):
		code = CodeInvalidState
	case errors.Is(err, model.ErrNotHost),
		errors.Is(err, model.ErrOutOfTurn):
		code = CodePermission
	}

	return model.ErrorPayload{Code: code, Message: err.Error()}
}
