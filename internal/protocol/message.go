package protocol

import (
	"encoding/json"
	"fmt"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a message. A nil payload is left out.
func NewMessage(action string, payload any) (Message, error) {
	msg := Message{Action: action}
	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}
	msg.Payload = raw

	return msg, nil
}

// Decode unmarshals the payload into v.
func (that Message) Decode(v any) error {
	if len(that.Payload) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyPayload, that.Action)
	}

	if err := json.Unmarshal(that.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", that.Action, err)
	}

	return nil
}
