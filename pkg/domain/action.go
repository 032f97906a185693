package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ActionType identifies a side-effect the engine requests the host to perform.
type ActionType string

// Standard Action Types
const (
	// ActionSetVariable asks the host to persist a variable.
	// Payload: SetVariablePayload
	ActionSetVariable ActionType = "set_variable"

	// ActionSendEmail asks the host to deliver an email.
	// Payload: EmailPayload
	ActionSendEmail ActionType = "send_email"

	// ActionWebhook asks the host to call an outbound webhook.
	// Payload: WebhookPayload
	ActionWebhook ActionType = "webhook"

	// ActionRedirect asks the host to send the user elsewhere.
	// Payload: RedirectPayload
	ActionRedirect ActionType = "redirect"
)

// Action is a declared side-effect. The engine reports actions, it never performs them.
type Action struct {
	Type ActionType     `json:"type" yaml:"type" mapstructure:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// SetVariablePayload is the typed form of a set_variable action.
type SetVariablePayload struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

// EmailPayload is the typed form of a send_email action.
type EmailPayload struct {
	To      string `mapstructure:"to"`
	Subject string `mapstructure:"subject"`
	Body    string `mapstructure:"body"`
}

// WebhookPayload is the typed form of a webhook action.
type WebhookPayload struct {
	URL     string            `mapstructure:"url"`
	Method  string            `mapstructure:"method"`
	Headers map[string]string `mapstructure:"headers"`
	Body    map[string]any    `mapstructure:"body"`
}

// RedirectPayload is the typed form of a redirect action.
type RedirectPayload struct {
	URL string `mapstructure:"url"`
}

// DecodeAction converts the opaque payload of an action into its typed form.
// It returns one of SetVariablePayload, EmailPayload, WebhookPayload or RedirectPayload.
func DecodeAction(a Action) (any, error) {
	switch a.Type {
	case ActionSetVariable:
		return decodePayload[SetVariablePayload](a)
	case ActionSendEmail:
		return decodePayload[EmailPayload](a)
	case ActionWebhook:
		return decodePayload[WebhookPayload](a)
	case ActionRedirect:
		return decodePayload[RedirectPayload](a)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, a.Type)
	}
}

func decodePayload[T any](a Action) (any, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(a.Data); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", a.Type, err)
	}
	return out, nil
}

// CloneActions copies the action list so callers can't mutate a flow's definition.
func CloneActions(src []Action) []Action {
	if len(src) == 0 {
		return nil
	}
	out := make([]Action, len(src))
	for i, a := range src {
		out[i] = Action{Type: a.Type}
		if a.Data != nil {
			out[i].Data = make(map[string]any, len(a.Data))
			for k, v := range a.Data {
				out[i].Data[k] = v
			}
		}
	}
	return out
}
