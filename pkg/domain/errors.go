package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFlowNotFound is returned when a bot has no flow versions.
var ErrFlowNotFound = errors.New("flow not found")

// ErrFlowExists is returned when provisioning a bot that already has flows.
var ErrFlowExists = errors.New("flow already exists")

// ErrNoActiveFlow is returned when a bot has flows but none is active.
var ErrNoActiveFlow = errors.New("no active flow")

// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrConversationMismatch is returned when a conversation is continued under another bot.
var ErrConversationMismatch = errors.New("conversation belongs to another bot")

// ErrInvalidFlow is returned (wrapped) when a flow fails validation.
var ErrInvalidFlow = errors.New("invalid flow")

// ErrUnknownActionType is returned when an action payload can't be decoded.
var ErrUnknownActionType = errors.New("unknown action type")

// InvalidFlowError carries the validation findings that blocked an operation.
type InvalidFlowError struct {
	BotID  string
	Result ValidationResult
}

func (e *InvalidFlowError) Error() string {
	return fmt.Sprintf("flow for bot '%s' has %d errors: %s", e.BotID, len(e.Result.Errors), strings.Join(e.Result.Errors, "; "))
}

func (e *InvalidFlowError) Unwrap() error {
	return ErrInvalidFlow
}
