package domain

// Well-known node IDs.
const (
	// StartNodeID is the unique entry point of every flow.
	StartNodeID = "start"
	// FallbackNodeID is the node seeded next to start when a bot is provisioned.
	FallbackNodeID = "fallback"
)

// User-visible responses produced by the interpreter.
const (
	MsgProcessingError = "I'm sorry, there was an error processing your request."
	MsgNodeError       = "I'm sorry, I encountered an error."
	MsgConditionMet    = "Condition met"
	MsgConditionNotMet = "Condition not met"
	MsgActionExecuted  = "Action executed"
	MsgAPISuccess      = "API call successful"
	MsgAPIFailed       = "API call failed"
)
