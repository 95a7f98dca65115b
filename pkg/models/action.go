package models

// ActionType tags one side-effecting step within a rule's action list.
type ActionType string

const (
	ActionSendEmail        ActionType = "SEND_EMAIL"
	ActionCreateInvoice    ActionType = "CREATE_INVOICE"
	ActionUpdateStatus     ActionType = "UPDATE_STATUS"
	ActionCreateReminder   ActionType = "CREATE_REMINDER"
	ActionGenerateContract ActionType = "GENERATE_CONTRACT"
)

// Known reports whether the tag is one of the supported action types.
func (t ActionType) Known() bool {
	switch t {
	case ActionSendEmail, ActionCreateInvoice, ActionUpdateStatus,
		ActionCreateReminder, ActionGenerateContract:
		return true
	default:
		return false
	}
}

// Action is one step of a rule. Parameters are the raw, possibly templated
// values; string leaves may contain {{event.path}} placeholders that are
// resolved at dispatch time by literal substitution, never evaluation.
type Action struct {
	Type       ActionType     `json:"type" validate:"required"`
	Parameters map[string]any `json:"parameters"`
}
