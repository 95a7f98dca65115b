package models

import (
	"errors"
	"time"
)

// Marketplace event types published by the rest of the application.
const (
	EventUserRegistered    = "USER_REGISTERED"
	EventJobCreated        = "JOB_CREATED"
	EventProposalSubmitted = "PROPOSAL_SUBMITTED"
	EventProposalAccepted  = "PROPOSAL_ACCEPTED"
	EventContractGenerated = "CONTRACT_GENERATED"
	EventContractSigned    = "CONTRACT_SIGNED"
	EventInvoiceCreated    = "INVOICE_CREATED"
	EventInvoicePaid       = "INVOICE_PAID"
	EventReviewPosted      = "REVIEW_POSTED"
)

var ErrMissingEventTypeField = errors.New("domain event requires an event_type")

// DomainEvent is an ephemeral fact published to the event bus. It is never
// persisted; only the execution logs of the rules it triggers are.
type DomainEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type" validate:"required"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Validate checks the event carries enough to be matched against rules.
func (e *DomainEvent) Validate() error {
	if e.EventType == "" {
		return ErrMissingEventTypeField
	}

	return nil
}
