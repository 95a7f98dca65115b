package models

import "time"

// Marketplace entities the action handlers create or mutate. The wider
// application owns their full lifecycles; the automation engine only needs
// the fields its collaborators persist.

type InvoiceItem struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity"    validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price"  validate:"gte=0"`
}

type Invoice struct {
	ID           string        `json:"id"`
	ClientID     string        `json:"client_id"     validate:"required"`
	FreelancerID string        `json:"freelancer_id" validate:"required"`
	JobID        string        `json:"job_id,omitempty"`
	Title        string        `json:"title"         validate:"required"`
	Items        []InvoiceItem `json:"items"         validate:"required,min=1,dive"`
	TaxRate      float64       `json:"tax_rate"`
	Total        float64       `json:"total"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ComputeTotal sums line items and applies the tax rate.
func (i *Invoice) ComputeTotal() float64 {
	var subtotal float64
	for _, item := range i.Items {
		subtotal += item.Quantity * item.UnitPrice
	}

	return subtotal * (1 + i.TaxRate/100)
}

type Reminder struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id" validate:"required"`
	Title       string     `json:"title"   validate:"required"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Contract struct {
	ID           string         `json:"id"`
	ClientID     string         `json:"client_id"     validate:"required"`
	FreelancerID string         `json:"freelancer_id" validate:"required"`
	JobID        string         `json:"job_id,omitempty"`
	TemplateID   string         `json:"template_id,omitempty"`
	Terms        map[string]any `json:"terms,omitempty"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}
