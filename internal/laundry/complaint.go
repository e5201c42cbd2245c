package laundry

import (
	"fmt"
	"strings"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "Pending"
	ComplaintResolved ComplaintStatus = "Resolved"
)

// Resolve returns the resolved status. Resolving twice is a no-op.
func Resolve(current ComplaintStatus) (ComplaintStatus, bool) {
	if current == ComplaintPending {
		return ComplaintResolved, true
	}
	return current, false
}

// ComplaintDraft holds the fields a student submits for a new complaint.
type ComplaintDraft struct {
	Subject     string `json:"subject" form:"subject"`
	Description string `json:"description" form:"description"`
}

// Validate requires a non-blank subject and description.
func (d ComplaintDraft) Validate() error {
	if strings.TrimSpace(d.Subject) == "" || strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidInput, MissingFieldsMessage)
	}
	return nil
}

// FormatComplaintID renders the sequence number as a complaint ID.
func FormatComplaintID(seq int) string {
	return fmt.Sprintf("C%03d", seq)
}
