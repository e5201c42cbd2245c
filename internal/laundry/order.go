package laundry

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for order and complaint dates.
const DateLayout = "2006-01-02"

// OrderStatus is the lifecycle state of a laundry order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCollected OrderStatus = "Collected"
	OrderDelivered OrderStatus = "Delivered"
)

// OrderStatuses lists the order states in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderCollected, OrderDelivered}

// ParseOrderStatus accepts a status name in any letter case.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	for _, s := range OrderStatuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, raw)
}

// Next returns the status that follows s. The second result is false when s
// is terminal or unknown.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderPending:
		return OrderCollected, true
	case OrderCollected:
		return OrderDelivered, true
	default:
		return s, false
	}
}

// Advance moves an order one step forward. Delivered orders stay Delivered
// and report changed=false.
func Advance(current OrderStatus) (next OrderStatus, changed bool) {
	return current.Next()
}

// Transition validates an explicit status change. Only the immediate
// successor of current is accepted.
func Transition(current, target OrderStatus) error {
	next, ok := current.Next()
	if !ok || next != target {
		return fmt.Errorf("%w: order cannot move from %s to %s", ErrInvalidTransition, current, target)
	}
	return nil
}

// OrderDraft holds the fields a student submits for a new order.
type OrderDraft struct {
	WashType      string `json:"washType" form:"washType"`
	DetergentType string `json:"detergentType" form:"detergentType"`
	ClothCount    int    `json:"clothCount" form:"clothCount"`
}

// Validate checks required fields are present and the cloth count is positive.
func (d OrderDraft) Validate() error {
	if strings.TrimSpace(d.WashType) == "" ||
		strings.TrimSpace(d.DetergentType) == "" ||
		d.ClothCount <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, MissingFieldsMessage)
	}
	return nil
}

// OrderDates returns the given and return dates for an order placed on day.
func OrderDates(day time.Time, returnAfterDays int) (given, returned string) {
	return day.Format(DateLayout), day.AddDate(0, 0, returnAfterDays).Format(DateLayout)
}

// FormatOrderID renders the sequence number as a three-digit order ID.
func FormatOrderID(seq int) string {
	return fmt.Sprintf("%03d", seq)
}
