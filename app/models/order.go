package models

import (
	"strconv"
	"time"
)

// CheckoutSummary is the cart snapshot taken when the visitor proceeds
// to payment.
type CheckoutSummary struct {
	Items []GroupedLine `json:"items"`
	Total int           `json:"total"`
}

// Payment methods accepted by the payment form.
const (
	MethodDemo     = "demo"
	MethodStripe   = "stripe"
	MethodRazorpay = "razorpay"
)

const StatusPaid = "paid"

// Order is a completed (simulated) payment.
type Order struct {
	ID      string        `json:"id"`
	Created string        `json:"created"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Method  string        `json:"method"`
	Status  string        `json:"status"`
	Amount  int           `json:"amount"`
	Items   []GroupedLine `json:"items"`
}

// OrderID derives the order identifier from the payment time.
func OrderID(t time.Time) string {
	return "ORD" + strconv.FormatInt(t.UnixMilli(), 10)
}
