package services

import "errors"

// Sentinel errors. Their messages are shown to visitors as they are.
var (
	ErrProductNotFound = errors.New("Product not found")
	ErrEmptyCart       = errors.New("Your cart is empty")
	ErrNothingToPay    = errors.New("Nothing to pay — your cart may be empty.")
	ErrMissingCustomer = errors.New("Please enter name and email")
	ErrInvalidMethod   = errors.New("Unsupported payment method")

	// ErrProviderUnavailable is matched by every *ProviderError.
	ErrProviderUnavailable = errors.New("payment provider not integrated")
)

// ProviderInstructions explains what a real gateway integration needs.
const ProviderInstructions = "This demo page cannot perform real payments. To enable real payments:\n\n" +
	"1) Implement a server endpoint to create a payment session/order.\n" +
	"2) From client, call the endpoint, receive the session/order ID.\n" +
	"3) Redirect user to provider checkout (Stripe) or open Razorpay Checkout with returned order id.\n\n" +
	"After integrating server-side you can replace this message flow with an actual redirect."

// ProviderError is returned when a visitor picks Stripe or Razorpay.
type ProviderError struct {
	Method string
}

func (e *ProviderError) Error() string { return ProviderInstructions }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnavailable }
