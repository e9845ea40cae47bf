package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
)

// PaymentSuccess is shown after a demo payment.
const PaymentSuccess = "Payment simulated — success! Thank you for your order."

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(svc *services.Services) *CheckoutController {
	return &CheckoutController{checkout: svc.Checkout}
}

// CheckoutResult tells the client where to go next.
type CheckoutResult struct {
	models.CheckoutSummary
	Redirect string `json:"redirect"`
}

// Store handles POST /api/checkout.
func (h *CheckoutController) Store(c *ctx.Context) {
	summary, err := h.checkout.Proceed(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(CheckoutResult{CheckoutSummary: summary, Redirect: services.PaymentPath})
}

// Show handles GET /api/checkout.
func (h *CheckoutController) Show(c *ctx.Context) {
	summary, err := h.checkout.Summary(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(summary)
}

// Pay handles POST /api/payment. The service reports missing fields and
// unsupported methods with their own messages.
func (h *CheckoutController) Pay(c *ctx.Context) {
	var in services.PaymentRequest
	if !c.DecodeJSON(&in) {
		return
	}
	order, err := h.checkout.Pay(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, PaymentSuccess, order)
}

// Orders handles GET /api/orders.
func (h *CheckoutController) Orders(c *ctx.Context) {
	orders, err := h.checkout.Orders(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}
