package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(svc *services.Services) *CartController {
	return &CartController{cart: svc.Cart}
}

// AddToCartInput is the body of POST /api/cart and the /cart/add form.
type AddToCartInput struct {
	ProductID string `json:"product_id" form:"product_id" validate:"required"`
}

// Show handles GET /api/cart.
func (h *CartController) Show(c *ctx.Context) {
	h.respond(c, http.StatusOK, "")
}

// Add handles POST /api/cart.
func (h *CartController) Add(c *ctx.Context) {
	var in AddToCartInput
	if !c.BindJSON(&in) {
		return
	}
	if _, err := h.cart.Add(c.Context(), in.ProductID); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, "Added to cart")
}

// Remove handles DELETE /api/cart/{id}.
func (h *CartController) Remove(c *ctx.Context) {
	if err := h.cart.Remove(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, "")
}

// Clear handles DELETE /api/cart.
func (h *CartController) Clear(c *ctx.Context) {
	if err := h.cart.Clear(c.Context()); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, "")
}

func (h *CartController) respond(c *ctx.Context, status int, message string) {
	view, err := h.cart.View(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(status, message, view)
}
