package routes

import (
	"github.com/shashiranjanraj/bloomthread/app/controllers"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/router"
	"github.com/shashiranjanraj/bloomthread/pkg/ws"
)

func RegisterWeb(r *router.Router, d Deps) {
	pages := controllers.NewPageController(d.Services, d.Views)

	r.Get("/", "home", ctx.Wrap(pages.Index))
	r.Post("/cart/add", "cart.add", ctx.Wrap(pages.AddToCart))
	r.Post("/cart/remove", "cart.remove", ctx.Wrap(pages.RemoveFromCart))
	r.Post("/cart/clear", "cart.clear", ctx.Wrap(pages.ClearCart))
	r.Post("/checkout", "checkout", ctx.Wrap(pages.Checkout))
	r.Post("/theme/toggle", "theme.toggle", ctx.Wrap(pages.ToggleTheme))
	r.Get("/payment", "payment", ctx.Wrap(pages.Payment))
	r.Post("/payment", "payment.pay", ctx.Wrap(pages.Pay))

	if d.Hub != nil {
		r.Get("/ws", "ws", ctx.Wrap(func(c *ctx.Context) {
			_ = ws.Upgrade(c.W, c.R, d.Hub, c.Visitor())
		}))
	}
	if d.Streams != nil {
		r.Get("/events", "events", ctx.Wrap(func(c *ctx.Context) {
			d.Streams.Serve(c.W, c.R, c.Visitor())
		}))
	}
}
