package routes

import (
	"github.com/shashiranjanraj/bloomthread/app/controllers"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/graphql"
	"github.com/shashiranjanraj/bloomthread/pkg/router"
)

func RegisterAPI(r *router.Router, d Deps) {
	catalog := controllers.NewCatalogController(d.Services)
	cart := controllers.NewCartController(d.Services)
	checkout := controllers.NewCheckoutController(d.Services)
	theme := controllers.NewThemeController(d.Services)
	health := controllers.NewHealthController(d.Store)

	r.Get("/healthz", "health", ctx.Wrap(health.Show))
	r.Handle("/graphql", "graphql", graphql.Handler(d.Schema))

	api := r.Group("/api")
	api.Get("/products", "api.products.index", ctx.Wrap(catalog.Index))
	api.Get("/products/{id}", "api.products.show", ctx.Wrap(catalog.Show))
	api.Get("/tags", "api.tags", ctx.Wrap(catalog.Tags))

	api.Get("/cart", "api.cart.show", ctx.Wrap(cart.Show))
	api.Post("/cart", "api.cart.add", ctx.Wrap(cart.Add))
	api.Delete("/cart", "api.cart.clear", ctx.Wrap(cart.Clear))
	api.Delete("/cart/{id}", "api.cart.remove", ctx.Wrap(cart.Remove))

	api.Post("/checkout", "api.checkout.store", ctx.Wrap(checkout.Store))
	api.Get("/checkout", "api.checkout.show", ctx.Wrap(checkout.Show))
	api.Post("/payment", "api.payment", ctx.Wrap(checkout.Pay))
	api.Get("/orders", "api.orders", ctx.Wrap(checkout.Orders))

	api.Get("/theme", "api.theme.show", ctx.Wrap(theme.Show))
	api.Post("/theme/toggle", "api.theme.toggle", ctx.Wrap(theme.Toggle))

	if d.Images != nil {
		images := controllers.NewImageController(d.Services, d.Images)
		api.Get("/images/check", "api.images.check", ctx.Wrap(images.Check))
	}
}
