// Package services holds the storefront's business rules. Every service
// works on the visitor space of the visitor carried in ctx.
package services

import (
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
)

// Services bundles the storefront services around one repository.
type Services struct {
	Repo     *repositories.StoreRepository
	Catalog  *CatalogService
	Cart     *CartService
	Checkout *CheckoutService
	Theme    *ThemeService
	Notices  *NoticeService
}

// New wires every service. images and events may be nil.
func New(repo *repositories.StoreRepository, images ImageResolver, events *event.Dispatcher) *Services {
	catalog := NewCatalogService(repo, images)
	return &Services{
		Repo:     repo,
		Catalog:  catalog,
		Cart:     NewCartService(repo, catalog, events),
		Checkout: NewCheckoutService(repo, events),
		Theme:    NewThemeService(repo, events),
		Notices:  NewNoticeService(repo),
	}
}
