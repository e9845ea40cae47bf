package services

import (
	"context"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/collection"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
)

type CartService struct {
	repo    *repositories.StoreRepository
	catalog *CatalogService
	events  *event.Dispatcher
}

func NewCartService(repo *repositories.StoreRepository, catalog *CatalogService, events *event.Dispatcher) *CartService {
	if events == nil {
		events = event.Default
	}
	return &CartService{repo: repo, catalog: catalog, events: events}
}

// Add appends one unit line for productID.
func (s *CartService) Add(ctx context.Context, productID string) (models.CartLine, error) {
	p, err := s.catalog.Find(ctx, productID)
	if err != nil {
		return models.CartLine{}, err
	}

	line := models.LineFor(p)
	count, err := s.mutate(ctx, func(lines []models.CartLine) []models.CartLine {
		return append(lines, line)
	})
	if err != nil {
		return models.CartLine{}, err
	}

	metrics.CartAdds.Inc()
	logger.WithCtx(ctx).Info("cart: added", "product", p.ID, "count", count)
	return line, nil
}

// Remove drops every line of productID. Removing a product that is not
// in the cart is not an error.
func (s *CartService) Remove(ctx context.Context, productID string) error {
	_, err := s.mutate(ctx, func(lines []models.CartLine) []models.CartLine {
		return collection.Reject(lines, func(l models.CartLine) bool { return l.ID == productID })
	})
	return err
}

// Clear stores an empty cart.
func (s *CartService) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, func([]models.CartLine) []models.CartLine {
		return []models.CartLine{}
	})
	return err
}

// Count is the number of stored unit lines.
func (s *CartService) Count(ctx context.Context) (int, error) {
	lines, err := s.repo.Cart(ctx)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// View groups the cart for display.
func (s *CartService) View(ctx context.Context) (models.CartView, error) {
	lines, err := s.repo.Cart(ctx)
	if err != nil {
		return models.CartView{}, err
	}
	grouped := models.Group(lines)
	return models.CartView{
		Lines: s.catalog.LineImages(ctx, grouped),
		Total: models.Total(grouped),
		Count: len(lines),
	}, nil
}

func (s *CartService) mutate(ctx context.Context, fn func([]models.CartLine) []models.CartLine) (int, error) {
	var count int
	err := s.repo.Update(ctx, func() error {
		lines, err := s.repo.Cart(ctx)
		if err != nil {
			return err
		}
		lines = fn(lines)
		count = len(lines)
		return s.repo.SaveCart(ctx, lines)
	})
	if err != nil {
		return 0, err
	}
	s.events.Fire(ctx, EventCartChanged, CartChanged{Visitor: session.VisitorID(ctx), Count: count})
	return count, nil
}
