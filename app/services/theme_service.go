package services

import (
	"context"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
)

type ThemeService struct {
	repo   *repositories.StoreRepository
	events *event.Dispatcher
}

func NewThemeService(repo *repositories.StoreRepository, events *event.Dispatcher) *ThemeService {
	if events == nil {
		events = event.Default
	}
	return &ThemeService{repo: repo, events: events}
}

// Current returns the visitor's theme, light by default.
func (s *ThemeService) Current(ctx context.Context) (string, error) {
	return s.repo.Theme(ctx)
}

// Toggle flips and stores the theme, returning the new one.
func (s *ThemeService) Toggle(ctx context.Context) (string, error) {
	var next string
	err := s.repo.Update(ctx, func() error {
		current, err := s.repo.Theme(ctx)
		if err != nil {
			return err
		}
		next = models.FlipTheme(current)
		return s.repo.SaveTheme(ctx, next)
	})
	if err != nil {
		return "", err
	}

	metrics.ThemeToggles.WithLabelValues(next).Inc()
	s.events.Fire(ctx, EventThemeChanged, ThemeChanged{Visitor: session.VisitorID(ctx), Theme: next})
	return next, nil
}
