package services

import (
	"cmp"
	"context"
	"strings"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/collection"
)

// Sort orders for List.
const (
	SortPopular = "popular"
	SortLow     = "low"
	SortHigh    = "high"
)

// TagAll matches every product.
const TagAll = "All"

// Filter narrows the catalogue listing.
type Filter struct {
	Tag   string
	Query string
	Sort  string
}

// ImageResolver swaps unreachable image URLs for a fallback. The result
// has the same length and order as urls.
type ImageResolver interface {
	ResolveAll(ctx context.Context, urls []string) []string
}

type CatalogService struct {
	repo   *repositories.StoreRepository
	images ImageResolver
}

// NewCatalogService builds the service. images may be nil, in which case
// image URLs are shown as stored.
func NewCatalogService(repo *repositories.StoreRepository, images ImageResolver) *CatalogService {
	return &CatalogService{repo: repo, images: images}
}

// List returns the products matching f, sorted as requested. Popular
// keeps catalogue order; the price sorts are stable.
func (s *CatalogService) List(ctx context.Context, f Filter) ([]models.Product, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	items := collection.Filter(products, func(p models.Product) bool {
		if f.Tag != "" && f.Tag != TagAll && !p.HasTag(f.Tag) {
			return false
		}
		return q == "" || matches(p, q)
	})

	switch f.Sort {
	case SortLow:
		items = collection.SortBy(items, func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortHigh:
		items = collection.SortBy(items, func(a, b models.Product) int { return cmp.Compare(b.Price, a.Price) })
	}
	return items, nil
}

func matches(p models.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	return collection.Contains(p.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

func (s *CatalogService) Find(ctx context.Context, id string) (models.Product, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return models.Product{}, err
	}
	p, ok := collection.First(products, func(p models.Product) bool { return p.ID == id })
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

// HasImage reports whether url is the stored image of a catalogue product.
func (s *CatalogService) HasImage(ctx context.Context, url string) (bool, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return false, err
	}
	return collection.Contains(products, func(p models.Product) bool { return p.Img == url }), nil
}

// Tags lists the distinct tags in catalogue order.
func (s *CatalogService) Tags(ctx context.Context) ([]string, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}
	tags := collection.Flatten(collection.Map(products, func(p models.Product) []string { return p.Tags }))
	return collection.Unique(tags), nil
}

// WithImages returns copies of products whose images have been checked.
func (s *CatalogService) WithImages(ctx context.Context, products []models.Product) []models.Product {
	if s.images == nil || len(products) == 0 {
		return products
	}
	urls := s.images.ResolveAll(ctx, collection.Map(products, func(p models.Product) string { return p.Img }))
	out := make([]models.Product, len(products))
	for i, p := range products {
		p.Img = urls[i]
		out[i] = p
	}
	return out
}

// LineImages does the same for grouped cart lines.
func (s *CatalogService) LineImages(ctx context.Context, lines []models.GroupedLine) []models.GroupedLine {
	if s.images == nil || len(lines) == 0 {
		return lines
	}
	urls := s.images.ResolveAll(ctx, collection.Map(lines, func(l models.GroupedLine) string { return l.Img }))
	out := make([]models.GroupedLine, len(lines))
	for i, l := range lines {
		l.Img = urls[i]
		out[i] = l
	}
	return out
}
