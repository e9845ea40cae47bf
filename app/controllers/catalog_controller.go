package controllers

import (
	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
)

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(svc *services.Services) *CatalogController {
	return &CatalogController{catalog: svc.Catalog}
}

// ProductDetail is a product as shown in the detail modal.
type ProductDetail struct {
	models.Product
	Description string `json:"description"`
}

// Index handles GET /api/products?tag=&q=&sort=.
func (h *CatalogController) Index(c *ctx.Context) {
	products, err := h.catalog.List(c.Context(), services.Filter{
		Tag:   c.Query("tag"),
		Query: c.Query("q"),
		Sort:  c.DefaultQuery("sort", services.SortPopular),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(h.catalog.WithImages(c.Context(), products))
}

// Show handles GET /api/products/{id}.
func (h *CatalogController) Show(c *ctx.Context) {
	p, err := h.catalog.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	p = h.catalog.WithImages(c.Context(), []models.Product{p})[0]
	c.Success(ProductDetail{Product: p, Description: models.ProductDescription})
}

// Tags handles GET /api/tags.
func (h *CatalogController) Tags(c *ctx.Context) {
	tags, err := h.catalog.Tags(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(tags)
}
