package controllers

import (
	"context"

	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/imagecheck"
)

// ImageChecker probes one image URL.
type ImageChecker interface {
	Check(ctx context.Context, url string) imagecheck.Result
}

type ImageController struct {
	catalog *services.CatalogService
	checker ImageChecker
}

func NewImageController(svc *services.Services, checker ImageChecker) *ImageController {
	return &ImageController{catalog: svc.Catalog, checker: checker}
}

type imageCheckInput struct {
	URL string `json:"url" validate:"required,url"`
}

// Check handles GET /api/images/check?url=. Only catalogue images are
// probed, so the endpoint cannot be pointed at arbitrary hosts.
func (h *ImageController) Check(c *ctx.Context) {
	in := imageCheckInput{URL: c.Query("url")}
	if errs := c.Validate(in); len(errs) > 0 {
		c.ValidationError(errs)
		return
	}
	known, err := h.catalog.HasImage(c.Context(), in.URL)
	if err != nil {
		fail(c, err)
		return
	}
	if !known {
		c.ValidationError(map[string]string{"url": "The url must be a catalogue image."})
		return
	}
	c.Success(h.checker.Check(c.Context(), in.URL))
}
