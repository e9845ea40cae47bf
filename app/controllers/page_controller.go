package controllers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// PageController serves the HTML storefront. Every form post redirects
// back (post/redirect/get); messages travel as notices.
type PageController struct {
	svc   *services.Services
	views *template.Template
}

func NewPageController(svc *services.Services, views *template.Template) *PageController {
	return &PageController{svc: svc, views: views}
}

// page is the data every view receives.
type page struct {
	AppName   string
	Title     string
	Theme     string
	CartCount int
	Notices   []models.Notice

	// index
	Tags        []string
	ActiveTag   string
	Query       string
	Sort        string
	Products    []models.Product
	Modal       *models.Product
	Description string
	CartOpen    bool
	Cart        models.CartView

	// payment
	Summary      *models.CheckoutSummary
	NothingToPay string
	Form         services.PaymentRequest
}

// base loads the chrome shared by every page and consumes pending notices.
func (h *PageController) base(c *ctx.Context, title string) (*page, error) {
	reqCtx := c.Context()
	if err := h.svc.Repo.Init(reqCtx); err != nil {
		return nil, err
	}
	theme, err := h.svc.Theme.Current(reqCtx)
	if err != nil {
		return nil, err
	}
	count, err := h.svc.Cart.Count(reqCtx)
	if err != nil {
		return nil, err
	}
	return &page{
		AppName:   config.AppName(),
		Title:     title,
		Theme:     theme,
		CartCount: count,
		Notices:   h.svc.Notices.Pull(reqCtx),
	}, nil
}

func (h *PageController) broken(c *ctx.Context, err error) {
	logger.WithCtx(c.Context()).Error("page failed", "path", c.R.URL.Path, "error", err)
	http.Error(c.W, "Something went wrong. Please try again.", http.StatusInternalServerError)
}

// Index handles GET /.
func (h *PageController) Index(c *ctx.Context) {
	reqCtx := c.Context()
	p, err := h.base(c, "Shop")
	if err != nil {
		h.broken(c, err)
		return
	}

	p.ActiveTag = c.DefaultQuery("tag", services.TagAll)
	p.Query = c.Query("q")
	p.Sort = c.DefaultQuery("sort", services.SortPopular)

	if p.Tags, err = h.svc.Catalog.Tags(reqCtx); err != nil {
		h.broken(c, err)
		return
	}
	products, err := h.svc.Catalog.List(reqCtx, services.Filter{Tag: p.ActiveTag, Query: p.Query, Sort: p.Sort})
	if err != nil {
		h.broken(c, err)
		return
	}
	p.Products = h.svc.Catalog.WithImages(reqCtx, products)

	if id := c.Query("product"); id != "" {
		product, err := h.svc.Catalog.Find(reqCtx, id)
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			p.Notices = append(p.Notices, models.Notice{Kind: models.NoticeAlert, Text: err.Error()})
		case err != nil:
			h.broken(c, err)
			return
		default:
			product = h.svc.Catalog.WithImages(reqCtx, []models.Product{product})[0]
			p.Modal = &product
			p.Description = models.ProductDescription
		}
	}

	if c.Query("cart") == "open" {
		p.CartOpen = true
		if p.Cart, err = h.svc.Cart.View(reqCtx); err != nil {
			h.broken(c, err)
			return
		}
	}

	c.Render(http.StatusOK, h.views, "index", p)
}

// AddToCart handles POST /cart/add. Adding from the modal closes it.
func (h *PageController) AddToCart(c *ctx.Context) {
	var in AddToCartInput
	if _, err := c.BindForm(&in); err != nil {
		c.Back("/")
		return
	}
	if _, err := h.svc.Cart.Add(c.Context(), in.ProductID); err != nil {
		if !h.notify(c, err) {
			return
		}
	} else {
		h.svc.Notices.Toast(c.Context(), "Added to cart")
	}
	c.BackWithout("/", "product")
}

// RemoveFromCart handles POST /cart/remove.
func (h *PageController) RemoveFromCart(c *ctx.Context) {
	var in AddToCartInput
	if _, err := c.BindForm(&in); err != nil {
		c.Back("/")
		return
	}
	if err := h.svc.Cart.Remove(c.Context(), in.ProductID); err != nil {
		h.broken(c, err)
		return
	}
	c.Back("/?cart=open")
}

// ClearCart handles POST /cart/clear.
func (h *PageController) ClearCart(c *ctx.Context) {
	if err := h.svc.Cart.Clear(c.Context()); err != nil {
		h.broken(c, err)
		return
	}
	c.Back("/?cart=open")
}

// Checkout handles POST /checkout.
func (h *PageController) Checkout(c *ctx.Context) {
	if _, err := h.svc.Checkout.Proceed(c.Context()); err != nil {
		if h.notify(c, err) {
			c.Back("/")
		}
		return
	}
	c.Redirect(http.StatusSeeOther, services.PaymentPath)
}

// ToggleTheme handles POST /theme/toggle.
func (h *PageController) ToggleTheme(c *ctx.Context) {
	if _, err := h.svc.Theme.Toggle(c.Context()); err != nil {
		h.broken(c, err)
		return
	}
	c.Back("/")
}

// Payment handles GET /payment.
func (h *PageController) Payment(c *ctx.Context) {
	h.renderPayment(c, http.StatusOK, services.PaymentRequest{Method: models.MethodDemo}, nil)
}

// Pay handles POST /payment. A demo payment redirects home with the
// success notice; everything else re-renders the form with an alert.
func (h *PageController) Pay(c *ctx.Context) {
	var in services.PaymentRequest
	if _, err := c.BindForm(&in); err != nil {
		h.renderPayment(c, http.StatusBadRequest, in, &models.Notice{Kind: models.NoticeAlert, Text: "Could not read the payment form."})
		return
	}

	_, err := h.svc.Checkout.Pay(c.Context(), in)
	if err == nil {
		h.svc.Notices.Alert(c.Context(), PaymentSuccess)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	status := StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		h.broken(c, err)
	case http.StatusNotImplemented:
		h.renderPayment(c, http.StatusOK, in, &models.Notice{Kind: models.NoticeAlert, Text: err.Error()})
	default:
		h.renderPayment(c, status, in, &models.Notice{Kind: models.NoticeAlert, Text: err.Error()})
	}
}

func (h *PageController) renderPayment(c *ctx.Context, status int, form services.PaymentRequest, notice *models.Notice) {
	p, err := h.base(c, "Payment")
	if err != nil {
		h.broken(c, err)
		return
	}
	if notice != nil {
		p.Notices = append(p.Notices, *notice)
	}
	p.Form = form

	summary, err := h.svc.Checkout.Summary(c.Context())
	switch {
	case errors.Is(err, services.ErrNothingToPay):
		p.NothingToPay = err.Error()
	case err != nil:
		h.broken(c, err)
		return
	default:
		summary.Items = h.svc.Catalog.LineImages(c.Context(), summary.Items)
		p.Summary = &summary
	}

	c.Render(status, h.views, "payment", p)
}

// notify turns a user-facing service error into an alert for the next
// page. It returns false after answering a store failure itself.
func (h *PageController) notify(c *ctx.Context, err error) bool {
	if StatusFor(err) == http.StatusInternalServerError {
		h.broken(c, err)
		return false
	}
	h.svc.Notices.Alert(c.Context(), err.Error())
	return true
}
