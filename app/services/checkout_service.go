package services

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
	"github.com/shashiranjanraj/bloomthread/pkg/validate"
)

// PaymentPath is where Proceed sends the visitor next.
const PaymentPath = "/payment"

// createdLayout is RFC 3339 in UTC with millisecond precision.
const createdLayout = "2006-01-02T15:04:05.000Z07:00"

// PaymentRequest is the payment form.
type PaymentRequest struct {
	Name   string `json:"name"   form:"name"   validate:"required"`
	Email  string `json:"email"  form:"email"  validate:"required"`
	Method string `json:"method" form:"method" validate:"required,in=demo,stripe,razorpay"`
}

type CheckoutService struct {
	repo   *repositories.StoreRepository
	events *event.Dispatcher

	// Now stamps orders; tests replace it.
	Now func() time.Time
}

func NewCheckoutService(repo *repositories.StoreRepository, events *event.Dispatcher) *CheckoutService {
	if events == nil {
		events = event.Default
	}
	return &CheckoutService{repo: repo, events: events, Now: time.Now}
}

// Proceed snapshots the grouped cart as the checkout summary.
func (s *CheckoutService) Proceed(ctx context.Context) (models.CheckoutSummary, error) {
	var summary models.CheckoutSummary
	err := s.repo.Update(ctx, func() error {
		lines, err := s.repo.Cart(ctx)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		grouped := models.Group(lines)
		summary = models.CheckoutSummary{Items: grouped, Total: models.Total(grouped)}
		return s.repo.SaveCheckout(ctx, summary)
	})
	if err != nil {
		return models.CheckoutSummary{}, err
	}
	logger.WithCtx(ctx).Info("checkout: summary stored", "items", len(summary.Items), "total", summary.Total)
	return summary, nil
}

// Summary returns the stored checkout summary.
func (s *CheckoutService) Summary(ctx context.Context) (models.CheckoutSummary, error) {
	summary, err := s.repo.Checkout(ctx)
	if err != nil {
		return models.CheckoutSummary{}, err
	}
	if summary == nil || summary.Items == nil {
		return models.CheckoutSummary{}, ErrNothingToPay
	}
	return *summary, nil
}

// Pay completes a simulated payment. Only the demo method creates an
// order; stripe and razorpay return a *ProviderError and store nothing.
func (s *CheckoutService) Pay(ctx context.Context, req PaymentRequest) (models.Order, error) {
	errs := validate.Struct(req)
	if _, bad := errs["name"]; bad {
		return models.Order{}, ErrMissingCustomer
	}
	if _, bad := errs["email"]; bad {
		return models.Order{}, ErrMissingCustomer
	}
	if _, bad := errs["method"]; bad {
		return models.Order{}, ErrInvalidMethod
	}

	method := strings.TrimSpace(req.Method)
	if method != models.MethodDemo {
		return models.Order{}, &ProviderError{Method: method}
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	var order models.Order
	err := s.repo.Update(ctx, func() error {
		summary, err := s.repo.Checkout(ctx)
		if err != nil {
			return err
		}
		if summary == nil {
			summary = &models.CheckoutSummary{}
		}
		items := summary.Items
		if items == nil {
			items = []models.GroupedLine{}
		}

		now := s.Now().UTC()
		order = models.Order{
			ID:      models.OrderID(now),
			Created: now.Format(createdLayout),
			Name:    name,
			Email:   email,
			Method:  models.MethodDemo,
			Status:  models.StatusPaid,
			Amount:  summary.Total,
			Items:   items,
		}
		if err := s.repo.AppendOrder(ctx, order); err != nil {
			return err
		}
		if err := s.repo.DeleteCart(ctx); err != nil {
			return err
		}
		return s.repo.DeleteCheckout(ctx)
	})
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrdersPaid.WithLabelValues(order.Method).Inc()
	metrics.OrderAmount.Add(float64(order.Amount))
	logger.WithCtx(ctx).Info("checkout: order paid", "order_id", order.ID, "amount", order.Amount)

	visitor := session.VisitorID(ctx)
	s.events.Fire(ctx, EventOrderPaid, OrderPaid{Visitor: visitor, Order: order})
	s.events.Fire(ctx, EventCartChanged, CartChanged{Visitor: visitor, Count: 0})
	return order, nil
}

func (s *CheckoutService) Orders(ctx context.Context) ([]models.Order, error) {
	return s.repo.Orders(ctx)
}
