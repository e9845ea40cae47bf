package services

import "github.com/shashiranjanraj/bloomthread/app/models"

// Events fired by the services.
const (
	EventCartChanged  = "cart.changed"
	EventThemeChanged = "theme.changed"
	EventOrderPaid    = "order.paid"
)

type CartChanged struct {
	Visitor string
	Count   int
}

type ThemeChanged struct {
	Visitor string
	Theme   string
}

type OrderPaid struct {
	Visitor string
	Order   models.Order
}
