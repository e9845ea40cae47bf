// Package controllers holds the HTTP handlers: HTML pages that post,
// redirect and render, and the JSON API under /api.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrNothingToPay):
		return http.StatusConflict
	case errors.Is(err, services.ErrMissingCustomer), errors.Is(err, services.ErrInvalidMethod):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrProviderUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// fail answers an API request with the envelope for err. Store failures
// are logged and hidden behind a generic message.
func fail(c *ctx.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(status, "Internal Server Error")
		return
	}
	c.Error(status, err.Error())
}
