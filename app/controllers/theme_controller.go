package controllers

import (
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/ctx"
)

type ThemeController struct {
	theme *services.ThemeService
}

func NewThemeController(svc *services.Services) *ThemeController {
	return &ThemeController{theme: svc.Theme}
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (h *ThemeController) Show(c *ctx.Context) {
	theme, err := h.theme.Current(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(themeBody{Theme: theme})
}

func (h *ThemeController) Toggle(c *ctx.Context) {
	theme, err := h.theme.Toggle(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(themeBody{Theme: theme})
}
