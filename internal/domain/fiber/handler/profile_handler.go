package handler

import (
	"github.com/fadilmartias/converge/internal/usecase"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	account *usecase.AccountUsecase
}

func NewProfileHandler(account *usecase.AccountUsecase) *ProfileHandler {
	return &ProfileHandler{account: account}
}

func (h *ProfileHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/profile", h.Own)
	app.Get("/profile/:id", h.ByID)
}

func (h *ProfileHandler) Own(c *fiber.Ctx) error {
	p, err := h.account.OwnProfile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get profile",
		Data:    p,
	})
}

func (h *ProfileHandler) ByID(c *fiber.Ctx) error {
	p, err := h.account.Profile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get profile",
		Data:    p,
	})
}
