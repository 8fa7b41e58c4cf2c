package handler

import (
	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/usecase"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
)

type InboxHandler struct {
	inbox *usecase.InboxUsecase
}

func NewInboxHandler(inbox *usecase.InboxUsecase) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

func (h *InboxHandler) RegisterRoutes(app *fiber.App) {
	inbox := app.Group("/inbox")
	inbox.Get("/", h.List)
	inbox.Post("/:id/accept", h.Accept)
	inbox.Get("/:id/rating", h.OpenRating)
	inbox.Post("/:id/rating", h.SubmitRating)
}

func (h *InboxHandler) List(c *fiber.Ctx) error {
	reqs, err := h.inbox.Load(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get teammate requests",
		Data:    reqs,
	})
}

func (h *InboxHandler) Accept(c *fiber.Ctx) error {
	if err := h.inbox.Accept(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success accept request"})
}

func (h *InboxHandler) OpenRating(c *fiber.Ctx) error {
	target, err := h.inbox.OpenRatingRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success open rating request",
		Data:    target,
	})
}

func (h *InboxHandler) SubmitRating(c *fiber.Ctx) error {
	var req dto.RateTeammateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid rating", err)
	}
	raw, err := usecase.RawScoresFromAnswers(req.Scores)
	if err != nil {
		return respondError(c, err)
	}
	sub, err := h.inbox.SubmitRating(c.UserContext(), c.Params("id"), raw)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success submit rating",
		Data:    sub,
	})
}
