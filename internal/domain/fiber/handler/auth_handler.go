package handler

import (
	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/usecase"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	account  *usecase.AccountUsecase
	maxBytes int64
}

func NewAuthHandler(account *usecase.AccountUsecase, maxBytes int64) *AuthHandler {
	return &AuthHandler{account: account, maxBytes: maxBytes}
}

func (h *AuthHandler) RegisterRoutes(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/register", h.Register)
	auth.Post("/logout", h.Logout)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid login request", err)
	}
	sess, err := h.account.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success login",
		Data:    fiber.Map{"userId": sess.UserID, "authenticated": true},
	})
}

// Register takes the profile fields plus a "resume" file as multipart form.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form dto.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid registration form", err)
	}
	document, err := readUpload(c, "resume", h.maxBytes)
	if err != nil {
		return badRequest(c, "resume file is required", err)
	}

	sess, err := h.account.Register(c.UserContext(), form, document)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success register",
		Data:    fiber.Map{"userId": sess.UserID, "authenticated": true},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.account.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Message: "Success logout"})
}
