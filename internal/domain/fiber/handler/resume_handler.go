package handler

import (
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/middleware"
	"github.com/fadilmartias/converge/internal/usecase"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ResumeHandler struct {
	resume   *usecase.ResumeUsecase
	maxBytes int64
	metrics  *metrics.Metrics
}

func NewResumeHandler(resume *usecase.ResumeUsecase, maxBytes int64, m *metrics.Metrics) *ResumeHandler {
	return &ResumeHandler{resume: resume, maxBytes: maxBytes, metrics: m}
}

func (h *ResumeHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/resume", middleware.RateLimiter(middleware.UploadLimit, h.metrics), h.Upload)
	app.Get("/resume/progress", h.Progress)
	app.Get("/resume/download", h.DownloadOwn)
	app.Get("/resume/download/:id", h.DownloadOf)
}

func (h *ResumeHandler) Upload(c *fiber.Ctx) error {
	document, err := readUpload(c, "resume", h.maxBytes)
	if err != nil {
		return badRequest(c, "resume file is required", err)
	}
	doc, err := h.resume.Upload(c.UserContext(), document)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success upload resume",
		Data:    fiber.Map{"characters": len(doc.Text)},
	})
}

// Progress reports the simulated estimate of the latest resume processing.
func (h *ResumeHandler) Progress(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get progress",
		Data:    h.resume.Progress(),
	})
}

func (h *ResumeHandler) DownloadOwn(c *fiber.Ctx) error {
	path, err := h.resume.DownloadOwn(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success download resume",
		Data:    fiber.Map{"path": path},
	})
}

func (h *ResumeHandler) DownloadOf(c *fiber.Ctx) error {
	path, err := h.resume.DownloadOf(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success download resume",
		Data:    fiber.Map{"path": path},
	})
}
