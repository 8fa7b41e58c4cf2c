package handler

import (
	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/middleware"
	"github.com/fadilmartias/converge/internal/response"
	"github.com/fadilmartias/converge/internal/usecase"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	registry  *usecase.LifecycleRegistry
	directory *usecase.ProjectDirectory
	metrics   *metrics.Metrics
}

func NewProjectHandler(registry *usecase.LifecycleRegistry, directory *usecase.ProjectDirectory, m *metrics.Metrics) *ProjectHandler {
	return &ProjectHandler{registry: registry, directory: directory, metrics: m}
}

func (h *ProjectHandler) RegisterRoutes(app *fiber.App) {
	projects := app.Group("/projects")
	projects.Get("/", h.ListMine)
	projects.Get("/explore", h.Explore)
	projects.Post("/", h.Create)
	projects.Get("/:id", h.Get)
	projects.Post("/:id/matches", middleware.RateLimiter(middleware.MatchLimit, h.metrics), h.Matches)
	projects.Post("/:id/invites/:candidateId", h.Invite)
	projects.Post("/:id/complete", h.Complete)
	projects.Post("/:id/ratings", h.Rate)
}

func (h *ProjectHandler) ListMine(c *fiber.Ctx) error {
	list, err := h.directory.Refresh(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	page, p := response.Paginate(list, c.QueryInt("page", 1), c.QueryInt("page_size", response.DefaultPageSize))
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get my projects",
		Data:       page,
		Pagination: p,
	})
}

func (h *ProjectHandler) Explore(c *fiber.Ctx) error {
	list, err := h.directory.Explore(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	page, p := response.Paginate(list, c.QueryInt("page", 1), c.QueryInt("page_size", response.DefaultPageSize))
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get explore feed",
		Data:       page,
		Pagination: p,
	})
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var form dto.ProjectForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid project form", err)
	}
	_, snap, err := h.registry.Create(c.UserContext(), form)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create project",
		Data:    snap,
	})
}

func (h *ProjectHandler) lifecycle(c *fiber.Ctx) (*usecase.ProjectLifecycle, error) {
	return h.registry.Open(c.UserContext(), c.Params("id"))
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	l, err := h.lifecycle(c)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get project",
		Data:    l.Snapshot(),
	})
}

func (h *ProjectHandler) Matches(c *fiber.Ctx) error {
	l, err := h.lifecycle(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, err := l.RequestMatches(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get teammate matches",
		Data:    snap,
	})
}

func (h *ProjectHandler) Invite(c *fiber.Ctx) error {
	l, err := h.lifecycle(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, err := l.Invite(c.UserContext(), c.Params("candidateId"))
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success send teammate request",
		Data:    snap,
	})
}

func (h *ProjectHandler) Complete(c *fiber.Ctx) error {
	var req dto.CompleteProjectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request", err)
		}
	}
	l, err := h.lifecycle(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, err := l.Complete(c.UserContext(), req.Confirm)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success complete project",
		Data:    snap,
	})
}

func (h *ProjectHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateTeammateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid rating", err)
	}
	raw, err := usecase.RawScoresFromAnswers(req.Scores)
	if err != nil {
		return respondError(c, err)
	}
	l, err := h.lifecycle(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, err := l.Rate(c.UserContext(), req.RateeID, raw)
	if err != nil {
		return respondError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success submit rating",
		Data:    snap,
	})
}
