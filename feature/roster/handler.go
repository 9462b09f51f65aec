package roster

import (
	"errors"

	"roster-workbench/core/errs"
	"roster-workbench/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for rosters.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the roster routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/roster")
	group.Post("/options", h.HandleOptions)
	group.Post("/query", h.HandleQuery)
	group.Delete("/cache", h.HandleResetCache)
}

// HandleOptions returns the options and selection of every level.
// @Summary Filter Options
// @Description Replays a selection and returns each level's options, selection and load state.
// @Tags roster
// @Accept json
// @Produce json
// @Success 200 {object} OptionsResponse "Levels"
// @Failure 400 {object} map[string]string "Invalid Selection"
// @Router /roster/options [post]
func (h *Handler) HandleOptions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	resp, err := h.service.Options(c.Context(), req)
	if err != nil {
		return Fail(c, l, "Options request failed", err)
	}
	return c.JSON(resp)
}

// HandleQuery returns the reconciled roster of a selection.
// @Summary Roster Query
// @Description Merges primary records with the secondary records of every selected partition.
// @Tags roster
// @Accept json
// @Produce json
// @Success 200 {object} QueryResponse "Roster"
// @Failure 400 {object} map[string]string "Invalid Selection"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /roster/query [post]
func (h *Handler) HandleQuery(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	resp, err := h.service.Query(c.Context(), req)
	if err != nil {
		return Fail(c, l, "Roster query failed", err)
	}
	return c.JSON(resp)
}

// HandleResetCache removes the cached options of one scope.
// @Summary Reset Cache Scope
// @Tags roster
// @Produce json
// @Param scope query string true "Owner scope"
// @Success 200 {object} map[string]interface{} "Removed Entries"
// @Router /roster/cache [delete]
func (h *Handler) HandleResetCache(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	scope := c.Query("scope")

	n, err := h.service.ResetCache(c.Context(), scope)
	if err != nil {
		return Fail(c, l, "Cache reset failed", err)
	}
	return c.JSON(fiber.Map{"scope": scope, "removed": n})
}

// Fail writes err as a JSON error: 400 for a selection the caller has to fix, 500 for
// anything else.
func Fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	if errors.Is(err, errs.ErrInvalidSelection) {
		l.Info(msg, zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
}
