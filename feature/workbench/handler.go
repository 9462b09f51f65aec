package workbench

import (
	"roster-workbench/core/logger"
	"roster-workbench/feature/roster"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the workbench.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the workbench routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/workbench")
	group.Post("/join", h.HandleJoin)
}

// HandleJoin joins primary and secondary records of a selection.
// @Summary Join Records
// @Description Equality join of the primary records (left) with every partition's secondary records (right).
// @Tags workbench
// @Accept json
// @Produce json
// @Success 200 {object} JoinResponse "Joined Rows"
// @Failure 400 {object} map[string]string "Invalid Selection"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /workbench/join [post]
func (h *Handler) HandleJoin(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req JoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}

	resp, err := h.service.Join(c.Context(), req)
	if err != nil {
		return roster.Fail(c, l, "Join failed", err)
	}
	return c.JSON(resp)
}
