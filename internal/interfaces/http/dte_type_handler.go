package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/application/usecase"
)

// DTETypeHandler expone el catálogo de tipos de DTE (protegido).
type DTETypeHandler struct {
	uc *usecase.DTETypeUseCase
}

// NewDTETypeHandler construye el handler.
func NewDTETypeHandler(uc *usecase.DTETypeUseCase) *DTETypeHandler {
	return &DTETypeHandler{uc: uc}
}

// List lista los tipos activos para una categoría de movimiento.
// GET /api/dte-types?move_type=invoice
func (h *DTETypeHandler) List(c *fiber.Ctx) error {
	moveType := c.Query("move_type", "invoice")
	out, err := h.uc.ListByGeneralMoveType(moveType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
