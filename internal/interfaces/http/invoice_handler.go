package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/application/invoicing"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
)

// InvoiceHandler maneja las peticiones HTTP de facturación y del ciclo FEL
// (protegido).
type InvoiceHandler struct {
	invoicingUC  *invoicing.UseCase
	orchestrator *fel.Orchestrator
	graphicUC    *fel.GraphicUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoicingUC *invoicing.UseCase, orchestrator *fel.Orchestrator,
	graphicUC *fel.GraphicUseCase) *InvoiceHandler {
	return &InvoiceHandler{
		invoicingUC:  invoicingUC,
		orchestrator: orchestrator,
		graphicUC:    graphicUC,
	}
}

// Create crea una factura con sus líneas (estado not_sent).
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.invoicingUC.CreateInvoice(c.Context(), companyID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(inv))
}

// GetByID obtiene una factura de la empresa del token.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	inv, _, err := h.invoicingUC.GetInvoice(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// Certify envía la factura al certificador. Idempotente: una factura ya
// certificada responde su estado actual sin reenvío.
// POST /api/invoices/:id/certify
func (h *InvoiceHandler) Certify(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if err != nil || !ok {
		return err
	}
	inv, err = h.orchestrator.Certify(c.Context(), inv.ID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toCertifyResponse(inv))
}

// Annul solicita la anulación de una factura certificada.
// POST /api/invoices/:id/annul
func (h *InvoiceHandler) Annul(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if err != nil || !ok {
		return err
	}
	var in dto.AnnulRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err = h.orchestrator.Annul(c.Context(), inv.ID, in.Reason)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toCertifyResponse(inv))
}

// RetryAnnulment reintenta una anulación rechazada.
// POST /api/invoices/:id/retry-annulment
func (h *InvoiceHandler) RetryAnnulment(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if err != nil || !ok {
		return err
	}
	inv, err = h.orchestrator.RetryAnnulment(c.Context(), inv.ID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toCertifyResponse(inv))
}

// Status consulta el estado FEL de la factura (polling ligero).
// GET /api/invoices/:id/fel-status
func (h *InvoiceHandler) Status(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if err != nil || !ok {
		return err
	}
	inv, err = h.orchestrator.Status(c.Context(), inv.ID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.FELStatusResponse{
		InvoiceID:     inv.ID,
		FELStatus:     inv.FELStatus,
		InfileXMLUUID: inv.InfileXMLUUID,
		FELErrors:     inv.FELErrors,
		PDFLink:       inv.InfilePDFLink(),
	})
}

// PDF devuelve la representación gráfica local del DTE certificado.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	inv, ok, err := h.owned(c)
	if err != nil || !ok {
		return err
	}
	data, err := h.graphicUC.Generate(c.Context(), inv.ID)
	if err != nil {
		return h.mapError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+sanitizeFilename(inv.Name)+`.pdf"`)
	return c.Send(data)
}

// owned carga la factura del path verificando que pertenezca a la empresa del
// token. Devuelve (nil, false, respuesta-ya-escrita) cuando no procede.
func (h *InvoiceHandler) owned(c *fiber.Ctx) (*entity.Invoice, bool, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return nil, false, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	inv, _, err := h.invoicingUC.GetInvoice(c.Context(), companyID, id)
	if err != nil {
		return nil, false, h.mapError(c, err)
	}
	return inv, true, nil
}

// mapError traduce errores de dominio a códigos HTTP.
func (h *InvoiceHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrGateway):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "GATEWAY", Message: "el certificador no está disponible, intente de nuevo"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:            inv.ID,
		Name:          inv.Name,
		MoveType:      inv.MoveType,
		Currency:      inv.Currency,
		FELStatus:     inv.FELStatus,
		InfileXMLUUID: inv.InfileXMLUUID,
		FELErrors:     inv.FELErrors,
	}
}

func toCertifyResponse(inv *entity.Invoice) dto.CertifyResponse {
	return dto.CertifyResponse{
		InvoiceID:         inv.ID,
		FELStatus:         inv.FELStatus,
		InfileXMLUUID:     inv.InfileXMLUUID,
		CertifiedDatetime: inv.CertifiedDatetime,
		FELErrors:         inv.FELErrors,
		PDFLink:           inv.InfilePDFLink(),
	}
}

// sanitizeFilename reemplaza los separadores del nombre del documento para
// usarlo como nombre de archivo (FACT/2024/0001 → FACT_2024_0001).
func sanitizeFilename(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '/' || r == '\\' || r == '"' {
			out[i] = '_'
		}
	}
	return string(out)
}
