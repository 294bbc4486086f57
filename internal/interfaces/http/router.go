package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/fel-gt/internal/application/auth"
	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/application/invoicing"
	"github.com/tu-usuario/fel-gt/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC    *usecase.CompanyUseCase
	PartnerUC    *usecase.PartnerUseCase
	DTETypeUC    *usecase.DTETypeUseCase
	InvoicingUC  *invoicing.UseCase
	Orchestrator *fel.Orchestrator
	GraphicUC    *fel.GraphicUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Partners (protegido)
	partners := protected.Group("/partners")
	partnerHandler := NewPartnerHandler(deps.PartnerUC)
	partners.Post("/", partnerHandler.Create)
	partners.Get("/", partnerHandler.List)
	partners.Get("/:id", partnerHandler.GetByID)
	partners.Put("/:id", partnerHandler.Update)

	// Catálogo de tipos de DTE (protegido)
	dteTypes := protected.Group("/dte-types")
	dteTypeHandler := NewDTETypeHandler(deps.DTETypeUC)
	dteTypes.Get("/", dteTypeHandler.List)

	// Invoices + ciclo FEL (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoicingUC, deps.Orchestrator, deps.GraphicUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/certify", invoiceHandler.Certify)
	invoices.Post("/:id/annul", invoiceHandler.Annul)
	invoices.Post("/:id/retry-annulment", invoiceHandler.RetryAnnulment)
	invoices.Get("/:id/fel-status", invoiceHandler.Status)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
}
