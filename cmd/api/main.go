package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/fel-gt/internal/application/auth"
	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/application/invoicing"
	"github.com/tu-usuario/fel-gt/internal/application/usecase"
	"github.com/tu-usuario/fel-gt/internal/infrastructure/infile"
	infrapdf "github.com/tu-usuario/fel-gt/internal/infrastructure/pdf"
	"github.com/tu-usuario/fel-gt/internal/infrastructure/postgres"
	"github.com/tu-usuario/fel-gt/internal/infrastructure/xmlfel"
	httpRouter "github.com/tu-usuario/fel-gt/internal/interfaces/http"
	"github.com/tu-usuario/fel-gt/pkg/config"
	"github.com/tu-usuario/fel-gt/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	dteTypeRepo := postgres.NewDTETypeRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	assembler, err := fel.NewAssembler(cfg.INFILE.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del emisor")
	}
	xmlBuilder := xmlfel.NewBuilder()

	// Certificador INFILE — en modo "dev" el NopCertifier certifica en local
	// sin llamar al servicio externo.
	var certifier fel.Certifier
	if cfg.INFILE.Env == "dev" {
		certifier = infile.NewNopCertifier(log)
	} else {
		certifier = infile.NewClient(cfg.INFILE, log)
	}

	// Orquestador FEL: ensamblar DTE → XML canónico → INFILE → update estado
	orchestrator := fel.NewOrchestrator(
		invoiceRepo, companyRepo, partnerRepo, dteTypeRepo, attachmentRepo,
		assembler, xmlBuilder, certifier, log,
	)

	invoicingUC := invoicing.NewUseCase(txRunner, invoiceRepo, partnerRepo, dteTypeRepo)
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	partnerUC := usecase.NewPartnerUseCase(partnerRepo)
	dteTypeUC := usecase.NewDTETypeUseCase(dteTypeRepo)

	// PDF: representación gráfica del DTE certificado
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	graphicUC := fel.NewGraphicUseCase(
		invoiceRepo, companyRepo, partnerRepo, attachmentRepo,
		infile.NewAuthorizationParser(), pdfGenerator,
	)

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FEL GT API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:    companyUC,
		PartnerUC:    partnerUC,
		DTETypeUC:    dteTypeUC,
		InvoicingUC:  invoicingUC,
		Orchestrator: orchestrator,
		GraphicUC:    graphicUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
