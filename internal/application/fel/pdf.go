package fel

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

// Autorizacion datos de autorización que el certificador incrusta en el XML
// certificado: el UUID de autorización con su serie/número y la identidad
// del certificador.
type Autorizacion struct {
	UUID               string
	Serie              string
	Numero             string
	NITCertificador    string
	NombreCertificador string
	FechaCertificacion time.Time
}

// AuthorizationParser extrae los datos de autorización del XML certificado.
type AuthorizationParser interface {
	ParseAuthorization(xml []byte) (*Autorizacion, error)
}

// PDFGenerator genera la representación gráfica de un DTE certificado.
type PDFGenerator interface {
	GenerateDTEPDF(ctx context.Context, invoice *entity.Invoice, company *entity.Company,
		partner *entity.Partner, lines []*entity.InvoiceLine, auth *Autorizacion) ([]byte, error)
}

// GraphicUseCase produce la representación gráfica local de una factura
// certificada a partir del artefacto XML certificado.
type GraphicUseCase struct {
	invoiceRepo    repository.InvoiceRepository
	companyRepo    repository.CompanyRepository
	partnerRepo    repository.PartnerRepository
	attachmentRepo repository.AttachmentRepository
	parser         AuthorizationParser
	generator      PDFGenerator
}

// NewGraphicUseCase construye el caso de uso de representación gráfica.
func NewGraphicUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	partnerRepo repository.PartnerRepository,
	attachmentRepo repository.AttachmentRepository,
	parser AuthorizationParser,
	generator PDFGenerator,
) *GraphicUseCase {
	return &GraphicUseCase{
		invoiceRepo:    invoiceRepo,
		companyRepo:    companyRepo,
		partnerRepo:    partnerRepo,
		attachmentRepo: attachmentRepo,
		parser:         parser,
		generator:      generator,
	}
}

// Generate devuelve el PDF de la factura. Solo facturas certificadas (o
// anuladas tras haberlo sido) tienen representación gráfica.
func (uc *GraphicUseCase) Generate(ctx context.Context, invoiceID string) ([]byte, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.FELStatus != entity.FELStatusDone && inv.FELStatus != entity.FELStatusAnnulled {
		return nil, fmt.Errorf("%w: la factura %s no está certificada", domain.ErrValidation, inv.Name)
	}

	company, err := uc.companyRepo.GetByID(inv.CompanyID)
	if err != nil {
		return nil, err
	}
	partner, err := uc.partnerRepo.GetByID(inv.PartnerID)
	if err != nil {
		return nil, err
	}
	if company == nil || partner == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}

	att, err := uc.attachmentRepo.Find(invoiceID, entity.AttachmentRoleOriginal)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, fmt.Errorf("%w: la factura %s no tiene XML certificado", domain.ErrNotFound, inv.Name)
	}
	auth, err := uc.parser.ParseAuthorization(att.Data)
	if err != nil {
		return nil, err
	}

	return uc.generator.GenerateDTEPDF(ctx, inv, company, partner, lines, auth)
}
