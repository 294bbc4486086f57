package fel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
	"github.com/tu-usuario/fel-gt/pkg/logger"
)

// Orchestrator orquesta el ciclo de certificación FEL de una factura:
//
//	ensamblar DTE → XML canónico → artefacto → envío a INFILE → update estado
//
// Transiciones de estado (fel_status):
//
//	not_sent ──Certify──▶ done | error        (error es reintentable)
//	done     ──Annul───▶ annulled | annulled_error
//	annulled_error ──RetryAnnulment──▶ annulled | annulled_error
//
// Un fallo de transporte (ErrGateway) se propaga sin tocar el estado: la
// operación puede reintentarse tal cual.
type Orchestrator struct {
	invoiceRepo    repository.InvoiceRepository
	companyRepo    repository.CompanyRepository
	partnerRepo    repository.PartnerRepository
	dteTypeRepo    repository.DTETypeRepository
	attachmentRepo repository.AttachmentRepository
	assembler      *Assembler
	canonicalizer  Canonicalizer
	certifier      Certifier
	log            *logger.Logger
}

// NewOrchestrator construye el orquestador con todas sus dependencias.
// certifier puede ser el cliente INFILE real o el NopCertifier de desarrollo;
// el orquestador no distingue.
func NewOrchestrator(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	partnerRepo repository.PartnerRepository,
	dteTypeRepo repository.DTETypeRepository,
	attachmentRepo repository.AttachmentRepository,
	assembler *Assembler,
	canonicalizer Canonicalizer,
	certifier Certifier,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		invoiceRepo:    invoiceRepo,
		companyRepo:    companyRepo,
		partnerRepo:    partnerRepo,
		dteTypeRepo:    dteTypeRepo,
		attachmentRepo: attachmentRepo,
		assembler:      assembler,
		canonicalizer:  canonicalizer,
		certifier:      certifier,
		log:            log,
	}
}

// Certify certifica la factura ante el certificador. Es idempotente sobre
// facturas ya certificadas (done: no-op) y respeta el diario: si su diario
// tiene el envío a SAT deshabilitado no hace nada. El rechazo de negocio del
// certificador NO es un error de la operación: queda registrado en la factura
// (fel_status=error, fel_errors) y se devuelve la factura actualizada.
func (o *Orchestrator) Certify(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	lg := o.log.With().Str("invoice_id", invoiceID).Logger()

	inv, err := o.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.FELStatus == entity.FELStatusDone {
		lg.Info().Msg("factura ya certificada, sin cambios")
		return inv, nil
	}

	journal, err := o.invoiceRepo.GetJournalByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	if journal != nil && !journal.EnableSendingToSAT {
		lg.Info().Str("journal", journal.Name).Msg("diario con envío a SAT deshabilitado, sin cambios")
		return inv, nil
	}

	company, partner, err := o.fetchParties(inv)
	if err != nil {
		return nil, err
	}
	dteType, err := o.dteTypeRepo.GetByID(inv.DTETypeID)
	if err != nil {
		return nil, err
	}
	if dteType == nil {
		return nil, fmt.Errorf("%w: tipo de DTE %s no configurado", domain.ErrValidation, inv.DTETypeID)
	}
	lines, err := o.invoiceRepo.GetLinesByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}

	session, err := o.session(company)
	if err != nil {
		return nil, err
	}

	// Todo lo que pueda fallar por datos se valida aquí, antes de persistir
	// artefacto alguno o tocar el estado de la factura.
	doc, emision, err := o.assembler.BuildDTE(inv, lines, company, partner, dteType)
	if err != nil {
		return nil, err
	}
	xml, err := o.canonicalizer.Build(doc)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s.xml", dteType.Code, sanitizeName(inv.Name))
	if err := o.putArtifact(inv.ID, entity.AttachmentRoleOriginal, filename, "DTE "+inv.Name, xml); err != nil {
		return nil, err
	}

	// El identificador de correlación y la fecha de emisión quedan
	// registrados antes del envío: si el transporte falla a medio camino,
	// la factura conserva la traza del intento.
	inv.InfileUUID = uuid.NewString()
	inv.EmisionDatetime = &emision
	if err := o.invoiceRepo.UpdateFEL(inv); err != nil {
		return nil, err
	}

	lg.Info().Str("identificador", inv.InfileUUID).Str("tipo", dteType.Code).Msg("enviando DTE al certificador")
	res, err := o.certifier.Certify(ctx, session, inv.InfileUUID, xml)
	if err != nil {
		lg.Error().Err(err).Msg("fallo de transporte con el certificador")
		return nil, err
	}

	if !res.Certified {
		inv.FELStatus = entity.FELStatusError
		inv.FELErrors = errorsNote(res.Errors)
		if err := o.invoiceRepo.UpdateFEL(inv); err != nil {
			return nil, err
		}
		lg.Warn().Str("fel_errors", inv.FELErrors).Msg("DTE rechazado por el certificador")
		return inv, nil
	}

	if err := o.putArtifact(inv.ID, entity.AttachmentRoleOriginal, filename, "DTE certificado "+inv.Name, res.XMLCertificado); err != nil {
		return nil, err
	}
	certified := o.assembler.now().In(o.assembler.emisionLoc(company)).Truncate(time.Second)
	inv.FELStatus = entity.FELStatusDone
	inv.InfileXMLUUID = res.UUID
	inv.CertifiedDatetime = &certified
	inv.FELErrors = ""
	if err := o.invoiceRepo.UpdateFEL(inv); err != nil {
		return nil, err
	}
	lg.Info().Str("uuid", res.UUID).Msg("DTE certificado")
	return inv, nil
}

// Annul solicita la anulación de una factura certificada. Solo se admite
// desde done; un rechazo deja annulled_error (reintentable con
// RetryAnnulment). En éxito el UUID de autorización pasa a ser el de la
// anulación certificada.
func (o *Orchestrator) Annul(ctx context.Context, invoiceID, reason string) (*entity.Invoice, error) {
	inv, err := o.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.FELStatus != entity.FELStatusDone {
		return nil, fmt.Errorf("%w: solo se puede anular una factura certificada (estado actual %q)",
			domain.ErrValidation, inv.FELStatus)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: la anulación requiere un motivo", domain.ErrValidation)
	}
	inv.AnnulmentReason = reason
	return o.submitAnnulment(ctx, inv)
}

// RetryAnnulment reintenta una anulación rechazada (annulled_error). Si el
// artefacto de anulación anterior sigue disponible se reenvía tal cual; si
// no, se reconstruye con el motivo registrado.
func (o *Orchestrator) RetryAnnulment(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	inv, err := o.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.FELStatus != entity.FELStatusAnnulledError {
		return nil, fmt.Errorf("%w: solo se reintenta una anulación rechazada (estado actual %q)",
			domain.ErrValidation, inv.FELStatus)
	}
	return o.submitAnnulment(ctx, inv)
}

// submitAnnulment núcleo compartido de Annul y RetryAnnulment: construye (o
// reusa) el XML de anulación, lo persiste y lo envía usando como
// identificador el UUID del documento certificado original.
func (o *Orchestrator) submitAnnulment(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	lg := o.log.With().Str("invoice_id", inv.ID).Logger()

	company, partner, err := o.fetchParties(inv)
	if err != nil {
		return nil, err
	}
	session, err := o.session(company)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_annulated.xml", sanitizeName(inv.Name))

	var xml []byte
	if prior, err := o.attachmentRepo.Find(inv.ID, entity.AttachmentRoleAnulacion); err != nil {
		return nil, err
	} else if prior != nil && inv.FELStatus == entity.FELStatusAnnulledError {
		// Reintento: mismo documento de anulación, mismo identificador.
		xml = prior.Data
	} else {
		anulacion, annulledAt, err := o.assembler.BuildAnulacion(inv, company, partner)
		if err != nil {
			return nil, err
		}
		xml, err = o.canonicalizer.BuildAnulacion(anulacion)
		if err != nil {
			return nil, err
		}
		if err := o.putArtifact(inv.ID, entity.AttachmentRoleAnulacion, filename, "Anulación "+inv.Name, xml); err != nil {
			return nil, err
		}
		inv.AnnulledDatetime = &annulledAt
	}

	// La anulación se correlaciona con el UUID del DTE certificado original,
	// no con un identificador fresco.
	identifier := inv.InfileXMLUUID
	inv.InfileUUID = identifier
	if err := o.invoiceRepo.UpdateFEL(inv); err != nil {
		return nil, err
	}

	lg.Info().Str("identificador", identifier).Msg("enviando anulación al certificador")
	res, err := o.certifier.Certify(ctx, session, identifier, xml)
	if err != nil {
		lg.Error().Err(err).Msg("fallo de transporte con el certificador")
		return nil, err
	}

	if !res.Certified {
		inv.FELStatus = entity.FELStatusAnnulledError
		inv.FELErrors = errorsNote(res.Errors)
		if err := o.invoiceRepo.UpdateFEL(inv); err != nil {
			return nil, err
		}
		lg.Warn().Str("fel_errors", inv.FELErrors).Msg("anulación rechazada por el certificador")
		return inv, nil
	}

	if err := o.putArtifact(inv.ID, entity.AttachmentRoleAnulacion, filename, "Anulación certificada "+inv.Name, res.XMLCertificado); err != nil {
		return nil, err
	}
	inv.FELStatus = entity.FELStatusAnnulled
	inv.InfileXMLUUID = res.UUID
	inv.FELErrors = ""
	if err := o.invoiceRepo.UpdateFEL(inv); err != nil {
		return nil, err
	}
	lg.Info().Str("uuid", res.UUID).Msg("anulación certificada")
	return inv, nil
}

// Status devuelve el estado FEL de la factura (consulta ligera para polling).
func (o *Orchestrator) Status(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	inv, err := o.invoiceRepo.GetFELStatus(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (o *Orchestrator) fetchParties(inv *entity.Invoice) (*entity.Company, *entity.Partner, error) {
	company, err := o.companyRepo.GetByID(inv.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, fmt.Errorf("%w: empresa %s", domain.ErrNotFound, inv.CompanyID)
	}
	partner, err := o.partnerRepo.GetByID(inv.PartnerID)
	if err != nil {
		return nil, nil, err
	}
	if partner == nil {
		return nil, nil, fmt.Errorf("%w: receptor %s", domain.ErrNotFound, inv.PartnerID)
	}
	return company, partner, nil
}

func (o *Orchestrator) session(company *entity.Company) (Session, error) {
	if !company.HasInfileCredentials() {
		return Session{}, fmt.Errorf("%w: la empresa %s no tiene credenciales del certificador configuradas",
			domain.ErrValidation, company.Name)
	}
	return Session{
		UsuarioFirma: company.InfileUserSign,
		LlaveFirma:   company.InfileSignKey,
		UsuarioAPI:   company.InfileUserAPI,
		LlaveAPI:     company.InfileAPIKey,
	}, nil
}

func (o *Orchestrator) putArtifact(invoiceID, role, filename, description string, data []byte) error {
	return o.attachmentRepo.Put(&entity.Attachment{
		ID:          uuid.NewString(),
		InvoiceID:   invoiceID,
		Role:        role,
		Filename:    filename,
		Description: description,
		Data:        data,
		MimeType:    "application/xml",
	})
}

// errorsNote concatena los mensajes del certificador en la nota legible que
// se guarda en la factura.
func errorsNote(errs []SubmitError) string {
	var b strings.Builder
	for _, e := range errs {
		if e.Codigo != "" {
			fmt.Fprintf(&b, "[%s] ", e.Codigo)
		}
		b.WriteString(e.Mensaje)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// sanitizeName los nombres de documento llevan separadores (FACT/2024/0001)
// que no sirven para nombre de archivo.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}
