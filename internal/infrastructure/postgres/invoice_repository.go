package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.FELStatus == "" {
		invoice.FELStatus = entity.FELStatusNotSent
	}
	now := time.Now()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	query := `
		INSERT INTO invoices (id, company_id, partner_id, journal_id, name, move_type,
		                      currency, dte_type_id, regime, origin_uuid, origin_date,
		                      ref, fel_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CompanyID, invoice.PartnerID, nullIfEmpty(invoice.JournalID),
		invoice.Name, invoice.MoveType, invoice.Currency, invoice.DTETypeID, invoice.Regime,
		nullIfEmpty(invoice.OriginUUID), invoice.OriginDate, nullIfEmpty(invoice.Ref),
		invoice.FELStatus, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("el número de factura ya existe: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de la factura y sus impuestos.
func (r *InvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, product_type, quantity, uom_name,
		                           description, price_unit, discount, sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.InvoiceID, line.ProductType, line.Quantity, line.UOMName,
		line.Description, line.PriceUnit, line.Discount, line.Sequence,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	for i, tax := range line.Taxes {
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO invoice_line_taxes (line_id, code_name, codigo_unidad_gravable, sequence)
			VALUES ($1, $2, $3, $4)`,
			line.ID, tax.CodeName, tax.CodigoUnidadGravable, i,
		)
		if err != nil {
			return fmt.Errorf("insert invoice line tax: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una factura completa por ID. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, company_id, partner_id, journal_id, name, move_type, currency,
		       dte_type_id, regime, origin_uuid, origin_date, ref,
		       fel_status, emision_datetime, annulled_datetime, annulment_reason,
		       infile_uuid, infile_xml_uuid, certified_datetime, fel_errors,
		       created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var journalID, originUUID, ref, annulmentReason, infileUUID, infileXMLUUID, felErrors *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.CompanyID, &inv.PartnerID, &journalID, &inv.Name, &inv.MoveType, &inv.Currency,
		&inv.DTETypeID, &inv.Regime, &originUUID, &inv.OriginDate, &ref,
		&inv.FELStatus, &inv.EmisionDatetime, &inv.AnnulledDatetime, &annulmentReason,
		&infileUUID, &infileXMLUUID, &inv.CertifiedDatetime, &felErrors,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.JournalID = deref(journalID)
	inv.OriginUUID = deref(originUUID)
	inv.Ref = deref(ref)
	inv.AnnulmentReason = deref(annulmentReason)
	inv.InfileUUID = deref(infileUUID)
	inv.InfileXMLUUID = deref(infileXMLUUID)
	inv.FELErrors = deref(felErrors)
	return &inv, nil
}

// GetLinesByInvoiceID obtiene las líneas de la factura con sus impuestos, en
// orden de emisión (sequence).
func (r *InvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, invoice_id, product_type, quantity, uom_name,
		       description, price_unit, discount, sequence
		FROM invoice_lines WHERE invoice_id = $1
		ORDER BY sequence, id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.InvoiceLine
	index := map[string]*entity.InvoiceLine{}
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductType, &l.Quantity, &l.UOMName,
			&l.Description, &l.PriceUnit, &l.Discount, &l.Sequence); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, &l)
		index[l.ID] = &l
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taxRows, err := r.q.Query(context.Background(), `
		SELECT t.line_id, t.code_name, t.codigo_unidad_gravable
		FROM invoice_line_taxes t
		JOIN invoice_lines l ON l.id = t.line_id
		WHERE l.invoice_id = $1
		ORDER BY t.line_id, t.sequence`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice line taxes: %w", err)
	}
	defer taxRows.Close()

	for taxRows.Next() {
		var lineID string
		var tax entity.LineTax
		if err := taxRows.Scan(&lineID, &tax.CodeName, &tax.CodigoUnidadGravable); err != nil {
			return nil, fmt.Errorf("scan invoice line tax: %w", err)
		}
		if line, ok := index[lineID]; ok {
			line.Taxes = append(line.Taxes, tax)
		}
	}
	return lines, taxRows.Err()
}

// GetJournalByInvoiceID obtiene el diario de la factura. Devuelve (nil, nil)
// si la factura no tiene diario asociado.
func (r *InvoiceRepo) GetJournalByInvoiceID(invoiceID string) (*entity.InvoiceJournal, error) {
	query := `
		SELECT j.id, j.name, j.enable_sending_to_sat
		FROM journals j
		JOIN invoices i ON i.journal_id = j.id
		WHERE i.id = $1`
	var j entity.InvoiceJournal
	err := r.q.QueryRow(context.Background(), query, invoiceID).Scan(
		&j.ID, &j.Name, &j.EnableSendingToSAT,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice journal: %w", err)
	}
	return &j, nil
}

// UpdateFEL actualiza los campos del ciclo de certificación de la factura.
func (r *InvoiceRepo) UpdateFEL(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET fel_status         = $2,
		    emision_datetime   = $3,
		    annulled_datetime  = $4,
		    annulment_reason   = $5,
		    infile_uuid        = $6,
		    infile_xml_uuid    = $7,
		    certified_datetime = $8,
		    fel_errors         = $9,
		    updated_at         = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.FELStatus, invoice.EmisionDatetime, invoice.AnnulledDatetime,
		nullIfEmpty(invoice.AnnulmentReason), nullIfEmpty(invoice.InfileUUID),
		nullIfEmpty(invoice.InfileXMLUUID), invoice.CertifiedDatetime,
		nullIfEmpty(invoice.FELErrors),
	)
	if err != nil {
		return fmt.Errorf("update invoice fel: %w", err)
	}
	return nil
}

// GetFELStatus devuelve solo los campos de estado FEL (ligero, para polling).
func (r *InvoiceRepo) GetFELStatus(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, name, fel_status, infile_xml_uuid, fel_errors
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var infileXMLUUID, felErrors *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.Name, &inv.FELStatus, &infileXMLUUID, &felErrors,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice fel status: %w", err)
	}
	inv.InfileXMLUUID = deref(infileXMLUUID)
	inv.FELErrors = deref(felErrors)
	return &inv, nil
}
