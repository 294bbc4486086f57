package repository

import "github.com/tu-usuario/fel-gt/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLine(line *entity.InvoiceLine) error
	GetByID(id string) (*entity.Invoice, error)
	GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error)
	GetJournalByInvoiceID(invoiceID string) (*entity.InvoiceJournal, error)
	// UpdateFEL actualiza los campos del ciclo de certificación:
	// fel_status, infile_uuid, infile_xml_uuid, fechas y nota de errores.
	UpdateFEL(invoice *entity.Invoice) error
	// GetFELStatus devuelve solo los campos de estado FEL (ligero, para polling).
	GetFELStatus(id string) (*entity.Invoice, error)
}
