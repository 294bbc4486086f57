package dto

import "time"

// CertifyResponse resultado del flujo de certificación de una factura.
type CertifyResponse struct {
	InvoiceID         string     `json:"invoice_id"`
	FELStatus         string     `json:"fel_status"`
	InfileXMLUUID     string     `json:"infile_xml_uuid,omitempty"`
	CertifiedDatetime *time.Time `json:"certified_datetime,omitempty"`
	FELErrors         string     `json:"fel_errors,omitempty"`
	PDFLink           string     `json:"pdf_link,omitempty"`
}

// AnnulRequest petición de anulación de una factura certificada.
type AnnulRequest struct {
	Reason string `json:"reason"`
}

// FELStatusResponse estado FEL de una factura (consulta ligera).
type FELStatusResponse struct {
	InvoiceID     string `json:"invoice_id"`
	FELStatus     string `json:"fel_status"`
	InfileXMLUUID string `json:"infile_xml_uuid,omitempty"`
	FELErrors     string `json:"fel_errors,omitempty"`
	PDFLink       string `json:"pdf_link,omitempty"`
}
