package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest alta de una factura con sus líneas. La factura nace en
// estado not_sent; la certificación es un paso posterior explícito.
type CreateInvoiceRequest struct {
	PartnerID  string                     `json:"partner_id" validate:"required"`
	JournalID  string                     `json:"journal_id"`
	Name       string                     `json:"name" validate:"required"`
	MoveType   string                     `json:"move_type" validate:"required"`
	Currency   string                     `json:"currency"`
	DTETypeID  string                     `json:"dte_type_id" validate:"required"`
	Regime     bool                       `json:"regime"`
	OriginUUID string                     `json:"origin_uuid"`
	OriginDate string                     `json:"origin_date"` // YYYY-MM-DD
	Ref        string                     `json:"ref"`
	Lines      []CreateInvoiceLineRequest `json:"lines" validate:"required,min=1"`
}

// CreateInvoiceLineRequest línea de la factura. Los precios incluyen IVA.
type CreateInvoiceLineRequest struct {
	ProductType string          `json:"product_type"` // consu | service
	Quantity    decimal.Decimal `json:"quantity"`
	UOMName     string          `json:"uom_name"`
	Description string          `json:"description"`
	PriceUnit   decimal.Decimal `json:"price_unit"`
	Discount    decimal.Decimal `json:"discount"`
	Taxes       []LineTaxDTO    `json:"taxes"`
}

// LineTaxDTO impuesto declarado sobre una línea.
type LineTaxDTO struct {
	CodeName             string `json:"code_name"`
	CodigoUnidadGravable int    `json:"codigo_unidad_gravable"`
}

// InvoiceResponse proyección de la factura para la API.
type InvoiceResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MoveType      string `json:"move_type"`
	Currency      string `json:"currency"`
	FELStatus     string `json:"fel_status"`
	InfileXMLUUID string `json:"infile_xml_uuid,omitempty"`
	FELErrors     string `json:"fel_errors,omitempty"`
}
