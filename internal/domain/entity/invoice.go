package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de certificación FEL de una factura (ciclo de vida ante INFILE/SAT).
const (
	FELStatusNotSent       = "not_sent"       // Aún no enviada al certificador
	FELStatusDone          = "done"           // Certificada con éxito
	FELStatusError         = "error"          // El certificador la rechazó (errores de negocio)
	FELStatusAnnulled      = "annulled"       // Anulación certificada
	FELStatusAnnulledError = "annulled_error" // La anulación fue rechazada
)

// Invoice representa la cabecera de una factura del módulo contable.
// Los campos FEL* e Infile* son el registro durable del ciclo de certificación.
type Invoice struct {
	ID         string
	CompanyID  string
	PartnerID  string
	JournalID  string // Diario contable (opcional)
	Name       string // Nombre/número del documento (ej: FACT/2024/0001)
	MoveType   string // out_invoice, in_invoice, out_refund, in_refund, out_receipt
	Currency   string // Código ISO de moneda (GTQ, USD)
	DTETypeID  string
	Regime     bool   // Régimen antiguo (complemento de notas)
	OriginUUID string // UUID del documento de origen (devoluciones)
	OriginDate *time.Time
	Ref        string // Referencia libre (descripción del complemento de notas)

	FELStatus         string     // ver constantes FELStatus*
	EmisionDatetime   *time.Time // Estampada al generar el DTE (auditoría)
	AnnulledDatetime  *time.Time // Estampada al generar la anulación
	AnnulmentReason   string
	InfileUUID        string     // Identificador de correlación del último envío
	InfileXMLUUID     string     // UUID de autorización asignado por el certificador
	CertifiedDatetime *time.Time // Momento en que quedó certificada
	FELErrors         string     // Nota legible con los rechazos del certificador

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceJournal diario/canal contable al que pertenece la factura.
// Si EnableSendingToSAT es falso, Certify es un no-op para sus facturas.
type InvoiceJournal struct {
	ID                 string
	Name               string
	EnableSendingToSAT bool
}

// InvoiceLine representa una línea de la factura.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	ProductType string // "consu" (bien físico) o "service"
	Quantity    decimal.Decimal
	UOMName     string // Nombre de la unidad de medida (se trunca a 3 mayúsculas en el DTE)
	Description string
	PriceUnit   decimal.Decimal
	Discount    decimal.Decimal // Porcentaje de descuento
	Taxes       []LineTax       // Impuestos aplicados, en orden declarado
	Sequence    int             // Orden de emisión
}

// LineTax impuesto aplicado a una línea.
type LineTax struct {
	CodeName             string // Nombre corto SAT (IVA, PETROLEO, ...)
	CodigoUnidadGravable int    // Código de unidad gravable del catálogo SAT
}

// InfilePDFLink devuelve el enlace a la representación gráfica del DTE
// certificado que publica INFILE.
func (i *Invoice) InfilePDFLink() string {
	const base = "https://report.feel.com.gt/ingfacereport/ingfacereport_documento?uuid="
	if i.InfileXMLUUID == "" {
		return ""
	}
	return base + i.InfileXMLUUID
}

// IsRefund indica si el movimiento es una devolución (nota de crédito/débito).
func (i *Invoice) IsRefund() bool {
	return i.MoveType == "out_refund" || i.MoveType == "in_refund"
}
