// Package sat contiene catálogos y validaciones alineados al régimen FEL
// (Factura Electrónica en Línea) de la SAT de Guatemala.
package sat

// =============================================================================
// Tipos de DTE (Documento Tributario Electrónico) reconocidos por el régimen FEL.
// El código viaja en el atributo Tipo de DatosGenerales.
// =============================================================================

const (
	DTETypeFACT = "FACT" // Factura
	DTETypeFCAM = "FCAM" // Factura cambiaria
	DTETypeFPEQ = "FPEQ" // Factura pequeño contribuyente
	DTETypeFCAP = "FCAP" // Factura cambiaria pequeño contribuyente
	DTETypeNCRE = "NCRE" // Nota de crédito
	DTETypeNDEB = "NDEB" // Nota de débito
	DTETypeRECI = "RECI" // Recibo
	DTETypeNABN = "NABN" // Nota de abono
)

// ValidDTETypeCodes códigos de tipo de DTE válidos.
var ValidDTETypeCodes = map[string]bool{
	DTETypeFACT: true, DTETypeFCAM: true, DTETypeFPEQ: true, DTETypeFCAP: true,
	DTETypeNCRE: true, DTETypeNDEB: true, DTETypeRECI: true, DTETypeNABN: true,
}

// Categoría general de movimiento a la que aplica cada tipo de DTE
// (determina qué tipos puede elegir una factura, un recibo o una devolución).
const (
	GeneralTypeInvoice = "invoice"
	GeneralTypeReceipt = "receipt"
	GeneralTypeRefund  = "refund"
)

// RefundDTETypes tipos de DTE que exigen complemento "Notas" con referencia
// al documento de origen (UUID y fecha de emisión originales).
var RefundDTETypes = map[string]bool{
	DTETypeNCRE: true,
	DTETypeNDEB: true,
	DTETypeNABN: true,
}

// =============================================================================
// Afiliación IVA del emisor (régimen ante la SAT).
// =============================================================================

const (
	AfiliacionGeneral = "GEN" // Régimen general
	AfiliacionPequeno = "PEQ" // Pequeño contribuyente
	AfiliacionExento  = "EXE" // Exento
)

// ValidIVAAffiliations códigos de afiliación IVA válidos.
var ValidIVAAffiliations = map[string]bool{
	AfiliacionGeneral: true, AfiliacionPequeno: true, AfiliacionExento: true,
}

// =============================================================================
// Impuestos FEL: nombre corto y código de unidad gravable.
// =============================================================================

const (
	TaxShortNameIVA      = "IVA"
	TaxShortNamePetroleo = "PETROLEO"
	TaxShortNameTurismo  = "TURISMO HOSPEDAJE"
	TaxShortNameTimbre   = "TIMBRE DE PRENSA"
	TaxShortNameBebidas  = "BEBIDAS ALCOHOLICAS"
	TaxShortNameTabaco   = "TABACO"
	TaxShortNameCemento  = "CEMENTO"

	// Unidades gravables del IVA (catálogo SAT): 1 = gravado, 2 = exento.
	UnidadGravableIVA       = 1
	UnidadGravableIVAExento = 2
)

// =============================================================================
// Frases legales (leyendas obligatorias según el tipo de frase y escenario).
// El par (TipoFrase, CodigoEscenario) identifica la leyenda en el catálogo SAT.
// =============================================================================

const (
	FraseTipoISR         = 1 // Frases de retención de ISR
	FraseTipoAgenteIVA   = 2 // Agente de retención del IVA
	FraseTipoNoGeneraIVA = 3 // No genera derecho a crédito fiscal
	FraseTipoExento      = 4 // Exenciones
)

// ValidFraseTypes tipos de frase reconocidos por el esquema FEL.
var ValidFraseTypes = map[int]bool{
	FraseTipoISR: true, FraseTipoAgenteIVA: true, FraseTipoNoGeneraIVA: true, FraseTipoExento: true,
}

// =============================================================================
// Receptor: consumidor final.
// =============================================================================

// ConsumidorFinal identificador comodín para receptores sin NIT registrado.
const ConsumidorFinal = "CF"
