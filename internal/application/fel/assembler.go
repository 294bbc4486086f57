package fel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/dte"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/pkg/sat"
)

// Nombre y URI del complemento de referencia a documento de origen
// (notas de crédito/débito) según el esquema FEL.
const (
	complementoNotasNombre = "Notas"
	complementoNotasURI    = "http://www.sat.gob.gt/fel/notas.xsd"
)

// Assembler traduce las entidades contables (factura, empresa, receptor,
// tipo de DTE) al modelo fiscal puro. No hace I/O: recibe todo ya cargado.
type Assembler struct {
	// DefaultLoc zona horaria usada cuando la empresa no declara una.
	DefaultLoc *time.Location
	// Now inyectable en pruebas; nil equivale a time.Now.
	Now func() time.Time
}

// NewAssembler construye el ensamblador con la zona horaria por defecto del
// emisor (tz vacía usa America/Guatemala).
func NewAssembler(tz string) (*Assembler, error) {
	if tz == "" {
		tz = "America/Guatemala"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("zona horaria %q inválida: %w", tz, err)
	}
	return &Assembler{DefaultLoc: loc}, nil
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// emisionLoc zona horaria efectiva del emisor.
func (a *Assembler) emisionLoc(company *entity.Company) *time.Location {
	if company.Timezone != "" {
		if loc, err := time.LoadLocation(company.Timezone); err == nil {
			return loc
		}
	}
	return a.DefaultLoc
}

// ValidateRequiredFields comprueba de una vez todos los datos obligatorios
// de empresa y receptor, y devuelve un único ErrValidation que agrupa cada
// bloque incompleto (sección DTE de la empresa, datos fiscales de la empresa,
// datos del receptor) para que el usuario corrija todo en una pasada.
func ValidateRequiredFields(company *entity.Company, partner *entity.Partner) error {
	var problems []string

	if company.IVAAffiliation == "" || company.CodigoEstablecimiento == 0 {
		problems = append(problems,
			fmt.Sprintf("complete la sección DTE de la empresa %s (afiliación IVA y código de establecimiento)", company.Name))
	}

	var companyMissing []string
	for _, f := range []struct{ name, value string }{
		{"razón social", company.Registry},
		{"NIT", company.NIT},
		{"correo", company.Email},
		{"dirección", company.Street},
		{"código postal", company.Zip},
		{"municipio", company.City},
		{"departamento", company.State},
		{"país", company.CountryCode},
	} {
		if f.value == "" {
			companyMissing = append(companyMissing, f.name)
		}
	}
	if len(companyMissing) > 0 {
		problems = append(problems,
			fmt.Sprintf("complete los datos de la empresa %s: %s", company.Name, strings.Join(companyMissing, ", ")))
	}

	var partnerMissing []string
	for _, f := range []struct{ name, value string }{
		{"nombre", partner.Name},
		{"NIT", partner.NIT},
		{"correo", partner.Email},
		{"dirección", partner.Street},
		{"código postal", partner.Zip},
		{"municipio", partner.City},
		{"departamento", partner.State},
		{"país", partner.CountryCode},
	} {
		if f.value == "" {
			partnerMissing = append(partnerMissing, f.name)
		}
	}
	if len(partnerMissing) > 0 {
		problems = append(problems,
			fmt.Sprintf("complete los datos del receptor %s: %s", partner.Name, strings.Join(partnerMissing, ", ")))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n%s", domain.ErrValidation, strings.Join(problems, "\n"))
	}
	return nil
}

// BuildEmisor mapea la empresa al emisor del DTE.
func (a *Assembler) BuildEmisor(company *entity.Company) (dte.Emisor, error) {
	nit, err := normalizeNIT(company.NIT)
	if err != nil {
		return dte.Emisor{}, fmt.Errorf("NIT de la empresa %s: %w", company.Name, err)
	}
	return dte.Emisor{
		AfiliacionIVA:         company.IVAAffiliation,
		CodigoEstablecimiento: company.CodigoEstablecimiento,
		CorreoEmisor:          company.Email,
		NITEmisor:             nit,
		NombreComercial:       company.Name,
		NombreEmisor:          company.Registry,
		Direccion: dte.Direccion{
			Direccion:    company.Street,
			CodigoPostal: company.Zip,
			Municipio:    company.City,
			Departamento: company.State,
			Pais:         company.CountryCode,
		},
	}, nil
}

// BuildReceptor mapea la contraparte al receptor del DTE. El NIT se
// normaliza (sin guiones, mayúsculas) y se valida; "CF" pasa tal cual.
func (a *Assembler) BuildReceptor(partner *entity.Partner) (dte.Receptor, error) {
	nit, err := normalizeNIT(partner.NIT)
	if err != nil {
		return dte.Receptor{}, fmt.Errorf("NIT del receptor %s: %w", partner.Name, err)
	}
	return dte.Receptor{
		CorreoReceptor: partner.Email,
		IDReceptor:     nit,
		NombreReceptor: partner.Name,
		Direccion: dte.Direccion{
			Direccion:    partner.Street,
			CodigoPostal: partner.Zip,
			Municipio:    partner.City,
			Departamento: partner.State,
			Pais:         partner.CountryCode,
		},
	}, nil
}

func normalizeNIT(raw string) (string, error) {
	nit := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(raw, "-", ""), " ", ""))
	if err := sat.ValidateNIT(nit); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nit, nil
}

// BuildItems mapea las líneas de la factura a ítems del DTE en orden de
// emisión (Sequence), numerándolos 1..N. El total de cada línea se reparte
// entre sus K impuestos a razón de 100/K para el desglose posterior.
func (a *Assembler) BuildItems(lines []*entity.InvoiceLine) ([]dte.Item, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: la factura no tiene líneas", domain.ErrValidation)
	}
	ordered := make([]*entity.InvoiceLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })

	cien := decimal.NewFromInt(100)
	items := make([]dte.Item, 0, len(ordered))
	for i, line := range ordered {
		bienOServicio := "S"
		if line.ProductType == "consu" {
			bienOServicio = "B"
		}

		var impuestos []dte.ImpuestoRate
		if n := len(line.Taxes); n > 0 {
			rate := cien.Div(decimal.NewFromInt(int64(n)))
			for _, tax := range line.Taxes {
				impuestos = append(impuestos, dte.ImpuestoRate{
					NombreCorto:          tax.CodeName,
					CodigoUnidadGravable: tax.CodigoUnidadGravable,
					Rate:                 rate,
				})
			}
		}

		item, err := dte.NewItem(bienOServicio, i+1, line.Quantity,
			truncateUOM(line.UOMName), line.Description, line.PriceUnit,
			line.Discount, impuestos)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// truncateUOM máximo 3 caracteres en mayúsculas, como exige el esquema.
func truncateUOM(name string) string {
	upper := []rune(strings.ToUpper(name))
	if len(upper) > 3 {
		upper = upper[:3]
	}
	return string(upper)
}

// BuildComplementos arma los complementos del DTE. Hoy el único soportado es
// la referencia al documento de origen, obligatoria para devoluciones.
func (a *Assembler) BuildComplementos(inv *entity.Invoice, dteType *entity.DTEType) ([]dte.Complemento, error) {
	if !sat.RefundDTETypes[dteType.Code] {
		return nil, nil
	}
	if inv.OriginUUID == "" || inv.OriginDate == nil {
		return nil, fmt.Errorf("%w: la nota requiere el UUID y la fecha del documento de origen", domain.ErrValidation)
	}
	descripcion := inv.Ref
	if descripcion == "" {
		descripcion = "Nota"
	}
	return []dte.Complemento{{
		Nombre:      complementoNotasNombre,
		URI:         complementoNotasURI,
		Regimen:     inv.Regime,
		NoOrigen:    inv.OriginUUID,
		FechaOrigen: *inv.OriginDate,
		Descripcion: descripcion,
		Tipo:        dte.ComplementoTipoNota,
	}}, nil
}

// BuildDTE ensambla el documento completo y estampa la fecha de emisión en
// la zona del emisor con precisión de segundos. Devuelve esa fecha para que
// el orquestador la persista en la factura (auditoría del momento exacto).
func (a *Assembler) BuildDTE(inv *entity.Invoice, lines []*entity.InvoiceLine,
	company *entity.Company, partner *entity.Partner, dteType *entity.DTEType) (*dte.DTE, time.Time, error) {

	if err := ValidateRequiredFields(company, partner); err != nil {
		return nil, time.Time{}, err
	}

	emisor, err := a.BuildEmisor(company)
	if err != nil {
		return nil, time.Time{}, err
	}
	receptor, err := a.BuildReceptor(partner)
	if err != nil {
		return nil, time.Time{}, err
	}
	items, err := a.BuildItems(lines)
	if err != nil {
		return nil, time.Time{}, err
	}
	complementos, err := a.BuildComplementos(inv, dteType)
	if err != nil {
		return nil, time.Time{}, err
	}

	frases := make([]dte.Frase, 0, len(dteType.Frases))
	for _, f := range dteType.Frases {
		frases = append(frases, dte.Frase{CodigoEscenario: f.Codigo, TipoFrase: f.Tipo})
	}

	moneda := inv.Currency
	if moneda == "" {
		moneda = "GTQ"
	}

	emision := a.now().In(a.emisionLoc(company)).Truncate(time.Second)
	doc := &dte.DTE{
		ClaseDocumento:   dte.ClaseDocumento,
		CodigoMoneda:     moneda,
		FechaHoraEmision: emision,
		Tipo:             dteType.Code,
		Emisor:           emisor,
		Receptor:         receptor,
		Frases:           frases,
		Items:            items,
		Complementos:     complementos,
	}
	if err := doc.Validate(); err != nil {
		return nil, time.Time{}, err
	}
	return doc, emision, nil
}

// BuildAnulacion ensambla la solicitud de anulación de una factura ya
// certificada. Requiere el UUID de autorización y la fecha de emisión
// registrada; estampa la fecha de anulación igual que BuildDTE la de emisión.
func (a *Assembler) BuildAnulacion(inv *entity.Invoice, company *entity.Company,
	partner *entity.Partner) (*dte.AnulacionDTE, time.Time, error) {

	if err := ValidateRequiredFields(company, partner); err != nil {
		return nil, time.Time{}, err
	}
	if inv.InfileXMLUUID == "" {
		return nil, time.Time{}, fmt.Errorf("%w: la factura %s no tiene UUID de certificación", domain.ErrValidation, inv.Name)
	}
	if inv.EmisionDatetime == nil {
		return nil, time.Time{}, fmt.Errorf("%w: la factura %s no registra fecha de emisión del DTE", domain.ErrValidation, inv.Name)
	}
	if inv.AnnulmentReason == "" {
		return nil, time.Time{}, fmt.Errorf("%w: la anulación requiere un motivo", domain.ErrValidation)
	}

	emisor, err := a.BuildEmisor(company)
	if err != nil {
		return nil, time.Time{}, err
	}
	receptor, err := a.BuildReceptor(partner)
	if err != nil {
		return nil, time.Time{}, err
	}

	anulada := a.now().In(a.emisionLoc(company)).Truncate(time.Second)
	anulacion := &dte.AnulacionDTE{
		UUID:               inv.InfileXMLUUID,
		FechaHoraEmision:   *inv.EmisionDatetime,
		FechaHoraAnulacion: anulada,
		MotivoAnulacion:    inv.AnnulmentReason,
		Emisor:             emisor,
		Receptor:           receptor,
	}
	if err := anulacion.Validate(); err != nil {
		return nil, time.Time{}, err
	}
	return anulacion, anulada, nil
}
