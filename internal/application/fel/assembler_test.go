package fel_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures: empresa, receptor, tipo FACT y una factura de una línea con IVA,
// espejo de la demo clásica (147.00 con IVA incluido).
// ──────────────────────────────────────────────────────────────────────────────

func testAssembler(t *testing.T) *fel.Assembler {
	t.Helper()
	a, err := fel.NewAssembler("America/Guatemala")
	require.NoError(t, err)
	a.Now = func() time.Time {
		return time.Date(2024, 5, 17, 10, 30, 45, 987654321, time.UTC)
	}
	return a
}

func testCompany() *entity.Company {
	return &entity.Company{
		ID:                    "comp-1",
		Name:                  "Comercial El Quetzal",
		Registry:              "Comercial El Quetzal, S.A.",
		NIT:                   "9847847-8",
		Email:                 "facturacion@quetzal.gt",
		IVAAffiliation:        "GEN",
		CodigoEstablecimiento: 1,
		Street:                "5a avenida 10-25 zona 1",
		Zip:                   "01001",
		City:                  "Guatemala",
		State:                 "Guatemala",
		CountryCode:           "GT",
		Timezone:              "America/Guatemala",
		InfileUserSign:        "alias",
		InfileSignKey:         "token",
		InfileUserAPI:         "usuario",
		InfileAPIKey:          "llave",
	}
}

func testPartner() *entity.Partner {
	return &entity.Partner{
		ID:          "part-1",
		CompanyID:   "comp-1",
		Name:        "Cliente Demo",
		NIT:         "7636520-4",
		Email:       "cliente@demo.gt",
		Street:      "12 calle 3-45 zona 10",
		Zip:         "01010",
		City:        "Guatemala",
		State:       "Guatemala",
		CountryCode: "GT",
	}
}

func testDTEType() *entity.DTEType {
	return &entity.DTEType{
		ID:              "type-fact",
		Name:            "Factura",
		Code:            "FACT",
		GeneralMoveType: "invoice",
		Frases:          []entity.Frase{{Tipo: 1, Codigo: 1}},
		Active:          true,
	}
}

func testInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:        "inv-1",
		CompanyID: "comp-1",
		PartnerID: "part-1",
		Name:      "FACT/2024/0001",
		MoveType:  "out_invoice",
		Currency:  "GTQ",
		DTETypeID: "type-fact",
		FELStatus: entity.FELStatusNotSent,
	}
}

func testLines() []*entity.InvoiceLine {
	return []*entity.InvoiceLine{{
		ID:          "line-1",
		InvoiceID:   "inv-1",
		ProductType: "consu",
		Quantity:    decimal.NewFromInt(1),
		UOMName:     "Unidades",
		Description: "Producto demo",
		PriceUnit:   decimal.RequireFromString("147.00"),
		Discount:    decimal.Zero,
		Taxes:       []entity.LineTax{{CodeName: "IVA", CodigoUnidadGravable: 1}},
		Sequence:    10,
	}}
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateRequiredFields
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateRequiredFields_Completo(t *testing.T) {
	assert.NoError(t, fel.ValidateRequiredFields(testCompany(), testPartner()))
}

func TestValidateRequiredFields_AgrupaFaltantes(t *testing.T) {
	company := testCompany()
	company.IVAAffiliation = ""
	company.Email = ""
	company.Street = ""
	partner := testPartner()
	partner.NIT = ""

	err := fel.ValidateRequiredFields(company, partner)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Un solo error con los tres bloques: así el usuario corrige todo de una vez.
	msg := err.Error()
	assert.Contains(t, msg, "sección DTE")
	assert.Contains(t, msg, "datos de la empresa")
	assert.Contains(t, msg, "correo, dirección")
	assert.Contains(t, msg, "datos del receptor")
}

// ──────────────────────────────────────────────────────────────────────────────
// BuildItems
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildItems_UnaLineaConIVA(t *testing.T) {
	a := testAssembler(t)

	items, err := a.BuildItems(testLines())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "B", item.BienOServicio, "producto consu es bien físico")
	assert.Equal(t, 1, item.NumeroLinea)
	assert.Equal(t, "UNI", item.UnidadMedida, "la unidad se trunca a 3 mayúsculas")
	require.Len(t, item.Impuestos, 1)
	assert.True(t, item.Impuestos[0].Rate.Equal(decimal.NewFromInt(100)))

	montos := item.Montos()
	require.Len(t, montos, 1)
	assert.True(t, montos[0].MontoGravable.Equal(decimal.RequireFromString("131.25")),
		"base gravable de 147.00 con IVA incluido")
	assert.True(t, montos[0].Monto.Equal(decimal.RequireFromString("15.75")))
}

func TestBuildItems_RepartoEntreVariosImpuestos(t *testing.T) {
	a := testAssembler(t)
	lines := testLines()
	lines[0].Taxes = []entity.LineTax{
		{CodeName: "PETROLEO", CodigoUnidadGravable: 1},
		{CodeName: "IVA", CodigoUnidadGravable: 1},
	}

	items, err := a.BuildItems(lines)
	require.NoError(t, err)
	require.Len(t, items[0].Impuestos, 2)

	// Reparto 100/K en el orden declarado, sin reordenar.
	assert.Equal(t, "PETROLEO", items[0].Impuestos[0].NombreCorto)
	assert.Equal(t, "IVA", items[0].Impuestos[1].NombreCorto)
	assert.True(t, items[0].Impuestos[0].Rate.Equal(decimal.NewFromInt(50)))
	assert.True(t, items[0].Impuestos[1].Rate.Equal(decimal.NewFromInt(50)))
}

func TestBuildItems_OrdenaPorSecuencia(t *testing.T) {
	a := testAssembler(t)
	segunda := testLines()[0]
	segunda.ID = "line-2"
	segunda.Description = "Segunda"
	segunda.Sequence = 20
	primera := testLines()[0]
	primera.Description = "Primera"
	primera.Sequence = 5

	items, err := a.BuildItems([]*entity.InvoiceLine{segunda, primera})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Primera", items[0].Descripcion)
	assert.Equal(t, 1, items[0].NumeroLinea)
	assert.Equal(t, "Segunda", items[1].Descripcion)
	assert.Equal(t, 2, items[1].NumeroLinea)
}

func TestBuildItems_ServicioSinImpuestos(t *testing.T) {
	a := testAssembler(t)
	lines := testLines()
	lines[0].ProductType = "service"
	lines[0].Taxes = nil

	items, err := a.BuildItems(lines)
	require.NoError(t, err)
	assert.Equal(t, "S", items[0].BienOServicio)
	assert.Empty(t, items[0].Impuestos)
}

func TestBuildItems_SinLineas(t *testing.T) {
	a := testAssembler(t)
	_, err := a.BuildItems(nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// BuildComplementos
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildComplementos_FacturaSinComplemento(t *testing.T) {
	a := testAssembler(t)
	comps, err := a.BuildComplementos(testInvoice(), testDTEType())
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestBuildComplementos_NotaRequiereOrigen(t *testing.T) {
	a := testAssembler(t)
	ncre := &entity.DTEType{ID: "type-ncre", Code: "NCRE", GeneralMoveType: "refund", Active: true}
	inv := testInvoice()
	inv.MoveType = "out_refund"

	_, err := a.BuildComplementos(inv, ncre)
	assert.ErrorIs(t, err, domain.ErrValidation, "sin UUID/fecha de origen la nota no se puede emitir")

	origen := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	inv.OriginUUID = "11111111-2222-3333-4444-555555555555"
	inv.OriginDate = &origen
	inv.Ref = "Devolución parcial"

	comps, err := a.BuildComplementos(inv, ncre)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "Notas", comps[0].Nombre)
	assert.Equal(t, "http://www.sat.gob.gt/fel/notas.xsd", comps[0].URI)
	assert.Equal(t, inv.OriginUUID, comps[0].NoOrigen)
	assert.Equal(t, "Devolución parcial", comps[0].Descripcion)
}

// ──────────────────────────────────────────────────────────────────────────────
// BuildDTE / BuildAnulacion
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildDTE_EstampaEmisionEnZonaDelEmisor(t *testing.T) {
	a := testAssembler(t)

	doc, emision, err := a.BuildDTE(testInvoice(), testLines(), testCompany(), testPartner(), testDTEType())
	require.NoError(t, err)

	// 10:30:45.987 UTC = 04:30:45 en Guatemala (UTC-6), truncado a segundos.
	assert.Equal(t, "America/Guatemala", emision.Location().String())
	assert.Equal(t, 4, emision.Hour())
	assert.Equal(t, 45, emision.Second())
	assert.Zero(t, emision.Nanosecond(), "la emisión se trunca a segundos")
	assert.True(t, doc.FechaHoraEmision.Equal(emision))

	assert.Equal(t, "dte", doc.ClaseDocumento)
	assert.Equal(t, "FACT", doc.Tipo)
	assert.Equal(t, "GTQ", doc.CodigoMoneda)
	assert.Equal(t, "98478478", doc.Emisor.NITEmisor, "NIT sin guion")
	assert.Equal(t, "76365204", doc.Receptor.IDReceptor)
	require.Len(t, doc.Frases, 1)
	assert.True(t, doc.GranTotal().Equal(decimal.RequireFromString("147.00")))
}

func TestBuildDTE_NITReceptorInvalido(t *testing.T) {
	a := testAssembler(t)
	partner := testPartner()
	partner.NIT = "7636520-9" // dígito verificador incorrecto

	_, _, err := a.BuildDTE(testInvoice(), testLines(), testCompany(), partner, testDTEType())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuildDTE_ConsumidorFinal(t *testing.T) {
	a := testAssembler(t)
	partner := testPartner()
	partner.NIT = "CF"

	doc, _, err := a.BuildDTE(testInvoice(), testLines(), testCompany(), partner, testDTEType())
	require.NoError(t, err)
	assert.Equal(t, "CF", doc.Receptor.IDReceptor)
}

func TestBuildAnulacion_RequiereCertificacionPrevia(t *testing.T) {
	a := testAssembler(t)
	inv := testInvoice()
	inv.AnnulmentReason = "Anulación por error de datos"

	_, _, err := a.BuildAnulacion(inv, testCompany(), testPartner())
	assert.ErrorIs(t, err, domain.ErrValidation, "sin UUID de certificación no hay qué anular")

	emision := time.Date(2024, 5, 17, 4, 30, 45, 0, time.UTC)
	inv.InfileXMLUUID = "AAAA1111-BBBB-2222-CCCC-333333333333"
	inv.EmisionDatetime = &emision

	anulacion, annulledAt, err := a.BuildAnulacion(inv, testCompany(), testPartner())
	require.NoError(t, err)
	assert.Equal(t, inv.InfileXMLUUID, anulacion.UUID)
	assert.True(t, anulacion.FechaHoraEmision.Equal(emision))
	assert.Zero(t, annulledAt.Nanosecond())
	assert.Equal(t, "Anulación por error de datos", anulacion.MotivoAnulacion)
}
