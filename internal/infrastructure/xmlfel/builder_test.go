package xmlfel_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/fel-gt/internal/domain/dte"
	"github.com/tu-usuario/fel-gt/internal/infrastructure/xmlfel"
)

var zonaGT = time.FixedZone("-06", -6*60*60)

// buildDemoDTE factura FACT de una línea: 147.00 con IVA incluido
// (base 131.25, impuesto 15.75).
func buildDemoDTE(t *testing.T) *dte.DTE {
	t.Helper()
	item, err := dte.NewItem("B", 1, decimal.NewFromInt(1), "UNI", "Producto demo",
		decimal.RequireFromString("147.00"), decimal.Zero,
		[]dte.ImpuestoRate{{NombreCorto: "IVA", CodigoUnidadGravable: 1, Rate: decimal.NewFromInt(100)}})
	require.NoError(t, err)

	direccion := dte.Direccion{
		Direccion:    "5a avenida 10-25 zona 1",
		CodigoPostal: "01001",
		Municipio:    "Guatemala",
		Departamento: "Guatemala",
		Pais:         "GT",
	}
	return &dte.DTE{
		ClaseDocumento:   dte.ClaseDocumento,
		CodigoMoneda:     "GTQ",
		FechaHoraEmision: time.Date(2024, 5, 17, 4, 30, 45, 0, zonaGT),
		Tipo:             "FACT",
		Emisor: dte.Emisor{
			AfiliacionIVA:         "GEN",
			CodigoEstablecimiento: 1,
			CorreoEmisor:          "facturacion@quetzal.gt",
			NITEmisor:             "98478478",
			NombreComercial:       "Comercial El Quetzal",
			NombreEmisor:          "Comercial El Quetzal, S.A.",
			Direccion:             direccion,
		},
		Receptor: dte.Receptor{
			CorreoReceptor: "cliente@demo.gt",
			IDReceptor:     "76365204",
			NombreReceptor: "Cliente Demo",
			Direccion:      direccion,
		},
		Frases: []dte.Frase{{CodigoEscenario: 1, TipoFrase: 1}},
		Items:  []dte.Item{item},
	}
}

func parse(t *testing.T, xmlBytes []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	return doc
}

func TestBuild_Determinista(t *testing.T) {
	b := xmlfel.NewBuilder()
	d := buildDemoDTE(t)

	primero, err := b.Build(d)
	require.NoError(t, err)
	segundo, err := b.Build(d)
	require.NoError(t, err)

	assert.Equal(t, primero, segundo, "el mismo DTE produce exactamente los mismos bytes")
}

func TestBuild_EstructuraGTDocumento(t *testing.T) {
	b := xmlfel.NewBuilder()
	xmlBytes, err := b.Build(buildDemoDTE(t))
	require.NoError(t, err)

	doc := parse(t, xmlBytes)
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "GTDocumento", root.Tag)
	assert.Equal(t, "0.1", root.SelectAttrValue("Version", ""))

	sat := doc.FindElement("//SAT")
	require.NotNil(t, sat)
	assert.Equal(t, "dte", sat.SelectAttrValue("ClaseDocumento", ""),
		"la clase de documento es el token fijo del esquema, no el tipo de negocio")

	generales := doc.FindElement("//DatosGenerales")
	require.NotNil(t, generales)
	assert.Equal(t, "GTQ", generales.SelectAttrValue("CodigoMoneda", ""))
	assert.Equal(t, "FACT", generales.SelectAttrValue("Tipo", ""))
	assert.Equal(t, "2024-05-17T04:30:45-06:00", generales.SelectAttrValue("FechaHoraEmision", ""))

	emisor := doc.FindElement("//Emisor")
	require.NotNil(t, emisor)
	assert.Equal(t, "98478478", emisor.SelectAttrValue("NITEmisor", ""))
	require.NotNil(t, doc.FindElement("//DireccionEmisor/Municipio"))

	assert.Equal(t, "147.0000000000", doc.FindElement("//Item/PrecioUnitario").Text())
	assert.Equal(t, "131.25", doc.FindElement("//Impuesto/MontoGravable").Text())
	assert.Equal(t, "15.75", doc.FindElement("//Impuesto/MontoImpuesto").Text())
	assert.Equal(t, "147.00", doc.FindElement("//Totales/GranTotal").Text())

	totalIVA := doc.FindElement("//TotalImpuestos/TotalImpuesto")
	require.NotNil(t, totalIVA)
	assert.Equal(t, "IVA", totalIVA.SelectAttrValue("NombreCorto", ""))
	assert.Equal(t, "15.75", totalIVA.SelectAttrValue("TotalMontoImpuesto", ""))
}

func TestBuild_ConservaOrdenDeLineas(t *testing.T) {
	b := xmlfel.NewBuilder()
	d := buildDemoDTE(t)
	segundo, err := dte.NewItem("S", 2, decimal.NewFromInt(2), "HOR", "Servicio",
		decimal.RequireFromString("50.00"), decimal.Zero, nil)
	require.NoError(t, err)
	d.Items = append(d.Items, segundo)

	xmlBytes, err := b.Build(d)
	require.NoError(t, err)

	items := parse(t, xmlBytes).FindElements("//Items/Item")
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].SelectAttrValue("NumeroLinea", ""))
	assert.Equal(t, "Producto demo", items[0].FindElement("Descripcion").Text())
	assert.Equal(t, "2", items[1].SelectAttrValue("NumeroLinea", ""))
	assert.Equal(t, "Servicio", items[1].FindElement("Descripcion").Text())
}

func TestBuild_ComplementoNota(t *testing.T) {
	b := xmlfel.NewBuilder()
	d := buildDemoDTE(t)
	d.Tipo = "NCRE"
	d.Complementos = []dte.Complemento{{
		Nombre:      "Notas",
		URI:         "http://www.sat.gob.gt/fel/notas.xsd",
		NoOrigen:    "ABCD1234-00FF-4000-8000-000000000000",
		FechaOrigen: time.Date(2024, 4, 1, 0, 0, 0, 0, zonaGT),
		Descripcion: "Devolución parcial",
		Tipo:        dte.ComplementoTipoNota,
	}}

	xmlBytes, err := b.Build(d)
	require.NoError(t, err)

	comp := parse(t, xmlBytes).FindElement("//Complemento")
	require.NotNil(t, comp)
	assert.Equal(t, "Notas", comp.SelectAttrValue("NombreComplemento", ""))
	assert.Equal(t, "http://www.sat.gob.gt/fel/notas.xsd", comp.SelectAttrValue("URIComplemento", ""))

	ref := comp.FindElement("ReferenciasNota")
	require.NotNil(t, ref)
	assert.Equal(t, "2024-04-01", ref.SelectAttrValue("FechaEmisionDocumentoOrigen", ""))
	assert.Equal(t, "Devolución parcial", ref.SelectAttrValue("MotivoAjuste", ""))
	assert.Equal(t, "ABCD1234-00FF-4000-8000-000000000000", ref.SelectAttrValue("NumeroAutorizacionDocumentoOrigen", ""))
	// Serie y número derivados del UUID de autorización del origen.
	assert.Equal(t, "ABCD1234", ref.SelectAttrValue("SerieDocumentoOrigen", ""))
	assert.Equal(t, "255", ref.SelectAttrValue("NumeroDocumentoOrigen", ""))
}

func TestBuild_ComplementoRegimenAntiguo(t *testing.T) {
	b := xmlfel.NewBuilder()
	d := buildDemoDTE(t)
	d.Tipo = "NCRE"
	d.Complementos = []dte.Complemento{{
		Nombre:      "Notas",
		URI:         "http://www.sat.gob.gt/fel/notas.xsd",
		Regimen:     true,
		NoOrigen:    "A-123456",
		FechaOrigen: time.Date(2024, 4, 1, 0, 0, 0, 0, zonaGT),
		Descripcion: "Nota",
		Tipo:        dte.ComplementoTipoNota,
	}}

	xmlBytes, err := b.Build(d)
	require.NoError(t, err)

	ref := parse(t, xmlBytes).FindElement("//Complemento/ReferenciasNota")
	require.NotNil(t, ref)
	// En régimen antiguo la referencia no deriva serie/número del UUID.
	assert.Empty(t, ref.SelectAttrValue("SerieDocumentoOrigen", ""))
	assert.Empty(t, ref.SelectAttrValue("NumeroDocumentoOrigen", ""))
}

func TestBuild_DTEInvalidoNoSeSerializa(t *testing.T) {
	b := xmlfel.NewBuilder()
	d := buildDemoDTE(t)
	d.Items = nil

	_, err := b.Build(d)
	assert.Error(t, err)
}

func TestBuildAnulacion_Estructura(t *testing.T) {
	b := xmlfel.NewBuilder()
	demo := buildDemoDTE(t)
	anulacion := &dte.AnulacionDTE{
		UUID:               "AAAA1111-BBBB-2222-CCCC-333333333333",
		FechaHoraEmision:   time.Date(2024, 5, 17, 4, 30, 45, 0, zonaGT),
		FechaHoraAnulacion: time.Date(2024, 5, 20, 9, 0, 0, 0, zonaGT),
		MotivoAnulacion:    "Error en los datos del cliente",
		Emisor:             demo.Emisor,
		Receptor:           demo.Receptor,
	}

	xmlBytes, err := b.BuildAnulacion(anulacion)
	require.NoError(t, err)

	doc := parse(t, xmlBytes)
	assert.Equal(t, "GTAnulacionDocumento", doc.Root().Tag)

	generales := doc.FindElement("//AnulacionDTE/DatosGenerales")
	require.NotNil(t, generales)
	assert.Equal(t, "AAAA1111-BBBB-2222-CCCC-333333333333", generales.SelectAttrValue("NumeroDocumentoAAnular", ""))
	assert.Equal(t, "98478478", generales.SelectAttrValue("NITEmisor", ""))
	assert.Equal(t, "76365204", generales.SelectAttrValue("IDReceptor", ""))
	assert.Equal(t, "2024-05-17T04:30:45-06:00", generales.SelectAttrValue("FechaEmisionDocumentoAnular", ""))
	assert.Equal(t, "2024-05-20T09:00:00-06:00", generales.SelectAttrValue("FechaHoraAnulacion", ""))
	assert.Equal(t, "Error en los datos del cliente", generales.SelectAttrValue("MotivoAnulacion", ""))
}

func TestBuildAnulacion_Determinista(t *testing.T) {
	b := xmlfel.NewBuilder()
	demo := buildDemoDTE(t)
	anulacion := &dte.AnulacionDTE{
		UUID:               "AAAA1111-BBBB-2222-CCCC-333333333333",
		FechaHoraEmision:   time.Date(2024, 5, 17, 4, 30, 45, 0, zonaGT),
		FechaHoraAnulacion: time.Date(2024, 5, 20, 9, 0, 0, 0, zonaGT),
		MotivoAnulacion:    "Motivo",
		Emisor:             demo.Emisor,
		Receptor:           demo.Receptor,
	}

	primero, err := b.BuildAnulacion(anulacion)
	require.NoError(t, err)
	segundo, err := b.BuildAnulacion(anulacion)
	require.NoError(t, err)
	assert.Equal(t, primero, segundo)
}
