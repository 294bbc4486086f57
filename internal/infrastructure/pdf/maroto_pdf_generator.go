// Package pdf implementa la generación de la representación gráfica local de
// un DTE certificado bajo el régimen FEL (Acuerdo de Directorio SAT 13-2018).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  N° Documento + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                            │
//	│  RECEPTOR: Nombre + NIT + contacto                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Desc. | Total         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal sin IVA / IVA / TOTAL                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER FEL: Autorización + Serie/Número + QR + Leyenda     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appfel "github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/domain/dte"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/pkg/sat"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 84, Blue: 121}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// Ensure MarotoPDFGenerator implements fel.PDFGenerator.
var _ appfel.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa fel.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDTEPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDTEPDF(
	_ context.Context,
	invoice *entity.Invoice,
	company *entity.Company,
	partner *entity.Partner,
	lines []*entity.InvoiceLine,
	auth *appfel.Autorizacion,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Documento Tributario Electrónico", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	// Header principal
	m.AddRows(headerRow(invoice, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	m.AddRows(receptorRow(partner))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de líneas
	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(lines) {
		m.AddRows(r)
	}

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(lines))

	// Footer FEL
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range felFooterRows(invoice, auth) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + NIT (izq) y N° Documento + Fecha (der).
func headerRow(invoice *entity.Invoice, company *entity.Company) core.Row {
	fecha := "—"
	if invoice.EmisionDatetime != nil {
		fecha = invoice.EmisionDatetime.Format("02/01/2006 15:04")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company.Registry, company.Name), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+company.NIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("DOCUMENTO TRIBUTARIO ELECTRÓNICO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Name, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha de emisión: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos del emisor (empresa).
func emisorRow(company *entity.Company) core.Row {
	direccion := fmt.Sprintf("%s, %s, %s",
		nonEmpty(company.Street, "Ciudad"),
		nonEmpty(company.City, "Guatemala"),
		nonEmpty(company.State, "Guatemala"),
	)
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				direccion,
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// receptorRow: datos del receptor del DTE.
func receptorRow(partner *entity.Partner) core.Row {
	nombre := partner.Name
	if partner.NIT == sat.ConsumidorFinal {
		nombre = nonEmpty(partner.Name, "Consumidor Final")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nombre, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("NIT: %s   |   Email: %s   |   Tel: %s",
				partner.NIT,
				nonEmpty(partner.Email, "—"),
				nonEmpty(partner.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción del bien/servicio", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc.%", 1, align.Center),
		h("Total", 3, align.Right),
	)
}

// tableLineRows: una fila por línea de la factura. Los precios FEL incluyen
// IVA, así que el total de la línea es precio − descuento sin más ajustes.
func tableLineRows(lines []*entity.InvoiceLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"Q "+l.PriceUnit.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				l.Discount.StringFixed(0)+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				"Q "+lineTotal(l).StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(lines []*entity.InvoiceLine) core.Row {
	base, impuestos, gran := totales(lines)

	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3), // espacio izquierdo
		col.New(3).Add(
			label("Subtotal sin IVA:"),
			label("IVA (12%):"),
			grandLabel("GRAN TOTAL:"),
		),
		col.New(3).Add(
			value("Q "+base.StringFixed(2)),
			value("Q "+impuestos.StringFixed(2)),
			grandValue("Q "+gran.StringFixed(2)),
		),
		col.New(3), // espacio derecho
	)
}

// felFooterRows: número de autorización + serie/número + QR + leyenda legal.
func felFooterRows(invoice *entity.Invoice, auth *appfel.Autorizacion) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("AUTORIZACIÓN FEL - SAT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if auth != nil && auth.UUID != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Número de Autorización:", props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1,
			}),
		)))
		for _, chunk := range splitEvery(auth.UUID, 80) {
			rows = append(rows, row.New(4).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
			)))
		}
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Serie: %s   |   Número: %s   |   Certificador: %s (NIT %s)",
				nonEmpty(auth.Serie, "—"),
				nonEmpty(auth.Numero, "—"),
				nonEmpty(auth.NombreCertificador, "—"),
				nonEmpty(auth.NITCertificador, "—"),
			), props.Text{Size: 7, Top: 1, Color: colorGray}),
		)))
	}

	rows = append(rows, row.New(3))

	// QR + leyenda
	if link := invoice.InfilePDFLink(); link != "" {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(code.NewQr(link, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Escanea el código QR para consultar\neste documento ante el certificador.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("DOCUMENTO TRIBUTARIO\nELECTRÓNICO - FEL", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("DOCUMENTO TRIBUTARIO ELECTRÓNICO - FEL", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
		)))
	}

	// Leyenda legal
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Documento certificado bajo el régimen de Factura Electrónica en Línea "+
				"(Acuerdo de Directorio SAT 13-2018). "+
				"Conserve este documento como soporte fiscal.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// lineTotal total de la línea con IVA incluido: cantidad × precio − descuento.
func lineTotal(l *entity.InvoiceLine) decimal.Decimal {
	precio := l.Quantity.Mul(l.PriceUnit)
	descuento := precio.Mul(l.Discount).Div(decimal.NewFromInt(100))
	return precio.Sub(descuento)
}

// totales desglosa base gravada, impuestos y gran total. El total de cada
// línea se reparte en partes iguales entre sus impuestos; las porciones
// exentas no generan impuesto.
func totales(lines []*entity.InvoiceLine) (base, impuestos, gran decimal.Decimal) {
	cien := decimal.NewFromInt(100)
	uno := decimal.NewFromInt(1)
	for _, l := range lines {
		total := lineTotal(l)
		gran = gran.Add(total)
		if len(l.Taxes) == 0 {
			base = base.Add(total)
			continue
		}
		rate := cien.Div(decimal.NewFromInt(int64(len(l.Taxes))))
		for _, tax := range l.Taxes {
			porcion := total.Mul(rate).Div(cien)
			if tax.CodigoUnidadGravable == sat.UnidadGravableIVAExento {
				base = base.Add(porcion)
				continue
			}
			neta := porcion.Div(uno.Add(dte.TasaIVA))
			base = base.Add(neta)
			impuestos = impuestos.Add(porcion.Sub(neta))
		}
	}
	return base.Round(2), impuestos.Round(2), gran.Round(2)
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
