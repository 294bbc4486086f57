// Package xmlfel serializa el modelo fiscal al XML del régimen FEL guatemalteco
// (esquema GTDocumento 0.2.0 y GTAnulacionDocumento 0.1.0). La salida es
// canónica: el mismo documento produce exactamente los mismos bytes.
package xmlfel

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/ucarion/c14n"

	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/domain/dte"
)

// Ensure Builder implements fel.Canonicalizer.
var _ fel.Canonicalizer = (*Builder)(nil)

// Namespaces oficiales SAT FEL.
const (
	NsDTE       = "http://www.sat.gob.gt/dte/fel/0.2.0"
	NsAnulacion = "http://www.sat.gob.gt/dte/anulacion/0.1.0"
	NsCno       = "http://www.sat.gob.gt/face2/ComplementoReferenciaNota/0.1.0"

	schemaVersion = "0.1"
	fechaFormato  = "2006-01-02T15:04:05-07:00"
	fechaCorta    = "2006-01-02"
)

// Builder construye los documentos XML FEL. Sin estado.
type Builder struct{}

// NewBuilder crea el constructor de XML.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build genera el GTDocumento del DTE. El orden de frases, ítems, impuestos y
// complementos es el del modelo, sin reordenar; la única marca temporal es
// FechaHoraEmision, que viene ya estampada en el documento.
func (b *Builder) Build(d *dte.DTE) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	// Prefijo dte: explícito en los nombres locales; encoding/xml con Space
	// duplicaría la declaración de namespace en cada elemento.
	root := start("dte:GTDocumento",
		attr("xmlns:dte", NsDTE),
		attr("Version", schemaVersion),
	)
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	_ = enc.EncodeToken(start("dte:SAT", attr("ClaseDocumento", d.ClaseDocumento)))
	_ = enc.EncodeToken(start("dte:DTE", attr("ID", "DatosCertificados")))
	_ = enc.EncodeToken(start("dte:DatosEmision", attr("ID", "DatosEmision")))

	writeEmpty(enc, "dte:DatosGenerales",
		attr("CodigoMoneda", d.CodigoMoneda),
		attr("FechaHoraEmision", d.FechaHoraEmision.Format(fechaFormato)),
		attr("Tipo", d.Tipo),
	)
	b.writeEmisor(enc, d.Emisor)
	b.writeReceptor(enc, d.Receptor)
	b.writeFrases(enc, d.Frases)
	b.writeItems(enc, d.Items)
	b.writeTotales(enc, d)
	if err := b.writeComplementos(enc, d.Complementos); err != nil {
		return nil, err
	}

	_ = enc.EncodeToken(end("dte:DatosEmision"))
	_ = enc.EncodeToken(end("dte:DTE"))
	_ = enc.EncodeToken(end("dte:SAT"))
	if err := enc.EncodeToken(end("dte:GTDocumento")); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return canonicalize(buf.Bytes())
}

// BuildAnulacion genera el GTAnulacionDocumento de la solicitud de anulación.
func (b *Builder) BuildAnulacion(a *dte.AnulacionDTE) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	if err := enc.EncodeToken(start("dte:GTAnulacionDocumento",
		attr("xmlns:dte", NsAnulacion),
		attr("Version", schemaVersion),
	)); err != nil {
		return nil, err
	}
	_ = enc.EncodeToken(start("dte:SAT"))
	_ = enc.EncodeToken(start("dte:AnulacionDTE", attr("ID", "DatosCertificados")))
	writeEmpty(enc, "dte:DatosGenerales",
		attr("ID", "DatosAnulacion"),
		attr("NumeroDocumentoAAnular", a.UUID),
		attr("NITEmisor", a.Emisor.NITEmisor),
		attr("IDReceptor", a.Receptor.IDReceptor),
		attr("FechaEmisionDocumentoAnular", a.FechaHoraEmision.Format(fechaFormato)),
		attr("FechaHoraAnulacion", a.FechaHoraAnulacion.Format(fechaFormato)),
		attr("MotivoAnulacion", a.MotivoAnulacion),
	)
	_ = enc.EncodeToken(end("dte:AnulacionDTE"))
	_ = enc.EncodeToken(end("dte:SAT"))
	if err := enc.EncodeToken(end("dte:GTAnulacionDocumento")); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return canonicalize(buf.Bytes())
}

func (b *Builder) writeEmisor(enc *xml.Encoder, e dte.Emisor) {
	_ = enc.EncodeToken(start("dte:Emisor",
		attr("AfiliacionIVA", e.AfiliacionIVA),
		attr("CodigoEstablecimiento", strconv.Itoa(e.CodigoEstablecimiento)),
		attr("CorreoEmisor", e.CorreoEmisor),
		attr("NITEmisor", e.NITEmisor),
		attr("NombreComercial", e.NombreComercial),
		attr("NombreEmisor", e.NombreEmisor),
	))
	b.writeDireccion(enc, "dte:DireccionEmisor", e.Direccion)
	_ = enc.EncodeToken(end("dte:Emisor"))
}

func (b *Builder) writeReceptor(enc *xml.Encoder, r dte.Receptor) {
	_ = enc.EncodeToken(start("dte:Receptor",
		attr("CorreoReceptor", r.CorreoReceptor),
		attr("IDReceptor", r.IDReceptor),
		attr("NombreReceptor", r.NombreReceptor),
	))
	b.writeDireccion(enc, "dte:DireccionReceptor", r.Direccion)
	_ = enc.EncodeToken(end("dte:Receptor"))
}

func (b *Builder) writeDireccion(enc *xml.Encoder, wrapper string, d dte.Direccion) {
	_ = enc.EncodeToken(start(wrapper))
	writeText(enc, "dte:Direccion", d.Direccion)
	writeText(enc, "dte:CodigoPostal", d.CodigoPostal)
	writeText(enc, "dte:Municipio", d.Municipio)
	writeText(enc, "dte:Departamento", d.Departamento)
	writeText(enc, "dte:Pais", d.Pais)
	_ = enc.EncodeToken(end(wrapper))
}

func (b *Builder) writeFrases(enc *xml.Encoder, frases []dte.Frase) {
	if len(frases) == 0 {
		return
	}
	_ = enc.EncodeToken(start("dte:Frases"))
	for _, f := range frases {
		writeEmpty(enc, "dte:Frase",
			attr("CodigoEscenario", strconv.Itoa(f.CodigoEscenario)),
			attr("TipoFrase", strconv.Itoa(f.TipoFrase)),
		)
	}
	_ = enc.EncodeToken(end("dte:Frases"))
}

func (b *Builder) writeItems(enc *xml.Encoder, items []dte.Item) {
	_ = enc.EncodeToken(start("dte:Items"))
	for _, item := range items {
		_ = enc.EncodeToken(start("dte:Item",
			attr("BienOServicio", item.BienOServicio),
			attr("NumeroLinea", strconv.Itoa(item.NumeroLinea)),
		))
		writeText(enc, "dte:Cantidad", item.Cantidad.String())
		writeText(enc, "dte:UnidadMedida", item.UnidadMedida)
		writeText(enc, "dte:Descripcion", item.Descripcion)
		writeText(enc, "dte:PrecioUnitario", item.PrecioUnitario.StringFixed(dte.PrecioDigits))
		writeText(enc, "dte:Precio", item.Precio().StringFixed(dte.PrecioDigits))
		writeText(enc, "dte:Descuento", item.Descuento().StringFixed(2))
		if montos := item.Montos(); len(montos) > 0 {
			_ = enc.EncodeToken(start("dte:Impuestos"))
			for _, m := range montos {
				_ = enc.EncodeToken(start("dte:Impuesto"))
				writeText(enc, "dte:NombreCorto", m.NombreCorto)
				writeText(enc, "dte:CodigoUnidadGravable", strconv.Itoa(m.CodigoUnidadGravable))
				writeText(enc, "dte:MontoGravable", m.MontoGravable.StringFixed(2))
				writeText(enc, "dte:MontoImpuesto", m.Monto.StringFixed(2))
				_ = enc.EncodeToken(end("dte:Impuesto"))
			}
			_ = enc.EncodeToken(end("dte:Impuestos"))
		}
		writeText(enc, "dte:Total", item.Total().StringFixed(2))
		_ = enc.EncodeToken(end("dte:Item"))
	}
	_ = enc.EncodeToken(end("dte:Items"))
}

func (b *Builder) writeTotales(enc *xml.Encoder, d *dte.DTE) {
	_ = enc.EncodeToken(start("dte:Totales"))
	if totales := d.TotalesImpuestos(); len(totales) > 0 {
		_ = enc.EncodeToken(start("dte:TotalImpuestos"))
		for _, t := range totales {
			writeEmpty(enc, "dte:TotalImpuesto",
				attr("NombreCorto", t.NombreCorto),
				attr("TotalMontoImpuesto", t.TotalMontoImpuesto.StringFixed(2)),
			)
		}
		_ = enc.EncodeToken(end("dte:TotalImpuestos"))
	}
	writeText(enc, "dte:GranTotal", d.GranTotal().StringFixed(2))
	_ = enc.EncodeToken(end("dte:Totales"))
}

func (b *Builder) writeComplementos(enc *xml.Encoder, comps []dte.Complemento) error {
	if len(comps) == 0 {
		return nil
	}
	_ = enc.EncodeToken(start("dte:Complementos"))
	for _, c := range comps {
		if c.Tipo != dte.ComplementoTipoNota {
			return fmt.Errorf("complemento %q no soportado", c.Tipo)
		}
		_ = enc.EncodeToken(start("dte:Complemento",
			attr("IDComplemento", "ReferenciasNota"),
			attr("NombreComplemento", c.Nombre),
			attr("URIComplemento", c.URI),
		))
		attrs := []xml.Attr{
			attr("xmlns:cno", NsCno),
			attr("FechaEmisionDocumentoOrigen", c.FechaOrigen.Format(fechaCorta)),
			attr("MotivoAjuste", c.Descripcion),
			attr("NumeroAutorizacionDocumentoOrigen", c.NoOrigen),
		}
		if !c.Regimen {
			// En el régimen FEL la serie y el número del documento de origen
			// se derivan de su UUID de autorización: serie = primer segmento,
			// número = segundo segmento leído en hexadecimal.
			serie, numero, err := serieNumeroFromUUID(c.NoOrigen)
			if err != nil {
				return err
			}
			attrs = append(attrs,
				attr("NumeroDocumentoOrigen", numero),
				attr("SerieDocumentoOrigen", serie),
			)
		}
		attrs = append(attrs, attr("Version", schemaVersion))
		writeEmpty(enc, "cno:ReferenciasNota", attrs...)
		_ = enc.EncodeToken(end("dte:Complemento"))
	}
	_ = enc.EncodeToken(end("dte:Complementos"))
	return nil
}

// serieNumeroFromUUID deriva serie y número del documento de origen a partir
// de su UUID de autorización (AAAAAAAA-BBBB-...): serie el primer segmento y
// número el segundo interpretado como hexadecimal.
func serieNumeroFromUUID(uuid string) (serie, numero string, err error) {
	parts := strings.Split(uuid, "-")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("UUID de origen %q sin formato de autorización", uuid)
	}
	n, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return "", "", fmt.Errorf("UUID de origen %q: segmento de número inválido: %w", uuid, err)
	}
	return parts[0], strconv.FormatUint(n, 10), nil
}

// canonicalize pasa el XML por c14n para fijar la forma exacta de los bytes
// (orden de atributos, espacios, declaraciones de namespace).
func canonicalize(raw []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("canonicalización: %w", err)
	}
	return out, nil
}

// Helpers de tokens, al estilo de un encoder manual: nombres locales con
// prefijo y atributos en el orden dado.

func start(name string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
}

func end(name string) xml.EndElement {
	return xml.EndElement{Name: xml.Name{Local: name}}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func writeText(enc *xml.Encoder, name, value string) {
	_ = enc.EncodeToken(start(name))
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(end(name))
}

func writeEmpty(enc *xml.Encoder, name string, attrs ...xml.Attr) {
	_ = enc.EncodeToken(start(name, attrs...))
	_ = enc.EncodeToken(end(name))
}
