// Package dte contiene el modelo del Documento Tributario Electrónico (FEL
// Guatemala): valores puros con validación y cálculo de totales, sin I/O.
package dte

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/fel-gt/internal/domain"
)

// ClaseDocumento token fijo del esquema GTDocumento; no confundir con el
// código de tipo de negocio (FACT, NCRE, ...) que viaja en Tipo.
const ClaseDocumento = "dte"

// DTE documento tributario electrónico listo para canonicalizar.
// Las secuencias (Frases, Items, Complementos) conservan el orden de origen.
type DTE struct {
	ClaseDocumento   string
	CodigoMoneda     string
	FechaHoraEmision time.Time // Con zona del emisor, precisión de segundos
	Tipo             string    // Código del tipo de DTE (FACT, NCRE, ...)
	Emisor           Emisor
	Receptor         Receptor
	Frases           []Frase
	Items            []Item
	Complementos     []Complemento
}

// Emisor datos del emisor del DTE. Todos los campos son obligatorios antes
// del envío.
type Emisor struct {
	AfiliacionIVA         string
	CodigoEstablecimiento int
	CorreoEmisor          string
	NITEmisor             string
	NombreComercial       string
	NombreEmisor          string
	Direccion             Direccion
}

// Receptor contraparte del DTE. IDReceptor admite "CF" (consumidor final).
type Receptor struct {
	CorreoReceptor string
	IDReceptor     string
	NombreReceptor string
	Direccion      Direccion
}

// Direccion dirección postal según el esquema FEL.
type Direccion struct {
	Direccion    string
	CodigoPostal string
	Municipio    string
	Departamento string
	Pais         string // Código ISO (GT)
}

// Frase leyenda legal (par escenario/tipo del catálogo SAT), copiada de la
// configuración del tipo de DTE en orden.
type Frase struct {
	CodigoEscenario int
	TipoFrase       int
}

// Tipos de complemento soportados.
const (
	ComplementoTipoNota = "nota" // Referencia al documento de origen (notas de crédito/débito)
)

// Complemento bloque adicional del DTE para casos especiales.
type Complemento struct {
	Nombre      string
	URI         string
	Regimen     bool // Régimen antiguo: cambia los datos exigidos por el esquema de notas
	NoOrigen    string
	FechaOrigen time.Time
	Descripcion string
	Tipo        string // ver constantes ComplementoTipo*
}

// Validate comprueba los invariantes estructurales del DTE: al menos un ítem,
// numeración de líneas 1..N contigua y campos obligatorios de emisor/receptor.
func (d *DTE) Validate() error {
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: el DTE requiere al menos un ítem", domain.ErrValidation)
	}
	for i, item := range d.Items {
		if item.NumeroLinea != i+1 {
			return fmt.Errorf("%w: numeración de líneas no contigua: posición %d tiene línea %d",
				domain.ErrValidation, i+1, item.NumeroLinea)
		}
	}
	if err := d.Emisor.validate(); err != nil {
		return err
	}
	return d.Receptor.validate()
}

func (e Emisor) validate() error {
	if e.AfiliacionIVA == "" || e.CodigoEstablecimiento == 0 {
		return fmt.Errorf("%w: emisor sin afiliación IVA o código de establecimiento", domain.ErrValidation)
	}
	if e.CorreoEmisor == "" || e.NITEmisor == "" || e.NombreComercial == "" || e.NombreEmisor == "" {
		return fmt.Errorf("%w: emisor con datos de identificación incompletos", domain.ErrValidation)
	}
	return e.Direccion.validate("emisor")
}

func (r Receptor) validate() error {
	if r.CorreoReceptor == "" || r.IDReceptor == "" || r.NombreReceptor == "" {
		return fmt.Errorf("%w: receptor con datos de identificación incompletos", domain.ErrValidation)
	}
	return r.Direccion.validate("receptor")
}

func (d Direccion) validate(side string) error {
	if d.Direccion == "" || d.CodigoPostal == "" || d.Municipio == "" || d.Departamento == "" || d.Pais == "" {
		return fmt.Errorf("%w: dirección incompleta del %s", domain.ErrValidation, side)
	}
	return nil
}

// GranTotal suma del total de todas las líneas (impuestos incluidos).
func (d *DTE) GranTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Total())
	}
	return total
}

// Equal compara dos DTE estructuralmente: cada campo y cada colección
// anidada por valor, con igualdad decimal (no de representación).
func (d *DTE) Equal(other *DTE) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.ClaseDocumento != other.ClaseDocumento ||
		d.CodigoMoneda != other.CodigoMoneda ||
		!d.FechaHoraEmision.Equal(other.FechaHoraEmision) ||
		d.Tipo != other.Tipo ||
		d.Emisor != other.Emisor ||
		d.Receptor != other.Receptor {
		return false
	}
	if len(d.Frases) != len(other.Frases) || len(d.Items) != len(other.Items) ||
		len(d.Complementos) != len(other.Complementos) {
		return false
	}
	for i := range d.Frases {
		if d.Frases[i] != other.Frases[i] {
			return false
		}
	}
	for i := range d.Items {
		if !d.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	for i := range d.Complementos {
		if !d.Complementos[i].equal(other.Complementos[i]) {
			return false
		}
	}
	return true
}

func (c Complemento) equal(other Complemento) bool {
	return c.Nombre == other.Nombre &&
		c.URI == other.URI &&
		c.Regimen == other.Regimen &&
		c.NoOrigen == other.NoOrigen &&
		c.FechaOrigen.Equal(other.FechaOrigen) &&
		c.Descripcion == other.Descripcion &&
		c.Tipo == other.Tipo
}
