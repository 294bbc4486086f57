package dte

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/pkg/sat"
)

// Precisión del precio unitario en el DTE.
const PrecioDigits = 10

// TasaIVA tasa vigente del IVA en Guatemala (12%), usada para desgravar el
// precio (los precios FEL incluyen el impuesto).
var TasaIVA = decimal.NewFromFloat(0.12)

// ImpuestoRate impuesto aplicado a un ítem: nombre corto SAT, unidad gravable
// y la porción del total de la línea que le corresponde (100/K con K impuestos).
type ImpuestoRate struct {
	NombreCorto          string
	CodigoUnidadGravable int
	Rate                 decimal.Decimal // Porcentaje de distribución sobre el total de la línea
}

// Item línea del DTE.
type Item struct {
	BienOServicio       string // "B" bien físico, "S" servicio
	NumeroLinea         int    // 1..N contiguo en orden de emisión
	Cantidad            decimal.Decimal
	UnidadMedida        string // Máx. 3 caracteres en mayúsculas
	Descripcion         string
	PrecioUnitario      decimal.Decimal // Redondeado a PrecioDigits decimales
	DescuentoPorcentual decimal.Decimal
	// Impuestos en orden declarado; el orden se conserva hasta el XML.
	Impuestos []ImpuestoRate
}

// NewItem construye un ítem validando cantidad y precio.
func NewItem(bienOServicio string, numeroLinea int, cantidad decimal.Decimal,
	unidadMedida, descripcion string, precioUnitario, descuento decimal.Decimal,
	impuestos []ImpuestoRate) (Item, error) {

	if !cantidad.IsPositive() {
		return Item{}, fmt.Errorf("%w: la cantidad debe ser mayor que cero (línea %d)",
			domain.ErrValidation, numeroLinea)
	}
	if precioUnitario.IsNegative() {
		return Item{}, fmt.Errorf("%w: el precio unitario no puede ser negativo (línea %d)",
			domain.ErrValidation, numeroLinea)
	}
	return Item{
		BienOServicio:       bienOServicio,
		NumeroLinea:         numeroLinea,
		Cantidad:            cantidad,
		UnidadMedida:        unidadMedida,
		Descripcion:         descripcion,
		PrecioUnitario:      precioUnitario.Round(PrecioDigits),
		DescuentoPorcentual: descuento,
		Impuestos:           impuestos,
	}, nil
}

// Precio cantidad × precio unitario, antes de descuento.
func (i Item) Precio() decimal.Decimal {
	return i.Cantidad.Mul(i.PrecioUnitario)
}

// Descuento monto descontado (porcentaje sobre el precio).
func (i Item) Descuento() decimal.Decimal {
	return i.Precio().Mul(i.DescuentoPorcentual).Div(decimal.NewFromInt(100))
}

// Total total de la línea con impuestos incluidos (precio − descuento).
func (i Item) Total() decimal.Decimal {
	return i.Precio().Sub(i.Descuento())
}

// MontoImpuesto desglose calculado de un impuesto de la línea.
type MontoImpuesto struct {
	NombreCorto          string
	CodigoUnidadGravable int
	MontoGravable        decimal.Decimal
	Monto                decimal.Decimal
}

// Montos desglosa cada impuesto del ítem. La porción del total asignada a
// cada impuesto es Total×Rate/100; sobre ella, la unidad gravable decide:
// gravado -> base = porción/(1+TasaIVA), impuesto = porción − base;
// exento  -> base = porción, impuesto = 0.
func (i Item) Montos() []MontoImpuesto {
	cien := decimal.NewFromInt(100)
	out := make([]MontoImpuesto, 0, len(i.Impuestos))
	for _, imp := range i.Impuestos {
		porcion := i.Total().Mul(imp.Rate).Div(cien)
		m := MontoImpuesto{
			NombreCorto:          imp.NombreCorto,
			CodigoUnidadGravable: imp.CodigoUnidadGravable,
		}
		if imp.CodigoUnidadGravable == sat.UnidadGravableIVAExento {
			m.MontoGravable = porcion.Round(2)
			m.Monto = decimal.Zero
		} else {
			base := porcion.Div(decimal.NewFromInt(1).Add(TasaIVA))
			m.MontoGravable = base.Round(2)
			m.Monto = porcion.Sub(base).Round(2)
		}
		out = append(out, m)
	}
	return out
}

// Equal compara dos ítems por valor (decimales por igualdad numérica).
func (i Item) Equal(other Item) bool {
	if i.BienOServicio != other.BienOServicio ||
		i.NumeroLinea != other.NumeroLinea ||
		!i.Cantidad.Equal(other.Cantidad) ||
		i.UnidadMedida != other.UnidadMedida ||
		i.Descripcion != other.Descripcion ||
		!i.PrecioUnitario.Equal(other.PrecioUnitario) ||
		!i.DescuentoPorcentual.Equal(other.DescuentoPorcentual) ||
		len(i.Impuestos) != len(other.Impuestos) {
		return false
	}
	for k := range i.Impuestos {
		a, b := i.Impuestos[k], other.Impuestos[k]
		if a.NombreCorto != b.NombreCorto ||
			a.CodigoUnidadGravable != b.CodigoUnidadGravable ||
			!a.Rate.Equal(b.Rate) {
			return false
		}
	}
	return true
}
