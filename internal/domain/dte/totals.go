package dte

import "github.com/shopspring/decimal"

// TotalImpuesto total agregado de un impuesto en todo el documento.
type TotalImpuesto struct {
	NombreCorto        string
	TotalMontoImpuesto decimal.Decimal
}

// TotalesImpuestos agrega, por cada nombre corto de impuesto distinto, la
// suma de montos de impuesto de todas las líneas. El orden de salida es el
// de primera aparición en las líneas (sin reordenar).
func (d *DTE) TotalesImpuestos() []TotalImpuesto {
	index := make(map[string]int)
	var totales []TotalImpuesto
	for _, item := range d.Items {
		for _, m := range item.Montos() {
			if pos, ok := index[m.NombreCorto]; ok {
				totales[pos].TotalMontoImpuesto = totales[pos].TotalMontoImpuesto.Add(m.Monto)
				continue
			}
			index[m.NombreCorto] = len(totales)
			totales = append(totales, TotalImpuesto{
				NombreCorto:        m.NombreCorto,
				TotalMontoImpuesto: m.Monto,
			})
		}
	}
	return totales
}
