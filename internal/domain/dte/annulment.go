package dte

import (
	"fmt"
	"time"

	"github.com/tu-usuario/fel-gt/internal/domain"
)

// AnulacionDTE solicitud de anulación de un DTE ya certificado.
type AnulacionDTE struct {
	UUID               string    // UUID de autorización del documento original
	FechaHoraEmision   time.Time // Emisión original registrada en la factura
	FechaHoraAnulacion time.Time // Momento de la anulación (zona del emisor)
	MotivoAnulacion    string
	Emisor             Emisor
	Receptor           Receptor
}

// Validate comprueba los datos mínimos de la anulación.
func (a *AnulacionDTE) Validate() error {
	if a.UUID == "" {
		return fmt.Errorf("%w: la anulación requiere el UUID del documento certificado", domain.ErrValidation)
	}
	if a.FechaHoraEmision.IsZero() {
		return fmt.Errorf("%w: la anulación requiere la fecha de emisión original", domain.ErrValidation)
	}
	if a.MotivoAnulacion == "" {
		return fmt.Errorf("%w: la anulación requiere un motivo", domain.ErrValidation)
	}
	if err := a.Emisor.validate(); err != nil {
		return err
	}
	return a.Receptor.validate()
}
