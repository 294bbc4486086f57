package infile

import (
	"context"

	"github.com/google/uuid"

	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/pkg/logger"
)

// NopCertifier certificador de desarrollo: no habla con INFILE, devuelve el
// mismo XML como "certificado" con un UUID generado localmente. Permite
// ejercitar el flujo completo (artefactos, estados, PDF) sin credenciales.
// Se selecciona con INFILE_ENV=dev.
type NopCertifier struct {
	log *logger.Logger
}

// NewNopCertifier crea el certificador de desarrollo.
func NewNopCertifier(log *logger.Logger) *NopCertifier {
	return &NopCertifier{log: log}
}

// Certify simula una certificación exitosa inmediata.
func (n *NopCertifier) Certify(_ context.Context, _ fel.Session, identifier string, xml []byte) (*fel.SubmitResult, error) {
	assigned := uuid.NewString()
	n.log.Info().Str("identificador", identifier).Str("uuid", assigned).
		Msg("modo dev: certificación simulada, no se contactó a INFILE")
	return &fel.SubmitResult{
		Certified:      true,
		UUID:           assigned,
		XMLCertificado: xml,
	}, nil
}
