package fel

import (
	"context"

	"github.com/tu-usuario/fel-gt/internal/domain/dte"
)

// Session credenciales del certificador listas para usar: alias y token de
// firma más usuario y llave del API. El cliente las trata como una bolsa de
// cabeceras opaca; nunca las almacena.
type Session struct {
	UsuarioFirma string // Alias Firma
	LlaveFirma   string // Token Firma
	UsuarioAPI   string // Usuario
	LlaveAPI     string // Llave
}

// SubmitError error de negocio devuelto por el certificador.
type SubmitError struct {
	Codigo  string
	Mensaje string
}

// SubmitResult resultado de un envío al certificador.
// Certified=false con Errors es un rechazo de negocio, no un error de
// transporte: esos se devuelven como error (ErrGateway).
type SubmitResult struct {
	Certified      bool
	XMLCertificado []byte // XML certificado (documento o anulación)
	UUID           string // UUID de autorización asignado
	Errors         []SubmitError
}

// Certifier puerto de salida hacia el certificador. identifier es el
// identificador de correlación del intento: fresco por cada envío de
// documento, y el UUID original cuando se envía una anulación.
// Implementaciones: cliente INFILE real y NopCertifier (estrategia por
// configuración, no por herencia).
type Certifier interface {
	Certify(ctx context.Context, session Session, identifier string, xml []byte) (*SubmitResult, error)
}

// Canonicalizer serializa el modelo fiscal al XML exacto del esquema FEL.
// Determinista: el mismo documento produce los mismos bytes.
type Canonicalizer interface {
	Build(d *dte.DTE) ([]byte, error)
	BuildAnulacion(a *dte.AnulacionDTE) ([]byte, error)
}
