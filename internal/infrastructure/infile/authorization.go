package infile

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/domain"
)

// Formatos de fecha que INFILE usa en el bloque de certificación. El segundo
// aparece en ambientes donde el certificador omite la zona horaria.
var fechaCertFormatos = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05",
}

// Ensure AuthorizationParser implements fel.AuthorizationParser.
var _ fel.AuthorizationParser = (*AuthorizationParser)(nil)

// AuthorizationParser lee el bloque Certificacion de un GTDocumento
// certificado.
type AuthorizationParser struct{}

// NewAuthorizationParser construye el parser de autorizaciones.
func NewAuthorizationParser() *AuthorizationParser {
	return &AuthorizationParser{}
}

// ParseAuthorization extrae UUID, serie, número y certificador del XML
// certificado. Falla si el documento no trae bloque de certificación.
func (p *AuthorizationParser) ParseAuthorization(xml []byte) (*fel.Autorizacion, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil, fmt.Errorf("%w: XML certificado ilegible: %v", domain.ErrValidation, err)
	}

	cert := doc.FindElement("//Certificacion")
	if cert == nil {
		return nil, fmt.Errorf("%w: el XML no contiene bloque de certificación", domain.ErrValidation)
	}
	numAut := cert.FindElement("NumeroAutorizacion")
	if numAut == nil {
		return nil, fmt.Errorf("%w: el bloque de certificación no trae número de autorización", domain.ErrValidation)
	}

	auth := &fel.Autorizacion{
		UUID:   numAut.Text(),
		Serie:  numAut.SelectAttrValue("Serie", ""),
		Numero: numAut.SelectAttrValue("Numero", ""),
	}
	if e := cert.FindElement("NitCertificador"); e != nil {
		auth.NITCertificador = e.Text()
	}
	if e := cert.FindElement("NombreCertificador"); e != nil {
		auth.NombreCertificador = e.Text()
	}
	if e := cert.FindElement("FechaHoraCertificacion"); e != nil {
		for _, layout := range fechaCertFormatos {
			if t, err := time.Parse(layout, e.Text()); err == nil {
				auth.FechaCertificacion = t
				break
			}
		}
	}
	if auth.UUID == "" {
		return nil, fmt.Errorf("%w: número de autorización vacío", domain.ErrValidation)
	}
	return auth, nil
}
