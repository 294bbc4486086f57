package infile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/fel-gt/internal/domain"
)

const xmlCertificado = `<dte:GTDocumento xmlns:dte="http://www.sat.gob.gt/dte/fel/0.2.0" Version="0.1">
  <dte:SAT ClaseDocumento="dte">
    <dte:DTE ID="DatosCertificados">
      <dte:DatosEmision ID="DatosEmision"></dte:DatosEmision>
      <dte:Certificacion>
        <dte:NitCertificador>12521337</dte:NitCertificador>
        <dte:NombreCertificador>INFILE, S.A.</dte:NombreCertificador>
        <dte:NumeroAutorizacion Numero="255" Serie="ABCD1234">ABCD1234-00FF-4000-8000-000000000000</dte:NumeroAutorizacion>
        <dte:FechaHoraCertificacion>2024-05-17T04:30:47-06:00</dte:FechaHoraCertificacion>
      </dte:Certificacion>
    </dte:DTE>
  </dte:SAT>
</dte:GTDocumento>`

// ── Autorización ──────────────────────────────────────────────────────────

func TestParseAuthorization_Certificado(t *testing.T) {
	auth, err := NewAuthorizationParser().ParseAuthorization([]byte(xmlCertificado))
	require.NoError(t, err)

	assert.Equal(t, "ABCD1234-00FF-4000-8000-000000000000", auth.UUID)
	assert.Equal(t, "ABCD1234", auth.Serie)
	assert.Equal(t, "255", auth.Numero)
	assert.Equal(t, "12521337", auth.NITCertificador)
	assert.Equal(t, "INFILE, S.A.", auth.NombreCertificador)

	esperada := time.Date(2024, 5, 17, 4, 30, 47, 0, time.FixedZone("-06", -6*3600))
	assert.True(t, auth.FechaCertificacion.Equal(esperada))
}

func TestParseAuthorization_SinCertificacion(t *testing.T) {
	xml := []byte(`<dte:GTDocumento xmlns:dte="http://www.sat.gob.gt/dte/fel/0.2.0"><dte:SAT></dte:SAT></dte:GTDocumento>`)

	_, err := NewAuthorizationParser().ParseAuthorization(xml)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseAuthorization_XMLIlegible(t *testing.T) {
	_, err := NewAuthorizationParser().ParseAuthorization([]byte("no es xml <"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseAuthorization_FechaSinZona(t *testing.T) {
	xml := []byte(`<GTDocumento><SAT><DTE><Certificacion>
	  <NumeroAutorizacion Numero="1" Serie="S">UUID-1</NumeroAutorizacion>
	  <FechaHoraCertificacion>2024-05-17T04:30:47</FechaHoraCertificacion>
	</Certificacion></DTE></SAT></GTDocumento>`)

	auth, err := NewAuthorizationParser().ParseAuthorization(xml)
	require.NoError(t, err)
	assert.Equal(t, 2024, auth.FechaCertificacion.Year())
}
