package infile_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/infrastructure/infile"
	"github.com/tu-usuario/fel-gt/pkg/config"
	"github.com/tu-usuario/fel-gt/pkg/logger"
)

var testSession = fel.Session{
	UsuarioFirma: "alias",
	LlaveFirma:   "token",
	UsuarioAPI:   "usuario",
	LlaveAPI:     "llave",
}

func newClient(certificarURL, anularURL string) *infile.Client {
	return infile.NewClient(config.INFILEConfig{
		CertificarURL: certificarURL,
		AnularURL:     anularURL,
		Timeout:       5 * time.Second,
	}, logger.New(logger.Config{Env: "production", Level: "error"}))
}

func TestCertify_Exitoso(t *testing.T) {
	certificado := base64.StdEncoding.EncodeToString([]byte("<GTDocumento certificado/>"))

	var got *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultado": true, "uuid": "UUID-1", "xml_certificado": "` + certificado + `"}`))
	}))
	defer srv.Close()

	client := newClient(srv.URL, srv.URL+"/anular")
	res, err := client.Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	require.NoError(t, err)

	assert.True(t, res.Certified)
	assert.Equal(t, "UUID-1", res.UUID)
	assert.Equal(t, []byte("<GTDocumento certificado/>"), res.XMLCertificado, "el XML certificado llega decodificado")

	// Credenciales e identificador viajan como cabeceras por petición.
	assert.Equal(t, "alias", got.Header.Get("UsuarioFirma"))
	assert.Equal(t, "token", got.Header.Get("LlaveFirma"))
	assert.Equal(t, "usuario", got.Header.Get("UsuarioApi"))
	assert.Equal(t, "llave", got.Header.Get("LlaveApi"))
	assert.Equal(t, "ident-1", got.Header.Get("identificador"))
	assert.Equal(t, "application/xml", got.Header.Get("Content-Type"))
	assert.Equal(t, []byte("<GTDocumento/>"), gotBody)
}

func TestCertify_RechazoConErrores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"resultado": false,
			"descripcion_errores": [
				{"numeral": 15, "mensaje_error": "NIT del receptor no existe"},
				{"numeral": "4.2", "mensaje_error": "Frase obligatoria ausente"}
			]
		}`))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL, srv.URL).Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	require.NoError(t, err, "un rechazo de negocio no es un error de transporte")

	assert.False(t, res.Certified)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, fel.SubmitError{Codigo: "15", Mensaje: "NIT del receptor no existe"}, res.Errors[0])
	assert.Equal(t, fel.SubmitError{Codigo: "4.2", Mensaje: "Frase obligatoria ausente"}, res.Errors[1])
}

func TestCertify_RechazoSinErroresEsGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resultado": false, "descripcion_errores": []}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, srv.URL).Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	assert.ErrorIs(t, err, domain.ErrGateway,
		"un 'no certificado' sin detalle no es interpretable como rechazo de negocio")
}

func TestCertify_HTTPNoOKEsGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, srv.URL).Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestCertify_JSONMalformadoEsGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>mantenimiento</html>"))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, srv.URL).Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestCertify_CertificadaSinUUIDEsGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resultado": true}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, srv.URL).Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestCertify_AnulacionUsaSuRuta(t *testing.T) {
	certificado := base64.StdEncoding.EncodeToString([]byte("<GTAnulacionDocumento certificada/>"))

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"resultado": true, "uuid": "UUID-ANU", "xml_certificado": "` + certificado + `"}`))
	}))
	defer srv.Close()

	client := newClient(srv.URL+"/certificar", srv.URL+"/anular")
	res, err := client.Certify(context.Background(), testSession, "UUID-ORIGINAL", []byte("<GTAnulacionDocumento/>"))
	require.NoError(t, err)
	assert.Equal(t, "/anular", path, "la clase de documento decide la ruta")
	assert.Equal(t, "UUID-ANU", res.UUID)
}

func TestCertify_SoloLaRaizDecideLaRuta(t *testing.T) {
	certificado := base64.StdEncoding.EncodeToString([]byte("<GTDocumento certificado/>"))

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"resultado": true, "uuid": "UUID-1", "xml_certificado": "` + certificado + `"}`))
	}))
	defer srv.Close()

	// Un DTE cuyo cuerpo menciona la clase de anulación (descripción de un
	// ítem) sigue yendo a la ruta de certificación.
	dteXML := []byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<dte:GTDocumento xmlns:dte="http://www.sat.gob.gt/dte/fel/0.2.0">` +
		`<dte:Descripcion>Asesoría sobre GTAnulacionDocumento</dte:Descripcion>` +
		`</dte:GTDocumento>`)

	client := newClient(srv.URL+"/certificar", srv.URL+"/anular")
	_, err := client.Certify(context.Background(), testSession, "ident-1", dteXML)
	require.NoError(t, err)
	assert.Equal(t, "/certificar", path)

	// Y una anulación con prefijo de namespace y declaración XML sí cambia.
	anuXML := []byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<dte:GTAnulacionDocumento xmlns:dte="http://www.sat.gob.gt/dte/anulacion/0.1.0">` +
		`</dte:GTAnulacionDocumento>`)
	_, err = client.Certify(context.Background(), testSession, "UUID-ORIGINAL", anuXML)
	require.NoError(t, err)
	assert.Equal(t, "/anular", path)
}

func TestCertify_TimeoutEsGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"resultado": true}`))
	}))
	defer srv.Close()

	client := infile.NewClient(config.INFILEConfig{
		CertificarURL: srv.URL,
		AnularURL:     srv.URL,
		Timeout:       20 * time.Millisecond,
	}, logger.New(logger.Config{Env: "production", Level: "error"}))

	_, err := client.Certify(context.Background(), testSession, "ident-1", []byte("<GTDocumento/>"))
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestNopCertifier_SimulaCertificacion(t *testing.T) {
	nop := infile.NewNopCertifier(logger.New(logger.Config{Env: "production", Level: "error"}))

	res, err := nop.Certify(context.Background(), fel.Session{}, "ident-1", []byte("<GTDocumento/>"))
	require.NoError(t, err)
	assert.True(t, res.Certified)
	assert.NotEmpty(t, res.UUID)
	assert.Equal(t, []byte("<GTDocumento/>"), res.XMLCertificado)
}
