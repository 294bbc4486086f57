// Package infile implementa el cliente del certificador INFILE (FEL
// Guatemala): envío de DTE y anulaciones y parseo de la respuesta.
package infile

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tu-usuario/fel-gt/internal/application/fel"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/pkg/config"
	"github.com/tu-usuario/fel-gt/pkg/logger"
)

// Cabeceras de autenticación del API de INFILE. Las credenciales viajan por
// petición; el cliente no mantiene sesión.
const (
	headerUsuarioFirma  = "UsuarioFirma"
	headerLlaveFirma    = "LlaveFirma"
	headerUsuarioAPI    = "UsuarioApi"
	headerLlaveAPI      = "LlaveApi"
	headerIdentificador = "identificador"
)

// Ensure Client implements fel.Certifier.
var _ fel.Certifier = (*Client)(nil)

// Client cliente HTTP del certificador. Implementa fel.Certifier.
type Client struct {
	httpClient    *http.Client
	certificarURL string
	anularURL     string
	log           *logger.Logger
}

// NewClient construye el cliente con el timeout de configuración; un timeout
// vencido se reporta como ErrGateway igual que cualquier otro fallo de red.
func NewClient(cfg config.INFILEConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		certificarURL: cfg.CertificarURL,
		anularURL:     cfg.AnularURL,
		log:           log,
	}
}

// isAnulacion inspecciona solo el elemento raíz del XML: un texto que
// mencione la clase de documento dentro del cuerpo (una descripción de ítem,
// por ejemplo) no cambia la ruta.
func isAnulacion(xml []byte) bool {
	rest := bytes.TrimLeft(xml, " \t\r\n")
	if bytes.HasPrefix(rest, []byte("<?")) {
		i := bytes.Index(rest, []byte("?>"))
		if i < 0 {
			return false
		}
		rest = bytes.TrimLeft(rest[i+2:], " \t\r\n")
	}
	if !bytes.HasPrefix(rest, []byte("<")) {
		return false
	}
	end := bytes.IndexAny(rest, " \t\r\n/>")
	if end < 0 {
		return false
	}
	tag := rest[1:end]
	if i := bytes.IndexByte(tag, ':'); i >= 0 {
		tag = tag[i+1:]
	}
	return bytes.Equal(tag, []byte("GTAnulacionDocumento"))
}

// Certify envía el XML al certificador y traduce la respuesta. Un rechazo de
// negocio (resultado=false con errores) regresa como SubmitResult no
// certificado; cualquier fallo de transporte o protocolo regresa como error
// ErrGateway y nunca como rechazo.
func (c *Client) Certify(ctx context.Context, session fel.Session, identifier string, xml []byte) (*fel.SubmitResult, error) {
	url := c.certificarURL
	// Las anulaciones van a su propia ruta; la clase de documento del XML
	// decide, así el orquestador usa un único puerto para ambos flujos.
	if isAnulacion(xml) {
		url = c.anularURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(xml))
	if err != nil {
		return nil, fmt.Errorf("%w: armando petición: %v", domain.ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set(headerUsuarioFirma, session.UsuarioFirma)
	req.Header.Set(headerLlaveFirma, session.LlaveFirma)
	req.Header.Set(headerUsuarioAPI, session.UsuarioAPI)
	req.Header.Set(headerLlaveAPI, session.LlaveAPI)
	req.Header.Set(headerIdentificador, identifier)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: leyendo respuesta: %v", domain.ErrGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: el certificador respondió HTTP %d", domain.ErrGateway, resp.StatusCode)
	}

	var parsed certResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: respuesta no es JSON válido: %v", domain.ErrGateway, err)
	}

	if !parsed.Resultado {
		// Un "no certificado" sin ningún error adjunto no es un rechazo de
		// negocio interpretable: se trata como fallo del certificador.
		if len(parsed.Errores) == 0 {
			return nil, fmt.Errorf("%w: el certificador rechazó sin detallar errores", domain.ErrGateway)
		}
		result := &fel.SubmitResult{Certified: false}
		for _, e := range parsed.Errores {
			result.Errors = append(result.Errors, fel.SubmitError{
				Codigo:  e.Numeral.String(),
				Mensaje: e.MensajeError,
			})
		}
		return result, nil
	}

	if parsed.UUID == "" || parsed.XMLCertificado == "" {
		return nil, fmt.Errorf("%w: respuesta certificada sin UUID o sin XML", domain.ErrGateway)
	}
	certified, err := base64.StdEncoding.DecodeString(parsed.XMLCertificado)
	if err != nil {
		return nil, fmt.Errorf("%w: XML certificado no es base64: %v", domain.ErrGateway, err)
	}

	c.log.Debug().Str("identificador", identifier).Str("uuid", parsed.UUID).Msg("respuesta del certificador")
	return &fel.SubmitResult{
		Certified:      true,
		UUID:           parsed.UUID,
		XMLCertificado: certified,
	}, nil
}
