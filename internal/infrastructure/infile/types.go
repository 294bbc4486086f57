package infile

import "encoding/json"

// Respuesta JSON del servicio de certificación de INFILE. Los campos que no
// usamos (fuente, categoría, validación) se ignoran al decodificar.
type certResponse struct {
	Resultado      bool        `json:"resultado"`
	UUID           string      `json:"uuid"`
	XMLCertificado string      `json:"xml_certificado"` // base64
	Errores        []certError `json:"descripcion_errores"`
}

// certError detalle de un rechazo. El numeral llega a veces como número y a
// veces como texto, por eso json.Number.
type certError struct {
	Numeral      json.Number `json:"numeral"`
	MensajeError string      `json:"mensaje_error"`
}
