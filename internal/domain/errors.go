package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrValidation: datos incompletos o inválidos para generar o enviar un DTE.
	// Siempre se levanta antes de escribir un artefacto o tocar la red.
	ErrValidation = errors.New("datos inválidos para el DTE")

	// ErrGateway: fallo de transporte o protocolo hablando con el certificador
	// (timeout, inalcanzable, respuesta malformada, credenciales rechazadas).
	// No modifica el estado de certificación del documento: es reintentable.
	ErrGateway = errors.New("error de comunicación con el certificador")
)
