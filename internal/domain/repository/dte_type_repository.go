package repository

import "github.com/tu-usuario/fel-gt/internal/domain/entity"

// DTETypeRepository define el puerto de persistencia para el catálogo de
// tipos de DTE y sus frases.
type DTETypeRepository interface {
	GetByID(id string) (*entity.DTEType, error)
	GetByCode(code string) (*entity.DTEType, error)
	// ListByGeneralMoveType devuelve los tipos activos válidos para una
	// categoría de movimiento (invoice, receipt, refund).
	ListByGeneralMoveType(generalMoveType string) ([]*entity.DTEType, error)
}
