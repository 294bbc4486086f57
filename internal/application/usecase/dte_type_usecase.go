package usecase

import (
	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

// DTETypeUseCase consulta del catálogo de tipos de DTE.
type DTETypeUseCase struct {
	repo repository.DTETypeRepository
}

// NewDTETypeUseCase construye el caso de uso.
func NewDTETypeUseCase(repo repository.DTETypeRepository) *DTETypeUseCase {
	return &DTETypeUseCase{repo: repo}
}

// ListByGeneralMoveType lista los tipos activos para una categoría de
// movimiento (invoice, receipt, refund).
func (uc *DTETypeUseCase) ListByGeneralMoveType(generalMoveType string) ([]dto.DTETypeResponse, error) {
	list, err := uc.repo.ListByGeneralMoveType(generalMoveType)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DTETypeResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.DTETypeResponse{
			ID:              t.ID,
			Code:            t.Code,
			Name:            t.Name,
			GeneralMoveType: t.GeneralMoveType,
		})
	}
	return items, nil
}
