package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

// PartnerUseCase aplica reglas de negocio para receptores de DTE.
type PartnerUseCase struct {
	repo repository.PartnerRepository
}

// NewPartnerUseCase construye el caso de uso con el puerto de persistencia.
func NewPartnerUseCase(repo repository.PartnerRepository) *PartnerUseCase {
	return &PartnerUseCase{repo: repo}
}

// Create crea un receptor asociado a la empresa del solicitante.
func (uc *PartnerUseCase) Create(companyID string, in dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	now := time.Now()
	partner := &entity.Partner{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        in.Name,
		NIT:         in.NIT,
		Email:       in.Email,
		Phone:       in.Phone,
		Street:      in.Street,
		Zip:         in.Zip,
		City:        in.City,
		State:       in.State,
		CountryCode: in.CountryCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(partner); err != nil {
		return nil, err
	}
	return entityToPartnerResponse(partner), nil
}

// GetByID obtiene un receptor verificando que pertenezca a la empresa.
func (uc *PartnerUseCase) GetByID(companyID, id string) (*dto.PartnerResponse, error) {
	partner, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if partner == nil || partner.CompanyID != companyID {
		return nil, nil
	}
	return entityToPartnerResponse(partner), nil
}

// Update actualiza un receptor de la empresa.
func (uc *PartnerUseCase) Update(companyID, id string, in dto.UpdatePartnerRequest) (*dto.PartnerResponse, error) {
	partner, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if partner == nil || partner.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	partner.Name = in.Name
	partner.NIT = in.NIT
	partner.Email = in.Email
	partner.Phone = in.Phone
	partner.Street = in.Street
	partner.Zip = in.Zip
	partner.City = in.City
	partner.State = in.State
	partner.CountryCode = in.CountryCode
	partner.UpdatedAt = time.Now()

	if err := uc.repo.Update(partner); err != nil {
		return nil, err
	}
	return entityToPartnerResponse(partner), nil
}

// List lista los receptores de la empresa con paginación.
func (uc *PartnerUseCase) List(companyID string, limit, offset int) (*dto.PartnerListResponse, error) {
	list, err := uc.repo.List(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartnerResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *entityToPartnerResponse(p))
	}
	return &dto.PartnerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToPartnerResponse(p *entity.Partner) *dto.PartnerResponse {
	if p == nil {
		return nil
	}
	return &dto.PartnerResponse{
		ID:          p.ID,
		Name:        p.Name,
		NIT:         p.NIT,
		Email:       p.Email,
		Phone:       p.Phone,
		Street:      p.Street,
		Zip:         p.Zip,
		City:        p.City,
		State:       p.State,
		CountryCode: p.CountryCode,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
