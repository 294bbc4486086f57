package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

// CompanyUseCase aplica reglas de negocio para empresas emisoras.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva empresa. Devuelve domain.ErrDuplicate si el NIT ya existe.
func (uc *CompanyUseCase) Create(in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	existing, _ := uc.repo.GetByNIT(in.NIT)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:                    uuid.New().String(),
		Name:                  in.Name,
		Registry:              in.Registry,
		NIT:                   in.NIT,
		Email:                 in.Email,
		Phone:                 in.Phone,
		IVAAffiliation:        in.IVAAffiliation,
		CodigoEstablecimiento: in.CodigoEstablecimiento,
		Street:                in.Street,
		Zip:                   in.Zip,
		City:                  in.City,
		State:                 in.State,
		CountryCode:           in.CountryCode,
		Timezone:              in.Timezone,
		InfileUserSign:        in.InfileUserSign,
		InfileSignKey:         in.InfileSignKey,
		InfileUserAPI:         in.InfileUserAPI,
		InfileAPIKey:          in.InfileAPIKey,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := uc.repo.Create(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID. Devuelve (nil, nil) si no existe.
func (uc *CompanyUseCase) GetByID(id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return entityToCompanyResponse(company), nil
}

// Update reemplaza los datos de la empresa, credenciales incluidas.
func (uc *CompanyUseCase) Update(id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	company.Name = in.Name
	company.Registry = in.Registry
	company.NIT = in.NIT
	company.Email = in.Email
	company.Phone = in.Phone
	company.IVAAffiliation = in.IVAAffiliation
	company.CodigoEstablecimiento = in.CodigoEstablecimiento
	company.Street = in.Street
	company.Zip = in.Zip
	company.City = in.City
	company.State = in.State
	company.CountryCode = in.CountryCode
	company.Timezone = in.Timezone
	company.InfileUserSign = in.InfileUserSign
	company.InfileSignKey = in.InfileSignKey
	company.InfileUserAPI = in.InfileUserAPI
	company.InfileAPIKey = in.InfileAPIKey
	company.UpdatedAt = time.Now()

	if err := uc.repo.Update(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                    c.ID,
		Name:                  c.Name,
		Registry:              c.Registry,
		NIT:                   c.NIT,
		Email:                 c.Email,
		Phone:                 c.Phone,
		IVAAffiliation:        c.IVAAffiliation,
		CodigoEstablecimiento: c.CodigoEstablecimiento,
		Street:                c.Street,
		Zip:                   c.Zip,
		City:                  c.City,
		State:                 c.State,
		CountryCode:           c.CountryCode,
		Timezone:              c.Timezone,
		HasInfileCredentials:  c.HasInfileCredentials(),
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}
