package dto

import "time"

// CreateCompanyRequest alta de empresa emisora. Los campos Infile* son las
// credenciales del certificador; pueden completarse después vía Update.
type CreateCompanyRequest struct {
	Name                  string `json:"name" validate:"required"`
	Registry              string `json:"registry"`
	NIT                   string `json:"nit" validate:"required"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	IVAAffiliation        string `json:"iva_affiliation"`
	CodigoEstablecimiento int    `json:"codigo_establecimiento"`
	Street                string `json:"street"`
	Zip                   string `json:"zip"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	CountryCode           string `json:"country_code"`
	Timezone              string `json:"timezone"`

	InfileUserSign string `json:"infile_user_sign"`
	InfileSignKey  string `json:"infile_sign_key"`
	InfileUserAPI  string `json:"infile_user_api"`
	InfileAPIKey   string `json:"infile_api_key"`
}

// UpdateCompanyRequest actualización de empresa (mismos campos que el alta).
type UpdateCompanyRequest = CreateCompanyRequest

// CompanyResponse empresa sin credenciales del certificador; solo expone si
// están configuradas.
type CompanyResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Registry              string    `json:"registry,omitempty"`
	NIT                   string    `json:"nit"`
	Email                 string    `json:"email,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	IVAAffiliation        string    `json:"iva_affiliation,omitempty"`
	CodigoEstablecimiento int       `json:"codigo_establecimiento,omitempty"`
	Street                string    `json:"street,omitempty"`
	Zip                   string    `json:"zip,omitempty"`
	City                  string    `json:"city,omitempty"`
	State                 string    `json:"state,omitempty"`
	CountryCode           string    `json:"country_code,omitempty"`
	Timezone              string    `json:"timezone,omitempty"`
	HasInfileCredentials  bool      `json:"has_infile_credentials"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// CompanyListResponse listado paginado de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
