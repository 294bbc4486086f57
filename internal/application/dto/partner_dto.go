package dto

import "time"

// CreatePartnerRequest alta de receptor. NIT "CF" para consumidor final.
type CreatePartnerRequest struct {
	Name        string `json:"name" validate:"required"`
	NIT         string `json:"nit" validate:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	State       string `json:"state"`
	CountryCode string `json:"country_code"`
}

// UpdatePartnerRequest actualización de receptor (mismos campos que el alta).
type UpdatePartnerRequest = CreatePartnerRequest

// PartnerResponse receptor.
type PartnerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NIT         string    `json:"nit"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Street      string    `json:"street,omitempty"`
	Zip         string    `json:"zip,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PartnerListResponse listado paginado de receptores.
type PartnerListResponse struct {
	Items []PartnerResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DTETypeResponse tipo de DTE del catálogo SAT.
type DTETypeResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	GeneralMoveType string `json:"general_move_type"`
}
