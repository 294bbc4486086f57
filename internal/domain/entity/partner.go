package entity

import "time"

// Partner representa la contraparte de la factura (receptor del DTE).
type Partner struct {
	ID          string
	CompanyID   string
	Name        string
	NIT         string // "CF" para consumidor final
	Email       string
	Phone       string
	Street      string
	Zip         string
	City        string // Municipio
	State       string // Departamento
	CountryCode string // ISO (GT)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
