package entity

import "time"

// User usuario de la aplicación (acceso a la API).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
