package entity

import "time"

// Company representa la empresa emisora de DTE.
// Los campos Infile* son las credenciales del certificador (alias de firma y
// usuario/llave del API); el core solo las empaqueta en una sesión opaca.
type Company struct {
	ID                    string
	Name                  string // Nombre comercial
	Registry              string // Razón social registrada (company_registry)
	NIT                   string
	Email                 string
	Phone                 string
	IVAAffiliation        string // GEN, PEQ, EXE (ver pkg/sat)
	CodigoEstablecimiento int    // Código de establecimiento asignado por la SAT
	Street                string
	Zip                   string
	City                  string // Municipio
	State                 string // Departamento
	CountryCode           string // ISO (GT)
	Timezone              string // Zona horaria del emisor (America/Guatemala)

	InfileUserSign string // Alias Firma
	InfileSignKey  string // Token Firma
	InfileUserAPI  string // Usuario
	InfileAPIKey   string // Llave

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasInfileCredentials indica si la empresa tiene las cuatro credenciales
// necesarias para abrir sesión con el certificador.
func (c *Company) HasInfileCredentials() bool {
	return c.InfileUserSign != "" && c.InfileSignKey != "" &&
		c.InfileUserAPI != "" && c.InfileAPIKey != ""
}
