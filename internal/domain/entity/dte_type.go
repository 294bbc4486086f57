package entity

// DTEType configuración de un tipo de DTE (catálogo administrable).
type DTEType struct {
	ID              string
	Name            string
	Code            string  // FACT, FCAM, NCRE, ... (ver pkg/sat)
	GeneralMoveType string  // invoice, receipt, refund
	Frases          []Frase // Frases legales del tipo, en orden
	Active          bool
}

// Frase leyenda legal exigida por la SAT para ciertos tipos de documento.
type Frase struct {
	ID     string
	Name   string
	Tipo   int // Tipo de frase (catálogo SAT)
	Codigo int // Código de escenario
}
