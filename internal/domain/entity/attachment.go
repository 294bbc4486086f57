package entity

import "time"

// Roles de artefacto XML adjuntos a una factura. Por cada rol existe a lo
// sumo un artefacto por factura (last-write-wins).
const (
	AttachmentRoleOriginal  = "original"  // XML del DTE (canónico o certificado)
	AttachmentRoleAnulacion = "annulment" // XML de la anulación
)

// Attachment artefacto XML persistido, clave (InvoiceID, Role).
type Attachment struct {
	ID          string
	InvoiceID   string
	Role        string // ver constantes AttachmentRole*
	Filename    string // {tipo}_{nombre}.xml | {nombre}_annulated.xml
	Description string
	Data        []byte
	MimeType    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
