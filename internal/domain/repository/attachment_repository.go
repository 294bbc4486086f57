package repository

import "github.com/tu-usuario/fel-gt/internal/domain/entity"

// AttachmentRepository almacén de artefactos XML, clave (invoiceID, role).
// Put sobreescribe el artefacto existente para esa clave (last-write-wins) y
// el resultado es visible de inmediato para un Find posterior.
type AttachmentRepository interface {
	Find(invoiceID, role string) (*entity.Attachment, error)
	Put(attachment *entity.Attachment) error
}
