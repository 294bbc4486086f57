package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

var _ repository.AttachmentRepository = (*AttachmentRepo)(nil)

// AttachmentRepo almacén de artefactos XML por (invoice_id, role) sobre
// PostgreSQL. El upsert garantiza last-write-wins con visibilidad inmediata.
type AttachmentRepo struct {
	q Querier
}

// NewAttachmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAttachmentRepository(q Querier) *AttachmentRepo {
	return &AttachmentRepo{q: q}
}

// Find obtiene el artefacto de una factura y rol. Devuelve (nil, nil) si no existe.
func (r *AttachmentRepo) Find(invoiceID, role string) (*entity.Attachment, error) {
	query := `
		SELECT id, invoice_id, role, filename, description, data, mime_type,
		       created_at, updated_at
		FROM attachments WHERE invoice_id = $1 AND role = $2`
	var a entity.Attachment
	var description *string
	err := r.q.QueryRow(context.Background(), query, invoiceID, role).Scan(
		&a.ID, &a.InvoiceID, &a.Role, &a.Filename, &description, &a.Data,
		&a.MimeType, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	a.Description = deref(description)
	return &a, nil
}

// Put inserta o reemplaza el artefacto de la clave (invoice_id, role).
func (r *AttachmentRepo) Put(attachment *entity.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO attachments (id, invoice_id, role, filename, description, data, mime_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (invoice_id, role) DO UPDATE
		SET filename = EXCLUDED.filename,
		    description = EXCLUDED.description,
		    data = EXCLUDED.data,
		    mime_type = EXCLUDED.mime_type,
		    updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		attachment.ID, attachment.InvoiceID, attachment.Role, attachment.Filename,
		nullIfEmpty(attachment.Description), attachment.Data, attachment.MimeType,
	)
	if err != nil {
		return fmt.Errorf("put attachment: %w", err)
	}
	return nil
}
