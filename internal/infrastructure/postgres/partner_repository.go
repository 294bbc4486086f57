package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

var _ repository.PartnerRepository = (*PartnerRepo)(nil)

// PartnerRepo implementación de PartnerRepository (usable con pool o tx).
type PartnerRepo struct {
	q Querier
}

// NewPartnerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartnerRepository(q Querier) *PartnerRepo {
	return &PartnerRepo{q: q}
}

const partnerColumns = `
	id, company_id, name, nit, email, phone,
	street, zip, city, state, country_code, created_at, updated_at`

// Create persiste un nuevo receptor.
func (r *PartnerRepo) Create(partner *entity.Partner) error {
	if partner.ID == "" {
		partner.ID = uuid.New().String()
	}
	now := time.Now()
	partner.CreatedAt = now
	partner.UpdatedAt = now
	query := `
		INSERT INTO partners (` + partnerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		partner.ID, partner.CompanyID, partner.Name, partner.NIT, partner.Email,
		nullIfEmpty(partner.Phone), partner.Street, partner.Zip, partner.City,
		partner.State, partner.CountryCode, partner.CreatedAt, partner.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// GetByID obtiene un receptor por ID. Devuelve (nil, nil) si no existe.
func (r *PartnerRepo) GetByID(id string) (*entity.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1`
	partner, err := scanPartner(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return partner, nil
}

// List devuelve los receptores de una empresa, paginados.
func (r *PartnerRepo) List(companyID string, limit, offset int) ([]*entity.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners
		WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var partners []*entity.Partner
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

// Update actualiza los datos del receptor.
func (r *PartnerRepo) Update(partner *entity.Partner) error {
	query := `
		UPDATE partners
		SET name = $2, nit = $3, email = $4, phone = $5,
		    street = $6, zip = $7, city = $8, state = $9, country_code = $10,
		    updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		partner.ID, partner.Name, partner.NIT, partner.Email, nullIfEmpty(partner.Phone),
		partner.Street, partner.Zip, partner.City, partner.State, partner.CountryCode,
	)
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	return nil
}

func scanPartner(row pgxScanner) (*entity.Partner, error) {
	var p entity.Partner
	var phone *string
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.NIT, &p.Email, &phone,
		&p.Street, &p.Zip, &p.City, &p.State, &p.CountryCode,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Phone = deref(phone)
	return &p, nil
}
