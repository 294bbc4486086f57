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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `
	id, name, registry, nit, email, phone, iva_affiliation, codigo_establecimiento,
	street, zip, city, state, country_code, timezone,
	infile_user_sign, infile_sign_key, infile_user_api, infile_api_key,
	created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	now := time.Now()
	company.CreatedAt = now
	company.UpdatedAt = now
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, company.Registry, company.NIT, company.Email,
		nullIfEmpty(company.Phone), company.IVAAffiliation, company.CodigoEstablecimiento,
		company.Street, company.Zip, company.City, company.State, company.CountryCode,
		company.Timezone,
		nullIfEmpty(company.InfileUserSign), nullIfEmpty(company.InfileSignKey),
		nullIfEmpty(company.InfileUserAPI), nullIfEmpty(company.InfileAPIKey),
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID. Devuelve (nil, nil) si no existe.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.getBy("id = $1", id)
}

// GetByNIT obtiene una empresa por NIT.
func (r *CompanyRepo) GetByNIT(nit string) (*entity.Company, error) {
	return r.getBy("nit = $1", nit)
}

func (r *CompanyRepo) getBy(where string, arg any) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE ` + where
	row := r.q.QueryRow(context.Background(), query, arg)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return company, nil
}

// Update actualiza los datos de la empresa, credenciales INFILE incluidas.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, registry = $3, nit = $4, email = $5, phone = $6,
		    iva_affiliation = $7, codigo_establecimiento = $8,
		    street = $9, zip = $10, city = $11, state = $12, country_code = $13,
		    timezone = $14, infile_user_sign = $15, infile_sign_key = $16,
		    infile_user_api = $17, infile_api_key = $18, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, company.Registry, company.NIT, company.Email,
		nullIfEmpty(company.Phone), company.IVAAffiliation, company.CodigoEstablecimiento,
		company.Street, company.Zip, company.City, company.State, company.CountryCode,
		company.Timezone,
		nullIfEmpty(company.InfileUserSign), nullIfEmpty(company.InfileSignKey),
		nullIfEmpty(company.InfileUserAPI), nullIfEmpty(company.InfileAPIKey),
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List devuelve empresas paginadas.
func (r *CompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*entity.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func scanCompany(row pgxScanner) (*entity.Company, error) {
	var c entity.Company
	var phone, userSign, signKey, userAPI, apiKey *string
	err := row.Scan(
		&c.ID, &c.Name, &c.Registry, &c.NIT, &c.Email, &phone,
		&c.IVAAffiliation, &c.CodigoEstablecimiento,
		&c.Street, &c.Zip, &c.City, &c.State, &c.CountryCode, &c.Timezone,
		&userSign, &signKey, &userAPI, &apiKey,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Phone = deref(phone)
	c.InfileUserSign = deref(userSign)
	c.InfileSignKey = deref(signKey)
	c.InfileUserAPI = deref(userAPI)
	c.InfileAPIKey = deref(apiKey)
	return &c, nil
}

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar los scans.
type pgxScanner interface {
	Scan(dest ...any) error
}
