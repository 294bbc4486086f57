package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

var _ repository.DTETypeRepository = (*DTETypeRepo)(nil)

// DTETypeRepo catálogo de tipos de DTE y sus frases sobre PostgreSQL.
type DTETypeRepo struct {
	q Querier
}

// NewDTETypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDTETypeRepository(q Querier) *DTETypeRepo {
	return &DTETypeRepo{q: q}
}

// GetByID obtiene un tipo de DTE con sus frases. Devuelve (nil, nil) si no existe.
func (r *DTETypeRepo) GetByID(id string) (*entity.DTEType, error) {
	return r.getBy("t.id = $1", id)
}

// GetByCode obtiene un tipo de DTE por código SAT (FACT, NCRE, ...).
func (r *DTETypeRepo) GetByCode(code string) (*entity.DTEType, error) {
	return r.getBy("t.code = $1", code)
}

func (r *DTETypeRepo) getBy(where string, arg any) (*entity.DTEType, error) {
	query := `
		SELECT t.id, t.name, t.code, t.general_move_type, t.active
		FROM dte_types t WHERE ` + where
	var t entity.DTEType
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&t.ID, &t.Name, &t.Code, &t.GeneralMoveType, &t.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dte type: %w", err)
	}
	if err := r.loadFrases(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByGeneralMoveType devuelve los tipos activos de una categoría de
// movimiento (invoice, receipt, refund), con sus frases.
func (r *DTETypeRepo) ListByGeneralMoveType(generalMoveType string) ([]*entity.DTEType, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, name, code, general_move_type, active
		FROM dte_types
		WHERE general_move_type = $1 AND active
		ORDER BY code`, generalMoveType)
	if err != nil {
		return nil, fmt.Errorf("list dte types: %w", err)
	}
	defer rows.Close()

	var types []*entity.DTEType
	for rows.Next() {
		var t entity.DTEType
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.GeneralMoveType, &t.Active); err != nil {
			return nil, fmt.Errorf("scan dte type: %w", err)
		}
		types = append(types, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range types {
		if err := r.loadFrases(t); err != nil {
			return nil, err
		}
	}
	return types, nil
}

// loadFrases carga las frases legales del tipo en su orden configurado.
func (r *DTETypeRepo) loadFrases(t *entity.DTEType) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT f.id, f.name, f.tipo, f.codigo
		FROM frases f
		JOIN dte_type_frases tf ON tf.frase_id = f.id
		WHERE tf.dte_type_id = $1
		ORDER BY tf.sequence`, t.ID)
	if err != nil {
		return fmt.Errorf("get dte type frases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f entity.Frase
		if err := rows.Scan(&f.ID, &f.Name, &f.Tipo, &f.Codigo); err != nil {
			return fmt.Errorf("scan frase: %w", err)
		}
		t.Frases = append(t.Frases, f)
	}
	return rows.Err()
}
