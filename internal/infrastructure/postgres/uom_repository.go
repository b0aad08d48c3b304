package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.UOMConversionRepository = (*UOMConversionRepo)(nil)

// UOMConversionRepo implementación de UOMConversionRepository sobre PostgreSQL.
// company_id almacena NULL para conversiones globales.
type UOMConversionRepo struct {
	q Querier
}

// NewUOMConversionRepository construye el adaptador de conversiones.
func NewUOMConversionRepository(q Querier) *UOMConversionRepo {
	return &UOMConversionRepo{q: q}
}

// Create inserta un factor de conversión.
func (r *UOMConversionRepo) Create(ctx context.Context, conv *entity.UOMConversion) error {
	query := `
		INSERT INTO uom_conversions (id, company_id, dimension, from_uom, to_uom, factor, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		conv.ID, conv.CompanyID, conv.Dimension, conv.FromUOM, conv.ToUOM, conv.Factor, conv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create uom conversion: %w", err)
	}
	return nil
}

// GetFactor busca el factor (dimensión, from, to): primero el de la empresa,
// luego el global. Devuelve nil sin error si no hay ninguno registrado.
func (r *UOMConversionRepo) GetFactor(ctx context.Context, companyID, dimension, fromUOM, toUOM string) (*entity.UOMConversion, error) {
	query := `
		SELECT id, COALESCE(company_id, ''), dimension, from_uom, to_uom, factor, created_at
		FROM uom_conversions
		WHERE (company_id = $1 OR company_id IS NULL)
		  AND dimension = $2 AND from_uom = $3 AND to_uom = $4
		ORDER BY company_id NULLS LAST
		LIMIT 1`
	var c entity.UOMConversion
	err := r.q.QueryRow(ctx, query, companyID, dimension, fromUOM, toUOM).Scan(
		&c.ID, &c.CompanyID, &c.Dimension, &c.FromUOM, &c.ToUOM, &c.Factor, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get uom factor: %w", err)
	}
	return &c, nil
}

// ListByDimension lista los factores visibles para la empresa en una dimensión.
func (r *UOMConversionRepo) ListByDimension(ctx context.Context, companyID, dimension string) ([]*entity.UOMConversion, error) {
	query := `
		SELECT id, COALESCE(company_id, ''), dimension, from_uom, to_uom, factor, created_at
		FROM uom_conversions
		WHERE (company_id = $1 OR company_id IS NULL) AND dimension = $2
		ORDER BY from_uom, to_uom`
	rows, err := r.q.Query(ctx, query, companyID, dimension)
	if err != nil {
		return nil, fmt.Errorf("list uom conversions: %w", err)
	}
	defer rows.Close()

	var out []*entity.UOMConversion
	for rows.Next() {
		var c entity.UOMConversion
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Dimension, &c.FromUOM, &c.ToUOM, &c.Factor, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan uom conversion: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
