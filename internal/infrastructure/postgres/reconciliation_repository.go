package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.ReconciliationRepository = (*ReconciliationRepo)(nil)

// ReconciliationRepo consultas de solo lectura del verificador de conciliación.
// Cada consulta corre en una transacción READ ONLY REPEATABLE READ: el snapshot
// evita leer una capa a mitad de decremento. No toma ningún lock de fila.
type ReconciliationRepo struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository construye el adaptador del verificador.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepo {
	return &ReconciliationRepo{pool: pool}
}

// query ejecuta fn dentro de una tx READ ONLY con aislamiento snapshot.
func (r *ReconciliationRepo) query(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// NegativeRemainingLayers capas con remaining < 0: violación dura del ledger.
func (r *ReconciliationRepo) NegativeRemainingLayers(ctx context.Context, companyID string, limit int) ([]repository.LayerBalanceRow, error) {
	query := `
		SELECT id, item_id, location_id, quantity_remaining
		FROM cost_layers
		WHERE company_id = $1 AND quantity_remaining < 0
		ORDER BY created_at
		LIMIT $2`
	var out []repository.LayerBalanceRow
	err := r.query(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, companyID, limit)
		if err != nil {
			return fmt.Errorf("negative remaining layers: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var row repository.LayerBalanceRow
			if err := rows.Scan(&row.LayerID, &row.ItemID, &row.LocationID, &row.QuantityRemaining); err != nil {
				return fmt.Errorf("scan layer balance: %w", err)
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	return out, err
}

// OverconsumedLayers capas cuyos consumos registrados superan su cantidad
// original, o cuyo remaining no cuadra con original - consumido.
func (r *ReconciliationRepo) OverconsumedLayers(ctx context.Context, companyID string, limit int) ([]repository.OverconsumedLayerRow, error) {
	query := `
		SELECT l.id, l.quantity_original, COALESCE(SUM(c.consumed_qty), 0) AS consumed
		FROM cost_layers l
		LEFT JOIN cost_layer_consumptions c ON c.layer_id = l.id
		WHERE l.company_id = $1
		GROUP BY l.id, l.quantity_original, l.quantity_remaining
		HAVING COALESCE(SUM(c.consumed_qty), 0) > l.quantity_original
		    OR l.quantity_remaining <> l.quantity_original - COALESCE(SUM(c.consumed_qty), 0)
		LIMIT $2`
	var out []repository.OverconsumedLayerRow
	err := r.query(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, companyID, limit)
		if err != nil {
			return fmt.Errorf("overconsumed layers: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var row repository.OverconsumedLayerRow
			if err := rows.Scan(&row.LayerID, &row.QuantityOriginal, &row.ConsumedTotal); err != nil {
				return fmt.Errorf("scan overconsumed layer: %w", err)
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	return out, err
}

// PostedExecutionCosts recomputa, por ejecución posteada, el costo de componentes
// reclamado y el costo de producto terminado creado por su movimiento de
// producción, junto al agregado persistido en el documento.
func (r *ReconciliationRepo) PostedExecutionCosts(ctx context.Context, companyID string, limit int) ([]repository.ExecutionCostRow, error) {
	query := `
		SELECT e.id, e.work_order_id,
		       COALESCE((SELECT SUM(c.extended_cost)
		                 FROM cost_layer_consumptions c
		                 WHERE c.wip_execution_id = e.id), 0) AS claimed,
		       COALESCE((SELECT SUM(cl.unit_cost * cl.quantity_original)
		                 FROM cost_layers cl
		                 WHERE cl.movement_id = e.production_movement_id), 0) AS produced,
		       e.wip_total_cost
		FROM work_order_executions e
		JOIN work_orders w ON w.id = e.work_order_id
		WHERE w.company_id = $1 AND e.status = 'posted'
		ORDER BY e.posted_at DESC
		LIMIT $2`
	var out []repository.ExecutionCostRow
	err := r.query(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, companyID, limit)
		if err != nil {
			return fmt.Errorf("posted execution costs: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var row repository.ExecutionCostRow
			if err := rows.Scan(&row.ExecutionID, &row.WorkOrderID, &row.ClaimedCost, &row.ProducedCost, &row.StoredWIPTotal); err != nil {
				return fmt.Errorf("scan execution cost: %w", err)
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	return out, err
}

// NegativeOnHand saldos on-hand negativos recomputados desde capas.
func (r *ReconciliationRepo) NegativeOnHand(ctx context.Context, companyID string, limit int) ([]repository.OnHandRow, error) {
	query := `
		SELECT item_id, location_id, SUM(quantity_remaining) AS on_hand
		FROM cost_layers
		WHERE company_id = $1
		GROUP BY item_id, location_id
		HAVING SUM(quantity_remaining) < 0
		LIMIT $2`
	var out []repository.OnHandRow
	err := r.query(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, companyID, limit)
		if err != nil {
			return fmt.Errorf("negative on hand: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var row repository.OnHandRow
			if err := rows.Scan(&row.ItemID, &row.LocationID, &row.OnHand); err != nil {
				return fmt.Errorf("scan on hand: %w", err)
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	return out, err
}
