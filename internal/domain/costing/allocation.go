package costing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
)

// AllocateProportional reparte poolCost entre líneas de salida en proporción a su
// cantidad canónica. La última línea recibe el residuo de redondeo para que la
// suma de asignaciones sea exactamente igual al pool (invariante de conservación).
//
// canonicalQtys debe sumar > 0; si no, la asignación es indefinida y se devuelve
// INVALID_OUTPUT_QTY.
func AllocateProportional(poolCost decimal.Decimal, canonicalQtys []decimal.Decimal) ([]decimal.Decimal, error) {
	totalOut := decimal.Zero
	for _, q := range canonicalQtys {
		totalOut = totalOut.Add(q)
	}
	if !totalOut.GreaterThan(decimal.Zero) {
		return nil, &domain.PostingError{
			Code:      domain.CodeInvalidOutputQty,
			Requested: totalOut,
			Detail:    "la cantidad canónica total producida debe ser positiva",
		}
	}

	allocated := make([]decimal.Decimal, len(canonicalQtys))
	assigned := decimal.Zero
	for i, q := range canonicalQtys {
		if i == len(canonicalQtys)-1 {
			allocated[i] = poolCost.Sub(assigned)
			break
		}
		share := poolCost.Mul(q).Div(totalOut)
		allocated[i] = share
		assigned = assigned.Add(share)
	}
	return allocated, nil
}
