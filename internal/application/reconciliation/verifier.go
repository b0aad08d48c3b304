// Package reconciliation implementa el verificador externo de conciliación:
// recomputa los invariantes de conservación del motor de costeo desde las mismas
// tablas, fuera de banda y en solo lectura. Es la especificación ejecutable que
// el camino de posteo debe satisfacer; jamás muta nada.
package reconciliation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// CostTolerance tolerancia de la identidad de conservación de costo:
// |costo componentes reclamado - costo producido| <= 1e-6 por ejecución.
var CostTolerance = decimal.New(1, -6)

// sampleLimit máximo de filas de muestra por chequeo en el reporte.
const sampleLimit = 50

// Nombres de chequeo del reporte.
const (
	CheckNegativeLayerRemaining = "NEGATIVE_LAYER_REMAINING"
	CheckLayerOverconsumption   = "LAYER_OVERCONSUMPTION"
	CheckCostConservation       = "WIP_COST_CONSERVATION"
	CheckStoredWIPAggregates    = "STORED_WIP_AGGREGATES"
	CheckNegativeOnHand         = "NEGATIVE_ON_HAND"
)

// Violation una violación detectada, con su fila de muestra serializable.
type Violation struct {
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

// Report resultado de una corrida del verificador.
type Report struct {
	CompanyID  string         `json:"company_id"`
	RanAt      time.Time      `json:"ran_at"`
	Checks     int            `json:"checks"`
	Violations []Violation    `json:"violations"`
	ByCheck    map[string]int `json:"by_check"`
}

// Clean indica si la corrida no encontró drift.
func (r *Report) Clean() bool { return len(r.Violations) == 0 }

// Verifier corre los chequeos contra el puerto de solo lectura.
type Verifier struct {
	repo repository.ReconciliationRepository
}

// NewVerifier construye el verificador.
func NewVerifier(repo repository.ReconciliationRepository) *Verifier {
	return &Verifier{repo: repo}
}

// Run ejecuta todos los chequeos para una empresa y arma el reporte.
// Debe correr a un nivel de aislamiento de snapshot suficiente para no leer una
// capa a mitad de decremento (el adaptador usa una tx READ ONLY).
func (v *Verifier) Run(ctx context.Context, companyID string) (*Report, error) {
	report := &Report{
		CompanyID: companyID,
		RanAt:     time.Now(),
		ByCheck:   map[string]int{},
	}

	negative, err := v.repo.NegativeRemainingLayers(ctx, companyID, sampleLimit)
	if err != nil {
		return nil, err
	}
	report.Checks++
	for _, row := range negative {
		v.add(report, CheckNegativeLayerRemaining,
			"capa "+row.LayerID+" con remaining "+row.QuantityRemaining.String()+
				" en ítem "+row.ItemID+" ubicación "+row.LocationID)
	}

	over, err := v.repo.OverconsumedLayers(ctx, companyID, sampleLimit)
	if err != nil {
		return nil, err
	}
	report.Checks++
	for _, row := range over {
		v.add(report, CheckLayerOverconsumption,
			"capa "+row.LayerID+" consumida "+row.ConsumedTotal.String()+
				" sobre original "+row.QuantityOriginal.String())
	}

	execs, err := v.repo.PostedExecutionCosts(ctx, companyID, sampleLimit)
	if err != nil {
		return nil, err
	}
	report.Checks += 2
	for _, row := range execs {
		drift := row.ClaimedCost.Sub(row.ProducedCost).Abs()
		if drift.GreaterThan(CostTolerance) {
			v.add(report, CheckCostConservation,
				"ejecución "+row.ExecutionID+": consumido "+row.ClaimedCost.String()+
					" vs producido "+row.ProducedCost.String()+" (drift "+drift.String()+")")
		}
		storedDrift := row.ClaimedCost.Sub(row.StoredWIPTotal).Abs()
		if storedDrift.GreaterThan(CostTolerance) {
			v.add(report, CheckStoredWIPAggregates,
				"ejecución "+row.ExecutionID+": wip_total_cost almacenado "+row.StoredWIPTotal.String()+
					" no coincide con consumos reclamados "+row.ClaimedCost.String())
		}
	}

	onHand, err := v.repo.NegativeOnHand(ctx, companyID, sampleLimit)
	if err != nil {
		return nil, err
	}
	report.Checks++
	for _, row := range onHand {
		v.add(report, CheckNegativeOnHand,
			"ítem "+row.ItemID+" ubicación "+row.LocationID+" con on-hand "+row.OnHand.String())
	}

	return report, nil
}

func (v *Verifier) add(r *Report, check, detail string) {
	r.Violations = append(r.Violations, Violation{Check: check, Detail: detail})
	r.ByCheck[check]++
}
