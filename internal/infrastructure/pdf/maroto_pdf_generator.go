// Package pdf implementa la generación del reporte de costos de una orden de
// trabajo: progreso, costo WIP acumulado y el detalle de emisiones y
// terminaciones posteadas.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa  │  Código de orden + Estado + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: plan vs completado │ costo WIP total y unitario   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA EMISIONES: Fecha | Doc | Estado | Líneas             │
//	│  TABLA TERMINACIONES: Fecha | Doc | Qty | Costo asignado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: pool WIP sin reclamar                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// CostReportData datos ya cargados del reporte: la capa HTTP los arma desde los
// casos de uso; el generador solo dibuja.
type CostReportData struct {
	Company      *entity.Company
	WorkOrder    *entity.WorkOrder
	Issues       []*entity.WorkOrderMaterialIssue
	Executions   []*entity.WorkOrderExecution
	UnclaimedWIP decimal.Decimal
}

// MarotoPDFGenerator genera el reporte de costos con Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateCostReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateCostReport(_ context.Context, data CostReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Costos de Orden de Trabajo", true).
		WithAuthor(data.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Company, data.WorkOrder))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRows(data.WorkOrder)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitleRow("EMISIONES DE MATERIAL"))
	m.AddRows(issueHeaderRow())
	for _, issue := range data.Issues {
		m.AddRows(issueRow(issue))
	}

	m.AddRows(sectionTitleRow("TERMINACIONES"))
	m.AddRows(executionHeaderRow())
	for _, exec := range data.Executions {
		m.AddRows(executionRow(exec))
	}

	m.AddRows(line.NewRow(2))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(data.UnclaimedWIP, data.WorkOrder.WIPCostMethod))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y código de orden + estado + fecha (der).
func headerRow(company *entity.Company, wo *entity.WorkOrder) core.Row {
	fecha := wo.CreatedAt.Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de costos de producción", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE TRABAJO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(wo.Code, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Estado: "+wo.Status+"  ·  "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRows: progreso y agregados de costo WIP de la orden.
func summaryRows(wo *entity.WorkOrder) []core.Row {
	return []core.Row{
		row.New(7).Add(
			col.New(6).Add(
				text.New("Clase: "+wo.Kind+"  ·  Ítem de salida: "+wo.OutputItemID, props.Text{Size: 8, Top: 1}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Planificado: %s %s  ·  Completado: %s",
					wo.QuantityPlanned.String(), wo.OutputUOM, wo.QuantityCompleted.String()),
					props.Text{Size: 8, Align: align.Right, Top: 1}),
			),
		),
		row.New(7).Add(
			col.New(6).Add(
				text.New("Costo WIP total: "+wo.WIPTotalCost.StringFixed(4), props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 1, Color: colorPrimary,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Costo unitario: %s  ·  Qty canónica: %s",
					wo.WIPUnitCost.StringFixed(6), wo.WIPQuantityCanonical.String()),
					props.Text{Size: 8, Align: align.Right, Top: 1}),
			),
		),
	}
}

func sectionTitleRow(title string) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
		),
	)
}

func issueHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell(3, "Fecha"),
		headerCell(4, "Documento"),
		headerCell(2, "Estado"),
		headerCell(3, "Líneas"),
	)
}

func issueRow(issue *entity.WorkOrderMaterialIssue) core.Row {
	return row.New(5).Add(
		bodyCell(3, issue.OccurredAt.Format("02/01/2006 15:04")),
		bodyCell(4, issue.ID),
		bodyCell(2, issue.Status),
		bodyCell(3, fmt.Sprintf("%d", len(issue.Lines))),
	)
}

func executionHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell(3, "Fecha"),
		headerCell(4, "Documento"),
		headerCell(2, "Qty canónica"),
		headerCell(3, "Costo asignado"),
	)
}

func executionRow(exec *entity.WorkOrderExecution) core.Row {
	return row.New(5).Add(
		bodyCell(3, exec.OccurredAt.Format("02/01/2006 15:04")),
		bodyCell(4, exec.ID),
		bodyCell(2, exec.WIPQuantityCanonical.String()),
		bodyCell(3, exec.WIPTotalCost.StringFixed(4)),
	)
}

func footerRow(unclaimed decimal.Decimal, method string) core.Row {
	return row.New(8).Add(
		col.New(6).Add(
			text.New("Pool WIP sin reclamar: "+unclaimed.StringFixed(4), props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 2,
			}),
		),
		col.New(6).Add(
			text.New("Método de costeo: "+method, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func headerCell(size int, label string) core.Col {
	return col.New(size).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1}),
	)
}

func bodyCell(size int, value string) core.Col {
	return col.New(size).Add(
		text.New(value, props.Text{Size: 7, Top: 1}),
	)
}
