// Package pdf implementa la generación del reporte PDF del registro de
// auditoría usando Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte │ Fecha de generación            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Usuario | Acción | Recurso | Estado          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: total de entradas                                      │
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

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// AuditReportGenerator implementa audit.ReportGenerator usando Maroto v2.
type AuditReportGenerator struct {
	appName string
}

// NewAuditReportGenerator construye el generador.
func NewAuditReportGenerator(appName string) *AuditReportGenerator {
	return &AuditReportGenerator{appName: appName}
}

// GenerateAuditReport genera el PDF y devuelve sus bytes.
func (g *AuditReportGenerator) GenerateAuditReport(_ context.Context, entries []entity.AuditLog) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Registro de Auditoría", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(len(entries)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableEntryRows(entries) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(len(entries)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha de generación (der).
func (g *AuditReportGenerator) headerRow(total int) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("REGISTRO DE AUDITORÍA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(g.appName, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("%d entradas", total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 4,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de entradas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Usuario", 3, align.Left),
		h("Acción", 2, align.Left),
		h("Recurso", 2, align.Left),
		h("Estado", 2, align.Center),
	)
}

// tableEntryRows: una fila por entrada de auditoría.
func tableEntryRows(entries []entity.AuditLog) []core.Row {
	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		statusColor := colorGray
		if e.Status == entity.AuditStatusFailure {
			statusColor = colorDanger
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(
				e.Timestamp.Format("02/01/2006 15:04:05"),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				e.UserName,
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				e.Action,
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				e.Resource,
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				e.Status,
				props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Top: 1, Color: statusColor},
			)),
		))
	}
	return result
}

// footerRow: resumen al pie del reporte.
func footerRow(total int) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Total de entradas: %d", total), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}
