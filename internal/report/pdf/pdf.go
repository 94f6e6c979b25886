package pdf

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
)

const fontFamily = "report-sans"

// The core fonts are cp1252 only.
var asciiFold = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z",
	"Ą", "A", "Ć", "C", "Ę", "E", "Ł", "L", "Ń", "N", "Ó", "O", "Ś", "S", "Ź", "Z", "Ż", "Z",
	"°", "",
)

var (
	titleText  = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}
	labelText  = props.Text{Size: 9, Style: fontstyle.Bold}
	valueText  = props.Text{Size: 9}
	headerCell = props.Text{Size: 8, Style: fontstyle.Bold}
	bodyCell   = props.Text{Size: 8}
	alertCell  = props.Text{Size: 8, Style: fontstyle.Bold, Color: &props.Color{Red: 200}}
)

type AuditItem struct {
	Item   string
	Passed bool
	Notes  string
}

type AuditReport struct {
	Checklist string
	Category  string
	Auditor   string
	AuditDate string
	Score     float64
	Threshold float64
	Passed    int
	Total     int
	Notes     string
	Items     []AuditItem
	Generated string
}

type BatchLabel struct {
	Product             string
	ProductCode         string
	BatchNumber         string
	ProductionDate      string
	CompletedAt         string
	Quantity            string
	FinalTemperature    string
	RequiredTemperature string
	Status              string
}

type TemperatureRow struct {
	Point       string
	MeasuredAt  string
	Temperature string
	Limits      string
	Compliant   bool
	Notes       string
}

type TemperatureLog struct {
	Title     string
	Period    string
	Rows      []TemperatureRow
	Generated string
}

// Fonts names the TrueType files of the report font family. Bold falls back
// to Regular.
type Fonts struct {
	Regular string
	Bold    string
}

// Renderer prints reports. A nil Renderer or one without fonts uses the
// core Arial font and folds Polish letters to ASCII.
type Renderer struct {
	fonts []*entity.CustomFont
}

func NewRenderer(f Fonts) (*Renderer, error) {
	if f.Regular == "" {
		return &Renderer{}, nil
	}
	bold := f.Bold
	if bold == "" {
		bold = f.Regular
	}
	fonts, err := repository.New().
		AddUTF8Font(fontFamily, fontstyle.Normal, f.Regular).
		AddUTF8Font(fontFamily, fontstyle.Bold, bold).
		Load()
	if err != nil {
		return nil, fmt.Errorf("load report fonts: %w", err)
	}
	return &Renderer{fonts: fonts}, nil
}

// Unicode reports whether a TrueType family is registered.
func (r *Renderer) Unicode() bool {
	return r != nil && len(r.fonts) > 0
}

func (r *Renderer) text(s string) string {
	if r.Unicode() {
		return s
	}
	return asciiFold.Replace(s)
}

func (r *Renderer) newDocument() core.Maroto {
	builder := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: r.text("Strona {current} z {total}"),
			Place:   props.RightBottom,
		})
	if r.Unicode() {
		builder = builder.
			WithCustomFonts(r.fonts).
			WithDefaultFont(&props.Font{Family: fontFamily})
	}
	return maroto.New(builder.Build())
}

func render(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func (r *Renderer) col(size int, value string, ps ...props.Text) core.Col {
	return text.NewCol(size, r.text(value), ps...)
}

func (r *Renderer) field(label, value string) core.Row {
	if value == "" {
		value = "-"
	}
	return row.New(6).Add(
		r.col(4, label, labelText),
		r.col(8, value, valueText),
	)
}

// RenderAuditReport prints one audit with its score and item table.
func (r *Renderer) RenderAuditReport(a AuditReport) ([]byte, error) {
	m := r.newDocument()

	m.AddRow(14, r.col(12, "Protokół audytu wewnętrznego", titleText))
	m.AddRows(
		r.field("Lista kontrolna", a.Checklist),
		r.field("Kategoria", a.Category),
		r.field("Audytor", a.Auditor),
		r.field("Data audytu", a.AuditDate),
	)

	verdict := "POZYTYWNY"
	style := props.Text{Size: 12, Style: fontstyle.Bold}
	if a.Score < a.Threshold {
		verdict = "NEGATYWNY"
		style.Color = &props.Color{Red: 200}
	}
	m.AddRow(12,
		r.col(6, fmt.Sprintf("Wynik: %s%%", FormatDecimal(a.Score, 1)), style),
		r.col(6, fmt.Sprintf("%s (%d/%d, próg %s%%)", verdict, a.Passed, a.Total, FormatDecimal(a.Threshold, 0)), style),
	)

	if len(a.Items) > 0 {
		m.AddRow(8,
			r.col(1, "Lp.", headerCell),
			r.col(6, "Punkt kontrolny", headerCell),
			r.col(2, "Ocena", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}),
			r.col(3, "Uwagi", headerCell),
		)
		for i, item := range a.Items {
			result, cell := "TAK", props.Text{Size: 8, Align: align.Center}
			if !item.Passed {
				result, cell = "NIE", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 200}}
			}
			m.AddRow(7,
				r.col(1, fmt.Sprintf("%d", i+1), bodyCell),
				r.col(6, item.Item, bodyCell),
				r.col(2, result, cell),
				r.col(3, item.Notes, bodyCell),
			)
		}
	}

	if a.Notes != "" {
		m.AddRow(6, r.col(12, "Uwagi", labelText))
		m.AddRow(14, r.col(12, a.Notes, valueText))
	}

	m.AddRow(20,
		col.New(6),
		col.New(6).Add(
			text.New(r.text("Podpis audytora"), props.Text{Size: 8, Top: 12, Align: align.Center}),
		),
	)
	m.AddRow(6, r.col(12, "Wygenerowano: "+a.Generated, props.Text{Size: 7}))

	return render(m)
}

// RenderBatchLabel prints a single-page label for a production batch.
func (r *Renderer) RenderBatchLabel(l BatchLabel) ([]byte, error) {
	m := r.newDocument()

	m.AddRow(14, r.col(12, l.Product, titleText))
	m.AddRows(
		r.field("Kod produktu", l.ProductCode),
		r.field("Numer partii", l.BatchNumber),
		r.field("Data produkcji", l.ProductionDate),
		r.field("Zakończono", l.CompletedAt),
		r.field("Ilość", l.Quantity),
		r.field("Temp. końcowa", l.FinalTemperature),
		r.field("Temp. wymagana", l.RequiredTemperature),
		r.field("Status", l.Status),
	)
	m.AddRow(14, r.col(12, l.BatchNumber, props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center, Top: 4}))

	return render(m)
}

// RenderTemperatureLog prints readings in chronological order. The column
// header repeats on every page.
func (r *Renderer) RenderTemperatureLog(l TemperatureLog) ([]byte, error) {
	m := r.newDocument()

	if err := m.RegisterHeader(
		row.New(8).Add(
			r.col(3, "Punkt", headerCell),
			r.col(3, "Data pomiaru", headerCell),
			r.col(2, "Temp. [°C]", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
			r.col(2, "Limity", headerCell),
			r.col(2, "Uwagi", headerCell),
		),
	); err != nil {
		return nil, err
	}

	m.AddRow(12, r.col(12, l.Title, titleText))
	m.AddRows(
		r.field("Okres", l.Period),
		r.field("Liczba pomiarów", fmt.Sprintf("%d", len(l.Rows))),
		r.field("Niezgodne", fmt.Sprintf("%d", countNonCompliant(l.Rows))),
	)

	if len(l.Rows) == 0 {
		m.AddRow(8, r.col(12, "Brak pomiarów w wybranym okresie.", valueText))
	}
	for _, reading := range l.Rows {
		cell := bodyCell
		if !reading.Compliant {
			cell = alertCell
		}
		m.AddRow(6,
			r.col(3, reading.Point, cell),
			r.col(3, reading.MeasuredAt, cell),
			r.col(2, reading.Temperature, props.Text{Size: cell.Size, Style: cell.Style, Color: cell.Color, Align: align.Right}),
			r.col(2, reading.Limits, cell),
			r.col(2, reading.Notes, cell),
		)
	}
	m.AddRow(6, r.col(12, "Wygenerowano: "+l.Generated, props.Text{Size: 7, Top: 2}))

	return render(m)
}

func countNonCompliant(rows []TemperatureRow) int {
	n := 0
	for _, r := range rows {
		if !r.Compliant {
			n++
		}
	}
	return n
}
