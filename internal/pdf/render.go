// Package pdf renders a composed page tree to an A4 PDF via maroto.
// It owns layout mechanics only (heights, grid columns, page flow);
// content and styling decisions live in the compose package.
package pdf

import (
	"fmt"

	"github.com/mfreund/werkstatt/internal/compose"

	"github.com/johnfercher/maroto/v2"
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
)

// Line-item grid on maroto's 12 column raster.
const (
	colPos   = 1
	colDesc  = 5
	colQty   = 1
	colUnit  = 1
	colPrice = 2
	colTotal = 2
)

// Render lays the block list out onto A4 pages. Rows flow to
// additional pages automatically; the footer band repeats per page.
func Render(doc compose.Document, styles compose.Stylesheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(10).
		WithRightMargin(12).
		Build()

	m := maroto.New(cfg)
	r := renderer{m: m, styles: styles}

	// The footer must be registered before content rows are added.
	for _, b := range doc.Blocks {
		if fb, ok := b.(compose.FooterBand); ok {
			if err := r.registerFooter(fb); err != nil {
				return nil, fmt.Errorf("register footer: %w", err)
			}
			break
		}
	}

	for _, b := range doc.Blocks {
		switch blk := b.(type) {
		case compose.HeaderBand:
			r.headerBand(blk)
		case compose.SenderLine:
			r.senderLine(blk)
		case compose.AddressBlock:
			r.addressBlock(blk)
		case compose.VehicleBlock:
			r.vehicleBlock(blk)
		case compose.TableHead:
			r.tableHead(blk)
		case compose.GroupLabel:
			r.groupLabel(blk)
		case compose.TableRow:
			r.tableRow(blk)
		case compose.TotalsBlock:
			r.totalsBlock(blk)
		case compose.PaymentBlock:
			r.paymentBlock(blk)
		case compose.NotesBlock:
			r.notesBlock(blk)
		case compose.FooterBand:
			// already registered
		default:
			return nil, fmt.Errorf("unknown block kind %q", b.Kind())
		}
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

type renderer struct {
	m      core.Maroto
	styles compose.Stylesheet
}

func rgb(c compose.RGB) *props.Color {
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}

func (r renderer) text(s string, ts compose.TextStyle, extra props.Text) core.Component {
	p := extra
	p.Size = ts.Size
	p.Color = rgb(ts.Color)
	switch {
	case ts.Bold && ts.Italic:
		p.Style = fontstyle.BoldItalic
	case ts.Bold:
		p.Style = fontstyle.Bold
	case ts.Italic:
		p.Style = fontstyle.Italic
	}
	return text.New(s, p)
}

func (r renderer) shadedCell() *props.Cell {
	return &props.Cell{BackgroundColor: rgb(r.styles.Colors.LightGray)}
}

func (r renderer) headerBand(b compose.HeaderBand) {
	bg := &props.Cell{BackgroundColor: rgb(r.styles.Colors.Primary)}
	left := col.New(7).Add(
		r.text(b.IssuerName, r.styles.CompanyName, props.Text{Top: 3}),
	)
	if b.Tagline != "" {
		left.Add(r.text(b.Tagline, r.styles.Tagline, props.Text{Top: 12}))
	}
	r.m.AddRow(20,
		left.WithStyle(bg),
		col.New(5).Add(
			r.text(b.Title, r.styles.DocTitle, props.Text{Top: 3, Align: align.Right}),
			r.text(b.Number, r.styles.DocNumber, props.Text{Top: 13, Align: align.Right}),
		).WithStyle(bg),
	)
	r.m.AddRow(6, col.New(12))
}

func (r renderer) senderLine(b compose.SenderLine) {
	r.m.AddRow(5, col.New(12).Add(r.text(b.Text, r.styles.SenderLine, props.Text{})))
	r.m.AddRow(1, line.NewCol(12, props.Line{Color: rgb(r.styles.Colors.Border)}))
}

func (r renderer) addressBlock(b compose.AddressBlock) {
	left := col.New(6).Add(
		r.text(b.RecipientLabel, r.styles.SectionLabel, props.Text{}),
		r.text(b.Name, r.styles.AddressName, props.Text{Top: 4}),
	)
	top := 9.0
	if b.Person != "" {
		left.Add(r.text(b.Person, r.styles.Body, props.Text{Top: top}))
		top += 4
	}
	left.Add(
		r.text(b.Street, r.styles.Body, props.Text{Top: top}),
		r.text(b.City, r.styles.Body, props.Text{Top: top + 4}),
	)

	right := col.New(6).Add(
		r.text(b.DateLabel, r.styles.SectionLabel, props.Text{Align: align.Right}),
		r.text(b.Date, r.styles.AddressName, props.Text{Top: 4, Align: align.Right}),
	)
	if b.DueLabel != "" {
		right.Add(
			r.text(b.DueLabel, r.styles.SectionLabel, props.Text{Top: 10, Align: align.Right}),
			r.text(b.Due, r.styles.AddressName, props.Text{Top: 14, Align: align.Right}),
		)
	}
	r.m.AddRow(24, left, right)
	r.m.AddRow(4, col.New(12))
}

func (r renderer) vehicleBlock(b compose.VehicleBlock) {
	cell := r.shadedCell()
	r.m.AddRow(14,
		col.New(12).Add(
			r.text(b.Title, r.styles.SectionLabel, props.Text{Top: 1, Left: 2}),
			r.text(b.Plate, r.styles.AddressName, props.Text{Top: 5, Left: 2}),
			r.text(b.Details, r.styles.Body, props.Text{Top: 10, Left: 2}),
		).WithStyle(cell),
	)
	r.m.AddRow(4, col.New(12))
}

func (r renderer) tableHead(b compose.TableHead) {
	bg := &props.Cell{BackgroundColor: rgb(r.styles.Colors.Primary)}
	hs := r.styles.TableHeader
	r.m.AddRow(8,
		col.New(colPos).Add(r.text(b.Position, hs, props.Text{Top: 2, Align: align.Center})).WithStyle(bg),
		col.New(colDesc).Add(r.text(b.Description, hs, props.Text{Top: 2, Left: 1})).WithStyle(bg),
		col.New(colQty).Add(r.text(b.Quantity, hs, props.Text{Top: 2, Align: align.Center})).WithStyle(bg),
		col.New(colUnit).Add(r.text(b.Unit, hs, props.Text{Top: 2, Align: align.Center})).WithStyle(bg),
		col.New(colPrice).Add(r.text(b.UnitPrice, hs, props.Text{Top: 2, Align: align.Right})).WithStyle(bg),
		col.New(colTotal).Add(r.text(b.LineTotal, hs, props.Text{Top: 2, Align: align.Right})).WithStyle(bg),
	)
}

func (r renderer) groupLabel(b compose.GroupLabel) {
	r.m.AddRow(7,
		col.New(12).Add(
			r.text(b.Text, compose.TextStyle{Size: 9, Bold: true, Color: r.styles.Colors.Primary}, props.Text{Top: 2, Left: 1}),
		),
	)
}

func (r renderer) tableRow(b compose.TableRow) {
	cs := r.styles.TableCell
	bold := cs
	bold.Bold = true
	cols := []core.Col{
		col.New(colPos).Add(r.text(b.Position, cs, props.Text{Top: 1.5, Align: align.Center})),
		col.New(colDesc).Add(r.text(b.Description, cs, props.Text{Top: 1.5, Left: 1})),
		col.New(colQty).Add(r.text(b.Quantity, cs, props.Text{Top: 1.5, Align: align.Center})),
		col.New(colUnit).Add(r.text(b.Unit, cs, props.Text{Top: 1.5, Align: align.Center})),
		col.New(colPrice).Add(r.text(b.UnitPrice, cs, props.Text{Top: 1.5, Align: align.Right})),
		col.New(colTotal).Add(r.text(b.LineTotal, bold, props.Text{Top: 1.5, Align: align.Right})),
	}
	if b.Shaded {
		cell := r.shadedCell()
		for i, c := range cols {
			cols[i] = c.WithStyle(cell)
		}
	}
	r.m.AddRow(7, cols...)
}

func (r renderer) totalsBlock(b compose.TotalsBlock) {
	cell := r.shadedCell()
	r.m.AddRow(4, col.New(12))
	r.m.AddRow(6,
		col.New(6),
		col.New(4).Add(r.text(b.SubtotalLabel, r.styles.TotalsLabel, props.Text{Top: 1, Left: 2})).WithStyle(cell),
		col.New(2).Add(r.text(b.Subtotal, r.styles.TableCell, props.Text{Top: 1, Align: align.Right})).WithStyle(cell),
	)
	if b.HasDiscount() {
		discount := compose.TextStyle{Size: 9, Color: r.styles.Colors.Success}
		r.m.AddRow(6,
			col.New(6),
			col.New(4).Add(r.text(b.DiscountLabel, r.styles.TotalsLabel, props.Text{Top: 1, Left: 2})).WithStyle(cell),
			col.New(2).Add(r.text(b.Discount, discount, props.Text{Top: 1, Align: align.Right})).WithStyle(cell),
		)
	}
	r.m.AddRow(6,
		col.New(6),
		col.New(4).Add(r.text(b.TaxLabel, r.styles.TotalsLabel, props.Text{Top: 1, Left: 2})).WithStyle(cell),
		col.New(2).Add(r.text(b.Tax, r.styles.TableCell, props.Text{Top: 1, Align: align.Right})).WithStyle(cell),
	)
	r.m.AddRow(2,
		col.New(6),
		line.NewCol(6, props.Line{Color: rgb(r.styles.Colors.Border)}),
	)
	r.m.AddRow(8,
		col.New(6),
		col.New(3).Add(r.text(b.GrandLabel, r.styles.GrandLabel, props.Text{Top: 1, Left: 2})).WithStyle(cell),
		col.New(3).Add(r.text(b.Grand, r.styles.GrandValue, props.Text{Top: 1, Align: align.Right})).WithStyle(cell),
	)
}

func (r renderer) paymentBlock(b compose.PaymentBlock) {
	cell := r.shadedCell()
	r.m.AddRow(6, col.New(12))
	r.m.AddRow(7,
		col.New(12).Add(r.text(b.Title, compose.TextStyle{Size: 10, Bold: true, Color: r.styles.Colors.Dark}, props.Text{Top: 1, Left: 2})).WithStyle(cell),
	)
	for _, pr := range b.Rows {
		vs := r.styles.Body
		vs.Bold = true
		if pr.Emph {
			vs = r.styles.PaymentIBAN
		}
		r.m.AddRow(5,
			col.New(3).Add(r.text(pr.Label, r.styles.TotalsLabel, props.Text{Left: 2})).WithStyle(cell),
			col.New(9).Add(r.text(pr.Value, vs, props.Text{})).WithStyle(cell),
		)
	}
	if b.SkontoNote != "" {
		r.m.AddRow(6,
			col.New(12).Add(r.text(b.SkontoNote, r.styles.PaymentNote, props.Text{Top: 1, Left: 2})).WithStyle(cell),
		)
	}
}

func (r renderer) notesBlock(b compose.NotesBlock) {
	cell := &props.Cell{BackgroundColor: rgb(r.styles.Colors.NotesBg)}
	r.m.AddRow(5, col.New(12))
	r.m.AddRow(6,
		col.New(12).Add(r.text(b.Title, r.styles.NotesTitle, props.Text{Top: 1, Left: 2})).WithStyle(cell),
	)
	r.m.AddRow(8,
		col.New(12).Add(r.text(b.Text, r.styles.Body, props.Text{Left: 2})).WithStyle(cell),
	)
}

func (r renderer) registerFooter(b compose.FooterBand) error {
	ft := r.styles.FooterTitle
	fx := r.styles.FooterText

	columns := make([]core.Col, 0, 3)
	for _, c := range []struct {
		title string
		lines []string
	}{
		{b.ContactTitle, b.Contact},
		{b.BankTitle, b.Bank},
		{b.TaxTitle, b.Tax},
	} {
		cc := col.New(4).Add(r.text(c.title, ft, props.Text{}))
		top := 3.5
		for _, l := range c.lines {
			cc.Add(r.text(l, fx, props.Text{Top: top}))
			top += 3
		}
		columns = append(columns, cc)
	}

	return r.m.RegisterFooter(
		row.New(16).Add(columns...),
		row.New(4).Add(
			col.New(12).Add(r.text(b.ClosingLine, fx, props.Text{Top: 1, Align: align.Center})),
		),
	)
}
