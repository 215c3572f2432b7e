package compose

import (
	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/models"
)

// Captions for quote line groups, in print order.
var quoteGroupOrder = []string{models.QuoteLineLabor, models.QuoteLinePart, models.QuoteLineOther}

var quoteGroupLabels = map[string]string{
	models.QuoteLineLabor: "Arbeitsleistungen",
	models.QuoteLinePart:  "Ersatzteile",
	models.QuoteLineOther: "Sonstiges",
}

// ComposeQuote projects a resolved quote onto the page tree. Compared
// to an invoice: the title is ANGEBOT, the second date is the validity
// date, there is no payment block (quotes are not payable), and lines
// spanning more than one kind are grouped under labeled sub-tables
// that share the single totals block.
func ComposeQuote(q models.Quote, issuer config.Issuer) Document {
	doc := Document{Title: "ANGEBOT", Number: q.Number}

	doc.Blocks = append(doc.Blocks,
		HeaderBand{IssuerName: issuer.Name, Tagline: issuer.Tagline, Title: doc.Title, Number: "Nr. " + q.Number},
		senderLine(issuer),
		addressBlock(q.Customer, "Angebotsempfänger", "Datum", q.IssueDate, "Gültig bis", q.ValidUntil),
	)
	if vb, ok := vehicleBlock(q.Vehicle); ok {
		doc.Blocks = append(doc.Blocks, vb)
	}

	doc.Blocks = append(doc.Blocks, lineTableHead())
	if groups := groupLines(q.Lines); len(groups) > 1 {
		for _, g := range groups {
			doc.Blocks = append(doc.Blocks, GroupLabel{Text: quoteGroupLabels[g.kind]})
			for i, l := range g.lines {
				doc.Blocks = append(doc.Blocks, lineRow(l.Position, l.Description, l.Quantity, l.Unit, l.UnitPrice, l.LineTotal, i%2 == 1))
			}
		}
	} else {
		for i, l := range q.Lines {
			doc.Blocks = append(doc.Blocks, lineRow(l.Position, l.Description, l.Quantity, l.Unit, l.UnitPrice, l.LineTotal, i%2 == 1))
		}
	}

	doc.Blocks = append(doc.Blocks, totalsBlock(
		q.NetTotal, q.DiscountPercent, q.DiscountAmount, q.TaxRate, q.TaxAmount, q.GrossTotal,
	))

	if q.Notes != "" {
		doc.Blocks = append(doc.Blocks, NotesBlock{Title: "Hinweise", Text: q.Notes})
	}

	doc.Blocks = append(doc.Blocks, footerBand(issuer))
	return doc
}

type lineGroup struct {
	kind  string
	lines []models.QuoteLine
}

// groupLines buckets lines by kind in the fixed labor/parts/other
// order, keeping position order within each bucket. Unknown kinds fall
// into the "other" bucket. Empty buckets are dropped.
func groupLines(lines []models.QuoteLine) []lineGroup {
	buckets := map[string][]models.QuoteLine{}
	for _, l := range lines {
		kind := l.Kind
		if _, known := quoteGroupLabels[kind]; !known {
			kind = models.QuoteLineOther
		}
		buckets[kind] = append(buckets[kind], l)
	}
	var out []lineGroup
	for _, k := range quoteGroupOrder {
		if ls := buckets[k]; len(ls) > 0 {
			out = append(out, lineGroup{kind: k, lines: ls})
		}
	}
	return out
}
