// Package compose turns a fully resolved invoice or quote into an
// abstract, styled page tree: a flat ordered list of typed blocks that
// a rendering backend (PDF, HTML mail) lays out onto A4 pages. The
// composer is a read-only projection: it never touches the database,
// the file system or the network, and never mutates its input.
package compose

// BlockKind tags every node of the page tree.
type BlockKind string

const (
	KindHeaderBand   BlockKind = "header_band"
	KindSenderLine   BlockKind = "sender_line"
	KindAddressBlock BlockKind = "address_block"
	KindVehicleBlock BlockKind = "vehicle_block"
	KindTableHead    BlockKind = "table_head"
	KindGroupLabel   BlockKind = "group_label"
	KindTableRow     BlockKind = "table_row"
	KindTotalsBlock  BlockKind = "totals_block"
	KindPaymentBlock BlockKind = "payment_block"
	KindNotesBlock   BlockKind = "notes_block"
	KindFooterBand   BlockKind = "footer_band"
)

// Block is one renderable unit. The set of implementations is closed;
// renderers type-switch over it.
type Block interface {
	Kind() BlockKind
}

// Document is the composed page tree. Blocks appear in print order;
// page breaks are the renderer's concern.
type Document struct {
	Title  string // RECHNUNG or ANGEBOT
	Number string
	Blocks []Block
}

// BlocksOf returns all blocks of one kind, in order.
func (d Document) BlocksOf(kind BlockKind) []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Kind() == kind {
			out = append(out, b)
		}
	}
	return out
}

// HeaderBand: issuer name and tagline left, document type and number right.
type HeaderBand struct {
	IssuerName string
	Tagline    string
	Title      string
	Number     string
}

func (HeaderBand) Kind() BlockKind { return KindHeaderBand }

// SenderLine: one small-print issuer line above the recipient address,
// positioned for windowed envelopes.
type SenderLine struct {
	Text string
}

func (SenderLine) Kind() BlockKind { return KindSenderLine }

// AddressBlock: recipient on the left, document dates on the right.
type AddressBlock struct {
	RecipientLabel string
	Name           string
	Person         string // contact person when Name is a company; empty otherwise
	Street         string
	City           string

	DateLabel string
	Date      string
	DueLabel  string
	Due       string
}

func (AddressBlock) Kind() BlockKind { return KindAddressBlock }

// VehicleBlock is present only when the document has a vehicle.
type VehicleBlock struct {
	Title   string
	Plate   string
	Details string // "Marke Modell • FIN: ... • 45.000 km"
}

func (VehicleBlock) Kind() BlockKind { return KindVehicleBlock }

// TableHead carries the line-item column captions.
type TableHead struct {
	Position    string
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	LineTotal   string
}

func (TableHead) Kind() BlockKind { return KindTableHead }

// GroupLabel introduces a kind sub-table on grouped quotes.
type GroupLabel struct {
	Text string
}

func (GroupLabel) Kind() BlockKind { return KindGroupLabel }

// TableRow is one formatted line item. Shaded alternates for
// readability and restarts per group.
type TableRow struct {
	Position    string
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	LineTotal   string
	Shaded      bool
}

func (TableRow) Kind() BlockKind { return KindTableRow }

// TotalsBlock, right-aligned: subtotal, optional discount row, tax row
// labeled with the actual rate, grand total.
type TotalsBlock struct {
	SubtotalLabel string
	Subtotal      string

	// DiscountLabel is empty when no discount applies; the renderer
	// must then skip the row entirely.
	DiscountLabel string
	Discount      string

	TaxLabel string
	Tax      string

	GrandLabel string
	Grand      string
}

func (TotalsBlock) Kind() BlockKind { return KindTotalsBlock }

// HasDiscount reports whether the optional discount row is present.
func (t TotalsBlock) HasDiscount() bool { return t.DiscountLabel != "" }

// PaymentRow is one label/value pair inside the payment block.
type PaymentRow struct {
	Label string
	Value string
	Emph  bool // IBAN row renders larger with letter spacing
}

// PaymentBlock appears on invoices only. Rows are built conditionally:
// no BIC row without a BIC, no skonto note without a configured
// early-payment discount.
type PaymentBlock struct {
	Title      string
	Rows       []PaymentRow
	SkontoNote string
}

func (PaymentBlock) Kind() BlockKind { return KindPaymentBlock }

// Row returns the value of the row with the given label, if present.
func (p PaymentBlock) Row(label string) (PaymentRow, bool) {
	for _, r := range p.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return PaymentRow{}, false
}

// NotesBlock is present only when the document carries free-text notes.
type NotesBlock struct {
	Title string
	Text  string
}

func (NotesBlock) Kind() BlockKind { return KindNotesBlock }

// FooterBand: three columns (contact, bank, tax registration) plus a
// closing line, repeated on every page by the renderer.
type FooterBand struct {
	ContactTitle string
	Contact      []string
	BankTitle    string
	Bank         []string
	TaxTitle     string
	Tax          []string
	ClosingLine  string
}

func (FooterBand) Kind() BlockKind { return KindFooterBand }
