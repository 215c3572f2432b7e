// Package services holds the write-side orchestration for documents:
// number allocation, line normalization, total derivation and the
// transactional wiring between invoices, quotes and work orders.
package services

import (
	"errors"
	"time"

	"github.com/mfreund/werkstatt/internal/billing"
	"github.com/mfreund/werkstatt/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNumberTaken is returned when a document number is already in
	// use and could not be re-allocated.
	ErrNumberTaken = errors.New("document number already taken")

	// ErrHasLinkedWorkOrders rejects deleting an invoice that bills
	// work orders; an invoiced work order cannot be detached implicitly.
	ErrHasLinkedWorkOrders = errors.New("invoice has linked work orders")

	// ErrEmptyLines rejects documents without a single line item.
	ErrEmptyLines = errors.New("document has no line items")
)

// LineInput is one incoming line item. LineTotal is intentionally
// absent: stored totals are always recomputed here so the
// round-once invariant holds no matter what the client sent.
type LineInput struct {
	Position    int     `json:"position"`
	Description string  `json:"beschreibung"`
	Quantity    float64 `json:"menge"`
	Unit        string  `json:"einheit"`
	UnitPrice   float64 `json:"einzelpreis"`
}

// InvoiceService creates and manages invoices.
type InvoiceService struct {
	DB *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{DB: db} }

// CreateInvoiceInput is the resolved payload of POST /rechnungen.
type CreateInvoiceInput struct {
	Number          string     // empty: allocate next free number for the issue year
	IssueDate       time.Time
	DueDate         *time.Time
	TaxRate         float64
	DiscountPercent float64
	Notes           string
	CustomerID      uint
	VehicleID       *uint
	WorkOrderIDs    []uint
	Lines           []LineInput
}

// Create persists an invoice with all its lines in one transaction.
// Line totals and document totals are derived server-side. Linked work
// orders are marked abgerechnet. When the number was auto-allocated and
// a concurrent writer grabbed it first, allocation is retried once with
// a re-queried maximum; a caller-supplied duplicate surfaces as
// ErrNumberTaken immediately.
func (s *InvoiceService) Create(in CreateInvoiceInput) (*models.Invoice, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	autoNumber := in.Number == ""
	var inv *models.Invoice
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		inv, err = s.createOnce(in, autoNumber)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || !autoNumber {
			break
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrNumberTaken
	}
	return nil, err
}

func (s *InvoiceService) createOnce(in CreateInvoiceInput, autoNumber bool) (*models.Invoice, error) {
	inv := &models.Invoice{
		Number:          in.Number,
		IssueDate:       in.IssueDate,
		DueDate:         in.DueDate,
		Status:          models.InvoiceOpen,
		TaxRate:         in.TaxRate,
		DiscountPercent: in.DiscountPercent,
		Notes:           in.Notes,
		CustomerID:      in.CustomerID,
		VehicleID:       in.VehicleID,
	}
	lines, totals := buildInvoiceLines(in.Lines, in.TaxRate, in.DiscountPercent)
	applyTotals(inv, totals)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if autoNumber {
			year := in.IssueDate.Year()
			maxSuffix, err := maxSuffixForYear(tx, &models.Invoice{}, "number", "", year)
			if err != nil {
				return err
			}
			inv.Number = billing.NextSequenceNumber("", year, maxSuffix)
		}
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		return linkWorkOrders(tx, inv.ID, in.WorkOrderIDs)
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Customer").Preload("Vehicle").Preload("Lines", orderByPosition).
		Preload("WorkOrders.WorkOrder").First(inv, inv.ID).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateStatus transitions an invoice between offen/bezahlt/storniert.
func (s *InvoiceService) UpdateStatus(id uint, status string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.DB.First(&inv, id).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&inv).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Delete removes an invoice and its lines. Invoices that bill work
// orders are protected: the link must be resolved explicitly first.
func (s *InvoiceService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			return err
		}
		var linked int64
		if err := tx.Model(&models.InvoiceWorkOrder{}).Where("invoice_id = ?", id).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return ErrHasLinkedWorkOrders
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}

// NextNumber previews the number the next invoice of the given year
// would get. The preview is not a reservation.
func (s *InvoiceService) NextNumber(year int) (string, error) {
	maxSuffix, err := maxSuffixForYear(s.DB, &models.Invoice{}, "number", "", year)
	if err != nil {
		return "", err
	}
	return billing.NextSequenceNumber("", year, maxSuffix), nil
}

// buildInvoiceLines normalizes incoming lines: stored totals are
// recomputed from quantity and unit price, and positions default to
// the input order when absent.
func buildInvoiceLines(in []LineInput, taxRate, discountPercent float64) ([]models.InvoiceLine, billing.Totals) {
	lines := make([]models.InvoiceLine, 0, len(in))
	lineTotals := make([]decimal.Decimal, 0, len(in))
	for i, l := range in {
		lt := billing.LineTotal(decimal.NewFromFloat(l.Quantity), decimal.NewFromFloat(l.UnitPrice))
		pos := l.Position
		if pos == 0 {
			pos = i + 1
		}
		lines = append(lines, models.InvoiceLine{
			Position:    pos,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			LineTotal:   lt.InexactFloat64(),
		})
		lineTotals = append(lineTotals, lt)
	}
	totals := billing.ComputeTotals(lineTotals, decimal.NewFromFloat(taxRate), decimal.NewFromFloat(discountPercent))
	return lines, totals
}

func applyTotals(inv *models.Invoice, t billing.Totals) {
	inv.NetTotal = t.Net.InexactFloat64()
	inv.TaxAmount = t.Tax.InexactFloat64()
	inv.GrossTotal = t.Gross.InexactFloat64()
	inv.DiscountAmount = t.DiscountAmount.InexactFloat64()
}

// linkWorkOrders attaches billed work orders and flips their status.
func linkWorkOrders(tx *gorm.DB, invoiceID uint, workOrderIDs []uint) error {
	if len(workOrderIDs) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.WorkOrder{}).Where("id IN ?", workOrderIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(workOrderIDs)) {
		return gorm.ErrRecordNotFound
	}
	links := make([]models.InvoiceWorkOrder, 0, len(workOrderIDs))
	for _, woID := range workOrderIDs {
		links = append(links, models.InvoiceWorkOrder{InvoiceID: invoiceID, WorkOrderID: woID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return err
	}
	return tx.Model(&models.WorkOrder{}).Where("id IN ?", workOrderIDs).
		Update("status", models.WorkOrderInvoiced).Error
}

// maxSuffixForYear scans the stored numbers of one prefix/year
// combination and returns the highest counter. Parsing instead of
// lexical MAX keeps five-digit counters ordered correctly.
func maxSuffixForYear(tx *gorm.DB, model interface{}, column, prefix string, year int) (int, error) {
	lead := billing.SequencePrefix(prefix, year)
	var numbers []string
	if err := tx.Model(model).Where(column+" LIKE ?", lead+"%").Pluck(column, &numbers).Error; err != nil {
		return 0, err
	}
	maxSuffix := 0
	for _, n := range numbers {
		if suffix, ok := billing.SequenceSuffix(n, prefix, year); ok && suffix > maxSuffix {
			maxSuffix = suffix
		}
	}
	return maxSuffix, nil
}

func orderByPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("position asc")
}
