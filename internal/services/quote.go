package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/mfreund/werkstatt/internal/billing"
	"github.com/mfreund/werkstatt/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const quotePrefix = "KV"

// ErrUnknownLineKind rejects quote lines outside arbeit/teil/sonstiges.
var ErrUnknownLineKind = errors.New("unknown quote line kind")

// QuoteLineInput is one incoming quote position.
type QuoteLineInput struct {
	Position    int     `json:"position"`
	Kind        string  `json:"typ"`
	Description string  `json:"beschreibung"`
	Quantity    float64 `json:"menge"`
	Unit        string  `json:"einheit"`
	UnitPrice   float64 `json:"einzelpreis"`
}

// QuoteService creates and manages cost estimates (Kostenvoranschläge).
type QuoteService struct {
	DB *gorm.DB
}

func NewQuoteService(db *gorm.DB) *QuoteService { return &QuoteService{DB: db} }

// CreateQuoteInput is the resolved payload of POST /kostenvoranschlaege.
type CreateQuoteInput struct {
	Number          string // empty: allocate KV-<year>-NNNN
	Title           string
	Description     string
	IssueDate       time.Time
	ValidUntil      *time.Time
	TaxRate         float64
	DiscountPercent float64
	Notes           string
	CustomerID      uint
	VehicleID       *uint
	WorkOrderID     *uint
	Lines           []QuoteLineInput
}

// Create persists a quote with its lines in one transaction, deriving
// all stored totals. Number allocation follows the invoice rules with
// the KV prefix, including the single retry on a lost race.
func (s *QuoteService) Create(in CreateQuoteInput) (*models.Quote, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	if err := validateLineKinds(in.Lines); err != nil {
		return nil, err
	}
	autoNumber := in.Number == ""
	var q *models.Quote
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		q, err = s.createOnce(in, autoNumber)
		if err == nil {
			return q, nil
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

func (s *QuoteService) createOnce(in CreateQuoteInput, autoNumber bool) (*models.Quote, error) {
	q := &models.Quote{
		Number:          in.Number,
		Title:           in.Title,
		Description:     in.Description,
		IssueDate:       in.IssueDate,
		ValidUntil:      in.ValidUntil,
		Status:          models.QuoteDraft,
		TaxRate:         in.TaxRate,
		DiscountPercent: in.DiscountPercent,
		Notes:           in.Notes,
		CustomerID:      in.CustomerID,
		VehicleID:       in.VehicleID,
		WorkOrderID:     in.WorkOrderID,
	}
	lines, totals := buildQuoteLines(in.Lines, in.TaxRate, in.DiscountPercent)
	q.NetTotal = totals.Net.InexactFloat64()
	q.TaxAmount = totals.Tax.InexactFloat64()
	q.GrossTotal = totals.Gross.InexactFloat64()
	q.DiscountAmount = totals.DiscountAmount.InexactFloat64()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if autoNumber {
			year := in.IssueDate.Year()
			maxSuffix, err := maxSuffixForYear(tx, &models.Quote{}, "number", quotePrefix, year)
			if err != nil {
				return err
			}
			q.Number = billing.NextSequenceNumber(quotePrefix, year, maxSuffix)
		}
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].QuoteID = q.ID
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Customer").Preload("Vehicle").Preload("WorkOrder").
		Preload("Lines", orderByPosition).First(q, q.ID).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces a quote's editable fields and its full line set.
// Partial line patches are not supported; clients always resend every
// position, which keeps the stored totals and the lines consistent.
func (s *QuoteService) Update(id uint, in CreateQuoteInput) (*models.Quote, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	if err := validateLineKinds(in.Lines); err != nil {
		return nil, err
	}
	var q models.Quote
	if err := s.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	lines, totals := buildQuoteLines(in.Lines, in.TaxRate, in.DiscountPercent)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":            in.Title,
			"description":      in.Description,
			"issue_date":       in.IssueDate,
			"valid_until":      in.ValidUntil,
			"tax_rate":         in.TaxRate,
			"discount_percent": in.DiscountPercent,
			"notes":            in.Notes,
			"net_total":        totals.Net.InexactFloat64(),
			"tax_amount":       totals.Tax.InexactFloat64(),
			"gross_total":      totals.Gross.InexactFloat64(),
			"discount_amount":  totals.DiscountAmount.InexactFloat64(),
		}
		if err := tx.Model(&q).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].QuoteID = id
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Customer").Preload("Vehicle").Preload("WorkOrder").
		Preload("Lines", orderByPosition).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateStatus sets one of the persisted quote states. "abgelaufen" is
// rejected here; it only ever exists as a derived display value.
func (s *QuoteService) UpdateStatus(id uint, status string) (*models.Quote, error) {
	if status == models.QuoteExpired {
		return nil, fmt.Errorf("status %q is derived and cannot be stored", status)
	}
	var q models.Quote
	if err := s.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&q).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// Delete removes a quote with its lines.
func (s *QuoteService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var q models.Quote
		if err := tx.First(&q, id).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&q).Error
	})
}

func validateLineKinds(lines []QuoteLineInput) error {
	for _, l := range lines {
		switch l.Kind {
		case "", models.QuoteLineLabor, models.QuoteLinePart, models.QuoteLineOther:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownLineKind, l.Kind)
		}
	}
	return nil
}

func buildQuoteLines(in []QuoteLineInput, taxRate, discountPercent float64) ([]models.QuoteLine, billing.Totals) {
	lines := make([]models.QuoteLine, 0, len(in))
	lineTotals := make([]decimal.Decimal, 0, len(in))
	for i, l := range in {
		lt := billing.LineTotal(decimal.NewFromFloat(l.Quantity), decimal.NewFromFloat(l.UnitPrice))
		pos := l.Position
		if pos == 0 {
			pos = i + 1
		}
		kind := l.Kind
		if kind == "" {
			kind = models.QuoteLineLabor
		}
		lines = append(lines, models.QuoteLine{
			Position:    pos,
			Kind:        kind,
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
