package services

import (
	"errors"
	"time"

	"github.com/mfreund/werkstatt/internal/billing"
	"github.com/mfreund/werkstatt/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const workOrderPrefix = "A"

// ErrWorkOrderInvoiced protects billed work orders from deletion.
var ErrWorkOrderInvoiced = errors.New("work order is billed by an invoice")

// WorkItemInput is one incoming work step.
type WorkItemInput struct {
	Position    int     `json:"position"`
	Description string  `json:"beschreibung"`
	Status      string  `json:"status"`
	Quantity    float64 `json:"menge"`
	Unit        string  `json:"einheit"`
	UnitPrice   float64 `json:"einzelpreis"`
	Notes       string  `json:"notizen"`
}

// WorkOrderService creates and manages repair jobs (Vorgänge).
type WorkOrderService struct {
	DB *gorm.DB
}

func NewWorkOrderService(db *gorm.DB) *WorkOrderService { return &WorkOrderService{DB: db} }

// CreateWorkOrderInput is the resolved payload of POST /vorgaenge.
type CreateWorkOrderInput struct {
	Number         string // empty: allocate A-<year>-NNNN
	Title          string
	Description    string
	IntakeDate     time.Time
	OdometerIntake int
	Notes          string
	CustomerID     uint
	VehicleID      uint
	Items          []WorkItemInput
}

// Create persists a work order with its items; item totals are derived
// the same way invoice line totals are. A work order may start empty,
// items are often added as the job progresses.
func (s *WorkOrderService) Create(in CreateWorkOrderInput) (*models.WorkOrder, error) {
	autoNumber := in.Number == ""
	var wo *models.WorkOrder
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		wo, err = s.createOnce(in, autoNumber)
		if err == nil {
			return wo, nil
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

func (s *WorkOrderService) createOnce(in CreateWorkOrderInput, autoNumber bool) (*models.WorkOrder, error) {
	wo := &models.WorkOrder{
		Number:         in.Number,
		Title:          in.Title,
		Description:    in.Description,
		IntakeDate:     in.IntakeDate,
		OdometerIntake: in.OdometerIntake,
		Status:         models.WorkOrderOpen,
		Notes:          in.Notes,
		CustomerID:     in.CustomerID,
		VehicleID:      in.VehicleID,
	}
	items := buildWorkItems(in.Items)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if autoNumber {
			year := in.IntakeDate.Year()
			maxSuffix, err := maxSuffixForYear(tx, &models.WorkOrder{}, "number", workOrderPrefix, year)
			if err != nil {
				return err
			}
			wo.Number = billing.NextSequenceNumber(workOrderPrefix, year, maxSuffix)
		}
		if err := tx.Create(wo).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].WorkOrderID = wo.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Customer").Preload("Vehicle").Preload("Items", orderByPosition).
		First(wo, wo.ID).Error; err != nil {
		return nil, err
	}
	return wo, nil
}

// UpdateStatus transitions a work order. Setting "fertig" stamps the
// completion date; leaving the done state clears it again.
func (s *WorkOrderService) UpdateStatus(id uint, status string, now time.Time) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, id).Error; err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"status": status}
	switch {
	case status == models.WorkOrderDone && wo.CompletedDate == nil:
		updates["completed_date"] = now
	case status != models.WorkOrderDone && status != models.WorkOrderInvoiced:
		updates["completed_date"] = nil
	}
	if err := s.DB.Model(&wo).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// ReplaceItems swaps the full item set of a work order and is the only
// way items change; the rationale matches quote line replacement.
func (s *WorkOrderService) ReplaceItems(id uint, in []WorkItemInput) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, id).Error; err != nil {
		return nil, err
	}
	items := buildWorkItems(in)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_order_id = ?", id).Delete(&models.WorkItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].WorkOrderID = id
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Customer").Preload("Vehicle").Preload("Items", orderByPosition).
		First(&wo, id).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// Delete removes a work order and its items unless an invoice bills it.
func (s *WorkOrderService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var wo models.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			return err
		}
		var linked int64
		if err := tx.Model(&models.InvoiceWorkOrder{}).Where("work_order_id = ?", id).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return ErrWorkOrderInvoiced
		}
		if err := tx.Where("work_order_id = ?", id).Delete(&models.WorkItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&wo).Error
	})
}

func buildWorkItems(in []WorkItemInput) []models.WorkItem {
	items := make([]models.WorkItem, 0, len(in))
	for i, it := range in {
		lt := billing.LineTotal(decimal.NewFromFloat(it.Quantity), decimal.NewFromFloat(it.UnitPrice))
		pos := it.Position
		if pos == 0 {
			pos = i + 1
		}
		status := it.Status
		if status == "" {
			status = models.WorkOrderOpen
		}
		items = append(items, models.WorkItem{
			Position:    pos,
			Description: it.Description,
			Status:      status,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			LineTotal:   lt.InexactFloat64(),
			Notes:       it.Notes,
		})
	}
	return items
}
