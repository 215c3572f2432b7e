package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/services"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type WorkOrderHandler struct {
	DB  *gorm.DB
	Svc *services.WorkOrderService
}

func NewWorkOrderHandler(db *gorm.DB, svc *services.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{DB: db, Svc: svc}
}

func (h *WorkOrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/vorgaenge", h.collection)
	mux.HandleFunc("/vorgaenge/get", h.get)
	mux.HandleFunc("/vorgaenge/update", h.update)
	mux.HandleFunc("/vorgaenge/status", h.status)
	mux.HandleFunc("/vorgaenge/delete", h.delete)
}

type workOrderReq struct {
	Number         string                   `json:"vorgangsnummer"`
	Title          string                   `json:"titel"`
	Description    string                   `json:"beschreibung"`
	IntakeDate     string                   `json:"eingang"`
	OdometerIntake int                      `json:"kmStandEingang"`
	Notes          string                   `json:"notizen"`
	CustomerID     uint                     `json:"kundeId"`
	VehicleID      uint                     `json:"fahrzeugId"`
	Items          []services.WorkItemInput `json:"arbeiten"`
}

func (h *WorkOrderHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

// list supports ?status= and ?kundeId= filters.
func (h *WorkOrderHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.WorkOrder{})
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if kid := r.URL.Query().Get("kundeId"); kid != "" {
		dbq = dbq.Where("customer_id = ?", kid)
	}
	var total int64
	dbq.Count(&total)
	var orders []models.WorkOrder
	if err := dbq.Preload("Customer").Preload("Vehicle").Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).Order("id desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_work_orders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": orders, "total": total, "limit": limit, "offset": offset})
}

func (h *WorkOrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req workOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("titel", req.Title, v)
	validation.RequiredID("kundeId", req.CustomerID, v)
	validation.RequiredID("fahrzeugId", req.VehicleID, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	intake, err := parseDate(req.IntakeDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"eingang": "invalid"})
		return
	}
	var veh models.Vehicle
	if err := h.DB.First(&veh, req.VehicleID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_vehicle", nil)
		return
	}
	if veh.CustomerID != req.CustomerID {
		httpx.JSONError(w, http.StatusBadRequest, "vehicle_customer_mismatch", nil)
		return
	}
	wo, err := h.Svc.Create(services.CreateWorkOrderInput{
		Number:         strings.TrimSpace(req.Number),
		Title:          req.Title,
		Description:    req.Description,
		IntakeDate:     intake,
		OdometerIntake: req.OdometerIntake,
		Notes:          req.Notes,
		CustomerID:     req.CustomerID,
		VehicleID:      req.VehicleID,
		Items:          req.Items,
	})
	if err != nil {
		if errors.Is(err, services.ErrNumberTaken) {
			httpx.JSONError(w, http.StatusBadRequest, "nummer_bereits_vergeben", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_work_order", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, wo)
}

func (h *WorkOrderHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var wo models.WorkOrder
	if err := h.DB.Preload("Customer").Preload("Vehicle").Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).First(&wo, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_work_order")
		return
	}
	httpx.JSON(w, http.StatusOK, wo)
}

// update replaces the header fields and the full work item set.
func (h *WorkOrderHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var wo models.WorkOrder
	if err := h.DB.First(&wo, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_work_order")
		return
	}
	var req workOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("titel", req.Title, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	updates := map[string]interface{}{
		"title":           req.Title,
		"description":     req.Description,
		"odometer_intake": req.OdometerIntake,
		"notes":           req.Notes,
	}
	if req.IntakeDate != "" {
		intake, err := parseDate(req.IntakeDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"eingang": "invalid"})
			return
		}
		updates["intake_date"] = intake
	}
	if err := h.DB.Model(&wo).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_work_order", nil)
		return
	}
	out, err := h.Svc.ReplaceItems(id, req.Items)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_work_order", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

type workOrderStatusReq struct {
	Status string `json:"status"`
}

func (h *WorkOrderHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var req workOrderStatusReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.OneOf("status", req.Status, []string{
		models.WorkOrderOpen, models.WorkOrderInProgress, models.WorkOrderDone, models.WorkOrderInvoiced,
	}, v)
	validation.Required("status", req.Status, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	wo, err := h.Svc.UpdateStatus(id, req.Status, timeNow())
	if err != nil {
		notFoundOrInternal(w, err, "failed_to_update_status")
		return
	}
	httpx.JSON(w, http.StatusOK, wo)
}

func (h *WorkOrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrWorkOrderInvoiced) {
			httpx.JSONError(w, http.StatusConflict, "vorgang_bereits_abgerechnet", nil)
			return
		}
		notFoundOrInternal(w, err, "failed_to_delete_work_order")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
