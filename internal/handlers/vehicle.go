package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type VehicleHandler struct {
	DB *gorm.DB
}

func NewVehicleHandler(db *gorm.DB) *VehicleHandler { return &VehicleHandler{DB: db} }

func (h *VehicleHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/fahrzeuge", h.collection)
	mux.HandleFunc("/fahrzeuge/get", h.get)
	mux.HandleFunc("/fahrzeuge/update", h.update)
	mux.HandleFunc("/fahrzeuge/delete", h.delete)
}

type vehicleReq struct {
	Plate             string `json:"kennzeichen"`
	Make              string `json:"marke"`
	Model             string `json:"modell"`
	BuildYear         int    `json:"baujahr"`
	VIN               string `json:"fahrgestellnr"`
	FirstRegistration string `json:"erstzulassung"`
	NextInspection    string `json:"naechsteHU"`
	Odometer          int    `json:"kilometerstand"`
	Color             string `json:"farbe"`
	Fuel              string `json:"kraftstoff"`
	CustomerID        uint   `json:"kundeId"`
}

func (req vehicleReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("kennzeichen", req.Plate, v)
	validation.Required("marke", req.Make, v)
	validation.Required("modell", req.Model, v)
	validation.RequiredID("kundeId", req.CustomerID, v)
	return v
}

func (req vehicleReq) apply(veh *models.Vehicle) error {
	firstReg, err := parseDatePtr(req.FirstRegistration)
	if err != nil {
		return err
	}
	nextHU, err := parseDatePtr(req.NextInspection)
	if err != nil {
		return err
	}
	veh.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	veh.Make = req.Make
	veh.Model = req.Model
	veh.BuildYear = req.BuildYear
	veh.VIN = req.VIN
	veh.FirstRegistration = firstReg
	veh.NextInspection = nextHU
	veh.Odometer = req.Odometer
	veh.Color = req.Color
	veh.Fuel = req.Fuel
	veh.CustomerID = req.CustomerID
	return nil
}

func (h *VehicleHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

// list supports ?q= on plate/make/model and ?kundeId= scoping.
func (h *VehicleHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.Vehicle{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(plate) LIKE ? OR lower(make) LIKE ? OR lower(model) LIKE ?", like, like, like)
	}
	if kid := r.URL.Query().Get("kundeId"); kid != "" {
		dbq = dbq.Where("customer_id = ?", kid)
	}
	var total int64
	dbq.Count(&total)
	var vehicles []models.Vehicle
	if err := dbq.Preload("Customer").Order("plate").Limit(limit).Offset(offset).Find(&vehicles).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_vehicles", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": vehicles, "total": total, "limit": limit, "offset": offset})
}

func (h *VehicleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req vehicleReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var owner models.Customer
	if err := h.DB.First(&owner, req.CustomerID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_customer", nil)
		return
	}
	var veh models.Vehicle
	if err := req.apply(&veh); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if err := h.DB.Create(&veh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest, "kennzeichen_bereits_vergeben", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_vehicle", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, veh)
}

func (h *VehicleHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var veh models.Vehicle
	if err := h.DB.Preload("Customer").First(&veh, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_vehicle")
		return
	}
	httpx.JSON(w, http.StatusOK, veh)
}

func (h *VehicleHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var veh models.Vehicle
	if err := h.DB.First(&veh, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_vehicle")
		return
	}
	var req vehicleReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := req.apply(&veh); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if err := h.DB.Save(&veh).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_vehicle", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, veh)
}

// delete refuses while work orders or invoices reference the vehicle.
func (h *VehicleHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var veh models.Vehicle
	if err := h.DB.First(&veh, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_vehicle")
		return
	}
	var workOrders, invoices int64
	h.DB.Model(&models.WorkOrder{}).Where("vehicle_id = ?", id).Count(&workOrders)
	h.DB.Model(&models.Invoice{}).Where("vehicle_id = ?", id).Count(&invoices)
	if workOrders > 0 || invoices > 0 {
		httpx.JSONError(w, http.StatusConflict, "fahrzeug_in_verwendung", map[string]any{
			"vorgaenge": workOrders, "rechnungen": invoices,
		})
		return
	}
	if err := h.DB.Delete(&veh).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_vehicle", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
