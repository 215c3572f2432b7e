package handlers

import (
	"net/http"

	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type TireHandler struct {
	DB *gorm.DB
}

func NewTireHandler(db *gorm.DB) *TireHandler { return &TireHandler{DB: db} }

func (h *TireHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/reifen", h.collection)
	mux.HandleFunc("/reifen/get", h.get)
	mux.HandleFunc("/reifen/update", h.update)
	mux.HandleFunc("/reifen/delete", h.delete)
	mux.HandleFunc("/reifen/wechsel", h.recordChange)
}

type tireReq struct {
	SlotNumber   string   `json:"lagerplatznummer"`
	TireType     string   `json:"reifenTyp"`
	Manufacturer string   `json:"hersteller"`
	Model        string   `json:"modell"`
	Size         string   `json:"groesse"`
	DOT          string   `json:"dot"`
	TreadDepth   *float64 `json:"profiltiefe"`
	Condition    string   `json:"zustand"`
	StoredAt     string   `json:"eingelagertAm"`
	NextChange   string   `json:"naechsterWechsel"`
	Count        int      `json:"anzahl"`
	WithRims     *bool    `json:"mitFelgen"`
	RimType      string   `json:"felgenTyp"`
	Notes        string   `json:"notizen"`
	CustomerID   uint     `json:"kundeId"`
	VehicleID    uint     `json:"fahrzeugId"`
}

func (req tireReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("lagerplatznummer", req.SlotNumber, v)
	validation.Required("reifenTyp", req.TireType, v)
	validation.OneOf("reifenTyp", req.TireType, []string{"sommer", "winter", "ganzjahres"}, v)
	validation.RequiredID("kundeId", req.CustomerID, v)
	validation.RequiredID("fahrzeugId", req.VehicleID, v)
	return v
}

func (req tireReq) apply(ts *models.TireStorage) error {
	storedAt, err := parseDate(req.StoredAt)
	if err != nil {
		return err
	}
	nextChange, err := parseDatePtr(req.NextChange)
	if err != nil {
		return err
	}
	ts.SlotNumber = req.SlotNumber
	ts.TireType = req.TireType
	ts.Manufacturer = req.Manufacturer
	ts.Model = req.Model
	ts.Size = req.Size
	ts.DOT = req.DOT
	ts.TreadDepth = req.TreadDepth
	if req.Condition != "" {
		ts.Condition = req.Condition
	}
	ts.StoredAt = storedAt
	ts.NextChange = nextChange
	if req.Count > 0 {
		ts.Count = req.Count
	}
	if req.WithRims != nil {
		ts.WithRims = *req.WithRims
	}
	ts.RimType = req.RimType
	ts.Notes = req.Notes
	ts.CustomerID = req.CustomerID
	ts.VehicleID = req.VehicleID
	return nil
}

func (h *TireHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

func (h *TireHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.TireStorage{})
	if tt := r.URL.Query().Get("reifenTyp"); tt != "" {
		dbq = dbq.Where("tire_type = ?", tt)
	}
	if kid := r.URL.Query().Get("kundeId"); kid != "" {
		dbq = dbq.Where("customer_id = ?", kid)
	}
	var total int64
	dbq.Count(&total)
	var sets []models.TireStorage
	if err := dbq.Preload("Customer").Preload("Vehicle").
		Order("slot_number").Limit(limit).Offset(offset).Find(&sets).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_tires", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": sets, "total": total, "limit": limit, "offset": offset})
}

func (h *TireHandler) create(w http.ResponseWriter, r *http.Request) {
	var req tireReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var veh models.Vehicle
	if err := h.DB.First(&veh, req.VehicleID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_vehicle", nil)
		return
	}
	var ts models.TireStorage
	if err := req.apply(&ts); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ts).Error; err != nil {
			return err
		}
		// Opening history entry.
		return tx.Create(&models.TireChange{
			TireStorageID: ts.ID,
			Date:          ts.StoredAt,
			Action:        "eingelagert",
		}).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_tire_storage", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, ts)
}

func (h *TireHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var ts models.TireStorage
	if err := h.DB.Preload("Customer").Preload("Vehicle").Preload("ChangeHistory", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("date desc")
	}).First(&ts, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_tire_storage")
		return
	}
	httpx.JSON(w, http.StatusOK, ts)
}

func (h *TireHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var ts models.TireStorage
	if err := h.DB.First(&ts, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_tire_storage")
		return
	}
	var req tireReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := req.apply(&ts); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if err := h.DB.Save(&ts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_tire_storage", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, ts)
}

func (h *TireHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var ts models.TireStorage
		if err := tx.First(&ts, id).Error; err != nil {
			return err
		}
		if err := tx.Where("tire_storage_id = ?", id).Delete(&models.TireChange{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ts).Error
	})
	if err != nil {
		notFoundOrInternal(w, err, "failed_to_delete_tire_storage")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type tireChangeReq struct {
	Date   string `json:"datum"`
	Action string `json:"aktion"`
	Notes  string `json:"notizen"`
}

// recordChange appends a mount/dismount event to the history.
func (h *TireHandler) recordChange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var ts models.TireStorage
	if err := h.DB.First(&ts, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_tire_storage")
		return
	}
	var req tireChangeReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("aktion", req.Action, v)
	validation.OneOf("aktion", req.Action, []string{"eingelagert", "montiert"}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	date := timeNow()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		date = parsed
	}
	change := models.TireChange{TireStorageID: id, Date: date, Action: req.Action, Notes: req.Notes}
	if err := h.DB.Create(&change).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_record_change", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, change)
}
