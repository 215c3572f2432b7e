package handlers

import (
	"net/http"

	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type CalendarHandler struct {
	DB *gorm.DB
}

func NewCalendarHandler(db *gorm.DB) *CalendarHandler { return &CalendarHandler{DB: db} }

func (h *CalendarHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/kalender", h.collection)
	mux.HandleFunc("/kalender/get", h.get)
	mux.HandleFunc("/kalender/update", h.update)
	mux.HandleFunc("/kalender/delete", h.delete)
}

type calendarReq struct {
	Title       string `json:"titel"`
	Description string `json:"beschreibung"`
	Start       string `json:"startDatum"`
	End         string `json:"endDatum"`
	AllDay      bool   `json:"ganztaegig"`
	Category    string `json:"kategorie"`
	VehicleID   *uint  `json:"fahrzeugId"`
}

func (req calendarReq) apply(e *models.CalendarEntry) error {
	start, err := parseDate(req.Start)
	if err != nil {
		return err
	}
	end, err := parseDate(req.End)
	if err != nil {
		return err
	}
	e.Title = req.Title
	e.Description = req.Description
	e.Start = start
	e.End = end
	e.AllDay = req.AllDay
	e.Category = req.Category
	e.VehicleID = req.VehicleID
	return nil
}

func (h *CalendarHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

// list supports ?von=&bis= range filtering for the calendar view.
func (h *CalendarHandler) list(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.CalendarEntry{})
	if from := r.URL.Query().Get("von"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"von": "invalid"})
			return
		}
		dbq = dbq.Where("\"end\" >= ?", t)
	}
	if to := r.URL.Query().Get("bis"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"bis": "invalid"})
			return
		}
		dbq = dbq.Where("start <= ?", t)
	}
	var entries []models.CalendarEntry
	if err := dbq.Preload("Vehicle.Customer").Order("start").Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_entries", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries, "total": len(entries)})
}

func (h *CalendarHandler) create(w http.ResponseWriter, r *http.Request) {
	var req calendarReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("titel", req.Title, v)
	validation.Required("startDatum", req.Start, v)
	validation.Required("endDatum", req.End, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var entry models.CalendarEntry
	if err := req.apply(&entry); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if entry.End.Before(entry.Start) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"endDatum": "before_start"})
		return
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_entry", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *CalendarHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var entry models.CalendarEntry
	if err := h.DB.Preload("Vehicle.Customer").First(&entry, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_entry")
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *CalendarHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var entry models.CalendarEntry
	if err := h.DB.First(&entry, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_entry")
		return
	}
	var req calendarReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("titel", req.Title, v)
	validation.Required("startDatum", req.Start, v)
	validation.Required("endDatum", req.End, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := req.apply(&entry); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if err := h.DB.Save(&entry).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_entry", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *CalendarHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var entry models.CalendarEntry
	if err := h.DB.First(&entry, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_entry")
		return
	}
	if err := h.DB.Delete(&entry).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_entry", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
