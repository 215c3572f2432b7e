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

type EmployeeHandler struct {
	DB *gorm.DB
}

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler { return &EmployeeHandler{DB: db} }

func (h *EmployeeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/mitarbeiter", h.collection)
	mux.HandleFunc("/mitarbeiter/get", h.get)
	mux.HandleFunc("/mitarbeiter/update", h.update)
	mux.HandleFunc("/mitarbeiter/delete", h.delete)
}

type employeeReq struct {
	PersonnelNumber string  `json:"personalnummer"`
	FirstName       string  `json:"vorname"`
	LastName        string  `json:"nachname"`
	Email           string  `json:"email"`
	Phone           string  `json:"telefon"`
	Role            string  `json:"rolle"`
	HourlyRate      float64 `json:"stundensatz"`
	Active          *bool   `json:"aktiv"`
	StartDate       string  `json:"eintrittsdatum"`
}

func (req employeeReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("personalnummer", req.PersonnelNumber, v)
	validation.Required("vorname", req.FirstName, v)
	validation.Required("nachname", req.LastName, v)
	validation.NonNegative("stundensatz", req.HourlyRate, v)
	return v
}

func (req employeeReq) apply(e *models.Employee) error {
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return err
		}
		e.StartDate = start
	}
	e.PersonnelNumber = strings.TrimSpace(req.PersonnelNumber)
	e.FirstName = req.FirstName
	e.LastName = req.LastName
	e.Email = req.Email
	e.Phone = req.Phone
	if req.Role != "" {
		e.Role = req.Role
	}
	e.HourlyRate = req.HourlyRate
	if req.Active != nil {
		e.Active = *req.Active
	} else {
		e.Active = true
	}
	return nil
}

func (h *EmployeeHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.Employee{})
	if r.URL.Query().Get("aktiv") == "true" {
		dbq = dbq.Where("active = ?", true)
	}
	var total int64
	dbq.Count(&total)
	var employees []models.Employee
	if err := dbq.Order("last_name, first_name").Limit(limit).Offset(offset).Find(&employees).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_employees", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": employees, "total": total, "limit": limit, "offset": offset})
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req employeeReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var e models.Employee
	if err := req.apply(&e); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if err := h.DB.Create(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest, "personalnummer_bereits_vergeben", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_employee", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *EmployeeHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var e models.Employee
	if err := h.DB.First(&e, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_employee")
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var e models.Employee
	if err := h.DB.First(&e, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_employee")
		return
	}
	var req employeeReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := req.apply(&e); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if err := h.DB.Save(&e).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_employee", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var e models.Employee
	if err := h.DB.First(&e, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_employee")
		return
	}
	if err := h.DB.Delete(&e).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_employee", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
