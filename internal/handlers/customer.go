package handlers

import (
	"net/http"
	"strings"

	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type CustomerHandler struct {
	DB *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

func (h *CustomerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/kunden", h.collection)
	mux.HandleFunc("/kunden/get", h.get)
	mux.HandleFunc("/kunden/update", h.update)
	mux.HandleFunc("/kunden/delete", h.delete)
}

type customerReq struct {
	Salutation string `json:"anrede"`
	FirstName  string `json:"vorname"`
	LastName   string `json:"nachname"`
	Company    string `json:"firma"`
	Street     string `json:"strasse"`
	HouseNo    string `json:"hausnummer"`
	PostalCode string `json:"plz"`
	City       string `json:"ort"`
	Phone      string `json:"telefon"`
	Mobile     string `json:"mobil"`
	Email      string `json:"email"`
	Notes      string `json:"notizen"`
}

func (req customerReq) apply(c *models.Customer) {
	c.Salutation = req.Salutation
	c.FirstName = strings.TrimSpace(req.FirstName)
	c.LastName = strings.TrimSpace(req.LastName)
	c.Company = strings.TrimSpace(req.Company)
	c.Street = req.Street
	c.HouseNo = req.HouseNo
	c.PostalCode = req.PostalCode
	c.City = req.City
	c.Phone = req.Phone
	c.Mobile = req.Mobile
	c.Email = strings.TrimSpace(req.Email)
	c.Notes = req.Notes
}

func (req customerReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("vorname", req.FirstName, v)
	validation.Required("nachname", req.LastName, v)
	return v
}

func (h *CustomerHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

// list supports ?q= matching last name, company or plate of an owned
// vehicle, the search the original customer screen offers.
func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	dbq := h.DB.Model(&models.Customer{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where(
			"lower(last_name) LIKE ? OR lower(first_name) LIKE ? OR lower(company) LIKE ? OR id IN (?)",
			like, like, like,
			h.DB.Model(&models.Vehicle{}).Select("customer_id").Where("lower(plate) LIKE ?", like),
		)
	}
	var total int64
	dbq.Count(&total)
	var customers []models.Customer
	if err := dbq.Preload("Vehicles").Order("last_name, first_name").
		Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": total, "limit": limit, "offset": offset})
}

func (h *CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req customerReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var c models.Customer
	req.apply(&c)
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var c models.Customer
	if err := h.DB.Preload("Vehicles").First(&c, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_customer")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_customer")
		return
	}
	var req customerReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	req.apply(&c)
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// delete refuses while invoices reference the customer; billing
// history must stay attributable.
func (h *CustomerHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_customer")
		return
	}
	var invoices int64
	h.DB.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoices)
	if invoices > 0 {
		httpx.JSONError(w, http.StatusConflict, "kunde_hat_rechnungen", nil)
		return
	}
	if err := h.DB.Delete(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
