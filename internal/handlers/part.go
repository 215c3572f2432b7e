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

type PartHandler struct {
	DB *gorm.DB
}

func NewPartHandler(db *gorm.DB) *PartHandler { return &PartHandler{DB: db} }

func (h *PartHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ersatzteile", h.collection)
	mux.HandleFunc("/ersatzteile/get", h.get)
	mux.HandleFunc("/ersatzteile/update", h.update)
	mux.HandleFunc("/ersatzteile/delete", h.delete)
	mux.HandleFunc("/ersatzteile/nachbestellen", h.reorderReport)
}

type partReq struct {
	ArticleNumber string  `json:"artikelnummer"`
	Designation   string  `json:"bezeichnung"`
	Description   string  `json:"beschreibung"`
	Category      string  `json:"kategorie"`
	Manufacturer  string  `json:"hersteller"`
	PurchasePrice float64 `json:"einkaufspreis"`
	SalePrice     float64 `json:"verkaufspreis"`
	Stock         int     `json:"bestand"`
	MinimumStock  int     `json:"mindestbestand"`
	StorageLoc    string  `json:"lagerort"`
	VehicleMakes  string  `json:"fahrzeugMarken"`
}

func (req partReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("artikelnummer", req.ArticleNumber, v)
	validation.Required("bezeichnung", req.Designation, v)
	validation.NonNegative("einkaufspreis", req.PurchasePrice, v)
	validation.NonNegative("verkaufspreis", req.SalePrice, v)
	return v
}

func (req partReq) apply(p *models.Part) {
	p.ArticleNumber = strings.TrimSpace(req.ArticleNumber)
	p.Designation = req.Designation
	p.Description = req.Description
	p.Category = req.Category
	p.Manufacturer = req.Manufacturer
	p.PurchasePrice = req.PurchasePrice
	p.SalePrice = req.SalePrice
	p.Stock = req.Stock
	p.MinimumStock = req.MinimumStock
	p.StorageLoc = req.StorageLoc
	p.VehicleMakes = req.VehicleMakes
}

// partJSON adds the derived margin and reorder flag to a part.
type partJSON struct {
	models.Part
	Margin       float64 `json:"marge"`
	NeedsReorder bool    `json:"nachbestellen"`
}

func withDerived(p models.Part) partJSON {
	return partJSON{Part: p, Margin: p.Margin(), NeedsReorder: p.NeedsReorder()}
}

func (h *PartHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

func (h *PartHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.Part{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(article_number) LIKE ? OR lower(designation) LIKE ? OR lower(manufacturer) LIKE ?",
			like, like, like)
	}
	if cat := r.URL.Query().Get("kategorie"); cat != "" {
		dbq = dbq.Where("category = ?", cat)
	}
	var total int64
	dbq.Count(&total)
	var parts []models.Part
	if err := dbq.Order("designation").Limit(limit).Offset(offset).Find(&parts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_parts", nil)
		return
	}
	items := make([]partJSON, 0, len(parts))
	for _, p := range parts {
		items = append(items, withDerived(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

func (h *PartHandler) create(w http.ResponseWriter, r *http.Request) {
	var req partReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var p models.Part
	req.apply(&p)
	if err := h.DB.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest, "artikelnummer_bereits_vergeben", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_part", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, withDerived(p))
}

func (h *PartHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var p models.Part
	if err := h.DB.First(&p, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_part")
		return
	}
	httpx.JSON(w, http.StatusOK, withDerived(p))
}

func (h *PartHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var p models.Part
	if err := h.DB.First(&p, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_part")
		return
	}
	var req partReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	req.apply(&p)
	if err := h.DB.Save(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_part", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, withDerived(p))
}

func (h *PartHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var p models.Part
	if err := h.DB.First(&p, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_part")
		return
	}
	if err := h.DB.Delete(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_part", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// reorderReport lists parts whose stock fell to the minimum.
func (h *PartHandler) reorderReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	var parts []models.Part
	if err := h.DB.Where("stock <= minimum_stock").Order("stock asc").Find(&parts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_parts", nil)
		return
	}
	items := make([]partJSON, 0, len(parts))
	for _, p := range parts {
		items = append(items, withDerived(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}
