package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mfreund/werkstatt/internal/compose"
	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/pdf"
	"github.com/mfreund/werkstatt/internal/services"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type QuoteHandler struct {
	DB     *gorm.DB
	Svc    *services.QuoteService
	Issuer config.Issuer
}

func NewQuoteHandler(db *gorm.DB, svc *services.QuoteService, issuer config.Issuer) *QuoteHandler {
	return &QuoteHandler{DB: db, Svc: svc, Issuer: issuer}
}

func (h *QuoteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/kostenvoranschlaege", h.collection)
	mux.HandleFunc("/kostenvoranschlaege/get", h.get)
	mux.HandleFunc("/kostenvoranschlaege/update", h.update)
	mux.HandleFunc("/kostenvoranschlaege/status", h.status)
	mux.HandleFunc("/kostenvoranschlaege/delete", h.delete)
	mux.HandleFunc("/kostenvoranschlaege/pdf", h.renderPDF)
}

type quoteReq struct {
	Number          string                    `json:"kvNummer"`
	Title           string                    `json:"titel"`
	Description     string                    `json:"beschreibung"`
	IssueDate       string                    `json:"datum"`
	ValidUntil      string                    `json:"gueltigBis"`
	TaxRate         float64                   `json:"mwstSatz"`
	DiscountPercent float64                   `json:"rabattProzent"`
	Notes           string                    `json:"notizen"`
	CustomerID      uint                      `json:"kundeId"`
	VehicleID       *uint                     `json:"fahrzeugId"`
	WorkOrderID     *uint                     `json:"vorgangId"`
	Lines           []services.QuoteLineInput `json:"positionen"`
}

func (req quoteReq) toInput() (services.CreateQuoteInput, validation.Violations, error) {
	v := make(validation.Violations)
	validation.Required("titel", req.Title, v)
	validation.RequiredID("kundeId", req.CustomerID, v)
	validation.RangeFloat("mwstSatz", req.TaxRate, 0, 100, v)
	validation.RangeFloat("rabattProzent", req.DiscountPercent, 0, 100, v)
	if len(req.Lines) == 0 {
		v["positionen"] = "required"
	}
	for i, l := range req.Lines {
		if strings.TrimSpace(l.Description) == "" {
			v[fmt.Sprintf("positionen[%d].beschreibung", i)] = "required"
		}
	}
	if !v.Empty() {
		return services.CreateQuoteInput{}, v, nil
	}
	issue, err := parseDate(req.IssueDate)
	if err != nil {
		return services.CreateQuoteInput{}, nil, fmt.Errorf("datum: %w", err)
	}
	validUntil, err := parseDatePtr(req.ValidUntil)
	if err != nil {
		return services.CreateQuoteInput{}, nil, fmt.Errorf("gueltigBis: %w", err)
	}
	return services.CreateQuoteInput{
		Number:          strings.TrimSpace(req.Number),
		Title:           req.Title,
		Description:     req.Description,
		IssueDate:       issue,
		ValidUntil:      validUntil,
		TaxRate:         req.TaxRate,
		DiscountPercent: req.DiscountPercent,
		Notes:           req.Notes,
		CustomerID:      req.CustomerID,
		VehicleID:       req.VehicleID,
		WorkOrderID:     req.WorkOrderID,
		Lines:           req.Lines,
	}, nil, nil
}

// quoteJSON wraps a quote so the response carries the derived display
// status ("abgelaufen" when a sent quote passed its validity date)
// without ever persisting it.
type quoteJSON struct {
	models.Quote
	DisplayStatus string `json:"anzeigeStatus"`
}

func withDisplayStatus(q models.Quote) quoteJSON {
	return quoteJSON{Quote: q, DisplayStatus: q.DisplayStatus(timeNow())}
}

// MarshalJSON flattens the embedded quote and appends anzeigeStatus.
func (j quoteJSON) MarshalJSON() ([]byte, error) {
	type plain models.Quote
	raw, err := json.Marshal(plain(j.Quote))
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	status, err := json.Marshal(j.DisplayStatus)
	if err != nil {
		return nil, err
	}
	m["anzeigeStatus"] = status
	return json.Marshal(m)
}

func (h *QuoteHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

func (h *QuoteHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.Quote{})
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if kid := r.URL.Query().Get("kundeId"); kid != "" {
		dbq = dbq.Where("customer_id = ?", kid)
	}
	var total int64
	dbq.Count(&total)
	var quotes []models.Quote
	if err := dbq.Preload("Customer").Preload("Vehicle").Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).Order("id desc").Limit(limit).Offset(offset).Find(&quotes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	items := make([]quoteJSON, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, withDisplayStatus(q))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

func (h *QuoteHandler) create(w http.ResponseWriter, r *http.Request) {
	var req quoteReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, v, err := req.toInput()
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var customer models.Customer
	if err := h.DB.First(&customer, in.CustomerID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_customer", nil)
		return
	}
	q, err := h.Svc.Create(in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNumberTaken):
			httpx.JSONError(w, http.StatusBadRequest, "nummer_bereits_vergeben", nil)
		case errors.Is(err, services.ErrUnknownLineKind):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"typ": "invalid_value"})
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_quote", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, withDisplayStatus(*q))
}

func (h *QuoteHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	q, ok := h.load(w, id)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, withDisplayStatus(*q))
}

func (h *QuoteHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var req quoteReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, v, err := req.toInput()
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	q, err := h.Svc.Update(id, in)
	if err != nil {
		if errors.Is(err, services.ErrUnknownLineKind) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"typ": "invalid_value"})
			return
		}
		notFoundOrInternal(w, err, "failed_to_update_quote")
		return
	}
	httpx.JSON(w, http.StatusOK, withDisplayStatus(*q))
}

type quoteStatusReq struct {
	Status string `json:"status"`
}

func (h *QuoteHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var req quoteStatusReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("status", req.Status, v)
	validation.OneOf("status", req.Status, []string{
		models.QuoteDraft, models.QuoteSent, models.QuoteAccepted, models.QuoteRejected,
	}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	q, err := h.Svc.UpdateStatus(id, req.Status)
	if err != nil {
		notFoundOrInternal(w, err, "failed_to_update_status")
		return
	}
	httpx.JSON(w, http.StatusOK, withDisplayStatus(*q))
}

func (h *QuoteHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		notFoundOrInternal(w, err, "failed_to_delete_quote")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *QuoteHandler) renderPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	q, ok := h.load(w, id)
	if !ok {
		return
	}
	doc := compose.ComposeQuote(*q, h.Issuer)
	buf, err := pdf.Render(doc, compose.DefaultStyles())
	if err != nil {
		log.Printf("quote pdf %s: %v", q.Number, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "Kostenvoranschlag_"+q.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		log.Printf("quote pdf %s: write: %v", q.Number, err)
	}
}

func (h *QuoteHandler) load(w http.ResponseWriter, id uint) (*models.Quote, bool) {
	var q models.Quote
	if err := h.DB.Preload("Customer").Preload("Vehicle").Preload("WorkOrder").
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).First(&q, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_quote")
		return nil, false
	}
	return &q, true
}
