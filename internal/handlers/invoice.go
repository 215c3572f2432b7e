package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mfreund/werkstatt/internal/compose"
	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/email"
	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/pdf"
	"github.com/mfreund/werkstatt/internal/services"
	"github.com/mfreund/werkstatt/internal/validation"

	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB     *gorm.DB
	Svc    *services.InvoiceService
	Mailer *email.Mailer
	Issuer config.Issuer
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, mailer *email.Mailer, issuer config.Issuer) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Mailer: mailer, Issuer: issuer}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/rechnungen", h.collection)
	mux.HandleFunc("/rechnungen/get", h.get)
	mux.HandleFunc("/rechnungen/status", h.status)
	mux.HandleFunc("/rechnungen/delete", h.delete)
	mux.HandleFunc("/rechnungen/pdf", h.renderPDF)
	mux.HandleFunc("/rechnungen/email", h.sendEmail)
}

type invoiceReq struct {
	Number          string               `json:"rechnungsnummer"`
	IssueDate       string               `json:"datum"`
	DueDate         string               `json:"faelligBis"`
	TaxRate         float64              `json:"mwstSatz"`
	DiscountPercent float64              `json:"rabattProzent"`
	Notes           string               `json:"notizen"`
	CustomerID      uint                 `json:"kundeId"`
	VehicleID       *uint                `json:"fahrzeugId"`
	WorkOrderIDs    []uint               `json:"vorgangIds"`
	Lines           []services.LineInput `json:"positionen"`
}

func (h *InvoiceHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.MethodNotAllowed(w, "GET,POST")
	}
}

// list supports ?status= and ?q= (number or customer last name).
func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	dbq := h.DB.Model(&models.Invoice{})
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(number) LIKE ? OR customer_id IN (?)",
			like, h.DB.Model(&models.Customer{}).Select("id").Where("lower(last_name) LIKE ?", like))
	}
	var total int64
	dbq.Count(&total)
	var invoices []models.Invoice
	if err := dbq.Preload("Customer").Preload("Vehicle").Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).Order("id desc").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total, "limit": limit, "offset": offset})
}

func (h *InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req invoiceReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
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
		if l.Quantity <= 0 {
			v[fmt.Sprintf("positionen[%d].menge", i)] = "must_be_positive"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	issue, err := parseDate(req.IssueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"datum": "invalid"})
		return
	}
	due, err := parseDatePtr(req.DueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", map[string]string{"faelligBis": "invalid"})
		return
	}
	var customer models.Customer
	if err := h.DB.First(&customer, req.CustomerID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_customer", nil)
		return
	}
	inv, err := h.Svc.Create(services.CreateInvoiceInput{
		Number:          strings.TrimSpace(req.Number),
		IssueDate:       issue,
		DueDate:         due,
		TaxRate:         req.TaxRate,
		DiscountPercent: req.DiscountPercent,
		Notes:           req.Notes,
		CustomerID:      req.CustomerID,
		VehicleID:       req.VehicleID,
		WorkOrderIDs:    req.WorkOrderIDs,
		Lines:           req.Lines,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNumberTaken):
			httpx.JSONError(w, http.StatusBadRequest, "nummer_bereits_vergeben", nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.JSONError(w, http.StatusBadRequest, "unknown_work_order", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	inv, ok := h.load(w, id)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type invoiceStatusReq struct {
	Status string `json:"status"`
}

func (h *InvoiceHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	var req invoiceStatusReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("status", req.Status, v)
	validation.OneOf("status", req.Status, []string{models.InvoiceOpen, models.InvoicePaid, models.InvoiceCanceled}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.Svc.UpdateStatus(id, req.Status)
	if err != nil {
		notFoundOrInternal(w, err, "failed_to_update_status")
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrHasLinkedWorkOrders) {
			httpx.JSONError(w, http.StatusConflict, "rechnung_hat_vorgaenge", nil)
			return
		}
		notFoundOrInternal(w, err, "failed_to_delete_invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// renderPDF streams the invoice document as application/pdf.
func (h *InvoiceHandler) renderPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, "GET")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	inv, ok := h.load(w, id)
	if !ok {
		return
	}
	doc := compose.ComposeInvoice(*inv, h.Issuer)
	buf, err := pdf.Render(doc, compose.DefaultStyles())
	if err != nil {
		log.Printf("invoice pdf %s: %v", inv.Number, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", email.AttachmentName(inv.Number)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		log.Printf("invoice pdf %s: write: %v", inv.Number, err)
	}
}

// sendEmail mails the invoice PDF to the customer's address.
func (h *InvoiceHandler) sendEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, "POST")
		return
	}
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}
	inv, ok := h.load(w, id)
	if !ok {
		return
	}
	if strings.TrimSpace(inv.Customer.Email) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "kunde_ohne_email", nil)
		return
	}
	msg, err := email.BuildInvoiceMail(*inv, h.Issuer)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_email", nil)
		return
	}
	doc := compose.ComposeInvoice(*inv, h.Issuer)
	buf, err := pdf.Render(doc, compose.DefaultStyles())
	if err != nil {
		log.Printf("invoice email %s: pdf: %v", inv.Number, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	if err := h.Mailer.Send(inv.Customer.Email, msg, buf, email.AttachmentName(inv.Number)); err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			httpx.JSONError(w, http.StatusServiceUnavailable, "email_nicht_konfiguriert", nil)
			return
		}
		log.Printf("invoice email %s: send: %v", inv.Number, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_send_email", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sent": true, "empfaenger": inv.Customer.Email})
}

func (h *InvoiceHandler) load(w http.ResponseWriter, id uint) (*models.Invoice, bool) {
	var inv models.Invoice
	if err := h.DB.Preload("Customer").Preload("Vehicle").Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).Preload("WorkOrders.WorkOrder").First(&inv, id).Error; err != nil {
		notFoundOrInternal(w, err, "failed_to_load_invoice")
		return nil, false
	}
	return &inv, true
}
