package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/email"
	"github.com/mfreund/werkstatt/internal/models"
	"github.com/mfreund/werkstatt/internal/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{}, &models.Vehicle{},
		&models.WorkOrder{}, &models.WorkItem{},
		&models.Invoice{}, &models.InvoiceLine{}, &models.InvoiceWorkOrder{},
		&models.Quote{}, &models.QuoteLine{},
		&models.Part{}, &models.TireStorage{}, &models.TireChange{},
		&models.Employee{}, &models.CalendarEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testMux wires every handler onto a fresh mux with a disabled mailer.
func testMux(t *testing.T, db *gorm.DB) *http.ServeMux {
	mailer, err := email.NewMailer(config.Config{})
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	issuer := config.LoadIssuer()
	mux := http.NewServeMux()
	NewCustomerHandler(db).Register(mux)
	NewVehicleHandler(db).Register(mux)
	NewWorkOrderHandler(db, services.NewWorkOrderService(db)).Register(mux)
	NewInvoiceHandler(db, services.NewInvoiceService(db), mailer, issuer).Register(mux)
	NewQuoteHandler(db, services.NewQuoteService(db), issuer).Register(mux)
	NewPartHandler(db).Register(mux)
	NewTireHandler(db).Register(mux)
	NewEmployeeHandler(db).Register(mux)
	NewCalendarHandler(db).Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
}

func seedCustomerVehicle(t *testing.T, db *gorm.DB) (models.Customer, models.Vehicle) {
	c := models.Customer{FirstName: "Petra", LastName: "Schulz", Email: "petra@example.com", City: "Weiterstadt"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	v := models.Vehicle{CustomerID: c.ID, Plate: "DA-PS 42", Make: "Audi", Model: "A4 Avant", Odometer: 98000}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return c, v
}

func TestCustomerCreateAndList(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)

	rec := doJSON(t, mux, http.MethodPost, "/kunden", map[string]any{
		"anrede": "Herr", "vorname": "Klaus", "nachname": "Berger",
		"strasse": "Hauptstraße", "hausnummer": "12", "plz": "64331", "ort": "Weiterstadt",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Customer
	decodeBody(t, rec, &created)
	if created.ID == 0 || created.LastName != "Berger" {
		t.Fatalf("created: %+v", created)
	}

	rec = doJSON(t, mux, http.MethodGet, "/kunden?q=berger", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d", rec.Code)
	}
	var list struct {
		Items []models.Customer `json:"items"`
		Total int64             `json:"total"`
	}
	decodeBody(t, rec, &list)
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("list: %+v", list)
	}
}

func TestCustomerCreateValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	rec := doJSON(t, mux, http.MethodPost, "/kunden", map[string]any{"vorname": "Nur"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "validation_failed") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestCustomerDeleteBlockedByInvoices(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, _ := seedCustomerVehicle(t, db)
	inv := models.Invoice{Number: "2024-0001", IssueDate: time.Now(), Status: models.InvoiceOpen, CustomerID: c.ID}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/kunden/delete?id=%d", c.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceEndToEnd(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, v := seedCustomerVehicle(t, db)
	wo := models.WorkOrder{
		Number: "A-2024-0001", Title: "Bremsen", IntakeDate: time.Now(),
		Status: models.WorkOrderDone, CustomerID: c.ID, VehicleID: v.ID,
	}
	if err := db.Create(&wo).Error; err != nil {
		t.Fatalf("seed work order: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/rechnungen", map[string]any{
		"datum": "2024-06-14", "mwstSatz": 19, "kundeId": c.ID, "fahrzeugId": v.ID,
		"vorgangIds": []uint{wo.ID},
		"positionen": []map[string]any{
			{"beschreibung": "Bremsscheiben vorne erneuern", "menge": 2.5, "einheit": "Std.", "einzelpreis": 89},
			{"beschreibung": "Bremsscheiben Satz", "menge": 1, "einheit": "Satz", "einzelpreis": 185},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var inv models.Invoice
	decodeBody(t, rec, &inv)
	if inv.Number != "2024-0001" {
		t.Fatalf("number: %q", inv.Number)
	}
	if inv.NetTotal != 407.50 || inv.GrossTotal != 484.93 {
		t.Fatalf("totals: net=%v gross=%v", inv.NetTotal, inv.GrossTotal)
	}

	// get
	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/rechnungen/get?id=%d", inv.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}

	// pdf
	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/rechnungen/pdf?id=%d", inv.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type: %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("not a pdf: %q", rec.Body.Bytes()[:8])
	}

	// email with unconfigured SMTP answers 503
	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/rechnungen/email?id=%d", inv.ID), nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("email status %d: %s", rec.Code, rec.Body.String())
	}

	// status transition
	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/rechnungen/status?id=%d", inv.ID), map[string]any{"status": "bezahlt"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update %d: %s", rec.Code, rec.Body.String())
	}

	// delete blocked through the work order link
	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/rechnungen/delete?id=%d", inv.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceEmailRequiresCustomerAddress(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c := models.Customer{FirstName: "Ohne", LastName: "Mail"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec := doJSON(t, mux, http.MethodPost, "/rechnungen", map[string]any{
		"datum": "2024-06-14", "mwstSatz": 19, "kundeId": c.ID,
		"positionen": []map[string]any{{"beschreibung": "Arbeit", "menge": 1, "einheit": "Std.", "einzelpreis": 100}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var inv models.Invoice
	decodeBody(t, rec, &inv)
	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/rechnungen/email?id=%d", inv.ID), nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "kunde_ohne_email") {
		t.Fatalf("email status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceStatusRejectsUnknownValue(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, _ := seedCustomerVehicle(t, db)
	inv := models.Invoice{Number: "2024-0009", IssueDate: time.Now(), Status: models.InvoiceOpen, CustomerID: c.ID}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/rechnungen/status?id=%d", inv.ID), map[string]any{"status": "erledigt"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestQuoteCreateAndDisplayStatus(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, v := seedCustomerVehicle(t, db)

	rec := doJSON(t, mux, http.MethodPost, "/kostenvoranschlaege", map[string]any{
		"titel": "Zahnriemen", "datum": "2024-06-01", "gueltigBis": "2024-06-15",
		"mwstSatz": 19, "kundeId": c.ID, "fahrzeugId": v.ID,
		"positionen": []map[string]any{
			{"typ": "arbeit", "beschreibung": "Zahnriemen wechseln", "menge": 4, "einheit": "Std.", "einzelpreis": 95},
			{"typ": "teil", "beschreibung": "Zahnriemensatz", "menge": 1, "einheit": "Satz", "einzelpreis": 240},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decodeBody(t, rec, &created)
	if created["kvNummer"] != "KV-2024-0001" {
		t.Fatalf("number: %v", created["kvNummer"])
	}
	if created["anzeigeStatus"] != "entwurf" {
		t.Fatalf("anzeigeStatus: %v", created["anzeigeStatus"])
	}
	id := uint(created["id"].(float64))

	// Send it, then look at it after the validity date has passed.
	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/kostenvoranschlaege/status?id=%d", id), map[string]any{"status": "versendet"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update %d: %s", rec.Code, rec.Body.String())
	}
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { timeNow = restore }()

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/kostenvoranschlaege/get?id=%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}
	var got map[string]any
	decodeBody(t, rec, &got)
	if got["anzeigeStatus"] != "abgelaufen" {
		t.Fatalf("expected derived abgelaufen got %v", got["anzeigeStatus"])
	}
	if got["status"] != "versendet" {
		t.Fatalf("persisted status must stay versendet, got %v", got["status"])
	}
}

func TestQuotePDF(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, _ := seedCustomerVehicle(t, db)
	rec := doJSON(t, mux, http.MethodPost, "/kostenvoranschlaege", map[string]any{
		"titel": "Inspektion", "datum": "2024-06-01", "mwstSatz": 19, "kundeId": c.ID,
		"positionen": []map[string]any{{"typ": "arbeit", "beschreibung": "Inspektion", "menge": 2, "einheit": "Std.", "einzelpreis": 89}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decodeBody(t, rec, &created)
	id := uint(created["id"].(float64))
	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/kostenvoranschlaege/pdf?id=%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf status %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
}

func TestPartReorderReport(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	parts := []models.Part{
		{ArticleNumber: "BR-1001", Designation: "Bremsscheibe", Stock: 2, MinimumStock: 4, SalePrice: 45, PurchasePrice: 28},
		{ArticleNumber: "OL-5W30", Designation: "Motoröl 5W-30", Stock: 40, MinimumStock: 10, SalePrice: 13, PurchasePrice: 7},
	}
	for i := range parts {
		if err := db.Create(&parts[i]).Error; err != nil {
			t.Fatalf("seed part: %v", err)
		}
	}
	rec := doJSON(t, mux, http.MethodGet, "/ersatzteile/nachbestellen", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status %d", rec.Code)
	}
	var report struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	decodeBody(t, rec, &report)
	if report.Total != 1 {
		t.Fatalf("expected 1 low-stock part got %d", report.Total)
	}
	if report.Items[0]["artikelnummer"] != "BR-1001" {
		t.Fatalf("items: %+v", report.Items)
	}
	if report.Items[0]["nachbestellen"] != true {
		t.Fatalf("derived flag missing: %+v", report.Items[0])
	}
	if report.Items[0]["marge"].(float64) != 17 {
		t.Fatalf("marge: %v", report.Items[0]["marge"])
	}
}

func TestVehicleDeleteBlockedWhileReferenced(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, v := seedCustomerVehicle(t, db)
	wo := models.WorkOrder{Number: "A-2024-0002", Title: "HU", IntakeDate: time.Now(), Status: models.WorkOrderOpen, CustomerID: c.ID, VehicleID: v.ID}
	if err := db.Create(&wo).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec := doJSON(t, mux, http.MethodPost, fmt.Sprintf("/fahrzeuge/delete?id=%d", v.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWorkOrderCreateViaAPI(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, v := seedCustomerVehicle(t, db)
	rec := doJSON(t, mux, http.MethodPost, "/vorgaenge", map[string]any{
		"titel": "Klimaservice", "eingang": "2024-05-10", "kmStandEingang": 99000,
		"kundeId": c.ID, "fahrzeugId": v.ID,
		"arbeiten": []map[string]any{{"beschreibung": "Klimaanlage warten", "menge": 1.5, "einheit": "Std.", "einzelpreis": 85}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var wo models.WorkOrder
	decodeBody(t, rec, &wo)
	if wo.Number != "A-2024-0001" || len(wo.Items) != 1 {
		t.Fatalf("work order: %+v", wo)
	}
	if wo.Items[0].LineTotal != 127.50 {
		t.Fatalf("item total: %v", wo.Items[0].LineTotal)
	}

	// Vehicle of another customer is rejected.
	other := models.Customer{FirstName: "Andere", LastName: "Person"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec = doJSON(t, mux, http.MethodPost, "/vorgaenge", map[string]any{
		"titel": "X", "eingang": "2024-05-10", "kundeId": other.ID, "fahrzeugId": v.ID,
	})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "vehicle_customer_mismatch") {
		t.Fatalf("mismatch status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTireStorageLifecycle(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	c, v := seedCustomerVehicle(t, db)

	rec := doJSON(t, mux, http.MethodPost, "/reifen", map[string]any{
		"lagerplatznummer": "R-04-12", "reifenTyp": "winter", "hersteller": "Continental",
		"groesse": "205/55 R16", "eingelagertAm": "2024-04-02",
		"kundeId": c.ID, "fahrzeugId": v.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var ts models.TireStorage
	decodeBody(t, rec, &ts)
	if ts.Count != 4 || !ts.WithRims {
		t.Fatalf("defaults: %+v", ts)
	}

	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/reifen/wechsel?id=%d", ts.ID), map[string]any{
		"datum": "2024-10-20", "aktion": "montiert",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("change status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodGet, fmt.Sprintf("/reifen/get?id=%d", ts.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}
	var got models.TireStorage
	decodeBody(t, rec, &got)
	// The opening entry plus the recorded mount.
	if len(got.ChangeHistory) != 2 {
		t.Fatalf("history: %+v", got.ChangeHistory)
	}
}

func TestEmployeeCRUD(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)

	rec := doJSON(t, mux, http.MethodPost, "/mitarbeiter", map[string]any{
		"personalnummer": "M-001", "vorname": "Jürgen", "nachname": "Kraft",
		"rolle": "meister", "stundensatz": 68.5, "eintrittsdatum": "2015-08-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var e models.Employee
	decodeBody(t, rec, &e)
	if !e.Active || e.Role != "meister" {
		t.Fatalf("employee: %+v", e)
	}

	// Duplicate personnel number.
	rec = doJSON(t, mux, http.MethodPost, "/mitarbeiter", map[string]any{
		"personalnummer": "M-001", "vorname": "Zweiter", "nachname": "Kraft",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status %d: %s", rec.Code, rec.Body.String())
	}

	inactive := false
	raw, _ := json.Marshal(map[string]any{
		"personalnummer": "M-001", "vorname": "Jürgen", "nachname": "Kraft",
		"rolle": "meister", "stundensatz": 70.0, "aktiv": inactive,
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/mitarbeiter/update?id=%d", e.ID), bytes.NewBuffer(raw))
	rec2 := httptest.NewRecorder()
	mux.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", rec2.Code, rec2.Body.String())
	}
	decodeBody(t, rec2, &e)
	if e.Active || e.HourlyRate != 70.0 {
		t.Fatalf("after update: %+v", e)
	}
}

func TestCalendarRangeFilter(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)

	entries := []models.CalendarEntry{
		{Title: "HU Termin", Start: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)},
		{Title: "Reifenwechsel", Start: time.Date(2024, 10, 21, 8, 0, 0, 0, time.UTC), End: time.Date(2024, 10, 21, 9, 0, 0, 0, time.UTC)},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	rec := doJSON(t, mux, http.MethodGet, "/kalender?von=2024-06-01&bis=2024-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d: %s", rec.Code, rec.Body.String())
	}
	var list struct {
		Items []models.CalendarEntry `json:"items"`
		Total int                    `json:"total"`
	}
	decodeBody(t, rec, &list)
	if list.Total != 1 || list.Items[0].Title != "HU Termin" {
		t.Fatalf("list: %+v", list)
	}

	// End before start is rejected.
	rec = doJSON(t, mux, http.MethodPost, "/kalender", map[string]any{
		"titel": "Kaputt", "startDatum": "2024-06-05", "endDatum": "2024-06-04",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := setupTestDB(t, t.Name())
	mux := testMux(t, db)
	rec := doJSON(t, mux, http.MethodDelete, "/kunden", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET,POST" {
		t.Fatalf("allow header: %q", rec.Header().Get("Allow"))
	}
}
