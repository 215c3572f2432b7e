package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/email"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestHandler(t *testing.T) http.Handler {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	mailer, err := email.NewMailer(config.Config{})
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	return New(db, config.LoadIssuer(), mailer)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestRoutesRegistered(t *testing.T) {
	h := newTestHandler(t)
	for _, path := range []string{
		"/kunden", "/fahrzeuge", "/vorgaenge", "/rechnungen",
		"/kostenvoranschlaege", "/ersatzteile", "/reifen",
		"/mitarbeiter", "/kalender",
	} {
		r := httptest.NewRequest(http.MethodDelete, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405 got %d", path, w.Code)
		}
	}
}
