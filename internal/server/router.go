// Package server wires the handlers onto the mux and applies the
// shared middleware stack.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/email"
	"github.com/mfreund/werkstatt/internal/handlers"
	"github.com/mfreund/werkstatt/internal/httpx"
	"github.com/mfreund/werkstatt/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares.
func New(db *gorm.DB, issuer config.Issuer, mailer *email.Mailer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handlers.NewCustomerHandler(db).Register(mux)
	handlers.NewVehicleHandler(db).Register(mux)
	handlers.NewWorkOrderHandler(db, services.NewWorkOrderService(db)).Register(mux)
	handlers.NewInvoiceHandler(db, services.NewInvoiceService(db), mailer, issuer).Register(mux)
	handlers.NewQuoteHandler(db, services.NewQuoteService(db), issuer).Register(mux)
	handlers.NewPartHandler(db).Register(mux)
	handlers.NewTireHandler(db).Register(mux)
	handlers.NewEmployeeHandler(db).Register(mux)
	handlers.NewCalendarHandler(db).Register(mux)

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic on %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
