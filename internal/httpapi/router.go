// Package httpapi — тонкий HTTP-слой над сервисами: маршрутизация, валидация
// запросов и перевод доменных ошибок в статусы ответов.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает маршруты API.
func NewRouter(products *ProductHandler, orders *OrderHandler, logger *log.Entry) http.Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/{productID}", products.Get)
		r.Patch("/{productID}", products.Update)
		r.Delete("/{productID}", products.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orders.List)
		r.Post("/", orders.Create)
	})

	return r
}

// requestLogger логирует каждый запрос с его длительностью и статусом.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request handled")
		})
	}
}
