package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes(apiRL *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(h.maxBytes)

	r.Route("/api/image", func(r chi.Router) {
		r.Use(apiRL.Middleware)

		r.Post("/visible/embed", h.VisibleEmbed)

		r.Route("/blind", func(r chi.Router) {
			r.Post("/embed", h.BlindEmbed)
			r.Post("/extract", h.BlindExtract)
			r.Post("/attack", h.BlindAttack)
			r.Post("/estimate_crop", h.EstimateCrop)
			r.Post("/recover_crop", h.RecoverCrop)
		})
	})

	r.Get("/api/logs", h.Logs)
	r.Get("/output/{filename}", h.ServeOutput)

	return r
}

// maxBytes caps request bodies; oversized uploads fail the multipart parse
// and surface as 413.
func (h *Handler) maxBytes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
		next.ServeHTTP(w, r)
	})
}
