package quotes

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/preview", h.Preview)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Get("/{id}/actions", h.Actions)
		r.Post("/{id}/send", h.Send)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
		r.Post("/{id}/convert", h.Convert)
	})
}

// MountPublicRoutes attaches the unauthenticated share-link routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/quotations/{token}", h.PublicShow)
}
