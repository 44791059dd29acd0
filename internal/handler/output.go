package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hueining/watermarkd/internal/storage"
)

// ServeOutput handles GET /output/{filename}. Results are served as
// attachments; names are reduced to their base before lookup so path
// traversal cannot leave the output directory.
func (h *Handler) ServeOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := h.Store.ResolveOutput(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, "file not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}
