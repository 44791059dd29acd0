package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hueining/watermarkd/internal/db"
)

// Logs handles GET /api/logs: recent operation records, newest first, with
// optional operation filter and limit/offset paging.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := queryIntOr(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := queryIntOr(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	filterOp := r.URL.Query().Get("operation")

	logs, err := db.ListOperationLogs(h.DB, limit, offset, filterOp)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	total, err := db.CountOperationLogs(h.DB, filterOp)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	entries := make([]map[string]interface{}, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, map[string]interface{}{
			"id":            l.ID,
			"operation":     l.Operation,
			"description":   l.Description,
			"ip_address":    l.IPAddress,
			"method":        l.Method,
			"path":          l.Path,
			"status_code":   l.StatusCode,
			"error_message": l.ErrorMessage,
			"processing_ms": l.ProcessingMS,
			"extra_info":    l.ExtraInfo,
			"created_at":    l.CreatedAt.Format(time.RFC3339),
		})
	}

	jsonOK(w, map[string]interface{}{
		"success": true,
		"total":   total,
		"logs":    entries,
	})
}

func queryIntOr(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
