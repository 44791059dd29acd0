// Package handler exposes the watermarking engine over HTTP: multipart
// uploads in, JSON out, every call recorded in the operation log.
package handler

import (
	"database/sql"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hueining/watermarkd/internal/config"
	"github.com/hueining/watermarkd/internal/db"
	"github.com/hueining/watermarkd/internal/storage"
	"github.com/hueining/watermarkd/internal/visible"
)

type Handler struct {
	DB     *sql.DB
	Cfg    *config.Config
	Store  *storage.Store
	Engine *visible.Engine
}

func New(database *sql.DB, cfg *config.Config, store *storage.Store, engine *visible.Engine) *Handler {
	return &Handler{DB: database, Cfg: cfg, Store: store, Engine: engine}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func jsonOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// logOp records one finished API call in the operation log. extra is
// flattened to JSON; marshal failures degrade to an empty string.
func (h *Handler) logOp(r *http.Request, operation, description string, status int, errMsg string, started time.Time, extra map[string]interface{}) {
	extraJSON := ""
	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			extraJSON = string(b)
		}
	}
	db.InsertOperationLog(h.DB, db.OperationLog{
		Operation:    operation,
		Description:  description,
		IPAddress:    realIP(r),
		Method:       r.Method,
		Path:         r.URL.Path,
		StatusCode:   status,
		ErrorMessage: errMsg,
		ProcessingMS: float64(time.Since(started).Microseconds()) / 1000.0,
		ExtraInfo:    extraJSON,
	})
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// opError logs a failed operation and writes the JSON error response.
func (h *Handler) opError(w http.ResponseWriter, r *http.Request, operation string, started time.Time, code int, msg string) {
	h.logOp(r, operation, "", code, msg, started, nil)
	jsonError(w, msg, code)
}

// formIntOr reads an integer form field, falling back when absent or
// malformed. Endpoint defaults are explicit at each call site.
func formIntOr(r *http.Request, key string, fallback int) int {
	if v := r.FormValue(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func formInt64Or(r *http.Request, key string, fallback int64) int64 {
	if v := r.FormValue(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func formFloatOr(r *http.Request, key string, fallback float64) float64 {
	if v := r.FormValue(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func formOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}
