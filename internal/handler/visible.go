package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hueining/watermarkd/internal/visible"
)

// VisibleEmbed handles POST /api/image/visible/embed.
func (h *Handler) VisibleEmbed(w http.ResponseWriter, r *http.Request) {
	const op = "embed_visible"
	started := time.Now()

	img, ok := h.openUpload(w, r, op, started, "file")
	if !ok {
		return
	}

	pos, err := visible.ParsePosition(formOr(r, "position", "grid"))
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, err.Error())
		return
	}

	opts := visible.Options{
		Text:       formOr(r, "text", "CONFIDENTIAL"),
		Position:   pos,
		Color:      formOr(r, "color", "#000000"),
		Opacity:    formIntOr(r, "opacity", 50),
		FontSize:   formIntOr(r, "font_size", 36),
		FontFamily: r.FormValue("watermark_font"),
		Angle:      formIntOr(r, "watermark_angle", 0),
		Grid: visible.GridLayout{
			OriginX:    formIntOr(r, "watermark_x", 20),
			OriginY:    formIntOr(r, "watermark_y", 20),
			Rows:       formIntOr(r, "watermark_rows", 0),
			Cols:       formIntOr(r, "watermark_cols", 0),
			SpaceX:     formIntOr(r, "watermark_x_space", 50),
			SpaceY:     formIntOr(r, "watermark_y_space", 50),
			TileWidth:  formIntOr(r, "watermark_width", 0),
			TileHeight: formIntOr(r, "watermark_height", 0),
		},
	}

	out, err := h.Engine.Apply(img, opts)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, visible.ErrInvalidSpec) || errors.Is(err, visible.ErrInvalidColor) || errors.Is(err, visible.ErrInvalidLayout) {
			code = http.StatusBadRequest
		}
		h.opError(w, r, op, started, code, err.Error())
		return
	}

	outPath := h.Store.OutputPath("visible")
	if err := imaging.Save(out, outPath); err != nil {
		h.opError(w, r, op, started, http.StatusInternalServerError, "cannot save result")
		return
	}
	outName := filepath.Base(outPath)

	h.logOp(r, op, "visible watermark embedded: "+opts.Text, http.StatusOK, "", started, map[string]interface{}{
		"text":        opts.Text,
		"position":    string(opts.Position),
		"opacity":     opts.Opacity,
		"font_size":   opts.FontSize,
		"output_file": outName,
	})
	jsonOK(w, map[string]interface{}{
		"success":     true,
		"output_path": "/output/" + outName,
		"message":     "visible watermark embedded",
	})
}
