package handler

import (
	"errors"
	"image"
	"net/http"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hueining/watermarkd/internal/stego"
	"github.com/hueining/watermarkd/internal/storage"
)

// BlindEmbed handles POST /api/image/blind/embed. The response carries the
// embedded bit length, which the client must keep to extract later.
func (h *Handler) BlindEmbed(w http.ResponseWriter, r *http.Request) {
	const op = "embed_blind"
	started := time.Now()

	img, ok := h.openUpload(w, r, op, started, "file")
	if !ok {
		return
	}

	text := formOr(r, "watermark", "BlindWatermark")
	passwordImg := formInt64Or(r, "password_img", 1)
	passwordWM := formInt64Or(r, "password_wm", 1)

	out, wmLen, err := stego.Embed(img, text, passwordImg, passwordWM)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, stego.ErrImageTooSmall) {
			code = http.StatusBadRequest
		}
		h.opError(w, r, op, started, code, err.Error())
		return
	}

	outPath := h.Store.OutputPath("blind")
	if err := imaging.Save(out, outPath); err != nil {
		h.opError(w, r, op, started, http.StatusInternalServerError, "cannot save result")
		return
	}
	outName := filepath.Base(outPath)

	h.logOp(r, op, "blind watermark embedded", http.StatusOK, "", started, map[string]interface{}{
		"watermark_length": len(text),
		"wm_length":        wmLen,
		"output_file":      outName,
	})
	jsonOK(w, map[string]interface{}{
		"success":     true,
		"output_path": "/output/" + outName,
		"wm_length":   wmLen,
		"message":     "blind watermark embedded",
	})
}

// BlindExtract handles POST /api/image/blind/extract.
func (h *Handler) BlindExtract(w http.ResponseWriter, r *http.Request) {
	const op = "extract_blind"
	started := time.Now()

	img, ok := h.openUpload(w, r, op, started, "file")
	if !ok {
		return
	}

	wmLength := formIntOr(r, "wm_length", 0)
	if wmLength <= 0 {
		h.opError(w, r, op, started, http.StatusBadRequest, "wm_length required")
		return
	}
	passwordImg := formInt64Or(r, "password_img", 1)
	passwordWM := formInt64Or(r, "password_wm", 1)

	text, err := stego.Extract(img, wmLength, passwordImg, passwordWM)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, stego.ErrImageTooSmall) {
			code = http.StatusBadRequest
		}
		h.opError(w, r, op, started, code, err.Error())
		return
	}

	h.logOp(r, op, "blind watermark extracted", http.StatusOK, "", started, map[string]interface{}{
		"wm_length":        wmLength,
		"extracted_length": len(text),
	})
	jsonOK(w, map[string]interface{}{
		"success":   true,
		"watermark": text,
		"message":   "blind watermark extracted",
	})
}

// openUpload saves and decodes the named multipart file. On failure it
// writes the error response itself and returns ok=false.
func (h *Handler) openUpload(w http.ResponseWriter, r *http.Request, op string, started time.Time, field string) (image.Image, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, "no file uploaded")
		return nil, false
	}
	defer file.Close()
	if !storage.Allowed(header.Filename) {
		h.opError(w, r, op, started, http.StatusBadRequest, "unsupported file type")
		return nil, false
	}

	path, err := h.Store.SaveUpload(file, header.Filename)
	if err != nil {
		h.opError(w, r, op, started, http.StatusInternalServerError, "cannot store upload")
		return nil, false
	}
	img, err := imaging.Open(path)
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, "cannot decode image")
		return nil, false
	}
	return img, true
}
