package handler

import (
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hueining/watermarkd/internal/stego"
)

// BlindAttack handles POST /api/image/blind/attack: it applies one of the
// simulated distortions so clients can test how the embedded watermark
// survives.
func (h *Handler) BlindAttack(w http.ResponseWriter, r *http.Request) {
	const op = "attack"
	started := time.Now()

	img, ok := h.openUpload(w, r, op, started, "file")
	if !ok {
		return
	}

	kind, err := stego.ParseAttackKind(r.FormValue("attack_type"))
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, err.Error())
		return
	}

	params := stego.AttackParams{Seed: rand.Int63()}
	switch kind {
	case stego.AttackCut:
		if r.FormValue("loc_r_x1") != "" {
			params.Region = [4]float64{
				formFloatOr(r, "loc_r_x1", 0),
				formFloatOr(r, "loc_r_y1", 0),
				formFloatOr(r, "loc_r_x2", 1),
				formFloatOr(r, "loc_r_y2", 1),
			}
		}
		params.Scale = formFloatOr(r, "scale", 0)
	case stego.AttackResize:
		params.Width = formIntOr(r, "width", 500)
		params.Height = formIntOr(r, "height", 500)
	case stego.AttackBright:
		params.Ratio = formFloatOr(r, "ratio", 0.8)
	case stego.AttackShelter:
		params.Ratio = formFloatOr(r, "ratio", 0.1)
		params.Count = formIntOr(r, "n", 3)
	case stego.AttackSaltPepper:
		params.Ratio = formFloatOr(r, "ratio", 0.01)
	case stego.AttackRotate:
		params.Angle = formFloatOr(r, "angle", 45)
	}

	attacked, err := stego.Attack(img, kind, params)
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, err.Error())
		return
	}

	outPath := h.Store.OutputPath("attacked_" + string(kind))
	if err := imaging.Save(attacked, outPath); err != nil {
		h.opError(w, r, op, started, http.StatusInternalServerError, "cannot save result")
		return
	}
	outName := filepath.Base(outPath)

	h.logOp(r, op, fmt.Sprintf("attack applied: %s", kind), http.StatusOK, "", started, map[string]interface{}{
		"attack_type": string(kind),
		"output_file": outName,
	})
	jsonOK(w, map[string]interface{}{
		"success":     true,
		"output_path": "/output/" + outName,
		"attack_type": string(kind),
		"message":     "attack applied",
	})
}

// EstimateCrop handles POST /api/image/blind/estimate_crop.
func (h *Handler) EstimateCrop(w http.ResponseWriter, r *http.Request) {
	const op = "estimate_crop"
	started := time.Now()

	original, ok := h.openUpload(w, r, op, started, "original")
	if !ok {
		return
	}
	template, ok := h.openUpload(w, r, op, started, "template")
	if !ok {
		return
	}

	est, err := stego.EstimateCrop(original, template)
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, err.Error())
		return
	}

	h.logOp(r, op, "crop parameters estimated", http.StatusOK, "", started, map[string]interface{}{
		"score": est.Score,
		"scale": est.Scale,
	})
	jsonOK(w, map[string]interface{}{
		"success": true,
		"result": map[string]interface{}{
			"loc":   []int{est.X1, est.Y1, est.X2, est.Y2},
			"shape": []int{est.ShapeH, est.ShapeW},
			"score": est.Score,
			"scale": est.Scale,
		},
		"message": "crop parameters estimated",
	})
}

// RecoverCrop handles POST /api/image/blind/recover_crop.
func (h *Handler) RecoverCrop(w http.ResponseWriter, r *http.Request) {
	const op = "recover_crop"
	started := time.Now()

	img, ok := h.openUpload(w, r, op, started, "file")
	if !ok {
		return
	}

	x1 := formIntOr(r, "x1", -1)
	y1 := formIntOr(r, "y1", -1)
	x2 := formIntOr(r, "x2", -1)
	y2 := formIntOr(r, "y2", -1)
	origW := formIntOr(r, "width", 0)
	origH := formIntOr(r, "height", 0)

	recovered, err := stego.RecoverCrop(img, x1, y1, x2, y2, origW, origH)
	if err != nil {
		h.opError(w, r, op, started, http.StatusBadRequest, err.Error())
		return
	}

	outPath := h.Store.OutputPath("recovered")
	if err := imaging.Save(recovered, outPath); err != nil {
		h.opError(w, r, op, started, http.StatusInternalServerError, "cannot save result")
		return
	}
	outName := filepath.Base(outPath)

	h.logOp(r, op, "crop recovered", http.StatusOK, "", started, map[string]interface{}{
		"output_file": outName,
	})
	jsonOK(w, map[string]interface{}{
		"success":     true,
		"output_path": "/output/" + outName,
		"message":     "crop recovered",
	})
}
