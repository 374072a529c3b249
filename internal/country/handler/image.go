package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Image godoc
// @Summary Summary image
// @Description PNG summary produced by the latest successful refresh
// @Tags Countries
// @Produce png
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /countries/image [get]
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.imagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "Summary image not found", nil)
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Image", "path": h.imagePath}).Error("failed to open summary image")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "Summary image not found", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, filepath.Base(h.imagePath), info.ModTime(), f)
}
