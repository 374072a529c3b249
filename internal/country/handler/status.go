package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Status godoc
// @Summary Dataset status
// @Description Number of stored countries and the time of the latest refresh
// @Tags Status
// @Produce json
// @Success 200 {object} domain.Status
// @Failure 500 {object} ErrorResponse
// @Router /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Status"}).Error("failed to load status")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
