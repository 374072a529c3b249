package handler

import (
	"countryrates/internal/domain"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Refresh godoc
// @Summary Refresh countries
// @Description Fetch countries and USD exchange rates, recompute estimated GDP and replace the stored snapshot
// @Tags Countries
// @Produce json
// @Success 200 {object} domain.RefreshResult
// @Failure 503 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.refresher.Refresh(r.Context())
	if err != nil {
		var srcErr *domain.SourceUnavailableError
		if errors.As(err, &srcErr) {
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "Refresh", "source": srcErr.Source}).Warn("refresh aborted, store left untouched")
			writeError(w, http.StatusServiceUnavailable, "External data source unavailable", map[string]string{
				"source": srcErr.Source,
			})
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Refresh"}).Error("refresh failed")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
