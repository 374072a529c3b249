package handler

import (
	"countryrates/internal/domain"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// GetByName godoc
// @Summary Get a country
// @Description Look a country up by name, ignoring case and punctuation
// @Tags Countries
// @Produce json
// @Param name path string true "Country name" example(Nigeria)
// @Success 200 {object} domain.Country
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/{name} [get]
func (h *Handler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	country, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound, "Country not found", nil)
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetByName", "name": name}).Error("failed to get country")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, country)
}
