package handler

import (
	"countryrates/internal/domain"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DeleteByName godoc
// @Summary Delete a country
// @Description Remove a country by name, ignoring case and punctuation
// @Tags Countries
// @Produce json
// @Param name path string true "Country name" example(Nigeria)
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries/{name} [delete]
func (h *Handler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.service.DeleteByName(r.Context(), name); err != nil {
		if errors.Is(err, domain.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound, "Country not found", nil)
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "DeleteByName", "name": name}).Error("failed to delete country")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Country deleted successfully"})
}
