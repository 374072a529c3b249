package handler

import (
	"countryrates/internal/domain"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// List godoc
// @Summary List countries
// @Description List stored countries with optional region and currency filters and sorting
// @Tags Countries
// @Produce json
// @Param region query string false "Exact region" example(Africa)
// @Param currency query string false "Currency code, case-insensitive" example(NGN)
// @Param sort query string false "Sort order" Enums(gdp_desc, gdp_asc, population_desc, population_asc)
// @Success 200 {array} domain.Country
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /countries [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sort, err := h.validator.ParseSort(q.Get("sort"))
	if err != nil {
		var vErr *domain.ValidationError
		field, value := "sort", q.Get("sort")
		if errors.As(err, &vErr) {
			field, value = vErr.Field, vErr.Value
		}
		writeError(w, http.StatusBadRequest, "Validation failed", map[string]string{
			field: fmt.Sprintf("unsupported value %q, expected one of: %s", value, strings.Join(h.validator.SupportedSorts(), ", ")),
		})
		return
	}

	filter := domain.Filter{
		Region:   q.Get("region"),
		Currency: q.Get("currency"),
		Sort:     sort,
	}
	countries, err := h.service.List(r.Context(), filter)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "List", "region": filter.Region, "currency": filter.Currency, "sort": filter.Sort}).Error("failed to list countries")
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	if countries == nil {
		countries = []domain.Country{}
	}

	writeJSON(w, http.StatusOK, countries)
}
