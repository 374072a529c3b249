package handler

import (
	"context"
	"countryrates/internal/domain"
	"encoding/json"
	"net/http"
)

type CountryService interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.Country, error)
	GetByName(ctx context.Context, name string) (domain.Country, error)
	DeleteByName(ctx context.Context, name string) error
	Status(ctx context.Context) (domain.Status, error)
}

type Refresher interface {
	Refresh(ctx context.Context) (domain.RefreshResult, error)
}

type SortValidator interface {
	ParseSort(raw string) (domain.SortOrder, error)
	SupportedSorts() []string
}

type Handler struct {
	service   CountryService
	refresher Refresher
	validator SortValidator
	imagePath string
}

func NewCountryHandler(service CountryService, refresher Refresher, validator SortValidator, imagePath string) *Handler {
	return &Handler{
		service:   service,
		refresher: refresher,
		validator: validator,
		imagePath: imagePath,
	}
}

type ErrorBody struct {
	Status  int    `json:"status" example:"404"`
	Message string `json:"message" example:"Country not found"`
	Details any    `json:"details,omitempty" swaggertype:"object"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, statusCode int, msg string, details any) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorBody{Status: statusCode, Message: msg, Details: details},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
