package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	"github.com/hrmstack/payroll-engine-go/internal/handler/http/response"
)

type TaxHandler interface {
	CreateSlabTable(w http.ResponseWriter, r *http.Request)
	GetSlabTable(w http.ResponseWriter, r *http.Request)
	ListSlabTables(w http.ResponseWriter, r *http.Request)
}

type taxHandlerImpl struct {
	taxService tax.TaxService
}

func NewTaxHandler(taxService tax.TaxService) TaxHandler {
	return &taxHandlerImpl{taxService: taxService}
}

func (h *taxHandlerImpl) CreateSlabTable(w http.ResponseWriter, r *http.Request) {
	var req tax.CreateSlabTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.taxService.CreateSlabTable(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Tax slab table created", result)
}

func (h *taxHandlerImpl) GetSlabTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Slab table ID is required", nil)
		return
	}

	result, err := h.taxService.GetSlabTable(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *taxHandlerImpl) ListSlabTables(w http.ResponseWriter, r *http.Request) {
	result, err := h.taxService.ListSlabTables(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
