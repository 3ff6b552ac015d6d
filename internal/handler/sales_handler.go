package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/middleware"
	"pos-sync-server/internal/service"
	"pos-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type SalesHandler struct {
	salesService *service.SalesService
	validate     *validator.Validate
}

func NewSalesHandler(salesService *service.SalesService) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
		validate:     validator.New(),
	}
}

func (h *SalesHandler) Record(w http.ResponseWriter, r *http.Request) {
	cashierID := middleware.GetUserID(r)
	if cashierID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	sale, err := h.salesService.Record(cashierID, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Created(w, sale)
}

func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	cashierID := middleware.GetUserID(r)
	if cashierID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if sinceParam := r.URL.Query().Get("since"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			response.BadRequest(w, "invalid since parameter")
			return
		}
		sales, err := h.salesService.ListSince(since)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.Success(w, sales)
		return
	}

	sales, err := h.salesService.ListByCashier(cashierID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Success(w, sales)
}

func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	sale, err := h.salesService.Get(mux.Vars(r)["id"])
	if err != nil {
		response.NotFound(w, "Sale not found")
		return
	}

	response.Success(w, sale)
}
