package handler

import (
	"encoding/json"
	"net/http"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/middleware"
	"pos-sync-server/internal/service"
	"pos-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	validate         *validator.Validate
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		validate:         validator.New(),
	}
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	item, err := h.inventoryService.Create(&req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Created(w, item)
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if r.URL.Query().Get("low_stock") == "true" {
		items, err := h.inventoryService.LowStock()
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.Success(w, items)
		return
	}

	items, err := h.inventoryService.List()
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Success(w, items)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	item, err := h.inventoryService.Get(mux.Vars(r)["id"])
	if err != nil {
		response.NotFound(w, "Item not found")
		return
	}

	response.Success(w, item)
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	item, err := h.inventoryService.Update(mux.Vars(r)["id"], &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Success(w, item)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := h.inventoryService.Delete(mux.Vars(r)["id"]); err != nil {
		response.NotFound(w, "Item not found")
		return
	}

	response.Success(w, map[string]string{"message": "Item deleted"})
}
