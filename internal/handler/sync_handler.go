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

type SyncHandler struct {
	syncService *service.SyncService
	validate    *validator.Validate
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		validate:    validator.New(),
	}
}

func (h *SyncHandler) PushInventory(w http.ResponseWriter, r *http.Request) {
	h.push(w, r, h.syncService.PushInventory)
}

func (h *SyncHandler) PushSales(w http.ResponseWriter, r *http.Request) {
	h.push(w, r, h.syncService.PushSales)
}

func (h *SyncHandler) push(w http.ResponseWriter, r *http.Request, pushFn func(string, *domain.PushRequest) (*domain.PushResponse, error)) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := pushFn(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	for _, result := range resp.Results {
		if result.Status == domain.PushConflictQueued {
			response.Conflict(w, resp)
			return
		}
	}
	response.Success(w, resp)
}

func (h *SyncHandler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	response.Success(w, h.syncService.ListPending())
}

func (h *SyncHandler) ConflictStats(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	response.Success(w, h.syncService.PendingStats())
}

func (h *SyncHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	key := mux.Vars(r)["key"]

	var req domain.ResolvePendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	outcome, err := h.syncService.ResolvePending(userID, key, req.Strategy)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Success(w, outcome)
}

func (h *SyncHandler) LastSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	terminalID := r.URL.Query().Get("terminal_id")
	if terminalID == "" {
		response.BadRequest(w, "terminal_id is required")
		return
	}

	metadata, err := h.syncService.LastSync(userID, terminalID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Success(w, metadata)
}
