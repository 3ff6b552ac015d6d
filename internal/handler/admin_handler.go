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

type AdminHandler struct {
	adminService *service.AdminService
	validate     *validator.Validate
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validator.New(),
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actingUserID := middleware.GetUserID(r)
	if actingUserID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	users, err := h.adminService.GetUsers(actingUserID)
	if err != nil {
		writePolicyError(w, err)
		return
	}

	response.Success(w, users)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actingUserID := middleware.GetUserID(r)
	if actingUserID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.adminService.CreateUser(&req, actingUserID)
	if err != nil {
		writePolicyError(w, err)
		return
	}

	response.Created(w, user)
}

func (h *AdminHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	actingUserID := middleware.GetUserID(r)
	if actingUserID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	targetUserID := mux.Vars(r)["id"]

	var req domain.AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.adminService.AssignRole(targetUserID, req.Role, actingUserID)
	if err != nil {
		writePolicyError(w, err)
		return
	}

	response.Success(w, user)
}

func (h *AdminHandler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	actingUserID := middleware.GetUserID(r)
	if actingUserID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	targetUserID := mux.Vars(r)["id"]

	var req domain.ToggleStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.adminService.ToggleUserStatus(targetUserID, *req.IsActive, actingUserID)
	if err != nil {
		writePolicyError(w, err)
		return
	}

	response.Success(w, user)
}

// writePolicyError maps the admin service's denial taxonomy onto HTTP
// statuses, surfacing the exact reason string so the client can explain
// why rather than showing a generic "forbidden".
func writePolicyError(w http.ResponseWriter, err error) {
	policyErr, ok := service.AsPolicyError(err)
	if !ok {
		response.InternalError(w, err.Error())
		return
	}

	switch policyErr.Code {
	case service.DenialLookupFailed:
		response.NotFound(w, policyErr.Reason)
	case service.DenialInsufficientPermissions,
		service.DenialPrivilegeEscalation,
		service.DenialPeerProtection:
		response.Forbidden(w, policyErr.Reason)
	default:
		response.InternalError(w, policyErr.Reason)
	}
}
