// file: handler/organization_handler.go

package handler

import (
	"encoding/json"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"go-taskhub-api/service"
	"net/http"

	"github.com/google/uuid"
)

type OrganizationHandler struct {
	service *service.OrganizationService
}

func NewOrganizationHandler(service *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateOrganizationRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, ok := r.Context().Value(UserKey).(*model.User)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Not authenticated", nil)
	}

	org, err := h.service.CreateOrg(r.Context(), user.ID, req.Name, req.Slug)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(org)
	return nil
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := r.Context().Value(UserKey).(*model.User)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Not authenticated", nil)
	}

	limit, offset := parsePagination(r)
	orgs, total, err := h.service.ListOrgsForUser(user.ID, limit, offset)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Page{Items: orgs, Total: total, Limit: limit, Offset: offset})
	return nil
}

// GetCurrent returns the organization selected by the X-Organization-Id
// header. Gated on membership, so org ids cannot be enumerated.
func (h *OrganizationHandler) GetCurrent(w http.ResponseWriter, r *http.Request) *common.AppError {
	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}

	org, err := h.service.GetOrg(orgID)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
	return nil
}

func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) *common.AppError {
	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}

	limit, offset := parsePagination(r)
	members, total, err := h.service.ListMembers(orgID, limit, offset)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Page{Items: members, Total: total, Limit: limit, Offset: offset})
	return nil
}

func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AddMemberRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}

	membership, err := h.service.AddMember(orgID, req.Email, req.Role)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(membership)
	return nil
}

func (h *OrganizationHandler) ChangePlan(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ChangePlanRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	orgID, ok := r.Context().Value(OrgIDKey).(uuid.UUID)
	if !ok {
		return common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil)
	}

	sub, err := h.service.ChangePlan(orgID, req.Plan)
	if err != nil {
		return common.FromDomainError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
	return nil
}
