package handler

import (
	"context"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"go-taskhub-api/service"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserKey       contextKey = "user"
	OrgIDKey      contextKey = "organizationID"
	MembershipKey contextKey = "membership"
)

// OrgHeader is the tenant selector: every org-scoped route requires it.
const OrgHeader = "X-Organization-Id"

// AuthMiddleware resolves bearer tokens and org memberships for protected
// routes.
type AuthMiddleware struct {
	auth *service.AuthService
	orgs *service.OrganizationService
}

func NewAuthMiddleware(auth *service.AuthService, orgs *service.OrganizationService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, orgs: orgs}
}

// Authenticate validates the Authorization header and stores the resolved
// active user in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil).Send(w)
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil).Send(w)
			return
		}

		user, err := m.auth.Authenticate(headerParts[1])
		if err != nil {
			common.FromDomainError(err).Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOrgRole resolves the caller's membership in the organization named
// by the X-Organization-Id header and rejects callers below the minimum
// role. Must run after Authenticate.
func (m *AuthMiddleware) RequireOrgRole(minimum model.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(UserKey).(*model.User)
		if !ok {
			common.NewAppError(http.StatusUnauthorized, "Not authenticated", nil).Send(w)
			return
		}

		rawOrgID := r.Header.Get(OrgHeader)
		if rawOrgID == "" {
			common.NewAppError(http.StatusForbidden, OrgHeader+" header is required", nil).Send(w)
			return
		}
		orgID, err := uuid.Parse(rawOrgID)
		if err != nil {
			common.NewAppError(http.StatusForbidden, "Invalid "+OrgHeader, err).Send(w)
			return
		}

		membership, err := m.orgs.GetMembership(user.ID, orgID)
		if err != nil {
			common.FromDomainError(err).Send(w)
			return
		}
		if !model.HasMinRole(membership.Role, minimum) {
			common.NewAppError(http.StatusForbidden, "Insufficient permissions", nil).Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), OrgIDKey, orgID)
		ctx = context.WithValue(ctx, MembershipKey, membership)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
