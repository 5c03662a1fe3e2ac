package router

import (
	"go-taskhub-api/common"
	"go-taskhub-api/handler"
	"go-taskhub-api/model"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(
	mw *handler.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	orgHandler *handler.OrganizationHandler,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Public auth endpoints.
	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	// Authenticated, not org-scoped.
	authed := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return mw.Authenticate(handler.ErrorHandlingMiddleware(h))
	}
	mux.Handle("GET /users/me", authed(userHandler.Me))
	mux.Handle("POST /organizations", authed(orgHandler.Create))
	mux.Handle("GET /organizations", authed(orgHandler.List))

	// Org-scoped: X-Organization-Id header plus a minimum role.
	scoped := func(min model.Role, h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return mw.Authenticate(mw.RequireOrgRole(min, handler.ErrorHandlingMiddleware(h)))
	}
	mux.Handle("GET /organizations/current", scoped(model.RoleMember, orgHandler.GetCurrent))
	mux.Handle("GET /organizations/members", scoped(model.RoleAdmin, orgHandler.ListMembers))
	mux.Handle("POST /organizations/members", scoped(model.RoleAdmin, orgHandler.AddMember))
	mux.Handle("PATCH /organizations/subscription", scoped(model.RoleOwner, orgHandler.ChangePlan))

	mux.Handle("GET /projects", scoped(model.RoleMember, projectHandler.List))
	mux.Handle("POST /projects", scoped(model.RoleAdmin, projectHandler.Create))
	mux.Handle("GET /projects/{project_id}", scoped(model.RoleMember, projectHandler.Get))
	mux.Handle("PATCH /projects/{project_id}", scoped(model.RoleAdmin, projectHandler.Update))
	mux.Handle("DELETE /projects/{project_id}", scoped(model.RoleAdmin, projectHandler.Delete))

	mux.Handle("GET /tasks", scoped(model.RoleMember, taskHandler.List))
	mux.Handle("POST /tasks", scoped(model.RoleMember, taskHandler.Create))
	mux.Handle("GET /tasks/{task_id}", scoped(model.RoleMember, taskHandler.Get))
	mux.Handle("PATCH /tasks/{task_id}", scoped(model.RoleMember, taskHandler.Update))
	mux.Handle("DELETE /tasks/{task_id}", scoped(model.RoleAdmin, taskHandler.Delete))

	return mux
}
