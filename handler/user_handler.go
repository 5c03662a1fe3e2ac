package handler

import (
	"encoding/json"
	"go-taskhub-api/common"
	"go-taskhub-api/model"
	"net/http"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me returns the authenticated user resolved by the auth middleware.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := r.Context().Value(UserKey).(*model.User)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Not authenticated", nil)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
	return nil
}
