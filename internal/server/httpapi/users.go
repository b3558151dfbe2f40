package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/server/services"
)

// UserAdminService covers the admin-only account operations.
type UserAdminService interface {
	ListUsers(ctx context.Context) ([]*services.Profile, error)
	DeleteUser(ctx context.Context, id int64) error
}

type UserHandler struct {
	users UserAdminService
}

func NewUserHandler(users UserAdminService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	profiles, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileResponse{ID: p.ID, Username: p.UserName, Email: p.Email, Roles: p.Roles})
	}
	respondSuccess(c, http.StatusOK, "Success", out)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "user id must be an integer")
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
