// Package httpapi exposes the portfolio service over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/services"
)

// AuthService is the slice of the user service the auth endpoints need.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	VerifyToken(token string) (string, error)
	GetProfile(ctx context.Context, username string) (*services.Profile, error)
}

type AuthHandler struct {
	users AuthService
}

func NewAuthHandler(users AuthService) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	Roles []string `json:"roles"`
}

type profileResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "User created successfully", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", loginResponse{Token: result.Token, Roles: result.Roles})
}

// Verify runs behind the auth middleware, so reaching it means the token
// checked out.
func (h *AuthHandler) Verify(c *gin.Context) {
	respondSuccess(c, http.StatusOK, "Token valid", gin.H{"username": CurrentUser(c)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.users.GetProfile(c.Request.Context(), CurrentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Success", profileResponse{
		ID:       profile.ID,
		Username: profile.UserName,
		Email:    profile.Email,
		Roles:    profile.Roles,
	})
}
