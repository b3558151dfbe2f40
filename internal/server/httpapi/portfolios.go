package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type PortfolioService interface {
	Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	Get(ctx context.Context, id int64) (*models.Portfolio, error)
	List(ctx context.Context) ([]*models.Portfolio, error)
	Update(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	Delete(ctx context.Context, id int64) error
}

type PortfolioHandler struct {
	portfolios PortfolioService
}

func NewPortfolioHandler(portfolios PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios}
}

type portfolioRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	InitialBalance float64 `json:"initial_balance"`
}

type portfolioResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	InitialBalance float64   `json:"initial_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toPortfolioResponse(p *models.Portfolio) portfolioResponse {
	return portfolioResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		InitialBalance: p.InitialBalance,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	return queryID(c, c.Param(name), name)
}

func queryID(c *gin.Context, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, name+" must be an integer")
		return 0, false
	}
	return id, true
}

func (h *PortfolioHandler) Create(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	created, err := h.portfolios.Create(c.Request.Context(), &models.Portfolio{
		Name:           req.Name,
		Description:    req.Description,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Portfolio created", toPortfolioResponse(created))
}

func (h *PortfolioHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "portfolio_id")
	if !ok {
		return
	}

	p, err := h.portfolios.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Success", toPortfolioResponse(p))
}

func (h *PortfolioHandler) List(c *gin.Context) {
	result, err := h.portfolios.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]portfolioResponse, 0, len(result))
	for _, p := range result {
		out = append(out, toPortfolioResponse(p))
	}
	respondSuccess(c, http.StatusOK, "Success", out)
}

func (h *PortfolioHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "portfolio_id")
	if !ok {
		return
	}

	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	updated, err := h.portfolios.Update(c.Request.Context(), &models.Portfolio{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Portfolio updated", toPortfolioResponse(updated))
}

func (h *PortfolioHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "portfolio_id")
	if !ok {
		return
	}

	if err := h.portfolios.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
