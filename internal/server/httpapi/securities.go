package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/server/marketdata"
	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type SecurityService interface {
	Create(ctx context.Context, sec *models.Security) (*models.Security, error)
	Get(ctx context.Context, symbol string) (*models.Security, error)
	List(ctx context.Context) ([]*models.Security, error)
	Update(ctx context.Context, sec *models.Security) (*models.Security, error)
	Delete(ctx context.Context, symbol string) error
}

// QuoteService provides market prices for instruments.
type QuoteService interface {
	LatestClose(ctx context.Context, symbol string) (*marketdata.Quote, error)
	DailyPrice(ctx context.Context, symbol string, day time.Time, pt marketdata.PriceType) (float64, error)
}

type SecurityHandler struct {
	securities SecurityService
	quotes     QuoteService
}

func NewSecurityHandler(securities SecurityService, quotes QuoteService) *SecurityHandler {
	return &SecurityHandler{securities: securities, quotes: quotes}
}

type securityRequest struct {
	Symbol         string `json:"symbol"`
	CompanyName    string `json:"company_name"`
	InstrumentType string `json:"instrument_type"`
	Description    string `json:"description"`
}

type securityResponse struct {
	Symbol         string    `json:"symbol"`
	CompanyName    string    `json:"company_name"`
	InstrumentType string    `json:"instrument_type"`
	Description    string    `json:"description"`
	DateOfCreation time.Time `json:"date_of_creation"`
}

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
}

func toSecurityResponse(s *models.Security) securityResponse {
	return securityResponse{
		Symbol:         s.Symbol,
		CompanyName:    s.CompanyName,
		InstrumentType: string(s.SecType),
		Description:    s.Description,
		DateOfCreation: s.DateOfCreation,
	}
}

func (h *SecurityHandler) Create(c *gin.Context) {
	var req securityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	created, err := h.securities.Create(c.Request.Context(), &models.Security{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		SecType:     models.SecType(req.InstrumentType),
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Instrument created", toSecurityResponse(created))
}

func (h *SecurityHandler) Get(c *gin.Context) {
	sec, err := h.securities.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Success", toSecurityResponse(sec))
}

func (h *SecurityHandler) List(c *gin.Context) {
	result, err := h.securities.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]securityResponse, 0, len(result))
	for _, s := range result {
		out = append(out, toSecurityResponse(s))
	}
	respondSuccess(c, http.StatusOK, "Success", out)
}

func (h *SecurityHandler) Update(c *gin.Context) {
	var req securityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	updated, err := h.securities.Update(c.Request.Context(), &models.Security{
		Symbol:      c.Param("symbol"),
		CompanyName: req.CompanyName,
		SecType:     models.SecType(req.InstrumentType),
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Instrument updated", toSecurityResponse(updated))
}

func (h *SecurityHandler) Delete(c *gin.Context) {
	if err := h.securities.Delete(c.Request.Context(), c.Param("symbol")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Price returns the closing price for a symbol from the market data
// provider: the latest one, or a specific day's via the date query param.
func (h *SecurityHandler) Price(c *gin.Context) {
	symbol := c.Param("symbol")

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, "date must be in YYYY-MM-DD format")
			return
		}

		price, err := h.quotes.DailyPrice(c.Request.Context(), symbol, day, marketdata.PriceClose)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Success", quoteResponse{Symbol: symbol, Date: raw, Price: price})
		return
	}

	quote, err := h.quotes.LatestClose(c.Request.Context(), symbol)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Success", quoteResponse{
		Symbol: quote.Symbol,
		Date:   quote.Date.Format("2006-01-02"),
		Price:  quote.Price,
	})
}
