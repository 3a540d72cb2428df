package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/utils"
)

// QuoteLog reads the persisted quote log. *repository.QuoteRepository
// implements it.
type QuoteLog interface {
	GetByID(ctx context.Context, id int64) (*models.QuoteRecord, error)
	List(ctx context.Context, page, limit int) ([]models.QuoteRecord, error)
	Count(ctx context.Context) (int, error)
}

type AdminQuoteHandler struct {
	quotes QuoteLog
}

func NewAdminQuoteHandler(quotes QuoteLog) *AdminQuoteHandler {
	return &AdminQuoteHandler{quotes: quotes}
}

// ListQuotes handles GET /v1/admin/quotes?page=&limit=
func (h *AdminQuoteHandler) ListQuotes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	quotes, err := h.quotes.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.quotes.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Quotes retrieved", quotes, page, limit, total)
}

// GetQuote handles GET /v1/admin/quotes/:id
func (h *AdminQuoteHandler) GetQuote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid quote id")
		return
	}

	quote, err := h.quotes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Quote retrieved", quote)
}
