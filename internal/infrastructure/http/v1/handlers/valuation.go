package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/reports"
)

// ValuationHandler exposes the valuation and ABC classification report.
type ValuationHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewValuationHandler creates a valuation handler.
func NewValuationHandler(base *BaseHandler, service *reports.Service) *ValuationHandler {
	return &ValuationHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts report endpoints on the group.
func (h *ValuationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/valuation", h.GetValuation)
	rg.GET("/valuation/uncosted", h.ListUncosted)
}

// GetValuation handles GET /reports/valuation.
func (h *ValuationHandler) GetValuation(c *gin.Context) {
	filters := reports.Filters{
		SubcategoryID: h.ParseInt64Query(c, "subcategoryId"),
		StockOnly:     c.Query("stockOnly") == "true",
	}
	if band := c.Query("band"); band != "" {
		b := reports.Band(band)
		filters.Band = &b
	}
	var err error
	if filters.DateFrom, err = h.ParseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return
	}
	if filters.DateTo, err = h.ParseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return
	}
	page := reports.Page{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	result, err := h.service.GetValuation(c.Request.Context(), filters, page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ListUncosted handles GET /reports/valuation/uncosted.
func (h *ValuationHandler) ListUncosted(c *gin.Context) {
	filter := reports.UncostedFilter{
		SubcategoryID: h.ParseInt64Query(c, "subcategoryId"),
		StockOnly:     c.Query("stockOnly") == "true",
	}
	page := reports.Page{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	items, total, err := h.service.ListUncostedArticles(c.Request.Context(), filter, page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"items":      items,
		"totalCount": total,
		"limit":      page.Limit,
		"offset":     page.Offset,
	})
}
