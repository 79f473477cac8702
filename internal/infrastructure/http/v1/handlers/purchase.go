package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/purchase"
	"kardex/internal/domain/registers/costhistory"
	"kardex/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler exposes purchase document operations.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts purchase endpoints on the group.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Register)
	rg.GET("", h.List)
	rg.GET("/:number", h.GetHistory)
	rg.PATCH("/:number", h.Edit)
}

// Register handles POST /purchases.
func (h *PurchaseHandler) Register(c *gin.Context) {
	var req dto.RegisterPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.ToInput(h.GetUserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// Edit handles PATCH /purchases/:number.
func (h *PurchaseHandler) Edit(c *gin.Context) {
	var req dto.EditPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Edit(c.Request.Context(), req.ToInput(c.Param("number"), h.GetUserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// GetHistory handles GET /purchases/:number.
func (h *PurchaseHandler) GetHistory(c *gin.Context) {
	result, err := h.service.GetHistory(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		Search:  c.Query("search"),
		OrderBy: c.Query("orderBy"),
		Limit:   h.ParseIntQuery(c, "limit", 50),
		Offset:  h.ParseIntQuery(c, "offset", 0),
	}
	if supplier := c.Query("supplierRef"); supplier != "" {
		filter.SupplierRef = &supplier
	}
	if status := c.Query("status"); status != "" {
		s := purchase.Status(status)
		filter.Status = &s
	}
	var err error
	if filter.DateFrom, err = h.ParseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.DateTo, err = h.ParseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CostHistoryHandler exposes the per-article audit trail.
type CostHistoryHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewCostHistoryHandler creates a cost history handler.
func NewCostHistoryHandler(base *BaseHandler, service *purchase.Service) *CostHistoryHandler {
	return &CostHistoryHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts cost history endpoints on the group.
func (h *CostHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:articleRef", h.GetByArticle)
}

// GetByArticle handles GET /cost-history/:articleRef.
func (h *CostHistoryHandler) GetByArticle(c *gin.Context) {
	filter := costhistory.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	filter.DocumentID = h.ParseInt64Query(c, "documentId")
	if kind := c.Query("kind"); kind != "" {
		k := costhistory.Kind(kind)
		filter.Kind = &k
	}
	var err error
	if filter.FromDate, err = h.ParseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.ToDate, err = h.ParseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.service.GetCostHistory(c.Request.Context(), c.Param("articleRef"), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": entries})
}
