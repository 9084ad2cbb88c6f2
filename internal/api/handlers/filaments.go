package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/core"
)

type CreateFilamentRequest struct {
	Brand       string   `json:"brand" binding:"required"`
	Material    string   `json:"material" binding:"required"`
	Color       string   `json:"color" binding:"required"`
	DiameterMM  *float64 `json:"diameter_mm" binding:"required"`
	WeightGrams *float64 `json:"weight_grams" binding:"required"`
}

type AdjustWeightRequest struct {
	DeltaGrams *float64 `json:"delta_grams" binding:"required"`
}

type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type FilamentHandler struct {
	filaments FilamentService
}

func NewFilamentHandler(filaments FilamentService) *FilamentHandler {
	return &FilamentHandler{filaments: filaments}
}

func (h *FilamentHandler) ListFilaments(c *gin.Context) {
	filaments, err := h.filaments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filaments)
}

func (h *FilamentHandler) GetFilament(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filament, err := h.filaments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filament)
}

func (h *FilamentHandler) CreateFilament(c *gin.Context) {
	var req CreateFilamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	filament, err := h.filaments.Create(c.Request.Context(), middleware.CallerFromContext(c), core.FilamentInput{
		Brand:       req.Brand,
		Material:    req.Material,
		Color:       req.Color,
		DiameterMM:  req.DiameterMM,
		WeightGrams: req.WeightGrams,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, filament)
}

func (h *FilamentHandler) UpdateFilament(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req core.FilamentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	filament, err := h.filaments.Update(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filament)
}

func (h *FilamentHandler) DeleteFilament(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.filaments.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Filament deleted",
	})
}

// AdjustWeight restocks (positive delta) or corrects (negative delta) a spool.
func (h *FilamentHandler) AdjustWeight(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdjustWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	adj, err := h.filaments.AdjustWeight(c.Request.Context(), middleware.CallerFromContext(c), id, *req.DeltaGrams)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adj)
}

func (h *FilamentHandler) GetUsage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var page PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}

	usage, err := h.filaments.Usage(c.Request.Context(), middleware.CallerFromContext(c), id, page.Limit, page.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"usage":  usage,
		"limit":  page.Limit,
		"offset": page.Offset,
		"count":  len(usage),
	})
}

func (h *FilamentHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/filaments", h.ListFilaments)
	public.GET("/filaments/:id", h.GetFilament)

	admin.POST("/filaments", h.CreateFilament)
	admin.PATCH("/filaments/:id", h.UpdateFilament)
	admin.DELETE("/filaments/:id", h.DeleteFilament)
	admin.POST("/filaments/:id/adjust", h.AdjustWeight)
	admin.GET("/filaments/:id/usage", h.GetUsage)
}
