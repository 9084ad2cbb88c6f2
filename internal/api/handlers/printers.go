package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/core"
)

type CreatePrinterRequest struct {
	Name               string    `json:"name" binding:"required"`
	Location           string    `json:"location"`
	NozzleSizeMM       *float64  `json:"nozzle_size_mm" binding:"required"`
	SupportedDiameters []float64 `json:"supported_diameters" binding:"required,min=1"`
}

type PrinterHandler struct {
	printers PrinterService
}

func NewPrinterHandler(printers PrinterService) *PrinterHandler {
	return &PrinterHandler{printers: printers}
}

func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	printers, err := h.printers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, printers)
}

func (h *PrinterHandler) GetPrinter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	printer, err := h.printers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, printer)
}

func (h *PrinterHandler) GetCompatibleFilaments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filaments, err := h.printers.CompatibleFilaments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filaments)
}

func (h *PrinterHandler) CreatePrinter(c *gin.Context) {
	var req CreatePrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	printer, err := h.printers.Create(c.Request.Context(), middleware.CallerFromContext(c), core.PrinterInput{
		Name:               req.Name,
		Location:           req.Location,
		NozzleSizeMM:       req.NozzleSizeMM,
		SupportedDiameters: req.SupportedDiameters,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, printer)
}

func (h *PrinterHandler) UpdatePrinter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req core.PrinterUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	printer, err := h.printers.Update(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, printer)
}

func (h *PrinterHandler) DeletePrinter(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.printers.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Printer deleted",
	})
}

func (h *PrinterHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/printers", h.ListPrinters)
	public.GET("/printers/:id", h.GetPrinter)
	public.GET("/printers/:id/filaments", h.GetCompatibleFilaments)

	admin.POST("/printers", h.CreatePrinter)
	admin.PATCH("/printers/:id", h.UpdatePrinter)
	admin.DELETE("/printers/:id", h.DeletePrinter)
}
