package handler

import (
	"fmt"
	"net/http"

	"assettrack/internal/apierror"
	"assettrack/internal/dto"
	"assettrack/internal/service"

	"github.com/gin-gonic/gin"
)

// AccessoryHandler exposes CRUD and audit reads for accessory records.
type AccessoryHandler struct {
	svc service.AccessoryService
}

func NewAccessoryHandler(svc service.AccessoryService) *AccessoryHandler {
	return &AccessoryHandler{svc: svc}
}

// Create handles POST /accessories.
func (h *AccessoryHandler) Create(c *gin.Context) {
	var req dto.CreateAccessoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /accessories/:id.
func (h *AccessoryHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByBarcode handles GET /accessories/barcode/:barcode, the scanner lookup.
func (h *AccessoryHandler) GetByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Barcode is required"))
		return
	}
	resp, err := h.svc.GetByBarcode(c.Request.Context(), barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List handles GET /accessories with filter, search, sort and pagination.
func (h *AccessoryHandler) List(c *gin.Context) {
	var filter dto.AccessoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query parameters"))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update handles PUT /accessories/:id (descriptive fields only).
func (h *AccessoryHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccessoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAudit handles GET /accessories/:id/audit.
func (h *AccessoryHandler) GetAudit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.svc.GetAudit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// AuditPDF handles GET /accessories/:id/audit/pdf and streams the sheet.
func (h *AccessoryHandler) AuditPDF(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	pdfBytes, err := h.svc.AuditPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=audit-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
