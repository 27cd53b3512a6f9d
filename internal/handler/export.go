package handler

import (
	"fmt"
	"net/http"
	"time"

	"assettrack/internal/apierror"
	"assettrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves Excel export and import of the inventory.
type ExportHandler struct {
	svc service.ExportService
}

func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export handles GET /accessories/export and streams an xlsx workbook.
func (h *ExportHandler) Export(c *gin.Context) {
	f, err := h.svc.ExportAccessories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("export workbook close failed")
		}
	}()

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("export stream failed")
	}
}

// Import handles POST /accessories/import with a multipart "file" field.
func (h *ExportHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Upload a workbook in the 'file' field"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Could not read the uploaded file"))
		return
	}
	defer file.Close()

	result, err := h.svc.ImportAccessories(c.Request.Context(), actorFrom(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
