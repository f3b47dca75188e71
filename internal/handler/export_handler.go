package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

type scheduleExporter interface {
	WeeklySchedule(ctx context.Context, format service.ExportFormat) (*service.ScheduleExport, error)
}

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	exporter scheduleExporter
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exporter scheduleExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// Schedule godoc
// @Summary Download the weekly schedule
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /exports/schedule [get]
func (h *ExportHandler) Schedule(c *gin.Context) {
	file, err := h.exporter.WeeklySchedule(c.Request.Context(), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
