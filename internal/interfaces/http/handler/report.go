package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/medstore/backend/internal/application/report"
	"github.com/medstore/backend/internal/domain/shared"
)

// ReportHandler handles dashboard, report and export endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// OverviewRequest selects the month shown on the reports page
type OverviewRequest struct {
	Year  int `form:"year" binding:"omitempty,min=2000,max=9999" example:"2026"`
	Month int `form:"month" binding:"omitempty,min=1,max=12" example:"3"`
}

// DetailedExportRequest selects a detailed export
type DetailedExportRequest struct {
	Type      string `form:"type" binding:"required,oneof=sales inventory" example:"sales"`
	Format    string `form:"format" binding:"omitempty,oneof=csv xlsx" example:"csv"`
	StartDate string `form:"start_date" example:"2026-03-01"`
	EndDate   string `form:"end_date" example:"2026-03-31"`
}

// Dashboard godoc
// @Summary      Dashboard summary
// @Description  Medicine count, lifetime sales and low stock count
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.DashboardSummary}
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Overview godoc
// @Summary      Monthly report
// @Description  Daily sales, top medicines, low stock and payment methods for a month. Defaults to the current month.
// @Tags         reports
// @Produce      json
// @Param        year  query int false "Year"
// @Param        month query int false "Month 1-12"
// @Success      200 {object} dto.Response{data=reportapp.OverviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports [get]
func (h *ReportHandler) Overview(c *gin.Context) {
	var req OverviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	overview, err := h.reportService.Overview(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// LowStock godoc
// @Summary      Low stock medicines
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.LowStockItem}
// @Security     BearerAuth
// @Router       /reports/low-stock [get]
func (h *ReportHandler) LowStock(c *gin.Context) {
	items, err := h.reportService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// RangeRequest selects an inclusive range of days
type RangeRequest struct {
	StartDate string `form:"start_date" binding:"required" example:"2026-03-01"`
	EndDate   string `form:"end_date" binding:"required" example:"2026-03-31"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
}

func (h *ReportHandler) bindRange(c *gin.Context) (RangeRequest, time.Time, time.Time, bool) {
	var req RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return req, time.Time{}, time.Time{}, false
	}
	start, err := shared.ParseDate("Start date", req.StartDate)
	if err != nil {
		h.HandleError(c, err)
		return req, time.Time{}, time.Time{}, false
	}
	end, err := shared.ParseDate("End date", req.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return req, time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		h.HandleError(c, shared.NewValidationError("End date cannot be before start date"))
		return req, time.Time{}, time.Time{}, false
	}
	return req, start, end, true
}

// TopMedicines godoc
// @Summary      Best selling medicines
// @Tags         reports
// @Produce      json
// @Param        start_date query string true  "First day"
// @Param        end_date   query string true  "Last day"
// @Param        limit      query int    false "How many" default(10)
// @Success      200 {object} dto.Response{data=[]report.MedicineSalesRanking}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/top-medicines [get]
func (h *ReportHandler) TopMedicines(c *gin.Context) {
	req, start, end, ok := h.bindRange(c)
	if !ok {
		return
	}

	rankings, err := h.reportService.TopMedicines(c.Request.Context(), start, end, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rankings)
}

// PaymentMethods godoc
// @Summary      Sales by payment method
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "First day"
// @Param        end_date   query string true "Last day"
// @Success      200 {object} dto.Response{data=[]report.PaymentMethodBreakdown}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/payment-methods [get]
func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	_, start, end, ok := h.bindRange(c)
	if !ok {
		return
	}

	methods, err := h.reportService.PaymentMethods(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// Export godoc
// @Summary      Export a report
// @Description  Download all sales or the current inventory as CSV or XLSX
// @Tags         reports
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        type   path  string true  "Report type" Enums(sales, inventory)
// @Param        format query string false "File format" Enums(csv, xlsx) default(csv)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/export/{type} [get]
func (h *ReportHandler) Export(c *gin.Context) {
	h.sendExport(c, reportapp.ExportRequest{
		Type:   reportapp.ExportType(c.Param("type")),
		Format: c.Query("format"),
	})
}

// DetailedExport godoc
// @Summary      Export a detailed report
// @Description  Download sales within a date range, or the inventory, with pricing and expiry columns
// @Tags         reports
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        type       query string true  "Report type" Enums(sales, inventory)
// @Param        start_date query string false "First day (sales only)"
// @Param        end_date   query string false "Last day (sales only)"
// @Param        format     query string false "File format" Enums(csv, xlsx) default(csv)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/export [get]
func (h *ReportHandler) DetailedExport(c *gin.Context) {
	var req DetailedExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	h.sendExport(c, reportapp.ExportRequest{
		Type:      reportapp.ExportType(req.Type),
		Format:    req.Format,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Detailed:  true,
	})
}

// sendExport renders the whole file before writing so a failure still gets a
// JSON error instead of a truncated download
func (h *ReportHandler) sendExport(c *gin.Context, req reportapp.ExportRequest) {
	file, err := h.reportService.Export(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := file.WriteTo(&buf); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType(), buf.Bytes())
}
