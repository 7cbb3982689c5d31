package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	printingapp "github.com/medstore/backend/internal/application/printing"
	"github.com/medstore/backend/internal/interfaces/http/dto"
)

// InvoiceHandler serves printable sale invoices
type InvoiceHandler struct {
	BaseHandler
	invoiceService *printingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *printingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// Render godoc
// @Summary      Print a sale invoice
// @Description  Render the invoice of a sale as an HTML page or an A4 PDF
// @Tags         sales
// @Produce      html
// @Produce      application/pdf
// @Param        id     path  int    true  "Sale ID"
// @Param        format query string false "html or pdf" Enums(html, pdf) default(html)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/invoice [get]
func (h *InvoiceHandler) Render(c *gin.Context) {
	id, ok := h.parseID(c, "sale")
	if !ok {
		return
	}
	format, ok := printingapp.ParseFormat(c.Query("format"))
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "format must be html or pdf")
		return
	}

	invoice, err := h.invoiceService.Render(c.Request.Context(), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if invoice.Format == printingapp.FormatPDF {
		c.Header("Content-Disposition", "inline; filename=\""+invoice.Filename+"\"")
	}
	c.Data(http.StatusOK, invoice.ContentType, invoice.Content)
}

// Archive godoc
// @Summary      Archive a sale invoice
// @Description  Store the invoice PDF in object storage and return a presigned download URL. An invoice already archived is not rendered again.
// @Tags         sales
// @Produce      json
// @Param        id path int true "Sale ID"
// @Success      200 {object} dto.Response{data=printingapp.ArchivedInvoice}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/invoice/archive [post]
func (h *InvoiceHandler) Archive(c *gin.Context) {
	id, ok := h.parseID(c, "sale")
	if !ok {
		return
	}

	archived, err := h.invoiceService.Archive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, archived)
}
