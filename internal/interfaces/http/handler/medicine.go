package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/medstore/backend/internal/application/catalog"
	"github.com/medstore/backend/internal/infrastructure/sheet"
)

// maxImportFileSize caps medicine import uploads
const maxImportFileSize = 10 << 20

// MedicineHandler handles medicine catalog endpoints
type MedicineHandler struct {
	BaseHandler
	medicineService *catalogapp.MedicineService
}

// NewMedicineHandler creates a new MedicineHandler
func NewMedicineHandler(medicineService *catalogapp.MedicineService) *MedicineHandler {
	return &MedicineHandler{
		medicineService: medicineService,
	}
}

// List godoc
// @Summary      List medicines
// @Description  List medicines ordered by name. search matches name, description or the exact id.
// @Tags         medicines
// @Produce      json
// @Param        search    query string false "Search term"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.MedicineResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /medicines [get]
func (h *MedicineHandler) List(c *gin.Context) {
	var filter catalogapp.MedicineListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	medicines, total, err := h.medicineService.ListMedicines(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, medicines, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Add a medicine
// @Description  Add a medicine. A positive quantity is booked as an opening purchase from the supplier. Accepts JSON or form fields.
// @Tags         medicines
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        request body catalogapp.AddMedicineRequest true "Medicine"
// @Success      201 {object} dto.Response{data=catalogapp.MedicineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /medicines [post]
func (h *MedicineHandler) Create(c *gin.Context) {
	req, ok := h.bindAddMedicine(c)
	if !ok {
		return
	}

	medicine, err := h.medicineService.AddMedicine(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, medicine)
}

// GetByID godoc
// @Summary      Get a medicine
// @Tags         medicines
// @Produce      json
// @Param        id path int true "Medicine ID"
// @Success      200 {object} dto.Response{data=catalogapp.MedicineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /medicines/{id} [get]
func (h *MedicineHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "medicine")
	if !ok {
		return
	}

	medicine, err := h.medicineService.GetMedicine(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, medicine)
}

// Update godoc
// @Summary      Edit a medicine
// @Description  Edit medicine details. Stock is only changed by purchases and sales.
// @Tags         medicines
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        id      path int                              true "Medicine ID"
// @Param        request body catalogapp.UpdateMedicineRequest true "Medicine details"
// @Success      200 {object} dto.Response{data=catalogapp.MedicineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /medicines/{id} [put]
func (h *MedicineHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "medicine")
	if !ok {
		return
	}
	req, ok := h.bindUpdateMedicine(c)
	if !ok {
		return
	}

	medicine, err := h.medicineService.EditMedicine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, medicine)
}

// Delete godoc
// @Summary      Delete a medicine
// @Description  Delete a medicine that has no purchase or sale history
// @Tags         medicines
// @Param        id path int true "Medicine ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /medicines/{id} [delete]
func (h *MedicineHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "medicine")
	if !ok {
		return
	}

	if err := h.medicineService.DeleteMedicine(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import godoc
// @Summary      Import medicines
// @Description  Add medicines from a CSV or XLSX file with columns name, description, quantity, price, supplier_id, batch_number, expiry_date. Rejected rows are reported and the rest are kept.
// @Tags         medicines
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV or XLSX file"
// @Success      200 {object} dto.Response{data=catalogapp.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /medicines/import [post]
func (h *MedicineHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum size of 10MB")
		return
	}

	format, err := sheet.FormatFromFilename(header.Filename)
	if err != nil {
		if errors.Is(err, sheet.ErrUnsupportedFormat) {
			h.Error(c, http.StatusUnsupportedMediaType, "INVALID_CONTENT_TYPE", "file must be a .csv or .xlsx file")
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.medicineService.ImportMedicines(c.Request.Context(), file, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *MedicineHandler) bindAddMedicine(c *gin.Context) (catalogapp.AddMedicineRequest, bool) {
	var req catalogapp.AddMedicineRequest
	if isJSON(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return req, false
		}
		return req, true
	}

	price, err := parseDecimal("Price", c.PostForm("price"))
	if err != nil {
		h.HandleError(c, err)
		return req, false
	}
	quantity, err := parseInt("Quantity", c.PostForm("quantity"))
	if err != nil {
		h.HandleError(c, err)
		return req, false
	}
	supplierID, err := parseOptionalID("supplier", c.PostForm("supplier_id"))
	if err != nil {
		h.HandleError(c, err)
		return req, false
	}
	req = catalogapp.AddMedicineRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Quantity:    quantity,
		Price:       price,
		SupplierID:  supplierID,
		ExpiryDate:  c.PostForm("expiry_date"),
		BatchNumber: c.PostForm("batch_number"),
	}
	return req, h.validate(c, &req)
}

func (h *MedicineHandler) bindUpdateMedicine(c *gin.Context) (catalogapp.UpdateMedicineRequest, bool) {
	var req catalogapp.UpdateMedicineRequest
	if isJSON(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return req, false
		}
		return req, true
	}

	price, err := parseDecimal("Price", c.PostForm("price"))
	if err != nil {
		h.HandleError(c, err)
		return req, false
	}
	supplierID, err := parseOptionalID("supplier", c.PostForm("supplier_id"))
	if err != nil {
		h.HandleError(c, err)
		return req, false
	}
	req = catalogapp.UpdateMedicineRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		SupplierID:  supplierID,
		ExpiryDate:  c.PostForm("expiry_date"),
		BatchNumber: c.PostForm("batch_number"),
	}
	return req, h.validate(c, &req)
}
