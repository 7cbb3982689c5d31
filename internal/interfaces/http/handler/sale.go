package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/medstore/backend/internal/application/trade"
	"github.com/medstore/backend/internal/domain/shared"
)

// SaleHandler handles the sale ledger endpoints
type SaleHandler struct {
	BaseHandler
	ledger *tradeapp.SaleLedger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(ledger *tradeapp.SaleLedger) *SaleHandler {
	return &SaleHandler{ledger: ledger}
}

// Create godoc
// @Summary      Record a sale
// @Description  Sell medicines to a customer. The form variant sends parallel medicine_id[], quantity[] and price[] arrays; lines with a quantity of zero are skipped. Any line over stock fails the whole sale.
// @Tags         sales
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        Idempotency-Key header string                     false "Makes a resubmitted sale return 409 instead of selling twice"
// @Param        request         body   tradeapp.RecordSaleRequest true  "Sale"
// @Success      201 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req tradeapp.RecordSaleRequest
	if isJSON(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	} else {
		parsed, err := saleFromForm(c)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if !h.validate(c, parsed) {
			return
		}
		req = *parsed
	}

	sale, err := h.ledger.RecordSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// saleFromForm reads a point-of-sale form post
func saleFromForm(c *gin.Context) (*tradeapp.RecordSaleRequest, error) {
	ids := c.PostFormArray("medicine_id[]")
	quantities := c.PostFormArray("quantity[]")
	prices := c.PostFormArray("price[]")
	if len(quantities) != len(ids) || len(prices) != len(ids) {
		return nil, shared.NewValidationError("medicine_id[], quantity[] and price[] must have the same length")
	}

	discount, err := parseDecimal("Discount", c.PostForm("discount"))
	if err != nil {
		return nil, err
	}
	taxField := c.PostForm("tax")
	if taxField == "" {
		taxField = c.PostForm("tax_percentage")
	}
	tax, err := parseDecimal("Tax", taxField)
	if err != nil {
		return nil, err
	}

	req := &tradeapp.RecordSaleRequest{
		CustomerName:    c.PostForm("customer_name"),
		CustomerContact: c.PostForm("customer_contact"),
		PaymentMethod:   c.PostForm("payment_method"),
		DiscountPercent: discount,
		TaxPercent:      tax,
		Items:           make([]tradeapp.SaleItemInput, 0, len(ids)),
	}
	for i := range ids {
		line := strconv.Itoa(i + 1)
		id, err := strconv.ParseUint(ids[i], 10, 64)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid medicine on line "+line)
		}
		qty, err := parseInt("Quantity on line "+line, quantities[i])
		if err != nil {
			return nil, err
		}
		price, err := parseDecimal("Price on line "+line, prices[i])
		if err != nil {
			return nil, err
		}
		req.Items = append(req.Items, tradeapp.SaleItemInput{
			MedicineID: id,
			Quantity:   qty,
			UnitPrice:  price,
		})
	}
	return req, nil
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path int true "Sale ID"
// @Success      200 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "sale")
	if !ok {
		return
	}

	sale, err := h.ledger.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Description  List sales, newest first. Dates are YYYY-MM-DD and inclusive.
// @Tags         sales
// @Produce      json
// @Param        start_date query string false "First day"
// @Param        end_date   query string false "Last day"
// @Param        customer   query string false "Customer name contains"
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]tradeapp.SaleResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter tradeapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	sales, total, err := h.ledger.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}
