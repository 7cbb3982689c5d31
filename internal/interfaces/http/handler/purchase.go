package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/medstore/backend/internal/application/trade"
)

// PurchaseHandler handles the purchase ledger endpoints
type PurchaseHandler struct {
	BaseHandler
	ledger *tradeapp.PurchaseLedger
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(ledger *tradeapp.PurchaseLedger) *PurchaseHandler {
	return &PurchaseHandler{ledger: ledger}
}

// Create godoc
// @Summary      Record a purchase
// @Description  Record stock received from a supplier. Every line increases the medicine's quantity in one transaction.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.RecordPurchaseRequest true "Purchase"
// @Success      201 {object} dto.Response{data=tradeapp.PurchaseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req tradeapp.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	purchase, err := h.ledger.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// GetByID godoc
// @Summary      Get a purchase
// @Tags         purchases
// @Produce      json
// @Param        id path int true "Purchase ID"
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "purchase")
	if !ok {
		return
	}

	purchase, err := h.ledger.GetPurchase(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// List godoc
// @Summary      List purchases
// @Description  List purchases, newest first
// @Tags         purchases
// @Produce      json
// @Param        supplier_id query int false "Only this supplier's purchases"
// @Param        page        query int false "Page number" default(1)
// @Param        page_size   query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]tradeapp.PurchaseResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /purchases [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	var filter tradeapp.PurchaseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	purchases, total, err := h.ledger.ListPurchases(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, purchases, total, filter.Page, filter.PageSize)
}
