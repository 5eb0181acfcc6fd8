package handler

import (
	"net/http"

	"vetpos/internal/apierror"
	"vetpos/internal/dto"
	"vetpos/internal/middleware"
	"vetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchasesHandler struct{ svc service.ReceiptService }

func NewPurchasesHandler(svc service.ReceiptService) *PurchasesHandler {
	return &PurchasesHandler{svc: svc}
}

// RetailPurchase godoc
// @Summary      One-shot retail sale
// @Description  Sells a retail product as a completed single-line receipt: checks branch stock, decrements it and credits the loyalty ledger atomically.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RetailPurchaseRequest true "Product, quantity and customer"
// @Success      201  {object} dto.ReceiptResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/purchases/retail [post]
func (h *PurchasesHandler) RetailPurchase(c *gin.Context) {
	var req dto.RetailPurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	staffID, _ := uuid.Parse(claims.StaffID)
	branchID, err := branchFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Staff member has no branch assigned"))
		return
	}

	resp, err := h.svc.RetailPurchase(c.Request.Context(), branchID, staffID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VaccinationPlanPurchase godoc
// @Summary      One-shot vaccination plan sale
// @Description  Sells a plan for one pet as a completed receipt, applies the customer's rank discount and enrolls the pet.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.VaccinationPlanPurchaseRequest true "Plan, pet and customer"
// @Success      201  {object} dto.ReceiptResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/purchases/vaccination-plans [post]
func (h *PurchasesHandler) VaccinationPlanPurchase(c *gin.Context) {
	var req dto.VaccinationPlanPurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	staffID, _ := uuid.Parse(claims.StaffID)
	branchID, err := branchFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Staff member has no branch assigned"))
		return
	}

	resp, err := h.svc.PurchaseVaccinationPlan(c.Request.Context(), branchID, staffID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
